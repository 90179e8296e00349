package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/thriftline/marketplace/config"
	"github.com/thriftline/marketplace/internal/catalog"
	"github.com/thriftline/marketplace/internal/domain"
	"github.com/thriftline/marketplace/internal/eventbus"
	"github.com/thriftline/marketplace/internal/orders"
	"github.com/thriftline/marketplace/internal/port"
	"github.com/thriftline/marketplace/internal/repository"
	"github.com/thriftline/marketplace/internal/watch"
)

func main() {
	// Setup structured logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	log.Info().Str("appName", cfg.AppName).Msg("Application starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.ConnString())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create connection pool")
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection successful")

	var bus port.EventBus
	if cfg.RabbitMQURL != "" {
		rabbit, err := eventbus.NewRabbit(cfg.RabbitMQURL, cfg.ExchangeName, log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to RabbitMQ")
		}
		defer rabbit.Close()
		bus = rabbit
	} else {
		log.Info().Msg("No RabbitMQ URL configured, using in-process event bus")
		bus = eventbus.NewMemory()
	}

	productRepo := repository.NewProduct(pool)
	orderRepo := repository.NewOrder(pool)

	catalogSvc := catalog.NewService(productRepo, bus, log.Logger)
	ordersSvc := orders.NewService(orderRepo, bus, log.Logger)

	// Live admin views: every committed change re-reads the full listing.
	productWatch := watch.NewCollection(bus, domain.TopicProducts, func(ctx context.Context) ([]domain.Product, error) {
		return catalogSvc.ListAll(ctx)
	}, log.Logger)

	stopProducts, err := productWatch.Subscribe(ctx, func(products []domain.Product) {
		log.Debug().Int("count", len(products)).Msg("product listing changed")
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to subscribe to product changes")
	}
	defer stopProducts()

	orderWatch := watch.NewCollection(bus, domain.TopicOrders, func(ctx context.Context) ([]domain.Order, error) {
		return ordersSvc.Search(ctx, domain.OrderFilter{Statuses: domain.OrderStatuses()})
	}, log.Logger)

	stopOrders, err := orderWatch.Subscribe(ctx, func(list []domain.Order) {
		log.Debug().Int("count", len(list)).Msg("order listing changed")
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to subscribe to order changes")
	}
	defer stopOrders()

	log.Info().Msg("Application setup complete")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Application shutting down...")
	cancel()
}
