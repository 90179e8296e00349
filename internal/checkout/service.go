// Package checkout implements the order placement protocol: one transaction
// that validates availability, reserves every product, creates the order and
// clears the purchased cart lines. It either commits all of that or nothing.
package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/thriftline/marketplace/internal/domain"
	"github.com/thriftline/marketplace/internal/port"
	"github.com/thriftline/marketplace/internal/repository"
)

const defaultMaxRetries = 3

type Service struct {
	pool       *pgxpool.Pool
	bus        port.EventBus
	log        zerolog.Logger
	maxRetries uint64
}

func NewService(pool *pgxpool.Pool, bus port.EventBus, log zerolog.Logger, maxRetries int) *Service {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	return &Service{
		pool:       pool,
		bus:        bus,
		log:        log.With().Str("component", "checkout").Logger(),
		maxRetries: uint64(maxRetries),
	}
}

type PlaceOrderRequest struct {
	UserID    string
	UserEmail string
	Items     []domain.CartItem
	Address   string
}

func (r PlaceOrderRequest) validate() error {
	if r.UserID == "" {
		return errors.New("userID is empty")
	}
	if len(r.Items) == 0 {
		return ErrEmptyCart
	}
	if r.Address == "" {
		return ErrNoAddress
	}

	// the order total is a single Money value; a cart mixing currencies
	// cannot be summed
	for _, item := range r.Items[1:] {
		if item.Price.Currency != r.Items[0].Price.Currency {
			return ErrMixedCurrencies
		}
	}

	return nil
}

// PlaceOrder runs the placement transaction. Expected failures are
// ErrProductDeleted and ErrProductSold; on any failure no state changes.
// Serialization conflicts are retried a bounded number of times before the
// transient error is surfaced to the caller.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (domain.Order, error) {
	var o domain.Order

	if err := req.validate(); err != nil {
		return o, err
	}

	var order domain.Order

	attempt := func() error {
		placed, err := s.placeOnce(ctx, req)
		if err != nil {
			if repository.IsTransient(err) {
				s.log.Warn().Err(err).Str("userId", req.UserID).Msg("placement conflict, retrying")
				return err
			}
			return backoff.Permanent(err)
		}

		order = placed
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), s.maxRetries), ctx)
	if err := backoff.Retry(attempt, bo); err != nil {
		return o, err
	}

	s.publishPlaced(ctx, order)

	return order, nil
}

// placeOnce is a single serializable transaction: every step here commits
// together or not at all.
func (s *Service) placeOnce(ctx context.Context, req PlaceOrderRequest) (domain.Order, error) {
	var order domain.Order

	opts := pgx.TxOptions{IsoLevel: pgx.Serializable}

	err := repository.InTx(ctx, s.pool, opts, func(tx pgx.Tx) error {
		products := repository.NewProductWithTx(tx)
		orders := repository.NewOrderWithTx(tx)
		cart := repository.NewCartWithTx(tx)

		productIDs := make([]uuid.UUID, 0, len(req.Items))

		// Validate every line under row locks before mutating anything,
		// so a losing concurrent buyer fails with zero effects.
		for _, item := range req.Items {
			product, err := products.GetProductForUpdate(ctx, item.ProductID)
			if err != nil {
				if errors.Is(err, repository.ErrProductNotFound) {
					return fmt.Errorf("product[%s]: %w", item.ProductID, ErrProductDeleted)
				}
				return fmt.Errorf("products.GetProductForUpdate: %w", err)
			}

			if !product.Available {
				return fmt.Errorf("product[%s]: %w", item.ProductID, ErrProductSold)
			}

			productIDs = append(productIDs, item.ProductID)
		}

		for _, productID := range productIDs {
			if err := products.MarkSold(ctx, productID); err != nil {
				return fmt.Errorf("products.MarkSold: %w", err)
			}
		}

		orderID, err := orders.InsertOrder(ctx, buildOrder(req))
		if err != nil {
			return fmt.Errorf("orders.InsertOrder: %w", err)
		}

		if err := cart.DeleteItems(ctx, req.UserID, productIDs); err != nil {
			return fmt.Errorf("cart.DeleteItems: %w", err)
		}

		order, err = orders.GetOrder(ctx, orderID)
		if err != nil {
			return fmt.Errorf("orders.GetOrder: %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	return order, nil
}

// buildOrder freezes the cart snapshot into an order: prices come from the
// snapshot, not the live product rows, and the total is their sum.
func buildOrder(req PlaceOrderRequest) domain.Order {
	items := make([]domain.OrderItem, 0, len(req.Items))

	var total domain.Money
	for i, item := range req.Items {
		if i == 0 {
			total.Currency = item.Price.Currency
		}
		total = total.Add(item.Price)

		items = append(items, domain.OrderItem{
			ProductID: item.ProductID,
			Title:     item.Title,
			Size:      item.Size,
			ImageURL:  item.ImageURL,
			Price:     item.Price,
		})
	}

	return domain.Order{
		UserID:    req.UserID,
		UserEmail: req.UserEmail,
		Address:   req.Address,
		Items:     items,
		Total:     total,
		Status:    domain.OrderStatusPaymentPending,
	}
}

func (s *Service) publishPlaced(ctx context.Context, order domain.Order) {
	if s.bus == nil {
		return
	}

	publish := func(topic string, payload any) {
		if err := s.bus.Publish(ctx, topic, payload); err != nil {
			s.log.Error().Err(err).Str("topic", topic).Msg("failed to publish event")
		}
	}

	publish(domain.TopicOrders, domain.OrderChangedEvent{OrderID: order.ID, UserID: order.UserID})
	publish(domain.TopicCart(order.UserID), domain.CartChangedEvent{UserID: order.UserID})

	for _, item := range order.Items {
		publish(domain.TopicProducts, domain.ProductChangedEvent{ProductID: item.ProductID})
	}
}
