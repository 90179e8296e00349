package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/thriftline/marketplace/internal/domain"
	"github.com/thriftline/marketplace/internal/port"
)

type Service struct {
	products port.ProductRepository
	bus      port.EventBus
	log      zerolog.Logger
}

func NewService(products port.ProductRepository, bus port.EventBus, log zerolog.Logger) *Service {
	return &Service{
		products: products,
		bus:      bus,
		log:      log.With().Str("component", "catalog").Logger(),
	}
}

func (s *Service) Get(ctx context.Context, productID uuid.UUID) (domain.Product, error) {
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("products.GetProduct: %w", err)
	}

	return product, nil
}

// List returns purchasable products, newest first.
func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.ListProducts(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("products.ListProducts: %w", err)
	}

	return products, nil
}

// ListAll includes sold products; it backs the admin page.
func (s *Service) ListAll(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.ListProducts(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("products.ListProducts: %w", err)
	}

	return products, nil
}

// Add creates a product, available for sale, with a server-assigned timestamp.
func (s *Service) Add(ctx context.Context, product domain.Product) (uuid.UUID, error) {
	productID, err := s.products.InsertProduct(ctx, product)
	if err != nil {
		return uuid.Nil, fmt.Errorf("products.InsertProduct: %w", err)
	}

	s.publishChanged(ctx, productID)
	return productID, nil
}

func (s *Service) Delete(ctx context.Context, productID uuid.UUID) error {
	found, err := s.products.DeleteProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("products.DeleteProduct: %w", err)
	}

	if found {
		s.publishChanged(ctx, productID)
	}

	return nil
}

func (s *Service) publishChanged(ctx context.Context, productID uuid.UUID) {
	if s.bus == nil {
		return
	}

	if err := s.bus.Publish(ctx, domain.TopicProducts, domain.ProductChangedEvent{ProductID: productID}); err != nil {
		s.log.Error().Err(err).Str("topic", domain.TopicProducts).Msg("failed to publish event")
	}
}
