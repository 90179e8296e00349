package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/thriftline/marketplace/internal/domain"
	"github.com/thriftline/marketplace/internal/port"
	"github.com/thriftline/marketplace/internal/watch"
)

// ErrProductUnavailable means the product is already sold or gone; there is
// nothing to add to the cart.
var ErrProductUnavailable = errors.New("product is not available")

type Service struct {
	cart     port.CartRepository
	products port.ProductRepository
	bus      port.EventBus
	log      zerolog.Logger
}

func NewService(cart port.CartRepository, products port.ProductRepository, bus port.EventBus, log zerolog.Logger) *Service {
	return &Service{
		cart:     cart,
		products: products,
		bus:      bus,
		log:      log.With().Str("component", "cart").Logger(),
	}
}

// Add snapshots the product into the user's cart. Re-adding the same product
// overwrites the existing line instead of duplicating it.
func (s *Service) Add(ctx context.Context, userID string, productID uuid.UUID) error {
	if userID == "" {
		return errors.New("userID is empty")
	}

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("products.GetProduct: %w", err)
	}

	if !product.Available {
		return ErrProductUnavailable
	}

	if err := s.cart.UpsertItem(ctx, userID, domain.SnapshotOf(product)); err != nil {
		return fmt.Errorf("cart.UpsertItem: %w", err)
	}

	s.publishChanged(ctx, userID)
	return nil
}

// Remove deletes the line if present; removing an absent item is a no-op.
func (s *Service) Remove(ctx context.Context, userID string, productID uuid.UUID) error {
	found, err := s.cart.DeleteItem(ctx, userID, productID)
	if err != nil {
		return fmt.Errorf("cart.DeleteItem: %w", err)
	}

	if found {
		s.publishChanged(ctx, userID)
	}

	return nil
}

func (s *Service) Items(ctx context.Context, userID string) (domain.Cart, error) {
	cart, err := s.cart.GetCart(ctx, userID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("cart.GetCart: %w", err)
	}

	return cart, nil
}

// Watch delivers the user's full cart to fn immediately and again after every
// committed change, including an order placement clearing the purchased lines.
// The returned func stops delivery.
func (s *Service) Watch(ctx context.Context, userID string, fn func([]domain.CartItem)) (func(), error) {
	if userID == "" {
		return nil, errors.New("userID is empty")
	}
	if s.bus == nil {
		return nil, errors.New("no event bus configured")
	}

	collection := watch.NewCollection(s.bus, domain.TopicCart(userID), func(ctx context.Context) ([]domain.CartItem, error) {
		cart, err := s.cart.GetCart(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("cart.GetCart: %w", err)
		}
		return cart.Items, nil
	}, s.log)

	return collection.Subscribe(ctx, fn)
}

func (s *Service) publishChanged(ctx context.Context, userID string) {
	if s.bus == nil {
		return
	}

	topic := domain.TopicCart(userID)
	if err := s.bus.Publish(ctx, topic, domain.CartChangedEvent{UserID: userID}); err != nil {
		s.log.Error().Err(err).Str("topic", topic).Msg("failed to publish event")
	}
}
