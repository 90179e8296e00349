// Package orders is the administrative order workflow: listing by status tab
// and advancing the human-curated status field.
package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/thriftline/marketplace/internal/domain"
	"github.com/thriftline/marketplace/internal/port"
)

type Service struct {
	orders port.OrderRepository
	bus    port.EventBus
	log    zerolog.Logger
}

func NewService(orders port.OrderRepository, bus port.EventBus, log zerolog.Logger) *Service {
	return &Service{
		orders: orders,
		bus:    bus,
		log:    log.With().Str("component", "orders").Logger(),
	}
}

func (s *Service) Get(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("orders.GetOrder: %w", err)
	}

	return order, nil
}

func (s *Service) Search(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	found, err := s.orders.SearchOrders(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("orders.SearchOrders: %w", err)
	}

	return found, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	found, err := s.orders.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("orders.ListOrdersByUser: %w", err)
	}

	return found, nil
}

// Advance writes the new status unconditionally. There is no transition
// graph: any status may follow any other, including moving a delivered order
// back to payment-pending.
func (s *Service) Advance(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) error {
	if err := s.orders.UpdateOrderStatus(ctx, orderID, status); err != nil {
		return fmt.Errorf("orders.UpdateOrderStatus: %w", err)
	}

	if s.bus != nil {
		if err := s.bus.Publish(ctx, domain.TopicOrders, domain.OrderChangedEvent{OrderID: orderID}); err != nil {
			s.log.Error().Err(err).Str("topic", domain.TopicOrders).Msg("failed to publish event")
		}
	}

	return nil
}
