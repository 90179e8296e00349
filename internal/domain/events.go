package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Topics for committed-change events. Per-user resources carry the user id
// in the routing key so a session only hears about its own cart.
const (
	TopicProducts = "products.changed"
	TopicOrders   = "orders.changed"
)

func TopicCart(userID string) string {
	return fmt.Sprintf("cart.changed.%s", userID)
}

type ProductChangedEvent struct {
	ProductID uuid.UUID `json:"productId"`
}

type CartChangedEvent struct {
	UserID string `json:"userId"`
}

type OrderChangedEvent struct {
	OrderID uuid.UUID `json:"orderId"`
	UserID  string    `json:"userId"`
}
