package domain

import (
	"time"

	"github.com/google/uuid"
)

// Order is created exactly once per successful placement. Items, Total and
// Address are frozen at creation; Status is the only field mutated afterwards.
type Order struct {
	ID        uuid.UUID
	UserID    string
	UserEmail string
	Address   string
	Items     []OrderItem
	Total     Money
	Status    OrderStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

type OrderItem struct {
	ProductID uuid.UUID
	Title     string
	Size      string
	ImageURL  string
	Price     Money

	CreatedAt time.Time
}
