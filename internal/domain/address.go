package domain

import (
	"time"

	"github.com/google/uuid"
)

// Address is immutable once embedded into an order: orders keep the
// address string as it was at placement time.
type Address struct {
	ID      uuid.UUID
	UserID  string
	Address string

	CreatedAt time.Time
}
