package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product is a single second-hand item. Available flips to false exactly once,
// inside the order placement transaction, and is never reset automatically.
type Product struct {
	ID        uuid.UUID
	Title     string
	Size      string
	ShopName  string
	ImageURL  string
	Price     Money
	Available bool

	CreatedAt time.Time
}
