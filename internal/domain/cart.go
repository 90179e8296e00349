package domain

import (
	"time"

	"github.com/google/uuid"
)

type Cart struct {
	UserID string
	Items  []CartItem
}

// CartItem is a snapshot of the product taken at add-to-cart time.
// Price and title may drift from the live product afterwards; checkout
// trusts the snapshot.
type CartItem struct {
	ProductID uuid.UUID
	Title     string
	Size      string
	ImageURL  string
	Price     Money

	CreatedAt time.Time
}

func (c Cart) Total() Money {
	var total Money
	for i, item := range c.Items {
		if i == 0 {
			total.Currency = item.Price.Currency
		}
		total = total.Add(item.Price)
	}
	return total
}

// SnapshotOf builds a cart line from the current product state.
func SnapshotOf(p Product) CartItem {
	return CartItem{
		ProductID: p.ID,
		Title:     p.Title,
		Size:      p.Size,
		ImageURL:  p.ImageURL,
		Price:     p.Price,
	}
}
