package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/thriftline/marketplace/internal/domain"
)

type ProductRepository interface {
	GetProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error)

	// GetProductForUpdate locks the product row until the surrounding
	// transaction ends. Only meaningful on a tx-scoped repository.
	GetProductForUpdate(ctx context.Context, productID uuid.UUID) (domain.Product, error)

	ListProducts(ctx context.Context, onlyAvailable bool) ([]domain.Product, error)

	InsertProduct(ctx context.Context, product domain.Product) (uuid.UUID, error)

	// MarkSold is the one-way available -> sold transition.
	MarkSold(ctx context.Context, productID uuid.UUID) error

	DeleteProduct(ctx context.Context, productID uuid.UUID) (bool, error)
}

type CartRepository interface {
	GetCart(ctx context.Context, userID string) (domain.Cart, error)

	// UpsertItem is idempotent: re-adding a product overwrites its snapshot.
	UpsertItem(ctx context.Context, userID string, item domain.CartItem) error

	DeleteItem(ctx context.Context, userID string, productID uuid.UUID) (bool, error)

	DeleteItems(ctx context.Context, userID string, productIDs []uuid.UUID) error
}

type AddressRepository interface {
	AddAddress(ctx context.Context, userID string, address string) (domain.Address, error)
	ListAddresses(ctx context.Context, userID string) ([]domain.Address, error)
	DeleteAddress(ctx context.Context, userID string, addressID uuid.UUID) (bool, error)
}

type OrderRepository interface {
	GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error)

	ListOrdersByUser(ctx context.Context, userID string) ([]domain.Order, error)
	SearchOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)

	InsertOrder(ctx context.Context, order domain.Order) (uuid.UUID, error)

	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) error
}

type ProfileRepository interface {
	GetProfile(ctx context.Context, userID string) (domain.Profile, error)

	// UpsertProfile has merge semantics: empty fields keep their stored value.
	UpsertProfile(ctx context.Context, profile domain.Profile) error
}
