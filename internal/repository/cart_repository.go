package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/thriftline/marketplace/internal/domain"
	"github.com/thriftline/marketplace/internal/port"
)

type cartRepository struct {
	db DB
}

func NewCart(pool *pgxpool.Pool) port.CartRepository {
	return &cartRepository{db: pool}
}

func NewCartWithTx(tx pgx.Tx) port.CartRepository {
	return &cartRepository{db: tx}
}

func (r *cartRepository) GetCart(ctx context.Context, userID string) (domain.Cart, error) {
	var c domain.Cart

	query := `SELECT product_id, title, size, image_url, price_amount::TEXT, price_currency, created_at
				FROM cart_items WHERE user_id = $1`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return c, fmt.Errorf("db.Query: %w", err)
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		row, err := scanCartItemRow(rows)
		if err != nil {
			return c, fmt.Errorf("scanCartItemRow: %w", err)
		}

		item, err := mapCartItemRowToDomain(row)
		if err != nil {
			return c, fmt.Errorf("mapCartItemRowToDomain: %w", err)
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return c, fmt.Errorf("rows.Err: %w", err)
	}

	return domain.Cart{
		UserID: userID,
		Items:  items,
	}, nil
}

func (r *cartRepository) UpsertItem(ctx context.Context, userID string, item domain.CartItem) error {
	query := `INSERT INTO cart_items (user_id, product_id, title, size, image_url, price_amount, price_currency)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				ON CONFLICT (user_id, product_id) DO UPDATE SET
					title = EXCLUDED.title,
					size = EXCLUDED.size,
					image_url = EXCLUDED.image_url,
					price_amount = EXCLUDED.price_amount,
					price_currency = EXCLUDED.price_currency`

	_, err := r.db.Exec(ctx, query,
		userID, item.ProductID, item.Title, item.Size, item.ImageURL,
		item.Price.Amount.String(), item.Price.Currency.String())
	if err != nil {
		return fmt.Errorf("db.Exec: %w", err)
	}

	return nil
}

func (r *cartRepository) DeleteItem(ctx context.Context, userID string, productID uuid.UUID) (bool, error) {
	query := `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`

	cmdTag, err := r.db.Exec(ctx, query, userID, productID)
	if err != nil {
		return false, fmt.Errorf("db.Exec: %w", err)
	}

	return cmdTag.RowsAffected() > 0, nil
}

func (r *cartRepository) DeleteItems(ctx context.Context, userID string, productIDs []uuid.UUID) error {
	if len(productIDs) == 0 {
		return nil
	}

	query := `DELETE FROM cart_items WHERE user_id = $1 AND product_id = ANY($2)`

	if _, err := r.db.Exec(ctx, query, userID, productIDs); err != nil {
		return fmt.Errorf("db.Exec: %w", err)
	}

	return nil
}

type cartItemRow struct {
	ProductID     uuid.UUID
	Title         string
	Size          string
	ImageURL      string
	PriceAmount   string
	PriceCurrency string
	CreatedAt     time.Time
}

func scanCartItemRow(row pgx.Row) (cartItemRow, error) {
	var r cartItemRow
	err := row.Scan(&r.ProductID, &r.Title, &r.Size, &r.ImageURL,
		&r.PriceAmount, &r.PriceCurrency, &r.CreatedAt)
	return r, err
}

func mapCartItemRowToDomain(row cartItemRow) (domain.CartItem, error) {
	price, err := mapPriceToMoney(row.PriceAmount, row.PriceCurrency)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("mapPriceToMoney: %w", err)
	}

	return domain.CartItem{
		ProductID: row.ProductID,
		Title:     row.Title,
		Size:      row.Size,
		ImageURL:  row.ImageURL,
		Price:     price,
		CreatedAt: row.CreatedAt,
	}, nil
}
