package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/thriftline/marketplace/internal/domain"
	"github.com/thriftline/marketplace/internal/port"
	"golang.org/x/text/currency"
)

const productColumns = `id, title, size, shop_name, image_url, price_amount::TEXT, price_currency, is_available, created_at`

type productRepository struct {
	db DB
}

func NewProduct(pool *pgxpool.Pool) port.ProductRepository {
	return &productRepository{db: pool}
}

func NewProductWithTx(tx pgx.Tx) port.ProductRepository {
	return &productRepository{db: tx}
}

func (r *productRepository) GetProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return r.getProduct(ctx, query, productID)
}

func (r *productRepository) GetProductForUpdate(ctx context.Context, productID uuid.UUID) (domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE`
	return r.getProduct(ctx, query, productID)
}

func (r *productRepository) getProduct(ctx context.Context, query string, productID uuid.UUID) (domain.Product, error) {
	var p domain.Product

	row, err := scanProductRow(r.db.QueryRow(ctx, query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, ErrProductNotFound
		}
		return p, fmt.Errorf("scanProductRow: %w", err)
	}

	product, err := mapProductRowToDomain(row)
	if err != nil {
		return p, fmt.Errorf("mapProductRowToDomain: %w", err)
	}

	return product, nil
}

func (r *productRepository) ListProducts(ctx context.Context, onlyAvailable bool) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
				WHERE (NOT $1::BOOLEAN OR is_available)
				ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, onlyAvailable)
	if err != nil {
		return nil, fmt.Errorf("db.Query: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		row, err := scanProductRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanProductRow: %w", err)
		}

		product, err := mapProductRowToDomain(row)
		if err != nil {
			return nil, fmt.Errorf("mapProductRowToDomain: %w", err)
		}

		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return products, nil
}

func (r *productRepository) InsertProduct(ctx context.Context, product domain.Product) (uuid.UUID, error) {
	if product.Title == "" {
		return uuid.Nil, errors.New("title is empty")
	}

	query := `INSERT INTO products (title, size, shop_name, image_url, price_amount, price_currency, is_available)
				VALUES ($1, $2, $3, $4, $5, $6, TRUE)
				RETURNING id`

	var productID uuid.UUID
	err := r.db.QueryRow(ctx, query,
		product.Title, product.Size, product.ShopName, product.ImageURL,
		product.Price.Amount.String(), product.Price.Currency.String(),
	).Scan(&productID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("db.QueryRow: %w", err)
	}

	return productID, nil
}

func (r *productRepository) MarkSold(ctx context.Context, productID uuid.UUID) error {
	query := `UPDATE products SET is_available = FALSE WHERE id = $1`

	cmdTag, err := r.db.Exec(ctx, query, productID)
	if err != nil {
		return fmt.Errorf("db.Exec: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (r *productRepository) DeleteProduct(ctx context.Context, productID uuid.UUID) (bool, error) {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, productID)
	if err != nil {
		return false, fmt.Errorf("db.Exec: %w", err)
	}

	return cmdTag.RowsAffected() > 0, nil
}

type productRow struct {
	ID            uuid.UUID
	Title         string
	Size          string
	ShopName      string
	ImageURL      string
	PriceAmount   string
	PriceCurrency string
	IsAvailable   bool
	CreatedAt     time.Time
}

func scanProductRow(row pgx.Row) (productRow, error) {
	var r productRow
	err := row.Scan(&r.ID, &r.Title, &r.Size, &r.ShopName, &r.ImageURL,
		&r.PriceAmount, &r.PriceCurrency, &r.IsAvailable, &r.CreatedAt)
	return r, err
}

func mapProductRowToDomain(row productRow) (domain.Product, error) {
	price, err := mapPriceToMoney(row.PriceAmount, row.PriceCurrency)
	if err != nil {
		return domain.Product{}, fmt.Errorf("mapPriceToMoney: %w", err)
	}

	return domain.Product{
		ID:        row.ID,
		Title:     row.Title,
		Size:      row.Size,
		ShopName:  row.ShopName,
		ImageURL:  row.ImageURL,
		Price:     price,
		Available: row.IsAvailable,
		CreatedAt: row.CreatedAt,
	}, nil
}

func mapPriceToMoney(amount, currencyCode string) (domain.Money, error) {
	parsedAmount, err := decimal.NewFromString(amount)
	if err != nil {
		return domain.Money{}, fmt.Errorf("amount[%s] is not valid: %w", amount, err)
	}

	parsedCurrency, err := currency.ParseISO(currencyCode)
	if err != nil {
		return domain.Money{}, fmt.Errorf("currency[%s] is not valid: %w", currencyCode, err)
	}

	return domain.Money{Amount: parsedAmount, Currency: parsedCurrency}, nil
}
