package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"
	"github.com/thriftline/marketplace/internal/domain"
	"github.com/thriftline/marketplace/internal/port"
)

type orderRepository struct {
	db DB
}

func NewOrder(pool *pgxpool.Pool) port.OrderRepository {
	return &orderRepository{db: pool}
}

func NewOrderWithTx(tx pgx.Tx) port.OrderRepository {
	return &orderRepository{db: tx}
}

func (r *orderRepository) GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	var o domain.Order

	order, err := withTx(ctx, r.db, func(tx pgx.Tx) (domain.Order, error) {
		query := `SELECT id, user_id, user_email, address, total_amount::TEXT, total_currency, status, created_at, updated_at
					FROM orders WHERE id = $1`

		row, err := scanOrderRow(tx.QueryRow(ctx, query, orderID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return o, ErrOrderNotFound
			}
			return o, fmt.Errorf("scanOrderRow: %w", err)
		}

		order, err := mapOrderRowToDomain(row)
		if err != nil {
			return o, fmt.Errorf("mapOrderRowToDomain: %w", err)
		}

		order.Items, err = r.getOrderItems(ctx, tx, orderID)
		if err != nil {
			return o, fmt.Errorf("r.getOrderItems: %w", err)
		}

		return order, nil
	})
	if err != nil {
		return o, fmt.Errorf("withTx: %w", err)
	}

	return order, nil
}

func (r *orderRepository) getOrderItems(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]domain.OrderItem, error) {
	query := `SELECT product_id, title, size, image_url, price_amount::TEXT, price_currency, created_at
				FROM order_items WHERE order_id = $1`

	rows, err := tx.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("tx.Query: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		row, err := scanCartItemRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanCartItemRow: %w", err)
		}

		item, err := mapOrderItemRowToDomain(row)
		if err != nil {
			return nil, fmt.Errorf("mapOrderItemRowToDomain: %w", err)
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return items, nil
}

func (r *orderRepository) InsertOrder(ctx context.Context, order domain.Order) (uuid.UUID, error) {
	if len(order.Items) == 0 {
		return uuid.Nil, errors.New("no items in order")
	}

	if order.Status == "" {
		order.Status = domain.OrderStatusPaymentPending
	}

	orderID, err := withTx(ctx, r.db, func(tx pgx.Tx) (uuid.UUID, error) {
		query := `INSERT INTO orders (user_id, user_email, address, total_amount, total_currency, status)
					VALUES ($1, $2, $3, $4, $5, $6)
					RETURNING id`

		var orderID uuid.UUID
		err := tx.QueryRow(ctx, query,
			order.UserID, order.UserEmail, order.Address,
			order.Total.Amount.String(), order.Total.Currency.String(),
			string(order.Status),
		).Scan(&orderID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("tx.QueryRow: %w", err)
		}

		// TODO: batch with pgx.Batch once order sizes grow beyond a handful of items
		for _, item := range order.Items {
			itemQuery := `INSERT INTO order_items (order_id, product_id, title, size, image_url, price_amount, price_currency)
							VALUES ($1, $2, $3, $4, $5, $6, $7)`

			_, err := tx.Exec(ctx, itemQuery,
				orderID, item.ProductID, item.Title, item.Size, item.ImageURL,
				item.Price.Amount.String(), item.Price.Currency.String())
			if err != nil {
				return uuid.Nil, fmt.Errorf("tx.Exec: %w", err)
			}
		}

		return orderID, nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("withTx: %w", err)
	}

	return orderID, nil
}

func (r *orderRepository) ListOrdersByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	if userID == "" {
		return nil, errors.New("userID is empty")
	}

	return r.SearchOrders(ctx, domain.OrderFilter{UserIDs: []string{userID}})
}

func (r *orderRepository) SearchOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("filter.Validate: %w", err)
	}

	var statuses []string
	for _, status := range filter.Statuses {
		statuses = append(statuses, string(status))
	}

	var createdAfter, createdBefore *time.Time
	if filter.CreatedAt != nil {
		createdAfter = filter.CreatedAt.After
		createdBefore = filter.CreatedAt.Before
	}

	query := `SELECT o.id, o.user_id, o.user_email, o.address, o.total_amount::TEXT, o.total_currency, o.status, o.created_at, o.updated_at,
					i.product_id, i.title, i.size, i.image_url, i.price_amount::TEXT, i.price_currency, i.created_at
				FROM orders o
				JOIN order_items i ON i.order_id = o.id
				WHERE ($1::UUID[] IS NULL OR o.id = ANY($1))
					AND ($2::TEXT[] IS NULL OR o.user_id = ANY($2))
					AND ($3::TEXT[] IS NULL OR o.status = ANY($3))
					AND ($4::TIMESTAMPTZ IS NULL OR o.created_at >= $4)
					AND ($5::TIMESTAMPTZ IS NULL OR o.created_at <= $5)
				ORDER BY o.created_at DESC`

	rows, err := r.db.Query(ctx, query,
		nilSliceIfEmpty(filter.IDs), nilSliceIfEmpty(filter.UserIDs), nilSliceIfEmpty(statuses),
		createdAfter, createdBefore)
	if err != nil {
		return nil, fmt.Errorf("db.Query: %w", err)
	}
	defer rows.Close()

	// Group rows into orders, keeping one entry per order ID
	orderMap := make(map[uuid.UUID]domain.Order)
	for rows.Next() {
		var (
			oRow orderRow
			iRow cartItemRow
		)

		err := rows.Scan(&oRow.ID, &oRow.UserID, &oRow.UserEmail, &oRow.Address,
			&oRow.TotalAmount, &oRow.TotalCurrency, &oRow.Status, &oRow.CreatedAt, &oRow.UpdatedAt,
			&iRow.ProductID, &iRow.Title, &iRow.Size, &iRow.ImageURL,
			&iRow.PriceAmount, &iRow.PriceCurrency, &iRow.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}

		if _, exists := orderMap[oRow.ID]; !exists {
			order, err := mapOrderRowToDomain(oRow)
			if err != nil {
				return nil, fmt.Errorf("mapOrderRowToDomain: %w", err)
			}
			orderMap[oRow.ID] = order
		}

		item, err := mapOrderItemRowToDomain(iRow)
		if err != nil {
			return nil, fmt.Errorf("mapOrderItemRowToDomain: %w", err)
		}

		order := orderMap[oRow.ID]
		order.Items = append(order.Items, item)
		orderMap[oRow.ID] = order
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return lo.Values(orderMap), nil
}

func (r *orderRepository) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) error {
	if orderID == uuid.Nil {
		return fmt.Errorf("orderID is empty")
	}

	if status == "" {
		return fmt.Errorf("status is empty")
	}

	if _, err := domain.ToOrderStatus(string(status)); err != nil {
		return fmt.Errorf("domain.ToOrderStatus[%s]: %w", status, err)
	}

	query := `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`

	cmdTag, err := r.db.Exec(ctx, query, orderID, string(status))
	if err != nil {
		return fmt.Errorf("db.Exec: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}

type orderRow struct {
	ID            uuid.UUID
	UserID        string
	UserEmail     string
	Address       string
	TotalAmount   string
	TotalCurrency string
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func scanOrderRow(row pgx.Row) (orderRow, error) {
	var r orderRow
	err := row.Scan(&r.ID, &r.UserID, &r.UserEmail, &r.Address,
		&r.TotalAmount, &r.TotalCurrency, &r.Status, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func mapOrderRowToDomain(row orderRow) (domain.Order, error) {
	var o domain.Order

	total, err := mapPriceToMoney(row.TotalAmount, row.TotalCurrency)
	if err != nil {
		return o, fmt.Errorf("mapPriceToMoney: %w", err)
	}

	status, err := domain.ToOrderStatus(row.Status)
	if err != nil {
		return o, fmt.Errorf("domain.ToOrderStatus[%s]: %w", row.Status, err)
	}

	return domain.Order{
		ID:        row.ID,
		UserID:    row.UserID,
		UserEmail: row.UserEmail,
		Address:   row.Address,
		Total:     total,
		Status:    status,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func mapOrderItemRowToDomain(row cartItemRow) (domain.OrderItem, error) {
	price, err := mapPriceToMoney(row.PriceAmount, row.PriceCurrency)
	if err != nil {
		return domain.OrderItem{}, fmt.Errorf("mapPriceToMoney: %w", err)
	}

	return domain.OrderItem{
		ProductID: row.ProductID,
		Title:     row.Title,
		Size:      row.Size,
		ImageURL:  row.ImageURL,
		Price:     price,
		CreatedAt: row.CreatedAt,
	}, nil
}

func nilSliceIfEmpty[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}
