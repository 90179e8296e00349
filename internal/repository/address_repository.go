package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/thriftline/marketplace/internal/domain"
	"github.com/thriftline/marketplace/internal/port"
)

type addressRepository struct {
	db DB
}

func NewAddress(pool *pgxpool.Pool) port.AddressRepository {
	return &addressRepository{db: pool}
}

func NewAddressWithTx(tx pgx.Tx) port.AddressRepository {
	return &addressRepository{db: tx}
}

func (r *addressRepository) AddAddress(ctx context.Context, userID string, address string) (domain.Address, error) {
	var a domain.Address

	if userID == "" {
		return a, errors.New("userID is empty")
	}
	if address == "" {
		return a, errors.New("address is empty")
	}

	query := `INSERT INTO addresses (user_id, address) VALUES ($1, $2) RETURNING id, created_at`

	a.UserID = userID
	a.Address = address
	if err := r.db.QueryRow(ctx, query, userID, address).Scan(&a.ID, &a.CreatedAt); err != nil {
		return domain.Address{}, fmt.Errorf("db.QueryRow: %w", err)
	}

	return a, nil
}

func (r *addressRepository) ListAddresses(ctx context.Context, userID string) ([]domain.Address, error) {
	query := `SELECT id, user_id, address, created_at FROM addresses WHERE user_id = $1 ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db.Query: %w", err)
	}
	defer rows.Close()

	var addresses []domain.Address
	for rows.Next() {
		var a domain.Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.Address, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}
		addresses = append(addresses, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return addresses, nil
}

func (r *addressRepository) DeleteAddress(ctx context.Context, userID string, addressID uuid.UUID) (bool, error) {
	query := `DELETE FROM addresses WHERE user_id = $1 AND id = $2`

	cmdTag, err := r.db.Exec(ctx, query, userID, addressID)
	if err != nil {
		return false, fmt.Errorf("db.Exec: %w", err)
	}

	return cmdTag.RowsAffected() > 0, nil
}
