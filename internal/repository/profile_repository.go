package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/thriftline/marketplace/internal/domain"
	"github.com/thriftline/marketplace/internal/port"
)

type profileRepository struct {
	db DB
}

func NewProfile(pool *pgxpool.Pool) port.ProfileRepository {
	return &profileRepository{db: pool}
}

func NewProfileWithTx(tx pgx.Tx) port.ProfileRepository {
	return &profileRepository{db: tx}
}

func (r *profileRepository) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	var p domain.Profile

	query := `SELECT user_id, name, phone_number, email, updated_at FROM profiles WHERE user_id = $1`

	err := r.db.QueryRow(ctx, query, userID).Scan(&p.UserID, &p.Name, &p.PhoneNumber, &p.Email, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, ErrProfileNotFound
		}
		return p, fmt.Errorf("db.QueryRow: %w", err)
	}

	return p, nil
}

func (r *profileRepository) UpsertProfile(ctx context.Context, profile domain.Profile) error {
	if profile.UserID == "" {
		return errors.New("userID is empty")
	}

	// merge semantics: empty incoming fields keep the stored value
	query := `INSERT INTO profiles (user_id, name, phone_number, email)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (user_id) DO UPDATE SET
					name = COALESCE(NULLIF(EXCLUDED.name, ''), profiles.name),
					phone_number = COALESCE(NULLIF(EXCLUDED.phone_number, ''), profiles.phone_number),
					email = COALESCE(NULLIF(EXCLUDED.email, ''), profiles.email),
					updated_at = NOW()`

	if _, err := r.db.Exec(ctx, query, profile.UserID, profile.Name, profile.PhoneNumber, profile.Email); err != nil {
		return fmt.Errorf("db.Exec: %w", err)
	}

	return nil
}
