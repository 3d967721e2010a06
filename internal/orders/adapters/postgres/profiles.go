package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dejobratic/orderbot/internal/orders/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Profiles stores customer profiles keyed by Telegram user id.
type Profiles struct {
	pool *pgxpool.Pool
}

func NewProfiles(pool *pgxpool.Pool) *Profiles {
	return &Profiles{pool: pool}
}

func (p *Profiles) IsBanned(ctx context.Context, customerID int64) (bool, error) {
	var banned bool
	err := p.pool.QueryRow(ctx,
		`SELECT is_banned FROM profiles WHERE telegram_user_id = $1`,
		customerID,
	).Scan(&banned)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("select profile: %w", err)
	}
	return banned, nil
}

func (p *Profiles) Upsert(ctx context.Context, profile domain.Profile) error {
	query := `
		INSERT INTO profiles (telegram_user_id, username, phone)
		VALUES ($1, $2, $3)
		ON CONFLICT (telegram_user_id) DO UPDATE
		SET username = EXCLUDED.username,
		    phone = EXCLUDED.phone,
		    updated_at = now()
	`

	if _, err := p.pool.Exec(ctx, query, profile.CustomerID, profile.Username, profile.Phone); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (p *Profiles) List(ctx context.Context) ([]domain.Profile, error) {
	query := `
		SELECT telegram_user_id, COALESCE(username, ''), COALESCE(phone, ''), is_banned, created_at
		FROM profiles
		ORDER BY created_at DESC, telegram_user_id
	`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []domain.Profile
	for rows.Next() {
		var profile domain.Profile
		if err := rows.Scan(
			&profile.CustomerID,
			&profile.Username,
			&profile.Phone,
			&profile.Banned,
			&profile.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, profile)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}

	return profiles, nil
}

func (p *Profiles) SetBanned(ctx context.Context, customerID int64, banned bool) error {
	query := `
		INSERT INTO profiles (telegram_user_id, is_banned)
		VALUES ($1, $2)
		ON CONFLICT (telegram_user_id) DO UPDATE
		SET is_banned = EXCLUDED.is_banned,
		    updated_at = now()
	`

	if _, err := p.pool.Exec(ctx, query, customerID, banned); err != nil {
		return fmt.Errorf("set profile ban: %w", err)
	}
	return nil
}
