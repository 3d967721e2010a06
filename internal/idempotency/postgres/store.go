package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store records claimed update keys in the processed_updates table.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Claim(ctx context.Context, key string) (bool, error) {
	query := `
		INSERT INTO processed_updates (key)
		VALUES ($1)
		ON CONFLICT (key) DO NOTHING
	`

	tag, err := s.pool.Exec(ctx, query, key)
	if err != nil {
		return false, fmt.Errorf("claim update key: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

func (s *Store) Release(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM processed_updates WHERE key = $1`, key); err != nil {
		return fmt.Errorf("release update key: %w", err)
	}
	return nil
}

// Forget deletes keys processed before cutoff.
func (s *Store) Forget(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM processed_updates WHERE processed_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete processed updates: %w", err)
	}
	return tag.RowsAffected(), nil
}
