package admins

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// PostgresStore keeps admin accounts in the admin_users and user_roles tables.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Create(ctx context.Context, user User) error {
	query := `
		INSERT INTO admin_users (id, email, password_hash, full_name, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.pool.Exec(ctx, query, user.ID, user.Email, user.PasswordHash, user.FullName, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserExists
		}
		return fmt.Errorf("insert admin user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, email, password_hash, full_name, telegram_user_id, created_at
		FROM admin_users
		WHERE email = $1
	`

	var user User
	err := s.pool.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.TelegramUserID,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("select admin user: %w", err)
	}
	return &user, nil
}

func (s *PostgresStore) GrantRole(ctx context.Context, userID uuid.UUID, role Role) (bool, error) {
	query := `
		INSERT INTO user_roles (user_id, role)
		VALUES ($1, $2)
		ON CONFLICT (user_id, role) DO NOTHING
	`

	tag, err := s.pool.Exec(ctx, query, userID, string(role))
	if err != nil {
		return false, fmt.Errorf("insert user role: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PostgresStore) LinkTelegram(ctx context.Context, userID uuid.UUID, telegramUserID int64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE admin_users SET telegram_user_id = $2 WHERE id = $1`,
		userID, telegramUserID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrTelegramLinked
		}
		return fmt.Errorf("update admin telegram id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *PostgresStore) HasRole(ctx context.Context, userID uuid.UUID, role Role) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM user_roles WHERE user_id = $1 AND role = $2)`

	var ok bool
	if err := s.pool.QueryRow(ctx, query, userID, string(role)).Scan(&ok); err != nil {
		return false, fmt.Errorf("select user role: %w", err)
	}
	return ok, nil
}

func (s *PostgresStore) HasRoleByTelegram(ctx context.Context, telegramUserID int64, role Role) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM admin_users u
			JOIN user_roles r ON r.user_id = u.id
			WHERE u.telegram_user_id = $1 AND r.role = $2
		)
	`

	var ok bool
	if err := s.pool.QueryRow(ctx, query, telegramUserID, string(role)).Scan(&ok); err != nil {
		return false, fmt.Errorf("select admin role: %w", err)
	}
	return ok, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
