// Package admins provisions admin accounts and answers admin lookups by Telegram id.
package admins

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Role string

const RoleAdmin Role = "admin"

const minPasswordLength = 8

var (
	ErrUserExists     = errors.New("admin user already exists")
	ErrUserNotFound   = errors.New("admin user not found")
	ErrTelegramLinked = errors.New("telegram id already linked to another admin")
	ErrInvalidInput   = errors.New("invalid input")

	// ErrInvalidCredentials covers unknown emails, wrong passwords and missing roles alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type User struct {
	ID             uuid.UUID
	Email          string
	PasswordHash   string
	FullName       string
	TelegramUserID *int64
	CreatedAt      time.Time
}

// Store persists admin users and their roles.
type Store interface {
	// Create returns ErrUserExists when the email is taken.
	Create(ctx context.Context, user User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	// GrantRole reports whether the role was newly granted.
	GrantRole(ctx context.Context, userID uuid.UUID, role Role) (bool, error)
	LinkTelegram(ctx context.Context, userID uuid.UUID, telegramUserID int64) error
	HasRole(ctx context.Context, userID uuid.UUID, role Role) (bool, error)
	HasRoleByTelegram(ctx context.Context, telegramUserID int64, role Role) (bool, error)
}

// Provisioner implements the setup, grant and link steps and the /admin lookup.
type Provisioner struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
	cost   int
}

func NewProvisioner(store Store, logger *slog.Logger) *Provisioner {
	return &Provisioner{
		store:  store,
		logger: logger,
		now:    time.Now,
		cost:   bcrypt.DefaultCost,
	}
}

// Setup creates an admin account and grants it the admin role. An existing
// account keeps its password and only has the role ensured; created is false then.
func (p *Provisioner) Setup(ctx context.Context, email, password, fullName string) (*User, bool, error) {
	email = normalizeEmail(email)
	if !strings.Contains(email, "@") {
		return nil, false, fmt.Errorf("%w: email %q", ErrInvalidInput, email)
	}
	if len(password) < minPasswordLength {
		return nil, false, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}

	user := User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(fullName),
		CreatedAt:    p.now().UTC(),
	}

	created := true
	if err := p.store.Create(ctx, user); err != nil {
		if !errors.Is(err, ErrUserExists) {
			return nil, false, fmt.Errorf("create admin user: %w", err)
		}
		existing, err := p.store.GetByEmail(ctx, email)
		if err != nil {
			return nil, false, fmt.Errorf("load existing admin user: %w", err)
		}
		user = *existing
		created = false
	}

	if _, err := p.store.GrantRole(ctx, user.ID, RoleAdmin); err != nil {
		return nil, false, fmt.Errorf("grant admin role: %w", err)
	}

	p.logger.InfoContext(ctx, "admin user provisioned",
		"user_id", user.ID.String(),
		"email", user.Email,
		"created", created,
	)

	return &user, created, nil
}

// Grant gives an existing account the admin role and reports whether it was newly granted.
func (p *Provisioner) Grant(ctx context.Context, email string) (bool, error) {
	user, err := p.store.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return false, err
	}

	granted, err := p.store.GrantRole(ctx, user.ID, RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("grant admin role: %w", err)
	}

	p.logger.InfoContext(ctx, "admin role granted", "user_id", user.ID.String(), "newly_granted", granted)
	return granted, nil
}

// Link attaches a Telegram user id to an account so /admin recognises it.
func (p *Provisioner) Link(ctx context.Context, email string, telegramUserID int64) error {
	if telegramUserID <= 0 {
		return fmt.Errorf("%w: telegram user id must be positive, got %d", ErrInvalidInput, telegramUserID)
	}

	user, err := p.store.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}

	if err := p.store.LinkTelegram(ctx, user.ID, telegramUserID); err != nil {
		return fmt.Errorf("link telegram id: %w", err)
	}

	p.logger.InfoContext(ctx, "telegram id linked", "user_id", user.ID.String(), "telegram_user_id", telegramUserID)
	return nil
}

// Authenticate checks an admin's email and password for the admin API.
func (p *Provisioner) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := p.store.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load admin user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	ok, err := p.store.HasRole(ctx, user.ID, RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("check admin role: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (p *Provisioner) IsAdmin(ctx context.Context, telegramUserID int64) (bool, error) {
	return p.store.HasRoleByTelegram(ctx, telegramUserID, RoleAdmin)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
