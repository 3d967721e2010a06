package ports

import (
	"context"

	"github.com/dejobratic/orderbot/internal/orders/domain"
)

// ProfileStore keeps the per-customer record holding the ban flag.
type ProfileStore interface {
	IsBanned(ctx context.Context, customerID int64) (bool, error)
	// Upsert creates or refreshes username and phone. It never clears the ban flag.
	Upsert(ctx context.Context, profile domain.Profile) error
	// List returns every profile, newest first.
	List(ctx context.Context) ([]domain.Profile, error)
	// SetBanned creates the profile when the customer has none yet.
	SetBanned(ctx context.Context, customerID int64, banned bool) error
}

// AdminDirectory answers whether a Telegram identity belongs to an admin.
type AdminDirectory interface {
	IsAdmin(ctx context.Context, telegramUserID int64) (bool, error)
}
