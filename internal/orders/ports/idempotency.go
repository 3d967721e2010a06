package ports

import (
	"context"
	"time"
)

// UpdateLog remembers inbound update keys so redelivered updates are handled once.
type UpdateLog interface {
	// Claim records key and reports whether this call was the first to see it.
	Claim(ctx context.Context, key string) (bool, error)
	// Release drops a claim so a redelivered update is handled again.
	Release(ctx context.Context, key string) error
	// Forget drops keys claimed before cutoff.
	Forget(ctx context.Context, cutoff time.Time) (int64, error)
}
