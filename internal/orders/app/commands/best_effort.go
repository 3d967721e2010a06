package commands

import (
	"context"
	"log/slog"
)

// BestEffort runs a side effect whose failure must not abort the caller.
// A failure is logged at warn level and reported as false.
// Never use it for order persistence.
func BestEffort(ctx context.Context, logger *slog.Logger, action string, fn func(context.Context) error, attrs ...any) bool {
	if err := fn(ctx); err != nil {
		logger.WarnContext(ctx, "best-effort step failed", append([]any{"action", action, "error", err}, attrs...)...)
		return false
	}
	return true
}
