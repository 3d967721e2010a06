package conversation

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"
)

func TestSessionStorePrune(t *testing.T) {
	store := NewSessionStore()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }

	abandoned := store.Start(1, 1)
	abandoned.Step = StepBrowsing
	store.Start(2, 2)

	store.now = func() time.Time { return base.Add(20 * time.Hour) }
	if _, ok := store.Get(2); !ok {
		t.Fatal("expected session 2 to exist")
	}

	store.now = func() time.Time { return base.Add(25 * time.Hour) }
	if removed := store.Prune(24 * time.Hour); removed != 1 {
		t.Fatalf("expected 1 expired session, got %d", removed)
	}
	if _, ok := store.Get(1); ok {
		t.Error("expected idle session 1 to be dropped")
	}
	if _, ok := store.Get(2); !ok {
		t.Error("expected recently used session 2 to stay")
	}
}

func TestSessionStoreExpireStopsWithContext(t *testing.T) {
	store := NewSessionStore()
	store.Start(1, 1)
	store.now = func() time.Time { return time.Now().Add(time.Hour) }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.Expire(ctx, time.Millisecond, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
		close(done)
	}()

	deadline := time.After(time.Second)
	for store.Len() != 0 {
		select {
		case <-deadline:
			t.Fatal("idle session was not expired")
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Expire did not return after cancel")
	}
}
