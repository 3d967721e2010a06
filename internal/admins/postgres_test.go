//go:build integration

package admins_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	testpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dejobratic/orderbot/internal/admins"
	"github.com/dejobratic/orderbot/internal/database"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := testpostgres.Run(ctx,
		"postgres:16-alpine",
		testpostgres.WithDatabase("test"),
		testpostgres.WithUsername("test"),
		testpostgres.WithPassword("test"),
		testpostgres.BasicWaitStrategies(),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").WithOccurrence(2)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	if err := database.RunMigrations(connStr, filepath.Join(findProjectRoot(t), "migrations")); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	pool, err := database.NewPool(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}
	t.Cleanup(pool.Close)

	return pool
}

func findProjectRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

func TestPostgresStore(t *testing.T) {
	store := admins.NewPostgresStore(setupTestDB(t))
	ctx := context.Background()

	user := admins.User{
		ID:           uuid.New(),
		Email:        "owner@shop.example",
		PasswordHash: "hash",
		FullName:     "Owner",
		CreatedAt:    time.Now().UTC(),
	}
	if err := store.Create(ctx, user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if err := store.Create(ctx, user); !errors.Is(err, admins.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	got, err := store.GetByEmail(ctx, "owner@shop.example")
	if err != nil {
		t.Fatalf("failed to get user: %v", err)
	}
	if got.ID != user.ID || got.TelegramUserID != nil {
		t.Errorf("unexpected user: %+v", got)
	}

	if _, err := store.GetByEmail(ctx, "ghost@shop.example"); !errors.Is(err, admins.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}

	granted, err := store.GrantRole(ctx, user.ID, admins.RoleAdmin)
	if err != nil || !granted {
		t.Fatalf("expected role to be granted, got %v, %v", granted, err)
	}
	granted, err = store.GrantRole(ctx, user.ID, admins.RoleAdmin)
	if err != nil || granted {
		t.Fatalf("expected repeated grant to be a no-op, got %v, %v", granted, err)
	}

	ok, err := store.HasRole(ctx, user.ID, admins.RoleAdmin)
	if err != nil || !ok {
		t.Errorf("expected admin role by user id, got %v, %v", ok, err)
	}
	ok, err = store.HasRole(ctx, uuid.New(), admins.RoleAdmin)
	if err != nil || ok {
		t.Errorf("expected unknown user to have no role, got %v, %v", ok, err)
	}

	if err := store.LinkTelegram(ctx, user.ID, 900); err != nil {
		t.Fatalf("failed to link telegram id: %v", err)
	}
	if err := store.LinkTelegram(ctx, uuid.New(), 901); !errors.Is(err, admins.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}

	ok, err = store.HasRoleByTelegram(ctx, 900, admins.RoleAdmin)
	if err != nil || !ok {
		t.Errorf("expected admin role by telegram id, got %v, %v", ok, err)
	}
	ok, err = store.HasRoleByTelegram(ctx, 777, admins.RoleAdmin)
	if err != nil || ok {
		t.Errorf("expected unknown telegram id to be refused, got %v, %v", ok, err)
	}
}
