//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dejobratic/orderbot/internal/database"
	"github.com/dejobratic/orderbot/internal/orders/adapters/postgres"
	"github.com/dejobratic/orderbot/internal/orders/domain"
	"github.com/dejobratic/orderbot/internal/orders/ports"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	testpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
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

	migrationsPath := filepath.Join(findProjectRoot(t), "migrations")
	if err := database.RunMigrations(connStr, migrationsPath); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	pool, err := database.NewPool(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
	})

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

func testOrder(id string, customerID int64, createdAt time.Time) domain.Order {
	order, err := domain.NewOrder(id, customerID,
		domain.CustomerProfile{
			Name:  "Ann",
			Phone: "09123",
			Address: domain.Address{
				HouseNo: "12", Street: "Main", Ward: "3", Township: "Downtown", City: "Yangon",
			},
		},
		[]domain.CartItem{{ProductID: "P1", ProductName: "Tea", Quantity: 2, Price: decimal.RequireFromString("10.00")}},
		domain.DeliveryExpressCars,
		createdAt,
	)
	if err != nil {
		panic(err)
	}
	return order
}

func TestRepositoryCreateAndGet(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	order := testOrder("ORD-100", 42, time.Now().UTC().Truncate(time.Microsecond))
	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	retrieved, err := repo.GetByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("failed to retrieve order: %v", err)
	}

	if retrieved.CustomerID != 42 {
		t.Errorf("expected customer 42, got %d", retrieved.CustomerID)
	}
	if !retrieved.TotalCost.Equal(decimal.RequireFromString("20")) {
		t.Errorf("expected total 20, got %s", retrieved.TotalCost)
	}
	if len(retrieved.Items) != 1 || retrieved.Items[0].Quantity != 2 {
		t.Errorf("unexpected items %+v", retrieved.Items)
	}
	if retrieved.Customer.Address.City != "Yangon" {
		t.Errorf("expected city Yangon, got %q", retrieved.Customer.Address.City)
	}
	if retrieved.Status != domain.StatusPending {
		t.Errorf("expected pending, got %s", retrieved.Status)
	}
}

func TestRepositoryGetByID_NotFound(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)

	_, err := repo.GetByID(context.Background(), "ORD-404")
	if !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRepositoryNextOrderID_Concurrent(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	const workers = 20
	var (
		mu   sync.Mutex
		seen = make(map[string]bool)
		wg   sync.WaitGroup
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := repo.NextOrderID(ctx)
			if err != nil {
				t.Errorf("NextOrderID failed: %v", err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if seen[id] {
				t.Errorf("duplicate id %s", id)
			}
			seen[id] = true
		}()
	}
	wg.Wait()

	if len(seen) != workers {
		t.Errorf("expected %d ids, got %d", workers, len(seen))
	}
}

func TestRepositoryUpdateStatus(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()

	order := testOrder("ORD-200", 1, time.Now().UTC())
	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	at := time.Now().UTC().Truncate(time.Microsecond)
	update, err := order.Transition(domain.StatusRejected, at, domain.RejectionReasonAdminChannel)
	if err != nil {
		t.Fatalf("transition failed: %v", err)
	}

	if err := repo.UpdateStatus(ctx, order.ID, update); err != nil {
		t.Fatalf("failed to update status: %v", err)
	}

	updated, err := repo.GetByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("failed to retrieve order: %v", err)
	}
	if updated.Status != domain.StatusRejected {
		t.Errorf("expected rejected, got %s", updated.Status)
	}
	if updated.RejectionReason != domain.RejectionReasonAdminChannel {
		t.Errorf("expected rejection reason, got %q", updated.RejectionReason)
	}

	t.Run("repeated update conflicts", func(t *testing.T) {
		if err := repo.UpdateStatus(ctx, order.ID, update); !errors.Is(err, ports.ErrStatusConflict) {
			t.Errorf("expected ErrStatusConflict, got %v", err)
		}
	})

	t.Run("unknown order", func(t *testing.T) {
		if err := repo.UpdateStatus(ctx, "ORD-404", update); !errors.Is(err, ports.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestRepositoryListByCustomer(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewRepository(pool)
	ctx := context.Background()
	base := time.Now().UTC()

	for i, id := range []string{"ORD-1", "ORD-2", "ORD-3"} {
		if err := repo.Create(ctx, testOrder(id, 9, base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("failed to create order: %v", err)
		}
	}
	if err := repo.Create(ctx, testOrder("ORD-4", 10, base)); err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	result, err := repo.ListByCustomer(ctx, 9, 2)
	if err != nil {
		t.Fatalf("failed to list orders: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(result))
	}
	if result[0].ID != "ORD-3" {
		t.Errorf("expected newest first, got %s", result[0].ID)
	}

	all, err := repo.List(ctx, ports.ListFilter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("failed to list orders: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("expected 4 orders, got %d", len(all))
	}
}

func TestCatalog(t *testing.T) {
	pool := setupTestDB(t)
	catalog := postgres.NewCatalog(pool)
	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		INSERT INTO products (product_id, name, description, price, stock, is_active)
		VALUES ('P1', 'Tea', 'Green tea', 10.00, 5, TRUE),
		       ('P2', 'Old', NULL, 3.50, 0, FALSE)
	`)
	if err != nil {
		t.Fatalf("failed to seed products: %v", err)
	}

	active, err := catalog.ListActive(ctx)
	if err != nil {
		t.Fatalf("failed to list products: %v", err)
	}
	if len(active) != 1 || active[0].ID != "P1" {
		t.Fatalf("expected only P1, got %+v", active)
	}
	if !active[0].Price.Equal(decimal.RequireFromString("10")) {
		t.Errorf("expected price 10, got %s", active[0].Price)
	}

	inactive, err := catalog.GetByID(ctx, "P2")
	if err != nil {
		t.Fatalf("failed to get product: %v", err)
	}
	if inactive.Active || inactive.Description != "" {
		t.Errorf("unexpected product %+v", inactive)
	}

	if _, err := catalog.GetByID(ctx, "nope"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestProfiles(t *testing.T) {
	pool := setupTestDB(t)
	profiles := postgres.NewProfiles(pool)
	ctx := context.Background()

	banned, err := profiles.IsBanned(ctx, 77)
	if err != nil || banned {
		t.Fatalf("expected unknown profile to be allowed, got %v %v", banned, err)
	}

	if err := profiles.Upsert(ctx, domain.Profile{CustomerID: 77, Username: "ann", Phone: "0911"}); err != nil {
		t.Fatalf("failed to upsert: %v", err)
	}
	if err := profiles.SetBanned(ctx, 77, true); err != nil {
		t.Fatalf("failed to ban: %v", err)
	}
	if err := profiles.Upsert(ctx, domain.Profile{CustomerID: 77, Username: "ann", Phone: "0922"}); err != nil {
		t.Fatalf("failed to upsert: %v", err)
	}

	banned, err = profiles.IsBanned(ctx, 77)
	if err != nil {
		t.Fatalf("failed to check ban: %v", err)
	}
	if !banned {
		t.Error("expected upsert to keep ban flag")
	}
}

func TestProfilesListAndBan(t *testing.T) {
	profiles := postgres.NewProfiles(setupTestDB(t))
	ctx := context.Background()

	if err := profiles.Upsert(ctx, domain.Profile{CustomerID: 10, Username: "ann"}); err != nil {
		t.Fatalf("failed to upsert: %v", err)
	}
	if err := profiles.SetBanned(ctx, 11, true); err != nil {
		t.Fatalf("failed to ban unknown customer: %v", err)
	}

	listed, err := profiles.List(ctx)
	if err != nil {
		t.Fatalf("failed to list profiles: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(listed))
	}
	byID := map[int64]domain.Profile{}
	for _, profile := range listed {
		byID[profile.CustomerID] = profile
	}
	if byID[10].Username != "ann" || byID[10].Banned {
		t.Errorf("unexpected profile %+v", byID[10])
	}
	if !byID[11].Banned {
		t.Errorf("expected customer 11 to be banned, got %+v", byID[11])
	}

	if err := profiles.SetBanned(ctx, 11, false); err != nil {
		t.Fatalf("failed to unban: %v", err)
	}
	if banned, _ := profiles.IsBanned(ctx, 11); banned {
		t.Error("expected customer 11 to be unbanned")
	}
}

func TestCatalogWrites(t *testing.T) {
	catalog := postgres.NewCatalog(setupTestDB(t))
	ctx := context.Background()

	product := domain.Product{ID: "W1", Name: "Jasmine", Price: decimal.RequireFromString("3.50"), Stock: 4, Active: true}
	if err := catalog.Create(ctx, product); err != nil {
		t.Fatalf("failed to create product: %v", err)
	}
	if err := catalog.Create(ctx, product); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	product.Description = "Loose leaf"
	product.Active = false
	if err := catalog.Update(ctx, product); err != nil {
		t.Fatalf("failed to update product: %v", err)
	}
	if err := catalog.Update(ctx, domain.Product{ID: "missing", Name: "x"}); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expected ErrNotFound on update, got %v", err)
	}

	got, err := catalog.GetByID(ctx, "W1")
	if err != nil {
		t.Fatalf("failed to get product: %v", err)
	}
	if got.Active || got.Description != "Loose leaf" || !got.Price.Equal(product.Price) {
		t.Errorf("unexpected product %+v", got)
	}

	all, err := catalog.ListAll(ctx)
	if err != nil {
		t.Fatalf("failed to list products: %v", err)
	}
	found := false
	for _, p := range all {
		found = found || p.ID == "W1"
	}
	if !found {
		t.Error("expected ListAll to include the inactive product")
	}

	if err := catalog.Delete(ctx, "W1"); err != nil {
		t.Fatalf("failed to delete product: %v", err)
	}
	if err := catalog.Delete(ctx, "W1"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}
