package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dejobratic/orderbot/internal/orders/adapters/memory"
	"github.com/dejobratic/orderbot/internal/orders/domain"
	"github.com/dejobratic/orderbot/internal/orders/ports"
)

func TestRepositoryNextOrderID(t *testing.T) {
	t.Run("starts at ORD-100", func(t *testing.T) {
		repo := memory.NewRepository()
		id, err := repo.NextOrderID(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if id != "ORD-100" {
			t.Errorf("expected ORD-100, got %s", id)
		}
	})

	t.Run("concurrent callers never share an identifier", func(t *testing.T) {
		repo := memory.NewRepository()
		const workers = 64

		ids := make(chan string, workers)
		var wg sync.WaitGroup
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				id, err := repo.NextOrderID(context.Background())
				if err != nil {
					t.Errorf("NextOrderID failed: %v", err)
					return
				}
				ids <- id
			}()
		}
		wg.Wait()
		close(ids)

		seen := make(map[string]bool)
		for id := range ids {
			if seen[id] {
				t.Fatalf("duplicate identifier %s", id)
			}
			seen[id] = true
		}
		if len(seen) != workers {
			t.Errorf("expected %d identifiers, got %d", workers, len(seen))
		}
	})
}

func TestRepositoryUpdateStatus(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	newPending := func(t *testing.T, repo *memory.Repository) domain.Order {
		t.Helper()
		order := domain.Order{ID: "ORD-100", CustomerID: 7, Status: domain.StatusPending, CreatedAt: now}
		if err := repo.Create(ctx, order); err != nil {
			t.Fatalf("failed to create order: %v", err)
		}
		return order
	}

	t.Run("applies update when status matches", func(t *testing.T) {
		repo := memory.NewRepository()
		order := newPending(t, repo)

		update, _ := order.Transition(domain.StatusApproved, now, "")
		if err := repo.UpdateStatus(ctx, order.ID, update); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		stored, _ := repo.GetByID(ctx, order.ID)
		if stored.Status != domain.StatusApproved || stored.ApprovedAt == nil {
			t.Errorf("expected approved order with timestamp, got %+v", stored)
		}
	})

	t.Run("second guarded update conflicts", func(t *testing.T) {
		repo := memory.NewRepository()
		order := newPending(t, repo)

		update, _ := order.Transition(domain.StatusRejected, now, domain.RejectionReasonAdminChannel)
		if err := repo.UpdateStatus(ctx, order.ID, update); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := repo.UpdateStatus(ctx, order.ID, update); !errors.Is(err, ports.ErrStatusConflict) {
			t.Errorf("expected ErrStatusConflict, got %v", err)
		}
	})

	t.Run("unknown order", func(t *testing.T) {
		repo := memory.NewRepository()
		err := repo.UpdateStatus(ctx, "ORD-404", domain.StatusUpdate{From: domain.StatusPending, To: domain.StatusApproved})
		if !errors.Is(err, ports.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestRepositoryListByCustomer(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	orders := []domain.Order{
		{ID: "ORD-1", CustomerID: 1, Status: domain.StatusPending, CreatedAt: base},
		{ID: "ORD-2", CustomerID: 2, Status: domain.StatusPending, CreatedAt: base.Add(time.Minute)},
		{ID: "ORD-3", CustomerID: 1, Status: domain.StatusApproved, CreatedAt: base.Add(2 * time.Minute)},
		{ID: "ORD-4", CustomerID: 1, Status: domain.StatusRejected, CreatedAt: base.Add(3 * time.Minute)},
	}
	for _, o := range orders {
		if err := repo.Create(ctx, o); err != nil {
			t.Fatalf("failed to create order: %v", err)
		}
	}

	result, err := repo.ListByCustomer(ctx, 1, 2)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(result))
	}
	if result[0].ID != "ORD-4" || result[1].ID != "ORD-3" {
		t.Errorf("expected recent first [ORD-4 ORD-3], got [%s %s]", result[0].ID, result[1].ID)
	}

	status := domain.StatusPending
	pending, err := repo.List(ctx, ports.ListFilter{Status: &status})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(pending) != 2 {
		t.Errorf("expected 2 pending orders, got %d", len(pending))
	}
}

func TestRepositoryCreateDuplicate(t *testing.T) {
	repo := memory.NewRepository()
	order := domain.Order{ID: "ORD-1"}
	if err := repo.Create(context.Background(), order); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := repo.Create(context.Background(), order); err == nil {
		t.Error("expected duplicate create to fail")
	}
}

func TestProfilesUpsertKeepsBan(t *testing.T) {
	profiles := memory.NewProfiles()
	if err := profiles.SetBanned(context.Background(), 5, true); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := profiles.Upsert(context.Background(), domain.Profile{CustomerID: 5, Phone: "0911"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	banned, _ := profiles.IsBanned(context.Background(), 5)
	if !banned {
		t.Error("expected upsert to keep ban flag")
	}
	stored, _ := profiles.Get(5)
	if stored.Phone != "0911" {
		t.Errorf("expected phone to be updated, got %q", stored.Phone)
	}
}

func TestCatalog(t *testing.T) {
	catalog := memory.NewCatalog(
		domain.Product{ID: "P1", Name: "Tea", Active: true},
		domain.Product{ID: "P2", Name: "Retired", Active: false},
		domain.Product{ID: "P3", Name: "Cocoa", Active: true},
	)
	catalog.Put(domain.Product{ID: "P1", Name: "Green Tea", Active: true})
	ctx := context.Background()

	active, err := catalog.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive() error = %v", err)
	}
	if len(active) != 2 || active[0].Name != "Green Tea" || active[1].ID != "P3" {
		t.Errorf("expected [Green Tea, Cocoa] in insertion order, got %+v", active)
	}

	retired, err := catalog.GetByID(ctx, "P2")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if retired.Active {
		t.Error("expected inactive product to be returned as inactive")
	}

	if _, err := catalog.GetByID(ctx, "P9"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestProfilesListAndUnban(t *testing.T) {
	profiles := memory.NewProfiles()
	ctx := context.Background()

	if err := profiles.Upsert(ctx, domain.Profile{CustomerID: 1, Username: "ann", Banned: true}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if banned, _ := profiles.IsBanned(ctx, 1); banned {
		t.Error("expected upsert not to set the ban flag")
	}
	if err := profiles.SetBanned(ctx, 2, true); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := profiles.SetBanned(ctx, 2, false); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	listed, err := profiles.List(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(listed))
	}
	for _, profile := range listed {
		if profile.Banned {
			t.Errorf("expected customer %d to be unbanned", profile.CustomerID)
		}
		if profile.CreatedAt.IsZero() {
			t.Errorf("expected customer %d to carry a creation time", profile.CustomerID)
		}
	}
}

func TestCatalogWrites(t *testing.T) {
	catalog := memory.NewCatalog(domain.Product{ID: "P1", Name: "Tea", Active: true})
	ctx := context.Background()

	if err := catalog.Create(ctx, domain.Product{ID: "P1", Name: "Dup"}); !errors.Is(err, ports.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
	if err := catalog.Create(ctx, domain.Product{ID: "P2", Name: "Cocoa", Active: false}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := catalog.Update(ctx, domain.Product{ID: "P1", Name: "Green Tea", Active: true}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if err := catalog.Update(ctx, domain.Product{ID: "P9"}); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expected ErrNotFound on update, got %v", err)
	}

	all, err := catalog.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(all) != 2 || all[0].Name != "Green Tea" || all[1].ID != "P2" {
		t.Errorf("expected [Green Tea, Cocoa], got %+v", all)
	}

	if err := catalog.Delete(ctx, "P1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := catalog.Delete(ctx, "P1"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
	if active, _ := catalog.ListActive(ctx); len(active) != 0 {
		t.Errorf("expected no active products, got %+v", active)
	}
}
