package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/dejobratic/orderbot/internal/admins"
	"github.com/dejobratic/orderbot/internal/config"
	"github.com/dejobratic/orderbot/internal/database"
	idempotencymemory "github.com/dejobratic/orderbot/internal/idempotency/memory"
	idempotencypostgres "github.com/dejobratic/orderbot/internal/idempotency/postgres"
	ordersmemory "github.com/dejobratic/orderbot/internal/orders/adapters/memory"
	orderspostgres "github.com/dejobratic/orderbot/internal/orders/adapters/postgres"
	"github.com/dejobratic/orderbot/internal/orders/domain"
	"github.com/dejobratic/orderbot/internal/orders/ports"
)

// stores groups the gateways for the selected backend.
type stores struct {
	repo     ports.OrderRepository
	catalog  ports.ProductStore
	profiles ports.ProfileStore
	updates  ports.UpdateLog
	admins   admins.Store
	ready    func(ctx context.Context) error
	close    func()
}

func openStores(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*stores, error) {
	if cfg.Driver == config.DriverMemory {
		logger.Warn("using in-memory stores; orders are lost on restart")
		return &stores{
			repo:     ordersmemory.NewRepository(),
			catalog:  ordersmemory.NewCatalog(demoCatalog()...),
			profiles: ordersmemory.NewProfiles(),
			updates:  idempotencymemory.NewStore(),
			admins:   admins.NewMemoryStore(),
			ready:    func(context.Context) error { return nil },
			close:    func() {},
		}, nil
	}

	pool, err := database.NewPool(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("create database pool: %w", err)
	}

	if cfg.AutoMigrate {
		logger.Info("running database migrations", "path", cfg.MigrationsPath)
		if err := database.RunMigrations(cfg.URL, cfg.MigrationsPath); err != nil {
			pool.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("migrations completed successfully")
	}

	ready := func(ctx context.Context) error {
		return database.CheckHealth(ctx, pool)
	}

	return &stores{
		repo:     orderspostgres.NewRepository(pool),
		catalog:  orderspostgres.NewCatalog(pool),
		profiles: orderspostgres.NewProfiles(pool),
		updates:  idempotencypostgres.NewStore(pool),
		admins:   admins.NewPostgresStore(pool),
		ready:    ready,
		close:    pool.Close,
	}, nil
}

func demoCatalog() []domain.Product {
	return []domain.Product{
		{ID: "P1", Name: "Green Tea", Description: "Loose leaf, 100g", Price: decimal.RequireFromString("4500"), Stock: 20, Active: true},
		{ID: "P2", Name: "Coffee Beans", Description: "Medium roast, 250g", Price: decimal.RequireFromString("12000"), Stock: 10, Active: true},
		{ID: "P3", Name: "Honey", Description: "Wild flower, 500g", Price: decimal.RequireFromString("8000"), Stock: 5, Active: true},
	}
}
