package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"github.com/dejobratic/orderbot/internal/admins"
	"github.com/dejobratic/orderbot/internal/config"
	"github.com/dejobratic/orderbot/internal/database"
	"github.com/dejobratic/orderbot/internal/kafka"
	"github.com/dejobratic/orderbot/internal/orders/adapters"
	httpadapter "github.com/dejobratic/orderbot/internal/orders/adapters/http"
	"github.com/dejobratic/orderbot/internal/orders/adapters/telegram"
	ordersapp "github.com/dejobratic/orderbot/internal/orders/app"
	"github.com/dejobratic/orderbot/internal/orders/conversation"
	ordersmetrics "github.com/dejobratic/orderbot/internal/orders/metrics"
	"github.com/dejobratic/orderbot/internal/orders/receipt"
	"github.com/dejobratic/orderbot/internal/telemetry"
)

const sessionSweepInterval = time.Hour

func main() {
	bootstrap := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		bootstrap.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	level, err := telemetry.ParseLevel(cfg.Telemetry.LogLevel)
	if err != nil {
		bootstrap.Warn("falling back to info log level", "error", err)
	}
	logger := telemetry.NewLogger(os.Stdout, level,
		slog.String("service", cfg.Service.Name),
		slog.String("version", cfg.Service.Version),
	)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("bot stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("bot stopped")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
		Environment:    cfg.Service.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTelEndpoint,
		EnableTracing:  cfg.Telemetry.EnableTracing,
		EnableMetrics:  cfg.Telemetry.EnableMetrics,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()
	logger.Info("telemetry initialized", "tracing", tel.TracingEnabled(), "metrics", tel.MetricsEnabled())

	meter := tel.Meter()
	dbMetrics, err := database.NewMetrics(meter)
	if err != nil {
		return err
	}
	kafkaMetrics, err := kafka.NewMetrics(meter)
	if err != nil {
		return err
	}
	orderMetrics, err := ordersmetrics.NewMetrics(meter)
	if err != nil {
		return err
	}
	httpMetrics, err := httpadapter.NewMetrics(meter)
	if err != nil {
		return err
	}

	st, err := openStores(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer st.close()

	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("connect to telegram: %w", err)
	}
	bot.Debug = cfg.Telegram.Debug
	logger.Info("authorized on telegram", "username", bot.Self.UserName)

	if len(cfg.Kafka.Brokers) > 0 {
		logger.Info("order events are logged, not produced", "brokers", cfg.Kafka.Brokers)
	}

	notifier := telegram.NewNotifier(bot)
	catalog := adapters.NewObservableCatalog(st.catalog, dbMetrics)

	service := ordersapp.NewService(ordersapp.Dependencies{
		Repo:              adapters.NewObservableRepository(st.repo, dbMetrics),
		Catalog:           catalog,
		Profiles:          st.profiles,
		Notifier:          notifier,
		Events:            adapters.NewObservableEventBus(kafka.NewNoopEventBus(logger), kafkaMetrics),
		Receipts:          receipt.NewRenderer(nil),
		AdminChannelID:    cfg.Telegram.AdminChannelID,
		RecentOrdersLimit: cfg.Shop.RecentOrdersLimit,
	}, logger, orderMetrics)

	provisioner := admins.NewProvisioner(st.admins, logger)
	sessions := conversation.NewSessionStore()

	engine := conversation.NewEngine(conversation.Dependencies{
		Orders:   service,
		Catalog:  catalog,
		Profiles: st.profiles,
		Admins:   provisioner,
		Notifier: notifier,
		Sessions: sessions,
	}, conversation.Config{
		AdminChannelID:  cfg.Telegram.AdminChannelID,
		PaymentDetails:  cfg.Shop.PaymentDetails,
		AdminPanelURL:   cfg.Shop.AdminPanelURL,
		ProductsPerPage: cfg.Shop.ProductsPerPage,
	}, logger, orderMetrics)

	dispatcher := conversation.NewDispatcher(engine, cfg.Shop.MaxConcurrentCustomers, logger)
	poller := telegram.NewPoller(bot, dispatcher, st.updates, cfg.Telegram.PollTimeout, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := st.ready(r.Context()); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "error": err.Error()})
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
	httpadapter.NewHandler(service, logger).Register(mux)

	if cfg.Telegram.AdminChannelID == 0 {
		logger.Warn("ADMIN_CHANNEL_ID is not set; orders can only be decided through the admin API")
	}

	var handler http.Handler = mux
	handler = httpadapter.RequireAdmin(handler, cfg.HTTP.AdminToken, provisioner, logger)
	handler = httpadapter.WithMetrics(handler, httpMetrics)
	handler = httpadapter.WithLogging(handler, logger)
	handler = httpadapter.WithRecovery(handler, logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("telegram poller starting", "poll_timeout_seconds", cfg.Telegram.PollTimeout)
		return poller.Run(gctx)
	})

	g.Go(func() error {
		sessions.Expire(gctx, sessionSweepInterval, cfg.Shop.SessionIdleTimeout, logger)
		return nil
	})

	g.Go(func() error {
		logger.Info("http server starting", "port", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownGrace)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		} else {
			logger.Info("http server stopped")
		}

		if err := dispatcher.Shutdown(shutdownCtx); err != nil {
			logger.Error("conversation dispatcher did not drain", "error", err)
		} else {
			logger.Info("conversation dispatcher drained")
		}
		return nil
	})

	return g.Wait()
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
