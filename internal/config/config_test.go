package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.HTTP.Port != 8080 || cfg.HTTP.AdminToken != "" || cfg.HTTP.ShutdownGrace != 15*time.Second {
		t.Errorf("unexpected HTTP defaults %+v", cfg.HTTP)
	}
	if cfg.Database.Driver != DriverPostgres {
		t.Errorf("expected postgres driver, got %s", cfg.Database.Driver)
	}
	if !strings.Contains(cfg.Database.URL, "/orderbot?sslmode=disable") {
		t.Errorf("unexpected database url %s", cfg.Database.URL)
	}
	if cfg.Telegram.AdminChannelID != 0 || cfg.Telegram.PollTimeout != 60 {
		t.Errorf("unexpected telegram defaults %+v", cfg.Telegram)
	}
	if cfg.Shop.ProductsPerPage != 5 || cfg.Shop.RecentOrdersLimit != 10 || cfg.Shop.MaxConcurrentCustomers != 64 {
		t.Errorf("unexpected shop defaults %+v", cfg.Shop)
	}
	if cfg.Shop.PaymentDetails == "" {
		t.Error("expected default payment details")
	}
	if cfg.Shop.SessionIdleTimeout != 24*time.Hour {
		t.Errorf("expected 24h session idle timeout, got %s", cfg.Shop.SessionIdleTimeout)
	}
	if len(cfg.Kafka.Brokers) != 0 {
		t.Errorf("expected no brokers, got %v", cfg.Kafka.Brokers)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_CHANNEL_ID", "-1001234567890")
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("PRODUCTS_PER_PAGE", "8")
	t.Setenv("MAX_CONCURRENT_CUSTOMERS", "4")
	t.Setenv("PAYMENT_DETAILS", "KBZ 0000")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,")
	t.Setenv("DATABASE_URL", "postgres://x@y/z")
	t.Setenv("AUTO_MIGRATE", "false")
	t.Setenv("SESSION_IDLE_MINUTES", "30")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Telegram.AdminChannelID != -1001234567890 {
		t.Errorf("unexpected admin channel %d", cfg.Telegram.AdminChannelID)
	}
	if cfg.Database.Driver != DriverMemory || cfg.Database.URL != "postgres://x@y/z" || cfg.Database.AutoMigrate {
		t.Errorf("unexpected database config %+v", cfg.Database)
	}
	if cfg.Shop.ProductsPerPage != 8 || cfg.Shop.MaxConcurrentCustomers != 4 || cfg.Shop.PaymentDetails != "KBZ 0000" {
		t.Errorf("unexpected shop config %+v", cfg.Shop)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "b:9092" {
		t.Errorf("unexpected brokers %v", cfg.Kafka.Brokers)
	}
	if cfg.Shop.SessionIdleTimeout != 30*time.Minute {
		t.Errorf("unexpected session idle timeout %s", cfg.Shop.SessionIdleTimeout)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "missing token", env: map[string]string{"TELEGRAM_BOT_TOKEN": ""}, wantErr: "TELEGRAM_BOT_TOKEN"},
		{name: "bad channel id", env: map[string]string{"ADMIN_CHANNEL_ID": "channel"}, wantErr: "ADMIN_CHANNEL_ID"},
		{name: "bad port", env: map[string]string{"API_HTTP_PORT": "http"}, wantErr: "API_HTTP_PORT"},
		{name: "bad driver", env: map[string]string{"STORE_DRIVER": "sqlite"}, wantErr: "STORE_DRIVER"},
		{name: "zero page size", env: map[string]string{"PRODUCTS_PER_PAGE": "0"}, wantErr: "PRODUCTS_PER_PAGE"},
		{name: "zero concurrency", env: map[string]string{"MAX_CONCURRENT_CUSTOMERS": "0"}, wantErr: "MAX_CONCURRENT_CUSTOMERS"},
		{name: "zero session idle", env: map[string]string{"SESSION_IDLE_MINUTES": "0"}, wantErr: "SESSION_IDLE_MINUTES"},
		{name: "bad sample rate", env: map[string]string{"OTEL_SAMPLE_RATE": "often"}, wantErr: "OTEL_SAMPLE_RATE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			_, err := Load()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %s, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoad_MissingTokenIsSentinel(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	if _, err := Load(); !errors.Is(err, ErrMissingToken) {
		t.Errorf("expected ErrMissingToken, got %v", err)
	}
}
