package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures runtime configuration for the bot process.
type Config struct {
	HTTP      HTTPConfig
	Database  DatabaseConfig
	Kafka     KafkaConfig
	Telemetry TelemetryConfig
	Service   ServiceConfig
	Telegram  TelegramConfig
	Shop      ShopConfig
}

type HTTPConfig struct {
	Port          int
	// AdminToken guards the admin API with a bearer token when set.
	AdminToken    string
	ShutdownGrace time.Duration
}

type DatabaseConfig struct {
	// Driver selects the store backend: "postgres" or "memory".
	Driver         string
	URL            string
	AutoMigrate    bool
	MigrationsPath string
}

type KafkaConfig struct {
	Brokers []string
}

type TelemetryConfig struct {
	LogLevel      string
	OTelEndpoint  string
	EnableTracing bool
	EnableMetrics bool
	SampleRate    float64
}

type ServiceConfig struct {
	Name        string
	Version     string
	Environment string
}

type TelegramConfig struct {
	Token          string
	AdminChannelID int64 // 0 disables admin notifications
	PollTimeout    int   // seconds
	Debug          bool
}

type ShopConfig struct {
	PaymentDetails         string
	AdminPanelURL          string
	ProductsPerPage        int
	RecentOrdersLimit      int
	MaxConcurrentCustomers int64
	// SessionIdleTimeout drops checkouts nobody touched for this long.
	SessionIdleTimeout     time.Duration
}

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

const (
	defaultHTTPPort               = 8080
	defaultShutdownGrace          = 15 * time.Second
	defaultMigrationsPath         = "migrations"
	defaultAutoMigrate            = true
	defaultServiceName            = "orderbot"
	defaultServiceVersion         = "0.1.0"
	defaultEnvironment            = "development"
	defaultLogLevel               = "info"
	defaultOTelSampleRate         = 1.0
	defaultPollTimeout            = 60
	defaultProductsPerPage        = 5
	defaultRecentOrdersLimit      = 10
	defaultMaxConcurrentCustomers = 64
	defaultSessionIdleMinutes     = 24 * 60
	defaultPaymentDetails         = "Kpay / Wave Pay: 09883249943"
	defaultAdminPanelURL          = "http://localhost:5173"
)

var ErrMissingToken = errors.New("TELEGRAM_BOT_TOKEN is required")

// Load reads configuration from environment variables, applying defaults when needed.
func Load() (*Config, error) {
	httpCfg, err := loadHTTPConfig()
	if err != nil {
		return nil, fmt.Errorf("loading HTTP config: %w", err)
	}

	dbCfg, err := LoadDatabase()
	if err != nil {
		return nil, fmt.Errorf("loading database config: %w", err)
	}

	telCfg, err := loadTelemetryConfig()
	if err != nil {
		return nil, fmt.Errorf("loading telemetry config: %w", err)
	}

	tgCfg, err := loadTelegramConfig()
	if err != nil {
		return nil, fmt.Errorf("loading telegram config: %w", err)
	}

	shopCfg, err := loadShopConfig()
	if err != nil {
		return nil, fmt.Errorf("loading shop config: %w", err)
	}

	return &Config{
		HTTP:      httpCfg,
		Database:  dbCfg,
		Kafka:     loadKafkaConfig(),
		Telemetry: telCfg,
		Service:   loadServiceConfig(),
		Telegram:  tgCfg,
		Shop:      shopCfg,
	}, nil
}

func loadHTTPConfig() (HTTPConfig, error) {
	port, err := getIntEnv("API_HTTP_PORT", defaultHTTPPort)
	if err != nil {
		return HTTPConfig{}, err
	}

	graceSeconds, err := getIntEnv("API_SHUTDOWN_GRACE_SECONDS", int(defaultShutdownGrace/time.Second))
	if err != nil {
		return HTTPConfig{}, err
	}

	return HTTPConfig{
		Port:          port,
		AdminToken:    os.Getenv("ADMIN_API_TOKEN"),
		ShutdownGrace: time.Duration(graceSeconds) * time.Second,
	}, nil
}

// LoadDatabase reads only the store settings, for tools that never talk to Telegram.
func LoadDatabase() (DatabaseConfig, error) {
	driver := strings.ToLower(getEnvOrDefault("STORE_DRIVER", DriverPostgres))
	if driver != DriverPostgres && driver != DriverMemory {
		return DatabaseConfig{}, fmt.Errorf("invalid STORE_DRIVER %q: want %s or %s", driver, DriverPostgres, DriverMemory)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		databaseURL = buildDatabaseURL()
	}

	return DatabaseConfig{
		Driver:         driver,
		URL:            databaseURL,
		AutoMigrate:    getBoolEnv("AUTO_MIGRATE", defaultAutoMigrate),
		MigrationsPath: getEnvOrDefault("MIGRATIONS_PATH", defaultMigrationsPath),
	}, nil
}

func loadKafkaConfig() KafkaConfig {
	var brokers []string
	if value, ok := os.LookupEnv("KAFKA_BROKERS"); ok && value != "" {
		for _, broker := range strings.Split(value, ",") {
			if broker = strings.TrimSpace(broker); broker != "" {
				brokers = append(brokers, broker)
			}
		}
	}

	return KafkaConfig{Brokers: brokers}
}

func loadTelemetryConfig() (TelemetryConfig, error) {
	sampleRate := defaultOTelSampleRate
	if value, ok := os.LookupEnv("OTEL_SAMPLE_RATE"); ok {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return TelemetryConfig{}, fmt.Errorf("invalid OTEL_SAMPLE_RATE: %w", err)
		}
		sampleRate = parsed
	}

	return TelemetryConfig{
		LogLevel:      getEnvOrDefault("LOG_LEVEL", defaultLogLevel),
		OTelEndpoint:  getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		EnableTracing: getBoolEnv("OTEL_ENABLE_TRACING", true),
		EnableMetrics: getBoolEnv("OTEL_ENABLE_METRICS", true),
		SampleRate:    sampleRate,
	}, nil
}

func loadServiceConfig() ServiceConfig {
	return ServiceConfig{
		Name:        getEnvOrDefault("SERVICE_NAME", defaultServiceName),
		Version:     getEnvOrDefault("SERVICE_VERSION", defaultServiceVersion),
		Environment: getEnvOrDefault("ENVIRONMENT", defaultEnvironment),
	}
}

func loadTelegramConfig() (TelegramConfig, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return TelegramConfig{}, ErrMissingToken
	}

	var channelID int64
	if value := os.Getenv("ADMIN_CHANNEL_ID"); value != "" {
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return TelegramConfig{}, fmt.Errorf("invalid ADMIN_CHANNEL_ID: %w", err)
		}
		channelID = parsed
	}

	pollTimeout, err := getIntEnv("TELEGRAM_POLL_TIMEOUT", defaultPollTimeout)
	if err != nil {
		return TelegramConfig{}, err
	}

	return TelegramConfig{
		Token:          token,
		AdminChannelID: channelID,
		PollTimeout:    pollTimeout,
		Debug:          getBoolEnv("TELEGRAM_DEBUG", false),
	}, nil
}

func loadShopConfig() (ShopConfig, error) {
	perPage, err := getIntEnv("PRODUCTS_PER_PAGE", defaultProductsPerPage)
	if err != nil {
		return ShopConfig{}, err
	}
	if perPage < 1 {
		return ShopConfig{}, fmt.Errorf("invalid PRODUCTS_PER_PAGE: must be positive, got %d", perPage)
	}

	recent, err := getIntEnv("RECENT_ORDERS_LIMIT", defaultRecentOrdersLimit)
	if err != nil {
		return ShopConfig{}, err
	}

	maxCustomers, err := getIntEnv("MAX_CONCURRENT_CUSTOMERS", defaultMaxConcurrentCustomers)
	if err != nil {
		return ShopConfig{}, err
	}
	if maxCustomers < 1 {
		return ShopConfig{}, fmt.Errorf("invalid MAX_CONCURRENT_CUSTOMERS: must be positive, got %d", maxCustomers)
	}

	idleMinutes, err := getIntEnv("SESSION_IDLE_MINUTES", defaultSessionIdleMinutes)
	if err != nil {
		return ShopConfig{}, err
	}
	if idleMinutes < 1 {
		return ShopConfig{}, fmt.Errorf("invalid SESSION_IDLE_MINUTES: must be positive, got %d", idleMinutes)
	}

	return ShopConfig{
		PaymentDetails:         getEnvOrDefault("PAYMENT_DETAILS", defaultPaymentDetails),
		AdminPanelURL:          getEnvOrDefault("ADMIN_PANEL_URL", defaultAdminPanelURL),
		ProductsPerPage:        perPage,
		RecentOrdersLimit:      recent,
		MaxConcurrentCustomers: int64(maxCustomers),
		SessionIdleTimeout:     time.Duration(idleMinutes) * time.Minute,
	}, nil
}

func buildDatabaseURL() string {
	host := getEnvOrDefault("DB_HOST", "localhost")
	port := getEnvOrDefault("DB_PORT", "5432")
	user := getEnvOrDefault("DB_USER", "postgres")
	password := getEnvOrDefault("DB_PASSWORD", "postgres")
	dbName := getEnvOrDefault("DB_NAME", "orderbot")
	sslMode := getEnvOrDefault("DB_SSLMODE", "disable")

	maxConns := getEnvOrDefault("DB_MAX_CONNS", "25")
	minConns := getEnvOrDefault("DB_MIN_CONNS", "5")
	maxLifetime := getEnvOrDefault("DB_MAX_CONN_LIFETIME", "5m")

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&pool_max_conns=%s&pool_min_conns=%s&pool_max_conn_lifetime=%s",
		user, password, host, port, dbName, sslMode, maxConns, minConns, maxLifetime,
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		return value == "true"
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
