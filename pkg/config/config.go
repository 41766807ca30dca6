package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv   string
	LogLevel string
	APIAddr  string

	// Local user, used by the CLI
	UserID    string
	UserEmail string
	UserRole  string

	// Database
	LocalMode      bool
	DatabaseURL    string
	DatabaseDriver string
	SQLitePath     string

	// Redis
	RedisURL string

	// RabbitMQ
	RabbitMQURL string

	// Outbox
	OutboxPollInterval     time.Duration
	OutboxBatchSize        int
	OutboxMaxRetries       int
	OutboxStatsInterval    time.Duration
	OutboxRetentionDays    int
	OutboxCleanupInterval  time.Duration
	OutboxProcessorEnabled bool

	// Publisher circuit breaker
	PublisherBreakerMaxFailures uint32
	PublisherBreakerTimeout     time.Duration

	// Quadrant refresh schedule
	RefreshHour     int
	RefreshMinute   int
	RefreshTimezone string

	// Worker
	WorkerHealthAddr string
}

// Load loads configuration from environment variables. A .env file in the
// working directory is read first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	localMode := getBoolEnv("QUADRA_LOCAL", databaseURL == "")

	driver := getEnv("DATABASE_DRIVER", "")
	if driver == "" {
		if localMode {
			driver = "sqlite"
		} else {
			driver = "postgres"
		}
	}

	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		APIAddr:  getEnv("API_ADDR", "127.0.0.1:8080"),

		UserID:    getEnv("QUADRA_USER_ID", "00000000-0000-0000-0000-000000000001"),
		UserEmail: getEnv("QUADRA_USER_EMAIL", "local@quadra.dev"),
		UserRole:  strings.ToLower(getEnv("QUADRA_USER_ROLE", "member")),

		LocalMode:      localMode,
		DatabaseURL:    databaseURL,
		DatabaseDriver: driver,
		SQLitePath:     getEnv("SQLITE_PATH", ""),

		RedisURL:    getEnv("REDIS_URL", ""),
		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		OutboxPollInterval:     getDurationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond),
		OutboxBatchSize:        getIntEnv("OUTBOX_BATCH_SIZE", 100),
		OutboxMaxRetries:       getIntEnv("OUTBOX_MAX_RETRIES", 5),
		OutboxStatsInterval:    getDurationEnv("OUTBOX_STATS_INTERVAL", 30*time.Second),
		OutboxRetentionDays:    getIntEnv("OUTBOX_RETENTION_DAYS", 14),
		OutboxCleanupInterval:  getDurationEnv("OUTBOX_CLEANUP_INTERVAL", 24*time.Hour),
		OutboxProcessorEnabled: getBoolEnv("OUTBOX_PROCESSOR_ENABLED", true),

		PublisherBreakerMaxFailures: uint32(getIntEnv("PUBLISHER_BREAKER_MAX_FAILURES", 5)),
		PublisherBreakerTimeout:     getDurationEnv("PUBLISHER_BREAKER_TIMEOUT", 30*time.Second),

		RefreshHour:     getIntEnv("REFRESH_HOUR", 9),
		RefreshMinute:   getIntEnv("REFRESH_MINUTE", 0),
		RefreshTimezone: getEnv("REFRESH_TIMEZONE", "Local"),

		WorkerHealthAddr: getEnv("WORKER_HEALTH_ADDR", "0.0.0.0:8081"),
	}

	return cfg, nil
}

// Validate rejects settings the services cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.RefreshHour < 0 || c.RefreshHour > 23 {
		errs = append(errs, fmt.Errorf("REFRESH_HOUR must be between 0 and 23, got %d", c.RefreshHour))
	}
	if c.RefreshMinute < 0 || c.RefreshMinute > 59 {
		errs = append(errs, fmt.Errorf("REFRESH_MINUTE must be between 0 and 59, got %d", c.RefreshMinute))
	}
	if _, err := c.RefreshLocation(); err != nil {
		errs = append(errs, fmt.Errorf("REFRESH_TIMEZONE: %w", err))
	}
	switch c.UserRole {
	case "admin", "member":
	default:
		errs = append(errs, fmt.Errorf("QUADRA_USER_ROLE must be admin or member, got %q", c.UserRole))
	}
	switch c.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER must be postgres or sqlite, got %q", c.DatabaseDriver))
	}
	if c.DatabaseDriver == "postgres" && c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
	}
	return errors.Join(errs...)
}

// RefreshLocation resolves the timezone of the daily refresh.
func (c *Config) RefreshLocation() (*time.Location, error) {
	if c.RefreshTimezone == "" || c.RefreshTimezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.RefreshTimezone)
}

// IsLocalMode reports whether the CLI runs against a local SQLite file.
func (c *Config) IsLocalMode() bool {
	return c.LocalMode
}

// IsSQLite reports whether the SQLite driver is selected.
func (c *Config) IsSQLite() bool {
	return c.DatabaseDriver == "sqlite"
}

// IsPostgres reports whether the Postgres driver is selected.
func (c *Config) IsPostgres() bool {
	return c.DatabaseDriver == "postgres"
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
