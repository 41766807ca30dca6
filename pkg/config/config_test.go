package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envVars = []string{
	"APP_ENV", "LOG_LEVEL", "API_ADDR",
	"QUADRA_USER_ID", "QUADRA_USER_EMAIL", "QUADRA_USER_ROLE",
	"QUADRA_LOCAL", "DATABASE_URL", "DATABASE_DRIVER", "SQLITE_PATH",
	"REDIS_URL", "RABBITMQ_URL",
	"OUTBOX_POLL_INTERVAL", "OUTBOX_BATCH_SIZE", "OUTBOX_MAX_RETRIES",
	"OUTBOX_STATS_INTERVAL", "OUTBOX_RETENTION_DAYS", "OUTBOX_CLEANUP_INTERVAL",
	"OUTBOX_PROCESSOR_ENABLED",
	"PUBLISHER_BREAKER_MAX_FAILURES", "PUBLISHER_BREAKER_TIMEOUT",
	"REFRESH_HOUR", "REFRESH_MINUTE", "REFRESH_TIMEZONE",
	"WORKER_HEALTH_ADDR",
}

// clearEnv blanks every variable Load reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range envVars {
		t.Setenv(v, "")
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "127.0.0.1:8080", cfg.APIAddr)
	assert.Equal(t, "00000000-0000-0000-0000-000000000001", cfg.UserID)
	assert.Equal(t, "member", cfg.UserRole)

	// No DATABASE_URL means local mode on SQLite.
	assert.True(t, cfg.LocalMode)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)

	assert.Equal(t, 500*time.Millisecond, cfg.OutboxPollInterval)
	assert.Equal(t, 100, cfg.OutboxBatchSize)
	assert.Equal(t, 5, cfg.OutboxMaxRetries)
	assert.Equal(t, 14, cfg.OutboxRetentionDays)
	assert.True(t, cfg.OutboxProcessorEnabled)

	assert.Equal(t, uint32(5), cfg.PublisherBreakerMaxFailures)
	assert.Equal(t, 30*time.Second, cfg.PublisherBreakerTimeout)

	assert.Equal(t, 9, cfg.RefreshHour)
	assert.Equal(t, 0, cfg.RefreshMinute)
	assert.Equal(t, "Local", cfg.RefreshTimezone)
	assert.Equal(t, "0.0.0.0:8081", cfg.WorkerHealthAddr)

	assert.NoError(t, cfg.Validate())
}

func TestLoad_WithCustomEnvVars(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("QUADRA_USER_ROLE", "ADMIN")
	t.Setenv("OUTBOX_BATCH_SIZE", "200")
	t.Setenv("OUTBOX_PROCESSOR_ENABLED", "false")
	t.Setenv("REFRESH_HOUR", "6")
	t.Setenv("REFRESH_MINUTE", "30")
	t.Setenv("REFRESH_TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "admin", cfg.UserRole)
	assert.Equal(t, 200, cfg.OutboxBatchSize)
	assert.False(t, cfg.OutboxProcessorEnabled)
	assert.Equal(t, 6, cfg.RefreshHour)
	assert.Equal(t, 30, cfg.RefreshMinute)

	loc, err := cfg.RefreshLocation()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoad_DatabaseSelection(t *testing.T) {
	tests := []struct {
		name       string
		env        map[string]string
		wantLocal  bool
		wantDriver string
	}{
		{
			name:       "database url selects postgres",
			env:        map[string]string{"DATABASE_URL": "postgres://u:p@localhost:5432/quadra"},
			wantLocal:  false,
			wantDriver: "postgres",
		},
		{
			name: "explicit local mode wins",
			env: map[string]string{
				"DATABASE_URL": "postgres://u:p@localhost:5432/quadra",
				"QUADRA_LOCAL": "true",
			},
			wantLocal:  true,
			wantDriver: "sqlite",
		},
		{
			name:       "explicit driver",
			env:        map[string]string{"DATABASE_DRIVER": "sqlite", "DATABASE_URL": "sqlite:///tmp/q.db"},
			wantLocal:  false,
			wantDriver: "sqlite",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, tt.wantLocal, cfg.IsLocalMode())
			assert.Equal(t, tt.wantDriver, cfg.DatabaseDriver)
			assert.Equal(t, tt.wantDriver == "sqlite", cfg.IsSQLite())
			assert.Equal(t, tt.wantDriver == "postgres", cfg.IsPostgres())
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			UserRole:        "member",
			DatabaseDriver:  "sqlite",
			RefreshHour:     9,
			RefreshTimezone: "Local",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"hour too large", func(c *Config) { c.RefreshHour = 24 }, "REFRESH_HOUR"},
		{"negative minute", func(c *Config) { c.RefreshMinute = -1 }, "REFRESH_MINUTE"},
		{"unknown timezone", func(c *Config) { c.RefreshTimezone = "Mars/Olympus" }, "REFRESH_TIMEZONE"},
		{"unknown role", func(c *Config) { c.UserRole = "owner" }, "QUADRA_USER_ROLE"},
		{"unknown driver", func(c *Config) { c.DatabaseDriver = "mysql" }, "DATABASE_DRIVER"},
		{"postgres without url", func(c *Config) { c.DatabaseDriver = "postgres" }, "DATABASE_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		appEnv   string
		expected bool
	}{
		{"development", true},
		{"production", false},
		{"staging", false},
	}

	for _, tt := range tests {
		t.Run(tt.appEnv, func(t *testing.T) {
			cfg := &Config{AppEnv: tt.appEnv}
			assert.Equal(t, tt.expected, cfg.IsDevelopment())
		})
	}
}

func TestGetIntEnv(t *testing.T) {
	assert.Equal(t, 42, getIntEnv("QUADRA_TEST_MISSING_INT", 42))

	t.Setenv("QUADRA_TEST_INT", "100")
	assert.Equal(t, 100, getIntEnv("QUADRA_TEST_INT", 42))

	t.Setenv("QUADRA_TEST_INT", "not-a-number")
	assert.Equal(t, 42, getIntEnv("QUADRA_TEST_INT", 42))
}

func TestGetDurationEnv(t *testing.T) {
	assert.Equal(t, 5*time.Second, getDurationEnv("QUADRA_TEST_MISSING_DUR", 5*time.Second))

	t.Setenv("QUADRA_TEST_DUR", "10m")
	assert.Equal(t, 10*time.Minute, getDurationEnv("QUADRA_TEST_DUR", 5*time.Second))

	t.Setenv("QUADRA_TEST_DUR", "soon")
	assert.Equal(t, 5*time.Second, getDurationEnv("QUADRA_TEST_DUR", 5*time.Second))
}

func TestGetBoolEnv(t *testing.T) {
	assert.True(t, getBoolEnv("QUADRA_TEST_MISSING_BOOL", true))

	for _, v := range []string{"true", "1", "TRUE"} {
		t.Setenv("QUADRA_TEST_BOOL", v)
		assert.True(t, getBoolEnv("QUADRA_TEST_BOOL", false), v)
	}
	for _, v := range []string{"false", "0", "False"} {
		t.Setenv("QUADRA_TEST_BOOL", v)
		assert.False(t, getBoolEnv("QUADRA_TEST_BOOL", true), v)
	}

	t.Setenv("QUADRA_TEST_BOOL", "maybe")
	assert.True(t, getBoolEnv("QUADRA_TEST_BOOL", true))
}
