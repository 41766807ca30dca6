package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Config selects and configures a backend.
type Config struct {
	// Driver is "postgres", "sqlite", or empty to detect from URL.
	Driver Driver
	// URL is the Postgres connection string.
	URL string
	// SQLitePath is the database file for SQLite. Defaults to ~/.quadra/data.db.
	SQLitePath string
	// MaxConns caps the Postgres pool.
	MaxConns int
}

// ConnectFunc opens a connection for one backend.
type ConnectFunc func(ctx context.Context, cfg Config) (Connection, error)

var connectors = map[Driver]ConnectFunc{}

// Register installs the connector for a backend. Backend packages call it
// from init, so importing them for side effects enables the driver.
func Register(driver Driver, fn ConnectFunc) {
	connectors[driver] = fn
}

// NewConnection opens a connection for cfg.
func NewConnection(ctx context.Context, cfg Config) (Connection, error) {
	driver := cfg.Driver
	if driver == "" || driver == "auto" {
		driver = DetectDriver(cfg.URL)
	}
	if driver == DriverSQLite && cfg.SQLitePath == "" && cfg.URL != "" {
		cfg.SQLitePath = SQLitePathFromURL(cfg.URL)
	}

	connect, ok := connectors[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
	return connect(ctx, cfg)
}

// DefaultSQLitePath returns ~/.quadra/data.db.
func DefaultSQLitePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".quadra", "data.db")
}

// EnsureDirectory creates the parent directory of path.
func EnsureDirectory(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
