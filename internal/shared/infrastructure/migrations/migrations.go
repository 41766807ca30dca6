// Package migrations applies the embedded schema for each backend.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/felixgeelhaar/quadra/internal/shared/infrastructure/database"
)

//go:embed sqlite/*.sql postgres/*.sql
var files embed.FS

const bookkeeping = `CREATE TABLE IF NOT EXISTS schema_migrations (
    version    TEXT PRIMARY KEY,
    applied_at TEXT NOT NULL
)`

// Run applies every pending .up.sql file for the connection's driver, in
// file name order. Each file runs in its own transaction together with its
// schema_migrations row.
func Run(ctx context.Context, conn database.Connection) error {
	driver := conn.Driver()
	names, err := upFiles(driver)
	if err != nil {
		return err
	}

	if _, err := conn.Exec(ctx, bookkeeping); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	applied, err := appliedVersions(ctx, conn)
	if err != nil {
		return err
	}

	for _, name := range names {
		version := strings.TrimSuffix(name, ".up.sql")
		if applied[version] {
			continue
		}
		body, err := files.ReadFile(driver.String() + "/" + name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		if err := apply(ctx, conn, version, string(body)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", name, err)
		}
	}
	return nil
}

func upFiles(driver database.Driver) ([]string, error) {
	entries, err := fs.ReadDir(files, driver.String())
	if err != nil {
		return nil, fmt.Errorf("no migrations for driver %s: %w", driver, err)
	}
	var names []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func appliedVersions(ctx context.Context, conn database.Connection) (map[string]bool, error) {
	rows, err := conn.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

func apply(ctx context.Context, conn database.Connection, version, body string) error {
	tx, err := conn.BeginTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, body); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	insert := `INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`
	if conn.Driver() == database.DriverPostgres {
		insert = `INSERT INTO schema_migrations (version, applied_at) VALUES ($1, $2)`
	}
	if _, err := tx.Exec(ctx, insert, version, time.Now().UTC().Format(time.RFC3339)); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}
