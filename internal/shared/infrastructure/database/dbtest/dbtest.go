// Package dbtest opens migrated databases for repository tests.
package dbtest

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/quadra/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/quadra/internal/shared/infrastructure/database/postgres"
	"github.com/felixgeelhaar/quadra/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/quadra/internal/shared/infrastructure/migrations"
)

// PostgresURLEnv names the variable holding the Postgres test database URL.
const PostgresURLEnv = "TEST_DATABASE_URL"

// NewSQLite returns a connection to a fresh, migrated database file under
// t.TempDir. It is closed when the test ends.
func NewSQLite(t testing.TB) database.Connection {
	t.Helper()

	ctx := context.Background()
	conn, err := sqlite.NewConnection(ctx, database.Config{
		SQLitePath: filepath.Join(t.TempDir(), "quadra.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, migrations.Run(ctx, conn))
	return conn
}

// NewPostgres returns a connection whose search_path is a fresh, migrated
// schema in the database named by TEST_DATABASE_URL. The test is skipped when
// the variable is unset. The schema is dropped when the test ends.
func NewPostgres(t testing.TB) database.Connection {
	t.Helper()

	dbURL := os.Getenv(PostgresURLEnv)
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	admin, err := postgres.NewConnection(ctx, database.Config{URL: dbURL, MaxConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = admin.Close() })

	schema := "quadra_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	quoted := pgx.Identifier{schema}.Sanitize()
	_, err = admin.Exec(ctx, "CREATE SCHEMA "+quoted)
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = admin.Exec(context.Background(), "DROP SCHEMA "+quoted+" CASCADE") })

	conn, err := postgres.NewConnection(ctx, database.Config{URL: withSearchPath(dbURL, schema)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, migrations.Run(ctx, conn))
	return conn
}

// withSearchPath adds a search_path runtime parameter to a URL or a
// keyword/value connection string.
func withSearchPath(dbURL, schema string) string {
	u, err := url.Parse(dbURL)
	if err != nil || u.Scheme == "" {
		return dbURL + " search_path=" + schema
	}
	q := u.Query()
	q.Set("search_path", schema)
	u.RawQuery = q.Encode()
	return u.String()
}
