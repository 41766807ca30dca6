package migrations

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/quadra/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/quadra/internal/shared/infrastructure/database/sqlite"
)

func TestRun_SQLite(t *testing.T) {
	ctx := context.Background()
	conn, err := sqlite.NewConnection(ctx, database.Config{
		SQLitePath: filepath.Join(t.TempDir(), "migrate.db"),
	})
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, Run(ctx, conn))
	// A second run finds everything applied.
	require.NoError(t, Run(ctx, conn))

	var count int
	require.NoError(t, conn.QueryRow(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&count))
	assert.Equal(t, 3, count)

	for _, table := range []string{"users", "tasks", "outbox"} {
		var name string
		err := conn.QueryRow(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
	}
}

func TestUpFiles_Sorted(t *testing.T) {
	for _, driver := range []database.Driver{database.DriverSQLite, database.DriverPostgres} {
		names, err := upFiles(driver)
		require.NoError(t, err)
		assert.Equal(t, []string{"001_users.up.sql", "002_tasks.up.sql", "003_outbox.up.sql"}, names)
	}
}
