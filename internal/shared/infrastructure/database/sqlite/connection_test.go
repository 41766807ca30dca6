package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/quadra/internal/shared/infrastructure/database"
)

func openTestConnection(t *testing.T) database.Connection {
	t.Helper()
	conn, err := NewConnection(context.Background(), database.Config{
		SQLitePath: filepath.Join(t.TempDir(), "nested", "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestNewConnection(t *testing.T) {
	conn := openTestConnection(t)

	assert.NoError(t, conn.Ping(context.Background()))
	assert.Equal(t, database.DriverSQLite, conn.Driver())
}

func TestNewConnection_ViaFactory(t *testing.T) {
	conn, err := database.NewConnection(context.Background(), database.Config{
		URL: "sqlite://" + filepath.Join(t.TempDir(), "factory.db"),
	})
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, database.DriverSQLite, conn.Driver())
}

func TestDSN(t *testing.T) {
	assert.Equal(t,
		"a.db?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)",
		dsn("a.db"))
	assert.Contains(t, dsn("a.db?cache=shared"), "cache=shared&_pragma=")
}

func TestUnitOfWork_CommitAndRollback(t *testing.T) {
	ctx := context.Background()
	conn := openTestConnection(t)
	_, err := conn.Exec(ctx, `CREATE TABLE items (id TEXT PRIMARY KEY)`)
	require.NoError(t, err)

	uow := database.NewUnitOfWork(conn)

	txCtx, err := uow.Begin(ctx)
	require.NoError(t, err)
	_, err = database.ExecutorFromContext(txCtx, conn).Exec(txCtx, `INSERT INTO items (id) VALUES (?)`, "kept")
	require.NoError(t, err)
	require.NoError(t, uow.Commit(txCtx))

	txCtx, err = uow.Begin(ctx)
	require.NoError(t, err)
	_, err = database.ExecutorFromContext(txCtx, conn).Exec(txCtx, `INSERT INTO items (id) VALUES (?)`, "dropped")
	require.NoError(t, err)
	require.NoError(t, uow.Rollback(txCtx))

	var count int
	require.NoError(t, conn.QueryRow(ctx, `SELECT COUNT(*) FROM items`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestUnitOfWork_NestedJoinsOuter(t *testing.T) {
	ctx := context.Background()
	conn := openTestConnection(t)
	_, err := conn.Exec(ctx, `CREATE TABLE items (id TEXT PRIMARY KEY)`)
	require.NoError(t, err)

	uow := database.NewUnitOfWork(conn)
	outer, err := uow.Begin(ctx)
	require.NoError(t, err)

	inner, err := uow.Begin(outer)
	require.NoError(t, err)
	_, err = database.ExecutorFromContext(inner, conn).Exec(inner, `INSERT INTO items (id) VALUES (?)`, "a")
	require.NoError(t, err)

	// The inner commit does not end the outer transaction.
	require.NoError(t, uow.Commit(inner))
	require.NoError(t, uow.Rollback(outer))

	var count int
	require.NoError(t, conn.QueryRow(ctx, `SELECT COUNT(*) FROM items`).Scan(&count))
	assert.Equal(t, 0, count)
}

func TestUnitOfWork_CommitWithoutBegin(t *testing.T) {
	uow := database.NewUnitOfWork(openTestConnection(t))
	assert.Error(t, uow.Commit(context.Background()))
}
