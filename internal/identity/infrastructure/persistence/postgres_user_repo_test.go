package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/quadra/internal/identity/domain"
	"github.com/felixgeelhaar/quadra/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/quadra/internal/shared/infrastructure/database/dbtest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertPostgresTask(t *testing.T, conn database.Connection, owner uuid.UUID) {
	t.Helper()
	_, err := conn.Exec(context.Background(), `
		INSERT INTO tasks (id, owner_id, title, quadrant, created_at, updated_at)
		VALUES ($1, $2, 'task', 'Q4', $3, $3)`,
		uuid.New(), owner, now)
	require.NoError(t, err)
}

func TestPostgresUserRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgresUserRepository(dbtest.NewPostgres(t))

	user := newUser(t, "Ada@Example.com", domain.RoleAdmin)
	require.NoError(t, repo.Save(ctx, user))

	t.Run("by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, user.ID())
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", found.Email().String())
		assert.Equal(t, domain.RoleAdmin, found.Role())
		assert.True(t, found.CreatedAt().Equal(now))
	})

	t.Run("by email", func(t *testing.T) {
		found, err := repo.FindByEmail(ctx, user.Email())
		require.NoError(t, err)
		assert.Equal(t, user.ID(), found.ID())
	})

	t.Run("missing", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestPostgresUserRepository_SaveUpdatesRole(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgresUserRepository(dbtest.NewPostgres(t))

	user := newUser(t, "bob@example.com", domain.RoleMember)
	require.NoError(t, repo.Save(ctx, user))

	user.ChangeRole(domain.RoleAdmin, now.Add(time.Hour))
	require.NoError(t, repo.Save(ctx, user))

	found, err := repo.FindByID(ctx, user.ID())
	require.NoError(t, err)
	assert.True(t, found.Role().IsAdmin())
	assert.True(t, found.UpdatedAt().Equal(now.Add(time.Hour)))
}

func TestPostgresUserRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgresUserRepository(dbtest.NewPostgres(t))

	require.NoError(t, repo.Save(ctx, newUser(t, "same@example.com", domain.RoleMember)))
	assert.Error(t, repo.Save(ctx, newUser(t, "same@example.com", domain.RoleMember)))
}

func TestPostgresUserRepository_ListWithTaskCounts(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.NewPostgres(t)
	repo := NewPostgresUserRepository(conn)

	busy := newUser(t, "busy@example.com", domain.RoleMember)
	idle := newUser(t, "idle@example.com", domain.RoleAdmin)
	require.NoError(t, repo.Save(ctx, busy))
	require.NoError(t, repo.Save(ctx, idle))
	insertPostgresTask(t, conn, busy.ID())
	insertPostgresTask(t, conn, busy.ID())

	summaries, err := repo.ListWithTaskCounts(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, busy.ID(), summaries[0].User.ID())
	assert.Equal(t, 2, summaries[0].TaskCount)
	assert.Equal(t, idle.ID(), summaries[1].User.ID())
	assert.Zero(t, summaries[1].TaskCount)
}

func TestPostgresUserRepository_JoinsTransaction(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.NewPostgres(t)
	repo := NewPostgresUserRepository(conn)
	uow := database.NewUnitOfWork(conn)

	user := newUser(t, "tx@example.com", domain.RoleMember)
	txCtx, err := uow.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.Save(txCtx, user))
	require.NoError(t, uow.Rollback(txCtx))

	_, err = repo.FindByID(ctx, user.ID())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
