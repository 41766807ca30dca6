package persistence

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/quadra/internal/identity/domain"
	"github.com/felixgeelhaar/quadra/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/quadra/internal/shared/infrastructure/database/sqlite"
	"github.com/google/uuid"
)

// SQLiteUserRepository handles persistence for users using SQLite.
type SQLiteUserRepository struct {
	conn database.Connection
}

// NewSQLiteUserRepository creates a new SQLiteUserRepository.
func NewSQLiteUserRepository(conn database.Connection) *SQLiteUserRepository {
	return &SQLiteUserRepository{conn: conn}
}

// Save inserts the user, or updates its role if the ID exists.
func (r *SQLiteUserRepository) Save(ctx context.Context, user *domain.User) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `
		INSERT INTO users (id, email, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			role = excluded.role,
			updated_at = excluded.updated_at`,
		user.ID().String(),
		user.Email().String(),
		user.Role().String(),
		sqlite.FormatTime(user.CreatedAt()),
		sqlite.FormatTime(user.UpdatedAt()),
	)
	return err
}

// FindByID retrieves a user by their ID.
func (r *SQLiteUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx,
		`SELECT id, email, role, created_at, updated_at FROM users WHERE id = ?`, id.String())
	return r.scanUser(row)
}

// FindByEmail retrieves a user by their email address.
func (r *SQLiteUserRepository) FindByEmail(ctx context.Context, email domain.Email) (*domain.User, error) {
	row := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx,
		`SELECT id, email, role, created_at, updated_at FROM users WHERE email = ?`, email.String())
	return r.scanUser(row)
}

// ListWithTaskCounts returns every user with the number of tasks they own.
func (r *SQLiteUserRepository) ListWithTaskCounts(ctx context.Context) ([]domain.UserSummary, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, `
		SELECT u.id, u.email, u.role, u.created_at, u.updated_at, COUNT(t.id)
		FROM users u
		LEFT JOIN tasks t ON t.owner_id = u.id
		GROUP BY u.id, u.email, u.role, u.created_at, u.updated_at
		ORDER BY u.email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []domain.UserSummary
	for rows.Next() {
		var (
			rec   userRecord
			count int
		)
		if err := rows.Scan(&rec.id, &rec.email, &rec.role, &rec.createdAt, &rec.updatedAt, &count); err != nil {
			return nil, err
		}
		user, err := rec.toDomain()
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, domain.UserSummary{User: user, TaskCount: count})
	}
	return summaries, rows.Err()
}

func (r *SQLiteUserRepository) scanUser(row database.Row) (*domain.User, error) {
	var rec userRecord
	if err := row.Scan(&rec.id, &rec.email, &rec.role, &rec.createdAt, &rec.updatedAt); err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return rec.toDomain()
}

// userRecord is a users row as SQLite returns it.
type userRecord struct {
	id, email, role      string
	createdAt, updatedAt string
}

func (rec userRecord) toDomain() (*domain.User, error) {
	id, err := uuid.Parse(rec.id)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", rec.id, err)
	}
	createdAt, err := sqlite.ParseTime(rec.createdAt)
	if err != nil {
		return nil, err
	}
	updatedAt, err := sqlite.ParseTime(rec.updatedAt)
	if err != nil {
		return nil, err
	}
	return rehydrate(id, rec.email, rec.role, createdAt, updatedAt)
}
