package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/quadra/internal/identity/domain"
	sharedDomain "github.com/felixgeelhaar/quadra/internal/shared/domain"
	"github.com/felixgeelhaar/quadra/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// PostgresUserRepository handles persistence for users using PostgreSQL.
type PostgresUserRepository struct {
	conn database.Connection
}

// NewPostgresUserRepository creates a new PostgresUserRepository.
func NewPostgresUserRepository(conn database.Connection) *PostgresUserRepository {
	return &PostgresUserRepository{conn: conn}
}

// Save inserts the user, or updates its role if the ID exists.
func (r *PostgresUserRepository) Save(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			role = EXCLUDED.role,
			updated_at = EXCLUDED.updated_at
	`

	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, query,
		user.ID(),
		user.Email().String(),
		user.Role().String(),
		user.CreatedAt(),
		user.UpdatedAt(),
	)
	return err
}

// FindByID retrieves a user by their ID.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx,
		`SELECT id, email, role, created_at, updated_at FROM users WHERE id = $1`, id)
	return scanPostgresUser(row)
}

// FindByEmail retrieves a user by their email address.
func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email domain.Email) (*domain.User, error) {
	row := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx,
		`SELECT id, email, role, created_at, updated_at FROM users WHERE email = $1`, email.String())
	return scanPostgresUser(row)
}

// ListWithTaskCounts returns every user with the number of tasks they own.
func (r *PostgresUserRepository) ListWithTaskCounts(ctx context.Context) ([]domain.UserSummary, error) {
	query := `
		SELECT u.id, u.email, u.role, u.created_at, u.updated_at, COUNT(t.id)
		FROM users u
		LEFT JOIN tasks t ON t.owner_id = u.id
		GROUP BY u.id
		ORDER BY u.email
	`

	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []domain.UserSummary
	for rows.Next() {
		var (
			id                   uuid.UUID
			email, role          string
			createdAt, updatedAt time.Time
			count                int64
		)
		if err := rows.Scan(&id, &email, &role, &createdAt, &updatedAt, &count); err != nil {
			return nil, err
		}
		user, err := rehydrate(id, email, role, createdAt, updatedAt)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, domain.UserSummary{User: user, TaskCount: int(count)})
	}
	return summaries, rows.Err()
}

func scanPostgresUser(row database.Row) (*domain.User, error) {
	var (
		id                   uuid.UUID
		email, role          string
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&id, &email, &role, &createdAt, &updatedAt); err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return rehydrate(id, email, role, createdAt, updatedAt)
}

// rehydrate rebuilds a user from column values shared by both backends.
func rehydrate(id uuid.UUID, email, role string, createdAt, updatedAt time.Time) (*domain.User, error) {
	e, err := domain.NewEmail(email)
	if err != nil {
		return nil, fmt.Errorf("stored user %s: %w", id, err)
	}
	rl, err := domain.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("stored user %s: %w", id, err)
	}
	entity := sharedDomain.RehydrateBaseEntity(id, createdAt.UTC(), updatedAt.UTC())
	return domain.RehydrateUser(entity, e, rl), nil
}
