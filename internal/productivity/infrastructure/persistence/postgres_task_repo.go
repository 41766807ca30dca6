package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/quadra/internal/productivity/domain/task"
	sharedDomain "github.com/felixgeelhaar/quadra/internal/shared/domain"
	"github.com/felixgeelhaar/quadra/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// PostgresTaskRepository implements task.Repository using PostgreSQL.
type PostgresTaskRepository struct {
	conn database.Connection
}

// NewPostgresTaskRepository creates a new PostgreSQL task repository.
func NewPostgresTaskRepository(conn database.Connection) *PostgresTaskRepository {
	return &PostgresTaskRepository{conn: conn}
}

// FindOpen returns every open task, oldest first.
func (r *PostgresTaskRepository) FindOpen(ctx context.Context) ([]*task.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE completed = FALSE
		ORDER BY created_at, id
	`
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return scanPostgresTasks(rows)
}

// FindByID retrieves a task by its ID.
func (r *PostgresTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	row := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanPostgresTask(row)
	if database.IsNoRows(err) {
		return nil, task.ErrTaskNotFound
	}
	return t, err
}

// FindByScope lists the tasks visible under scope that match filter.
func (r *PostgresTaskRepository) FindByScope(ctx context.Context, scope task.Scope, filter task.Filter) ([]*task.Task, error) {
	query, args := postgresDialect.scopedQuery(scope, filter)
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanPostgresTasks(rows)
}

// ApplyQuadrantUpdates writes the staged quadrants in one transaction. Rows
// completed since they were read are left alone.
func (r *PostgresTaskRepository) ApplyQuadrantUpdates(ctx context.Context, updates []task.QuadrantUpdate) (int, error) {
	query := `
		UPDATE tasks SET quadrant = $2, updated_at = $3
		WHERE id = $1 AND completed = FALSE AND quadrant <> $2
	`

	changed := 0
	err := inTransaction(ctx, r.conn, func(txCtx context.Context) error {
		execer := database.ExecutorFromContext(txCtx, r.conn)
		for _, u := range updates {
			result, err := execer.Exec(txCtx, query, u.ID, u.Quadrant.String(), u.UpdatedAt.UTC())
			if err != nil {
				return fmt.Errorf("update quadrant of %s: %w", u.ID, err)
			}
			n, err := result.RowsAffected()
			if err != nil {
				return err
			}
			changed += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return changed, nil
}

// Insert stores a new task.
func (r *PostgresTaskRepository) Insert(ctx context.Context, t *task.Task) error {
	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, query,
		t.ID(),
		t.OwnerID(),
		t.Title(),
		t.Description(),
		t.IsImportant(),
		t.Deadline(),
		t.Quadrant().String(),
		t.IsCompleted(),
		t.CompletedAt(),
		t.CreatedAt(),
		t.UpdatedAt(),
	)
	return err
}

// Update overwrites the mutable columns of an existing task.
func (r *PostgresTaskRepository) Update(ctx context.Context, t *task.Task) error {
	query := `
		UPDATE tasks SET
			title = $2, description = $3, is_important = $4, deadline_at = $5,
			quadrant = $6, completed = $7, completed_at = $8, updated_at = $9
		WHERE id = $1
	`
	result, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, query,
		t.ID(),
		t.Title(),
		t.Description(),
		t.IsImportant(),
		t.Deadline(),
		t.Quadrant().String(),
		t.IsCompleted(),
		t.CompletedAt(),
		t.UpdatedAt(),
	)
	return requireRow(result, err)
}

// Delete removes a task.
func (r *PostgresTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	return requireRow(result, err)
}

func scanPostgresTasks(rows database.Rows) ([]*task.Task, error) {
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		t, err := scanPostgresTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func scanPostgresTask(row database.Row) (*task.Task, error) {
	var (
		id, ownerID             uuid.UUID
		title, description      string
		quadrant                string
		important, completed    bool
		deadlineAt, completedAt *time.Time
		createdAt, updatedAt    time.Time
	)
	if err := row.Scan(&id, &ownerID, &title, &description, &important, &deadlineAt,
		&quadrant, &completed, &completedAt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	q, err := task.ParseQuadrant(quadrant)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", id, err)
	}

	return task.Rehydrate(sharedDomain.RehydrateBaseEntity(id, createdAt.UTC(), updatedAt.UTC()), task.State{
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Important:   important,
		Deadline:    deadlineAt,
		Quadrant:    q,
		Completed:   completed,
		CompletedAt: completedAt,
	}), nil
}
