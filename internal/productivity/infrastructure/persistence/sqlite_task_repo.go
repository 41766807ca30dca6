package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/felixgeelhaar/quadra/internal/productivity/domain/task"
	sharedDomain "github.com/felixgeelhaar/quadra/internal/shared/domain"
	"github.com/felixgeelhaar/quadra/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/quadra/internal/shared/infrastructure/database/sqlite"
	"github.com/google/uuid"
)

// SQLiteTaskRepository implements task.Repository using SQLite.
type SQLiteTaskRepository struct {
	conn database.Connection
}

// NewSQLiteTaskRepository creates a new SQLite task repository.
func NewSQLiteTaskRepository(conn database.Connection) *SQLiteTaskRepository {
	return &SQLiteTaskRepository{conn: conn}
}

// FindOpen returns every open task, oldest first.
func (r *SQLiteTaskRepository) FindOpen(ctx context.Context) ([]*task.Task, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE completed = 0 ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	return r.scanTasks(rows)
}

// FindByID retrieves a task by its ID.
func (r *SQLiteTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	row := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id.String())
	t, err := r.scanTask(row)
	if database.IsNoRows(err) {
		return nil, task.ErrTaskNotFound
	}
	return t, err
}

// FindByScope lists the tasks visible under scope that match filter.
func (r *SQLiteTaskRepository) FindByScope(ctx context.Context, scope task.Scope, filter task.Filter) ([]*task.Task, error) {
	query, args := sqliteDialect.scopedQuery(scope, filter)
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return r.scanTasks(rows)
}

// ApplyQuadrantUpdates writes the staged quadrants in one transaction. Rows
// completed since they were read are left alone.
func (r *SQLiteTaskRepository) ApplyQuadrantUpdates(ctx context.Context, updates []task.QuadrantUpdate) (int, error) {
	changed := 0
	err := inTransaction(ctx, r.conn, func(txCtx context.Context) error {
		execer := database.ExecutorFromContext(txCtx, r.conn)
		for _, u := range updates {
			result, err := execer.Exec(txCtx, `
				UPDATE tasks SET quadrant = ?, updated_at = ?
				WHERE id = ? AND completed = 0 AND quadrant <> ?`,
				u.Quadrant.String(), sqlite.FormatTime(u.UpdatedAt), u.ID.String(), u.Quadrant.String())
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
func (r *SQLiteTaskRepository) Insert(ctx context.Context, t *task.Task) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID().String(),
		t.OwnerID().String(),
		t.Title(),
		t.Description(),
		t.IsImportant(),
		sqlite.FormatNullTime(t.Deadline()),
		t.Quadrant().String(),
		t.IsCompleted(),
		sqlite.FormatNullTime(t.CompletedAt()),
		sqlite.FormatTime(t.CreatedAt()),
		sqlite.FormatTime(t.UpdatedAt()),
	)
	return err
}

// Update overwrites the mutable columns of an existing task.
func (r *SQLiteTaskRepository) Update(ctx context.Context, t *task.Task) error {
	result, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `
		UPDATE tasks SET
			title = ?, description = ?, is_important = ?, deadline_at = ?,
			quadrant = ?, completed = ?, completed_at = ?, updated_at = ?
		WHERE id = ?`,
		t.Title(),
		t.Description(),
		t.IsImportant(),
		sqlite.FormatNullTime(t.Deadline()),
		t.Quadrant().String(),
		t.IsCompleted(),
		sqlite.FormatNullTime(t.CompletedAt()),
		sqlite.FormatTime(t.UpdatedAt()),
		t.ID().String(),
	)
	return requireRow(result, err)
}

// Delete removes a task.
func (r *SQLiteTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `DELETE FROM tasks WHERE id = ?`, id.String())
	return requireRow(result, err)
}

func (r *SQLiteTaskRepository) scanTasks(rows database.Rows) ([]*task.Task, error) {
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		t, err := r.scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *SQLiteTaskRepository) scanTask(row database.Row) (*task.Task, error) {
	var (
		id, ownerID, title, description, quadrant string
		important, completed                      bool
		deadlineAt, completedAt                   sql.NullString
		createdAt, updatedAt                      string
	)
	if err := row.Scan(&id, &ownerID, &title, &description, &important, &deadlineAt,
		&quadrant, &completed, &completedAt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	taskID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid task id %q: %w", id, err)
	}
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return nil, fmt.Errorf("invalid owner id %q: %w", ownerID, err)
	}
	q, err := task.ParseQuadrant(quadrant)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", id, err)
	}
	created, err := sqlite.ParseTime(createdAt)
	if err != nil {
		return nil, err
	}
	updated, err := sqlite.ParseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	deadline, err := sqlite.ParseNullTime(deadlineAt)
	if err != nil {
		return nil, err
	}
	doneAt, err := sqlite.ParseNullTime(completedAt)
	if err != nil {
		return nil, err
	}

	return task.Rehydrate(sharedDomain.RehydrateBaseEntity(taskID, created, updated), task.State{
		OwnerID:     owner,
		Title:       title,
		Description: description,
		Important:   important,
		Deadline:    deadline,
		Quadrant:    q,
		Completed:   completed,
		CompletedAt: doneAt,
	}), nil
}

// requireRow maps an Exec that touched no row to ErrTaskNotFound.
func requireRow(result database.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return task.ErrTaskNotFound
	}
	return nil
}
