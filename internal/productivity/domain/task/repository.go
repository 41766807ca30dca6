package task

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrTaskNotFound is returned when no task has the given ID.
var ErrTaskNotFound = errors.New("task not found")

// Order selects the sort order of FindByScope.
type Order int

const (
	// OrderCreated sorts newest first.
	OrderCreated Order = iota
	// OrderDeadline sorts by deadline ascending, tasks without one last.
	OrderDeadline
)

// Filter narrows FindByScope. Nil fields are ignored.
type Filter struct {
	Quadrant  *Quadrant
	Completed *bool
	// DeadlineFrom and DeadlineTo bound the deadline, both inclusive.
	DeadlineFrom *time.Time
	DeadlineTo   *time.Time
	HasDeadline  *bool
	// Search matches title or description, case-insensitively.
	Search string
	Order  Order
}

// QuadrantUpdate is one staged reclassification.
type QuadrantUpdate struct {
	ID        uuid.UUID
	Quadrant  Quadrant
	UpdatedAt time.Time
}

// Repository persists tasks. Every method joins the transaction carried by
// ctx when there is one.
type Repository interface {
	// FindOpen returns every task with completed = false, regardless of owner.
	FindOpen(ctx context.Context) ([]*Task, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Task, error)
	FindByScope(ctx context.Context, scope Scope, filter Filter) ([]*Task, error)
	// ApplyQuadrantUpdates writes the staged quadrants of tasks that are
	// still open and returns the number of rows changed.
	ApplyQuadrantUpdates(ctx context.Context, updates []QuadrantUpdate) (int, error)
	Insert(ctx context.Context, t *Task) error
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id uuid.UUID) error
}
