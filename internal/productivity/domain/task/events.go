package task

import (
	"time"

	"github.com/felixgeelhaar/quadra/internal/shared/domain"
	"github.com/google/uuid"
)

const (
	AggregateType        = "Task"
	RefreshAggregateType = "QuadrantRefresh"

	RoutingKeyCreated   = "task.created"
	RoutingKeyUpdated   = "task.updated"
	RoutingKeyCompleted = "task.completed"
	RoutingKeyDeleted   = "task.deleted"
	RoutingKeyRefreshed = "quadrants.refreshed"
)

// TaskCreated is emitted when a task is created.
type TaskCreated struct {
	domain.BaseEvent
	OwnerID    uuid.UUID  `json:"owner_id"`
	Title      string     `json:"title"`
	Important  bool       `json:"is_important"`
	DeadlineAt *time.Time `json:"deadline_at,omitempty"`
	Quadrant   Quadrant   `json:"quadrant"`
}

// NewTaskCreated creates a TaskCreated event.
func NewTaskCreated(t *Task, at time.Time) *TaskCreated {
	return &TaskCreated{
		BaseEvent:  domain.NewBaseEvent(t.ID(), AggregateType, RoutingKeyCreated, at),
		OwnerID:    t.ownerID,
		Title:      t.title,
		Important:  t.important,
		DeadlineAt: t.deadline,
		Quadrant:   t.quadrant,
	}
}

// TaskUpdated is emitted when an update changed at least one field.
type TaskUpdated struct {
	domain.BaseEvent
	Fields    []string `json:"fields"`
	Quadrant  Quadrant `json:"quadrant"`
	Completed bool     `json:"completed"`
}

// NewTaskUpdated creates a TaskUpdated event.
func NewTaskUpdated(t *Task, fields []string, at time.Time) *TaskUpdated {
	return &TaskUpdated{
		BaseEvent: domain.NewBaseEvent(t.ID(), AggregateType, RoutingKeyUpdated, at),
		Fields:    fields,
		Quadrant:  t.quadrant,
		Completed: t.completed,
	}
}

// TaskCompleted is emitted when a task is marked complete.
type TaskCompleted struct {
	domain.BaseEvent
	Quadrant Quadrant `json:"quadrant"`
}

// NewTaskCompleted creates a TaskCompleted event.
func NewTaskCompleted(t *Task, at time.Time) *TaskCompleted {
	return &TaskCompleted{
		BaseEvent: domain.NewBaseEvent(t.ID(), AggregateType, RoutingKeyCompleted, at),
		Quadrant:  t.quadrant,
	}
}

// TaskDeleted is emitted when a task is removed.
type TaskDeleted struct {
	domain.BaseEvent
	OwnerID uuid.UUID `json:"owner_id"`
	Title   string    `json:"title"`
}

// NewTaskDeleted creates a TaskDeleted event.
func NewTaskDeleted(t *Task, at time.Time) *TaskDeleted {
	return &TaskDeleted{
		BaseEvent: domain.NewBaseEvent(t.ID(), AggregateType, RoutingKeyDeleted, at),
		OwnerID:   t.ownerID,
		Title:     t.title,
	}
}

// QuadrantsRefreshed summarizes one refresh run that changed tasks. It is
// not a per-task history.
type QuadrantsRefreshed struct {
	domain.BaseEvent
	Examined int       `json:"examined"`
	Changed  int       `json:"changed"`
	RanAt    time.Time `json:"ran_at"`
}

// NewQuadrantsRefreshed creates a QuadrantsRefreshed event for run runID.
func NewQuadrantsRefreshed(runID uuid.UUID, examined, changed int, at time.Time) *QuadrantsRefreshed {
	return &QuadrantsRefreshed{
		BaseEvent: domain.NewBaseEvent(runID, RefreshAggregateType, RoutingKeyRefreshed, at),
		Examined:  examined,
		Changed:   changed,
		RanAt:     at.UTC(),
	}
}
