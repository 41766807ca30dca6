package queries

import (
	"context"
	"time"

	identity "github.com/felixgeelhaar/quadra/internal/identity/domain"
	"github.com/felixgeelhaar/quadra/internal/productivity/domain/task"
	sharedApplication "github.com/felixgeelhaar/quadra/internal/shared/application"
)

// Task status filter values.
const (
	StatusCompleted = "completed"
	StatusPending   = "pending"
)

// ListTasksQuery contains the parameters for listing tasks. Empty fields
// do not filter.
type ListTasksQuery struct {
	Actor    identity.Actor
	Quadrant string // "Q1".."Q4"
	Status   string // "completed", "pending"
	DueToday bool   // deadline within the current local day
}

// ListTasksHandler handles the ListTasksQuery.
type ListTasksHandler struct {
	taskRepo task.Repository
	clock    sharedApplication.Clock
	loc      *time.Location
}

// NewListTasksHandler creates a new ListTasksHandler. loc defines the local
// day used by DueToday; nil means time.Local.
func NewListTasksHandler(taskRepo task.Repository, clock sharedApplication.Clock, loc *time.Location) *ListTasksHandler {
	if loc == nil {
		loc = time.Local
	}
	return &ListTasksHandler{taskRepo: taskRepo, clock: clock, loc: loc}
}

// Handle executes the ListTasksQuery. An unknown quadrant or status is
// reported as not found.
func (h *ListTasksHandler) Handle(ctx context.Context, query ListTasksQuery) ([]TaskDTO, error) {
	now := h.clock.Now()
	filter := task.Filter{Order: task.OrderCreated}

	if query.Quadrant != "" {
		q, err := task.ParseQuadrant(query.Quadrant)
		if err != nil {
			return nil, &sharedApplication.NotFoundError{Resource: "quadrant", ID: query.Quadrant}
		}
		filter.Quadrant = &q
	}

	switch query.Status {
	case "":
	case StatusCompleted, StatusPending:
		completed := query.Status == StatusCompleted
		filter.Completed = &completed
	default:
		return nil, &sharedApplication.NotFoundError{Resource: "status", ID: query.Status}
	}

	if query.DueToday {
		from, to := dayBounds(now, h.loc)
		filter.DeadlineFrom, filter.DeadlineTo = &from, &to
		filter.Order = task.OrderDeadline
	}

	tasks, err := h.taskRepo.FindByScope(ctx, task.ScopeFor(query.Actor), filter)
	if err != nil {
		return nil, sharedApplication.Store("list tasks", err)
	}
	return toDTOs(tasks, now), nil
}

// dayBounds returns the first and last instant of the day containing now in
// loc, both in UTC.
func dayBounds(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return start.UTC(), end.UTC()
}
