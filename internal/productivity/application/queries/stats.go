package queries

import (
	"context"
	"time"

	identity "github.com/felixgeelhaar/quadra/internal/identity/domain"
	"github.com/felixgeelhaar/quadra/internal/productivity/domain/task"
	sharedApplication "github.com/felixgeelhaar/quadra/internal/shared/application"
	"github.com/google/uuid"
)

// StatsDTO counts the tasks visible to the caller.
type StatsDTO struct {
	TotalTasks int            `json:"total_tasks"`
	ByQuadrant map[string]int `json:"by_quadrant"`
	ByStatus   map[string]int `json:"by_status"`
}

// DeadlineDTO is one row of the deadlines view.
type DeadlineDTO struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	DeadlineAt    time.Time `json:"deadline_at"`
	DaysRemaining int       `json:"days_remaining"`
	IsOverdue     bool      `json:"is_overdue"`
	Quadrant      string    `json:"quadrant"`
	IsImportant   bool      `json:"is_important"`
}

// StatsHandler serves the task statistics and the deadlines view.
type StatsHandler struct {
	taskRepo task.Repository
	clock    sharedApplication.Clock
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(taskRepo task.Repository, clock sharedApplication.Clock) *StatsHandler {
	return &StatsHandler{taskRepo: taskRepo, clock: clock}
}

// Stats returns totals by quadrant and by status. Every quadrant and both
// statuses are present even when zero.
func (h *StatsHandler) Stats(ctx context.Context, actor identity.Actor) (*StatsDTO, error) {
	tasks, err := h.taskRepo.FindByScope(ctx, task.ScopeFor(actor), task.Filter{})
	if err != nil {
		return nil, sharedApplication.Store("count tasks", err)
	}

	stats := &StatsDTO{
		TotalTasks: len(tasks),
		ByQuadrant: make(map[string]int, 4),
		ByStatus:   map[string]int{StatusCompleted: 0, StatusPending: 0},
	}
	for _, q := range task.AllQuadrants() {
		stats.ByQuadrant[q.String()] = 0
	}
	for _, t := range tasks {
		if t.Quadrant().IsValid() {
			stats.ByQuadrant[t.Quadrant().String()]++
		}
		if t.IsCompleted() {
			stats.ByStatus[StatusCompleted]++
		} else {
			stats.ByStatus[StatusPending]++
		}
	}
	return stats, nil
}

// Deadlines returns the pending tasks that have a deadline, soonest first.
func (h *StatsHandler) Deadlines(ctx context.Context, actor identity.Actor) ([]DeadlineDTO, error) {
	pending, hasDeadline := false, true
	tasks, err := h.taskRepo.FindByScope(ctx, task.ScopeFor(actor), task.Filter{
		Completed:   &pending,
		HasDeadline: &hasDeadline,
		Order:       task.OrderDeadline,
	})
	if err != nil {
		return nil, sharedApplication.Store("list deadlines", err)
	}

	now := h.clock.Now()
	out := make([]DeadlineDTO, 0, len(tasks))
	for _, t := range tasks {
		deadline := t.Deadline()
		if deadline == nil {
			continue
		}
		days := task.DaysUntil(*deadline, now)
		out = append(out, DeadlineDTO{
			ID:            t.ID(),
			Title:         t.Title(),
			Description:   t.Description(),
			DeadlineAt:    *deadline,
			DaysRemaining: max(days, 0),
			IsOverdue:     days < 0,
			Quadrant:      t.Quadrant().String(),
			IsImportant:   t.IsImportant(),
		})
	}
	return out, nil
}
