package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/quadra/internal/productivity/domain/task"
	sharedApplication "github.com/felixgeelhaar/quadra/internal/shared/application"
	"github.com/felixgeelhaar/quadra/internal/shared/domain"
	"github.com/felixgeelhaar/quadra/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// RefreshQuadrantsCommand re-evaluates every open task.
type RefreshQuadrantsCommand struct {
	// Trigger names what started the run, e.g. "schedule" or "manual".
	Trigger string
	// RequestedBy is the admin behind a manual run, uuid.Nil otherwise.
	RequestedBy uuid.UUID
}

// RefreshQuadrantsResult reports one run.
type RefreshQuadrantsResult struct {
	RunID    uuid.UUID
	Examined int
	Changed  int
	RanAt    time.Time
}

// RefreshQuadrantsHandler reclassifies open tasks and writes back only the
// quadrants that changed, in one transaction.
type RefreshQuadrantsHandler struct {
	taskRepo   task.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	clock      sharedApplication.Clock
}

// NewRefreshQuadrantsHandler creates a new RefreshQuadrantsHandler.
func NewRefreshQuadrantsHandler(taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork, clock sharedApplication.Clock) *RefreshQuadrantsHandler {
	return &RefreshQuadrantsHandler{
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		clock:      clock,
	}
}

// Handle runs one pass. On any failure the whole batch is rolled back and
// a StoreError is returned.
func (h *RefreshQuadrantsHandler) Handle(ctx context.Context, cmd RefreshQuadrantsCommand) (*RefreshQuadrantsResult, error) {
	now := h.clock.Now()
	result := &RefreshQuadrantsResult{RunID: uuid.New(), RanAt: now.UTC()}

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		open, err := h.taskRepo.FindOpen(txCtx)
		if err != nil {
			return sharedApplication.Store("fetch open tasks", err)
		}
		result.Examined = len(open)

		var staged []task.QuadrantUpdate
		for _, t := range open {
			if q, changed := t.Reclassify(now); changed {
				staged = append(staged, task.QuadrantUpdate{ID: t.ID(), Quadrant: q, UpdatedAt: now})
			}
		}
		if len(staged) == 0 {
			return nil
		}

		changed, err := h.taskRepo.ApplyQuadrantUpdates(txCtx, staged)
		if err != nil {
			return sharedApplication.Store("apply quadrant updates", err)
		}
		result.Changed = changed
		if changed == 0 {
			return nil
		}

		summary := task.NewQuadrantsRefreshed(result.RunID, result.Examined, changed, now)
		return saveEvents(txCtx, h.outboxRepo, cmd.RequestedBy, []domain.DomainEvent{summary})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
