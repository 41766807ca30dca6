package commands

import (
	"context"
	"errors"

	identity "github.com/felixgeelhaar/quadra/internal/identity/domain"
	"github.com/felixgeelhaar/quadra/internal/productivity/application/access"
	"github.com/felixgeelhaar/quadra/internal/productivity/domain/task"
	sharedApplication "github.com/felixgeelhaar/quadra/internal/shared/application"
	"github.com/felixgeelhaar/quadra/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// CompleteTaskCommand marks a task as done.
type CompleteTaskCommand struct {
	Actor  identity.Actor
	TaskID uuid.UUID
}

// CompleteTaskHandler handles the CompleteTaskCommand.
type CompleteTaskHandler struct {
	taskRepo   task.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	clock      sharedApplication.Clock
}

// NewCompleteTaskHandler creates a new CompleteTaskHandler.
func NewCompleteTaskHandler(taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork, clock sharedApplication.Clock) *CompleteTaskHandler {
	return &CompleteTaskHandler{
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		clock:      clock,
	}
}

// Handle completes the task and returns it. Completing a completed task
// returns it unchanged.
func (h *CompleteTaskHandler) Handle(ctx context.Context, cmd CompleteTaskCommand) (*task.Task, error) {
	var t *task.Task

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		var err error
		t, err = access.LoadTask(txCtx, h.taskRepo, cmd.Actor, cmd.TaskID, "complete")
		if err != nil {
			return err
		}
		if !t.Complete(h.clock.Now()) {
			return nil
		}
		if err := h.taskRepo.Update(txCtx, t); err != nil {
			return notFoundOrStore(err, cmd.TaskID, "update task")
		}
		return saveEvents(txCtx, h.outboxRepo, cmd.Actor.UserID, t.DomainEvents())
	})
	if err != nil {
		return nil, err
	}

	t.ClearDomainEvents()
	return t, nil
}

// notFoundOrStore reports a row deleted between load and write as not found.
func notFoundOrStore(err error, id uuid.UUID, op string) error {
	if errors.Is(err, task.ErrTaskNotFound) {
		return &sharedApplication.NotFoundError{Resource: "task", ID: id.String()}
	}
	return sharedApplication.Store(op, err)
}
