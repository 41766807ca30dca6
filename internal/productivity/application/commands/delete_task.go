package commands

import (
	"context"

	identity "github.com/felixgeelhaar/quadra/internal/identity/domain"
	"github.com/felixgeelhaar/quadra/internal/productivity/application/access"
	"github.com/felixgeelhaar/quadra/internal/productivity/domain/task"
	sharedApplication "github.com/felixgeelhaar/quadra/internal/shared/application"
	"github.com/felixgeelhaar/quadra/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// DeleteTaskCommand removes a task permanently.
type DeleteTaskCommand struct {
	Actor  identity.Actor
	TaskID uuid.UUID
}

// DeleteTaskResult echoes what was removed.
type DeleteTaskResult struct {
	ID    uuid.UUID
	Title string
}

// DeleteTaskHandler handles the DeleteTaskCommand.
type DeleteTaskHandler struct {
	taskRepo   task.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	clock      sharedApplication.Clock
}

// NewDeleteTaskHandler creates a new DeleteTaskHandler.
func NewDeleteTaskHandler(taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork, clock sharedApplication.Clock) *DeleteTaskHandler {
	return &DeleteTaskHandler{
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		clock:      clock,
	}
}

// Handle executes the DeleteTaskCommand.
func (h *DeleteTaskHandler) Handle(ctx context.Context, cmd DeleteTaskCommand) (*DeleteTaskResult, error) {
	var result *DeleteTaskResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		t, err := access.LoadTask(txCtx, h.taskRepo, cmd.Actor, cmd.TaskID, "delete")
		if err != nil {
			return err
		}
		if err := h.taskRepo.Delete(txCtx, t.ID()); err != nil {
			return notFoundOrStore(err, cmd.TaskID, "delete task")
		}
		t.MarkDeleted(h.clock.Now())
		if err := saveEvents(txCtx, h.outboxRepo, cmd.Actor.UserID, t.DomainEvents()); err != nil {
			return err
		}
		result = &DeleteTaskResult{ID: t.ID(), Title: t.Title()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
