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

// UpdateTaskCommand applies a partial update to a task.
type UpdateTaskCommand struct {
	Actor   identity.Actor
	TaskID  uuid.UUID
	Changes task.Changes
}

// UpdateTaskResult contains the task after the update and the fields that
// changed.
type UpdateTaskResult struct {
	Task   *task.Task
	Fields []string
}

// UpdateTaskHandler handles the UpdateTaskCommand.
type UpdateTaskHandler struct {
	taskRepo   task.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	clock      sharedApplication.Clock
}

// NewUpdateTaskHandler creates a new UpdateTaskHandler.
func NewUpdateTaskHandler(taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork, clock sharedApplication.Clock) *UpdateTaskHandler {
	return &UpdateTaskHandler{
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		clock:      clock,
	}
}

// Handle executes the UpdateTaskCommand.
func (h *UpdateTaskHandler) Handle(ctx context.Context, cmd UpdateTaskCommand) (*UpdateTaskResult, error) {
	var result *UpdateTaskResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		t, err := access.LoadTask(txCtx, h.taskRepo, cmd.Actor, cmd.TaskID, "update")
		if err != nil {
			return err
		}

		fields, err := t.Update(cmd.Changes, h.clock.Now())
		if err != nil {
			return validationError(err)
		}
		result = &UpdateTaskResult{Task: t, Fields: fields}
		if len(fields) == 0 {
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

	result.Task.ClearDomainEvents()
	return result, nil
}
