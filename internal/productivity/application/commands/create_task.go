package commands

import (
	"context"
	"errors"
	"time"

	identity "github.com/felixgeelhaar/quadra/internal/identity/domain"
	"github.com/felixgeelhaar/quadra/internal/productivity/domain/task"
	sharedApplication "github.com/felixgeelhaar/quadra/internal/shared/application"
	"github.com/felixgeelhaar/quadra/internal/shared/infrastructure/outbox"
)

// CreateTaskCommand contains the data needed to create a task. The actor
// becomes the owner.
type CreateTaskCommand struct {
	Actor       identity.Actor
	Title       string
	Description string
	IsImportant bool
	DeadlineAt  *time.Time
}

// CreateTaskResult contains the created task.
type CreateTaskResult struct {
	Task *task.Task
}

// CreateTaskHandler handles the CreateTaskCommand.
type CreateTaskHandler struct {
	taskRepo   task.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	clock      sharedApplication.Clock
}

// NewCreateTaskHandler creates a new CreateTaskHandler.
func NewCreateTaskHandler(taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork, clock sharedApplication.Clock) *CreateTaskHandler {
	return &CreateTaskHandler{
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		clock:      clock,
	}
}

// Handle classifies and stores a new task.
func (h *CreateTaskHandler) Handle(ctx context.Context, cmd CreateTaskCommand) (*CreateTaskResult, error) {
	t, err := task.NewTask(cmd.Actor.UserID, cmd.Title, cmd.Description, cmd.IsImportant, cmd.DeadlineAt, h.clock.Now())
	if err != nil {
		return nil, validationError(err)
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.taskRepo.Insert(txCtx, t); err != nil {
			return sharedApplication.Store("insert task", err)
		}
		return saveEvents(txCtx, h.outboxRepo, cmd.Actor.UserID, t.DomainEvents())
	})
	if err != nil {
		return nil, err
	}

	t.ClearDomainEvents()
	return &CreateTaskResult{Task: t}, nil
}

func validationError(err error) error {
	if errors.Is(err, task.ErrEmptyTitle) {
		return &sharedApplication.ValidationError{Field: "title", Message: "must not be empty"}
	}
	return err
}
