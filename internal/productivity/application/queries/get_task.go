package queries

import (
	"context"

	identity "github.com/felixgeelhaar/quadra/internal/identity/domain"
	"github.com/felixgeelhaar/quadra/internal/productivity/application/access"
	"github.com/felixgeelhaar/quadra/internal/productivity/domain/task"
	sharedApplication "github.com/felixgeelhaar/quadra/internal/shared/application"
	"github.com/google/uuid"
)

// GetTaskQuery contains the parameters for fetching one task.
type GetTaskQuery struct {
	Actor  identity.Actor
	TaskID uuid.UUID
}

// GetTaskHandler handles the GetTaskQuery.
type GetTaskHandler struct {
	taskRepo task.Repository
	clock    sharedApplication.Clock
}

// NewGetTaskHandler creates a new GetTaskHandler.
func NewGetTaskHandler(taskRepo task.Repository, clock sharedApplication.Clock) *GetTaskHandler {
	return &GetTaskHandler{taskRepo: taskRepo, clock: clock}
}

// Handle executes the GetTaskQuery.
func (h *GetTaskHandler) Handle(ctx context.Context, query GetTaskQuery) (*TaskDetailDTO, error) {
	t, err := access.LoadTask(ctx, h.taskRepo, query.Actor, query.TaskID, "view")
	if err != nil {
		return nil, err
	}

	detail := NewTaskDetailDTO(t, h.clock.Now())
	return &detail, nil
}
