// Package access loads tasks for point operations under the caller's scope.
package access

import (
	"context"
	"errors"

	identity "github.com/felixgeelhaar/quadra/internal/identity/domain"
	"github.com/felixgeelhaar/quadra/internal/productivity/domain/task"
	sharedApplication "github.com/felixgeelhaar/quadra/internal/shared/application"
	"github.com/google/uuid"
)

// LoadTask fetches a task and checks it against the actor's scope. An
// absent row is a NotFoundError. A row outside the scope is a
// ForbiddenError, which tells the caller that the task exists.
func LoadTask(ctx context.Context, repo task.Repository, actor identity.Actor, id uuid.UUID, action string) (*task.Task, error) {
	t, err := repo.FindByID(ctx, id)
	if errors.Is(err, task.ErrTaskNotFound) {
		return nil, &sharedApplication.NotFoundError{Resource: "task", ID: id.String()}
	}
	if err != nil {
		return nil, sharedApplication.Store("find task", err)
	}
	if !task.ScopeFor(actor).Permits(t) {
		return nil, &sharedApplication.ForbiddenError{Action: action, Resource: "task", ID: id.String()}
	}
	return t, nil
}
