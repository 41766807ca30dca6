package queries

import (
	"context"
	"strings"
	"unicode/utf8"

	identity "github.com/felixgeelhaar/quadra/internal/identity/domain"
	"github.com/felixgeelhaar/quadra/internal/productivity/domain/task"
	sharedApplication "github.com/felixgeelhaar/quadra/internal/shared/application"
)

// MinSearchLength is the shortest accepted search term.
const MinSearchLength = 2

// SearchTasksQuery matches a term against title and description.
type SearchTasksQuery struct {
	Actor identity.Actor
	Term  string
}

// SearchTasksHandler handles the SearchTasksQuery.
type SearchTasksHandler struct {
	taskRepo task.Repository
	clock    sharedApplication.Clock
}

// NewSearchTasksHandler creates a new SearchTasksHandler.
func NewSearchTasksHandler(taskRepo task.Repository, clock sharedApplication.Clock) *SearchTasksHandler {
	return &SearchTasksHandler{taskRepo: taskRepo, clock: clock}
}

// Handle executes the SearchTasksQuery. An empty result is a NotFoundError.
func (h *SearchTasksHandler) Handle(ctx context.Context, query SearchTasksQuery) ([]TaskDTO, error) {
	term := strings.TrimSpace(query.Term)
	if utf8.RuneCountInString(term) < MinSearchLength {
		return nil, &sharedApplication.ValidationError{Field: "q", Message: "must be at least 2 characters"}
	}

	tasks, err := h.taskRepo.FindByScope(ctx, task.ScopeFor(query.Actor), task.Filter{Search: term})
	if err != nil {
		return nil, sharedApplication.Store("search tasks", err)
	}
	if len(tasks) == 0 {
		return nil, &sharedApplication.NotFoundError{Resource: "task", ID: term}
	}
	return toDTOs(tasks, h.clock.Now()), nil
}
