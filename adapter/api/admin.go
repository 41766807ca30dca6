package api

import (
	"context"
	"net/http"

	identityApp "github.com/felixgeelhaar/quadra/internal/identity/application"
	"github.com/felixgeelhaar/quadra/internal/productivity/application/workers"
	sharedApplication "github.com/felixgeelhaar/quadra/internal/shared/application"
	"github.com/google/uuid"
)

// RefreshRunner runs and reports quadrant refresh passes.
type RefreshRunner interface {
	RunOnce(ctx context.Context, trigger string, requestedBy uuid.UUID) (*workers.RunReport, error)
	LastReport(ctx context.Context) (*workers.RunReport, error)
}

// registerUserRequest is the body of POST /admin/users.
type registerUserRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ListUsers handles GET /api/v1/admin/users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.listUsers.Handle(r.Context(), actorFrom(r.Context()))
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// RegisterUser handles POST /api/v1/admin/users
func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	user, err := h.registerUser.Handle(r.Context(), identityApp.RegisterUserCommand{
		Actor: actorFrom(r.Context()),
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, identityApp.UserDTO{
		ID:    user.ID(),
		Email: user.Email().String(),
		Role:  user.Role().String(),
	})
}

// TriggerRefresh handles POST /api/v1/admin/quadrants/refresh. A pass that
// is already running makes this a 409.
func (h *Handler) TriggerRefresh(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	if err := requireAdmin(actor.IsAdmin(), "refresh"); err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	report, err := h.refresh.RunOnce(r.Context(), workers.TriggerManual, actor.UserID)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// LastRefresh handles GET /api/v1/admin/quadrants/refresh
func (h *Handler) LastRefresh(w http.ResponseWriter, r *http.Request) {
	if err := requireAdmin(actorFrom(r.Context()).IsAdmin(), "view"); err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	report, err := h.refresh.LastReport(r.Context())
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func requireAdmin(isAdmin bool, action string) error {
	if isAdmin {
		return nil
	}
	return &sharedApplication.ForbiddenError{Action: action, Resource: "quadrant refresh"}
}
