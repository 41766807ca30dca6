package api

import (
	"errors"
	"log/slog"
	"net/http"

	identityApp "github.com/felixgeelhaar/quadra/internal/identity/application"
	"github.com/felixgeelhaar/quadra/internal/productivity/application/workers"
	sharedApplication "github.com/felixgeelhaar/quadra/internal/shared/application"
)

// statusFor maps an application error to an HTTP status.
func statusFor(err error) int {
	var (
		validation *sharedApplication.ValidationError
		notFound   *sharedApplication.NotFoundError
		forbidden  *sharedApplication.ForbiddenError
	)
	switch {
	case errors.Is(err, identityApp.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, workers.ErrRefreshInProgress):
		return http.StatusConflict
	case errors.Is(err, workers.ErrNoRunReport):
		return http.StatusNotFound
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &forbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// writeAppError writes err with its mapped status. Server errors are logged
// and their detail is withheld from the client.
func writeAppError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}
