package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	identity "github.com/felixgeelhaar/quadra/internal/identity/domain"
	"github.com/felixgeelhaar/quadra/pkg/observability"
	"github.com/google/uuid"
)

// Request headers.
const (
	HeaderUserID        = "X-User-ID"
	HeaderRequestID     = "X-Request-ID"
	HeaderCorrelationID = "X-Correlation-ID"
)

// ActorResolver turns the presented user ID into an actor.
type ActorResolver interface {
	Resolve(ctx context.Context, rawID string) (identity.Actor, error)
}

type actorKey struct{}

func withActor(ctx context.Context, actor identity.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// actorFrom returns the authenticated caller. Routes are only reachable
// through authenticate, so the actor is always present.
func actorFrom(ctx context.Context) identity.Actor {
	actor, _ := ctx.Value(actorKey{}).(identity.Actor)
	return actor
}

// authenticate resolves X-User-ID against the user directory.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := s.resolver.Resolve(r.Context(), r.Header.Get(HeaderUserID))
		if err != nil {
			writeAppError(s.logger, w, r, err)
			return
		}
		ctx := observability.WithUserID(withActor(r.Context(), actor), actor.UserID.String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// statusRecorder captures the response status.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument tags every request with a request id, then logs one line and
// records count and latency per route.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := observability.WithRequestID(r.Context(), requestID)
		ctx = observability.WithCorrelationID(ctx, r.Header.Get(HeaderCorrelationID))
		r = r.WithContext(ctx)
		w.Header().Set(HeaderRequestID, requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		tags := []observability.Tag{
			observability.T("route", route),
			observability.T("status", strconv.Itoa(rec.status)),
		}
		s.metrics.Counter(observability.MetricHTTPRequests, 1, tags...)
		s.metrics.Timing(observability.MetricHTTPRequestDuration, elapsed, observability.T("route", route))
		s.logger.InfoContext(ctx, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", elapsed.Milliseconds(),
		)
	})
}
