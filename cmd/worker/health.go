package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/felixgeelhaar/quadra/internal/app"
	"github.com/felixgeelhaar/quadra/internal/productivity/application/workers"
	"github.com/felixgeelhaar/quadra/pkg/observability"
)

const readyTimeout = 2 * time.Second

// newHealthMux serves liveness, readiness and a metrics snapshot.
func newHealthMux(c *app.Container) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		response := map[string]any{
			"status":            "ok",
			"scheduler_running": c.RefreshWorker.IsRunning(),
			"outbox":            c.OutboxProcessor.GetStats(),
		}
		report, err := c.RefreshWorker.LastReport(r.Context())
		switch {
		case err == nil:
			response["last_refresh"] = report
		case !errors.Is(err, workers.ErrNoRunReport):
			response["last_refresh_error"] = err.Error()
		}
		writeJSON(w, http.StatusOK, response)
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		health := c.Health.Check(ctx)
		status := http.StatusOK
		if health.Status == observability.HealthStatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, health)
	})

	mux.HandleFunc("GET /metrics", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, c.Metrics.Snapshot())
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
