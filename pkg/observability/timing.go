package observability

import (
	"log/slog"
	"time"
)

// Timer measures one operation and reports it to a logger and a metrics
// sink on stop.
type Timer struct {
	operation string
	metric    string
	start     time.Time
	logger    *slog.Logger
	metrics   Metrics
	tags      []Tag
}

// StartTimer starts timing operation. The duration is recorded under metric.
func StartTimer(operation, metric string) *Timer {
	return &Timer{operation: operation, metric: metric, start: time.Now()}
}

// WithLogger logs the outcome on stop.
func (t *Timer) WithLogger(logger *slog.Logger) *Timer {
	t.logger = logger
	return t
}

// WithMetrics records the duration on stop.
func (t *Timer) WithMetrics(metrics Metrics) *Timer {
	t.metrics = metrics
	return t
}

// WithTags adds metric tags.
func (t *Timer) WithTags(tags ...Tag) *Timer {
	t.tags = append(t.tags, tags...)
	return t
}

// Stop records the duration with the outcome of err.
func (t *Timer) Stop(err error) time.Duration {
	d := time.Since(t.start)

	status := "ok"
	if err != nil {
		status = "error"
	}
	if t.logger != nil {
		if err != nil {
			t.logger.Error("operation failed", "operation", t.operation, "duration_ms", d.Milliseconds(), "error", err)
		} else {
			t.logger.Debug("operation completed", "operation", t.operation, "duration_ms", d.Milliseconds())
		}
	}
	if t.metrics != nil && t.metric != "" {
		t.metrics.Timing(t.metric, d, append(t.tags, T("status", status))...)
	}
	return d
}
