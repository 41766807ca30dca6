package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/felixgeelhaar/quadra/internal/productivity/application/commands"
	sharedApplication "github.com/felixgeelhaar/quadra/internal/shared/application"
	"github.com/felixgeelhaar/quadra/pkg/observability"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// ErrRefreshInProgress is returned when a trigger arrives while a run is
// still executing. The trigger is dropped.
var ErrRefreshInProgress = errors.New("quadrant refresh already in progress")

// Trigger names recorded in run reports.
const (
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
)

// Refresher runs one refresh pass.
type Refresher interface {
	Handle(ctx context.Context, cmd commands.RefreshQuadrantsCommand) (*commands.RefreshQuadrantsResult, error)
}

// Config sets the daily trigger time.
type Config struct {
	Hour     int
	Minute   int
	Location *time.Location
}

// DefaultConfig fires at 09:00 server-local time.
func DefaultConfig() Config {
	return Config{Hour: 9, Minute: 0, Location: time.Local}
}

// NextRun returns the first trigger time strictly after now.
func (c Config) NextRun(now time.Time) time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), c.Hour, c.Minute, 0, 0, loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, c.Hour, c.Minute, 0, 0, loc)
	}
	return next
}

// QuadrantRefreshWorker reclassifies every open task once a day. At most
// one pass runs at a time, whether scheduled or requested manually.
type QuadrantRefreshWorker struct {
	refresher Refresher
	reports   RunReportStore
	clock     sharedApplication.Clock
	config    Config
	logger    *slog.Logger
	metrics   observability.Metrics

	guard    *semaphore.Weighted
	running  atomic.Bool
	stopCh   chan struct{}
	stopOnce sync.Once

	// newTimer is replaced in tests.
	newTimer func(d time.Duration) (<-chan time.Time, func() bool)
}

// NewQuadrantRefreshWorker creates a new refresh worker.
func NewQuadrantRefreshWorker(
	refresher Refresher,
	reports RunReportStore,
	clock sharedApplication.Clock,
	config Config,
	logger *slog.Logger,
	metrics observability.Metrics,
) *QuadrantRefreshWorker {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if reports == nil {
		reports = NewMemoryRunReportStore()
	}
	return &QuadrantRefreshWorker{
		refresher: refresher,
		reports:   reports,
		clock:     clock,
		config:    config,
		logger:    logger,
		metrics:   metrics,
		guard:     semaphore.NewWeighted(1),
		stopCh:    make(chan struct{}),
		newTimer: func(d time.Duration) (<-chan time.Time, func() bool) {
			t := time.NewTimer(d)
			return t.C, t.Stop
		},
	}
}

// Run fires a pass at every daily trigger time and blocks until ctx is
// cancelled or Stop is called. Failed runs are logged and the schedule
// continues.
func (w *QuadrantRefreshWorker) Run(ctx context.Context) error {
	w.running.Store(true)
	defer w.running.Store(false)

	w.logger.Info("quadrant refresh worker started",
		"hour", w.config.Hour,
		"minute", w.config.Minute,
	)

	for {
		next := w.config.NextRun(w.clock.Now())
		wait := next.Sub(w.clock.Now())
		w.logger.Debug("next quadrant refresh scheduled", "at", next, "in", wait)

		fire, stop := w.newTimer(wait)
		select {
		case <-ctx.Done():
			stop()
			w.logger.Info("quadrant refresh worker stopped (context cancelled)")
			return ctx.Err()
		case <-w.stopCh:
			stop()
			w.logger.Info("quadrant refresh worker stopped (stop signal)")
			return nil
		case <-fire:
			if _, err := w.RunOnce(ctx, TriggerSchedule, uuid.Nil); errors.Is(err, ErrRefreshInProgress) {
				w.logger.Warn("scheduled quadrant refresh skipped", "reason", err)
			}
		}
	}
}

// Stop signals the worker to stop after the current pass.
func (w *QuadrantRefreshWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

// IsRunning reports whether the schedule loop is active.
func (w *QuadrantRefreshWorker) IsRunning() bool {
	return w.running.Load()
}

// RunOnce executes one pass now. It returns ErrRefreshInProgress without
// running when another pass holds the guard. The pass ignores cancellation
// of ctx so that a started batch always finishes.
func (w *QuadrantRefreshWorker) RunOnce(ctx context.Context, trigger string, requestedBy uuid.UUID) (*RunReport, error) {
	if !w.guard.TryAcquire(1) {
		w.metrics.Counter(observability.MetricRefreshSkipped, 1, observability.T("trigger", trigger))
		return nil, ErrRefreshInProgress
	}
	defer w.guard.Release(1)

	runCtx := context.WithoutCancel(ctx)
	report := RunReport{Trigger: trigger, StartedAt: w.clock.Now()}
	if requestedBy != uuid.Nil {
		report.RequestedBy = &requestedBy
	}

	timer := observability.StartTimer("quadrant_refresh", observability.MetricRefreshDuration).
		WithLogger(w.logger).
		WithMetrics(w.metrics).
		WithTags(observability.T("trigger", trigger))

	result, err := w.refresher.Handle(runCtx, commands.RefreshQuadrantsCommand{
		Trigger:     trigger,
		RequestedBy: requestedBy,
	})
	report.Duration = timer.Stop(err)
	report.FinishedAt = w.clock.Now()

	w.metrics.Counter(observability.MetricRefreshRuns, 1, observability.T("trigger", trigger))
	if err != nil {
		report.RunID = uuid.New()
		report.Error = err.Error()
		w.metrics.Counter(observability.MetricRefreshFailures, 1, observability.T("trigger", trigger))
	} else {
		report.RunID = result.RunID
		report.Examined = result.Examined
		report.Changed = result.Changed
		report.Success = true
		w.metrics.Counter(observability.MetricRefreshChanged, int64(result.Changed))
		w.logger.Info("quadrant refresh completed",
			"run_id", result.RunID,
			"trigger", trigger,
			"examined", result.Examined,
			"changed", result.Changed,
		)
	}

	if saveErr := w.reports.SaveLast(runCtx, report); saveErr != nil {
		w.logger.Error("failed to save refresh run report", "run_id", report.RunID, "error", saveErr)
	}

	if err != nil {
		return &report, fmt.Errorf("quadrant refresh failed: %w", err)
	}
	return &report, nil
}

// LastReport returns the report of the most recent pass.
func (w *QuadrantRefreshWorker) LastReport(ctx context.Context) (*RunReport, error) {
	return w.reports.Last(ctx)
}

// LastRun adapts LastReport for the scheduled job health check.
func (w *QuadrantRefreshWorker) LastRun(ctx context.Context) (*observability.LastRun, error) {
	report, err := w.reports.Last(ctx)
	if errors.Is(err, ErrNoRunReport) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &observability.LastRun{At: report.FinishedAt, Success: report.Success, Error: report.Error}, nil
}
