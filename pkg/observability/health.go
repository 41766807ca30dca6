package observability

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthCheckResult is the result of a health check.
type HealthCheckResult struct {
	Status    HealthStatus   `json:"status"`
	Message   string         `json:"message,omitempty"`
	Duration  time.Duration  `json:"duration_ns"`
	Timestamp time.Time      `json:"timestamp"`
	Details   map[string]any `json:"details,omitempty"`
}

// HealthChecker performs a single health check.
type HealthChecker func(ctx context.Context) HealthCheckResult

// HealthRegistry runs named health checks.
type HealthRegistry struct {
	mu       sync.RWMutex
	checkers map[string]HealthChecker
}

// NewHealthRegistry creates an empty registry.
func NewHealthRegistry() *HealthRegistry {
	return &HealthRegistry{checkers: make(map[string]HealthChecker)}
}

// Register adds or replaces a named checker.
func (r *HealthRegistry) Register(name string, checker HealthChecker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers[name] = checker
}

// OverallHealth is the aggregated health report.
type OverallHealth struct {
	Status    HealthStatus                 `json:"status"`
	Timestamp time.Time                    `json:"timestamp"`
	Checks    map[string]HealthCheckResult `json:"checks"`
}

// Check runs every checker concurrently and aggregates the results. The
// worst individual status wins.
func (r *HealthRegistry) Check(ctx context.Context) OverallHealth {
	r.mu.RLock()
	checkers := make(map[string]HealthChecker, len(r.checkers))
	for k, v := range r.checkers {
		checkers[k] = v
	}
	r.mu.RUnlock()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]HealthCheckResult, len(checkers))
	)
	for name, checker := range checkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			result := checker(ctx)
			result.Duration = time.Since(start)
			result.Timestamp = time.Now()
			mu.Lock()
			results[name] = result
			mu.Unlock()
		}()
	}
	wg.Wait()

	return OverallHealth{
		Status:    worstStatus(results),
		Timestamp: time.Now(),
		Checks:    results,
	}
}

func worstStatus(results map[string]HealthCheckResult) HealthStatus {
	status := HealthStatusHealthy
	for _, r := range results {
		switch r.Status {
		case HealthStatusUnhealthy:
			return HealthStatusUnhealthy
		case HealthStatusDegraded:
			status = HealthStatusDegraded
		}
	}
	return status
}

// PingHealthChecker reports the given failure status when ping fails.
// Database outages are unhealthy, cache and broker outages degrade.
func PingHealthChecker(component string, onFailure HealthStatus, ping func(ctx context.Context) error) HealthChecker {
	return func(ctx context.Context) HealthCheckResult {
		if err := ping(ctx); err != nil {
			return HealthCheckResult{
				Status:  onFailure,
				Message: fmt.Sprintf("%s connection failed: %v", component, err),
			}
		}
		return HealthCheckResult{
			Status:  HealthStatusHealthy,
			Message: component + " connection healthy",
		}
	}
}

// DatabaseHealthChecker checks database connectivity.
func DatabaseHealthChecker(ping func(ctx context.Context) error) HealthChecker {
	return PingHealthChecker("database", HealthStatusUnhealthy, ping)
}

// RedisHealthChecker checks Redis connectivity.
func RedisHealthChecker(ping func(ctx context.Context) error) HealthChecker {
	return PingHealthChecker("redis", HealthStatusDegraded, ping)
}

// LastRun describes the most recent execution of a scheduled job.
type LastRun struct {
	At      time.Time
	Success bool
	Error   string
}

// ScheduledJobHealthChecker degrades when the last run failed or when no
// run finished within maxAge. A job that has never run is healthy.
func ScheduledJobHealthChecker(lookup func(ctx context.Context) (*LastRun, error), maxAge time.Duration) HealthChecker {
	return func(ctx context.Context) HealthCheckResult {
		run, err := lookup(ctx)
		if err != nil {
			return HealthCheckResult{Status: HealthStatusDegraded, Message: "last run unavailable: " + err.Error()}
		}
		if run == nil {
			return HealthCheckResult{Status: HealthStatusHealthy, Message: "no run recorded yet"}
		}
		details := map[string]any{"last_run_at": run.At}
		if !run.Success {
			return HealthCheckResult{Status: HealthStatusDegraded, Message: "last run failed: " + run.Error, Details: details}
		}
		if maxAge > 0 && time.Since(run.At) > maxAge {
			return HealthCheckResult{Status: HealthStatusDegraded, Message: "last run is stale", Details: details}
		}
		return HealthCheckResult{Status: HealthStatusHealthy, Message: "last run succeeded", Details: details}
	}
}
