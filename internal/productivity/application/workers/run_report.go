package workers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNoRunReport is returned when the refresh job has not run yet.
var ErrNoRunReport = errors.New("no refresh run recorded")

// RunReport describes one pass of the refresh job.
type RunReport struct {
	RunID       uuid.UUID     `json:"run_id"`
	Trigger     string        `json:"trigger"`
	RequestedBy *uuid.UUID    `json:"requested_by,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	FinishedAt  time.Time     `json:"finished_at"`
	Duration    time.Duration `json:"duration_ns"`
	Examined    int           `json:"examined"`
	Changed     int           `json:"changed"`
	Success     bool          `json:"success"`
	Error       string        `json:"error,omitempty"`
}

// RunReportStore keeps the most recent run report.
type RunReportStore interface {
	SaveLast(ctx context.Context, report RunReport) error
	// Last returns ErrNoRunReport when nothing was saved.
	Last(ctx context.Context) (*RunReport, error)
}

// MemoryRunReportStore keeps the last report in process memory.
type MemoryRunReportStore struct {
	mu   sync.RWMutex
	last *RunReport
}

// NewMemoryRunReportStore creates an empty store.
func NewMemoryRunReportStore() *MemoryRunReportStore {
	return &MemoryRunReportStore{}
}

func (s *MemoryRunReportStore) SaveLast(_ context.Context, report RunReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = &report
	return nil
}

func (s *MemoryRunReportStore) Last(context.Context) (*RunReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return nil, ErrNoRunReport
	}
	report := *s.last
	return &report, nil
}
