package outbox

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/quadra/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/quadra/pkg/observability"
)

// ProcessorConfig tunes the outbox polling loop.
type ProcessorConfig struct {
	PollInterval     time.Duration
	BatchSize        int
	MaxRetries       int
	RetryBackoffBase time.Duration
	RetryBackoffMax  time.Duration
}

// DefaultProcessorConfig returns the defaults used by the worker.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		PollInterval:     500 * time.Millisecond,
		BatchSize:        100,
		MaxRetries:       5,
		RetryBackoffBase: time.Second,
		RetryBackoffMax:  time.Minute,
	}
}

// Stats is a snapshot of processor counters.
type Stats struct {
	IsRunning       bool       `json:"running"`
	PublishedCount  uint64     `json:"published"`
	FailedCount     uint64     `json:"failed"`
	DeadCount       uint64     `json:"dead"`
	LastError       string     `json:"last_error,omitempty"`
	LastErrorAt     *time.Time `json:"last_error_at,omitempty"`
	LastProcessedAt *time.Time `json:"last_processed_at,omitempty"`
}

// Processor relays outbox messages to the event bus.
type Processor struct {
	repo      Repository
	publisher eventbus.Publisher
	config    ProcessorConfig
	logger    *slog.Logger
	metrics   observability.Metrics

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	stats   Stats
}

// NewProcessor creates an outbox processor.
func NewProcessor(repo Repository, publisher eventbus.Publisher, config ProcessorConfig, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultProcessorConfig().PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultProcessorConfig().BatchSize
	}
	return &Processor{
		repo:      repo,
		publisher: publisher,
		config:    config,
		logger:    logger,
		metrics:   observability.NoopMetrics{},
	}
}

// WithMetrics reports publish outcomes to m.
func (p *Processor) WithMetrics(m observability.Metrics) *Processor {
	if m != nil {
		p.metrics = m
	}
	return p
}

// Run polls until ctx is cancelled or Stop is called.
func (p *Processor) Run(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
		close(doneCh)
	}()

	p.logger.Info("outbox processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize,
	)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("outbox processor stopped")
			return nil
		case <-stopCh:
			p.logger.Info("outbox processor stopped")
			return nil
		case <-ticker.C:
			if err := p.ProcessOnce(ctx); err != nil {
				p.logger.Error("failed to process outbox batch", "error", err)
			}
		}
	}
}

// Stop ends Run and waits for the current batch.
func (p *Processor) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	close(p.stopCh)
	doneCh := p.doneCh
	p.mu.Unlock()
	<-doneCh
}

// IsRunning reports whether Run is active.
func (p *Processor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// ProcessOnce publishes one batch of due messages.
func (p *Processor) ProcessOnce(ctx context.Context) error {
	messages, err := p.repo.GetUnpublished(ctx, p.config.BatchSize)
	if err != nil {
		p.recordError(err)
		return err
	}
	p.touch()

	for _, msg := range messages {
		if err := p.publisher.Publish(ctx, msg.RoutingKey, msg.Payload); err != nil {
			p.handleFailure(ctx, msg, err)
			continue
		}
		if err := p.repo.MarkPublished(ctx, msg.ID); err != nil {
			p.logger.Error("failed to mark message as published", "id", msg.ID, "error", err)
			continue
		}
		p.mu.Lock()
		p.stats.PublishedCount++
		p.mu.Unlock()
		p.metrics.Counter(observability.MetricOutboxPublished, 1, observability.T("routing_key", msg.RoutingKey))
	}
	return nil
}

// Cleanup deletes published messages older than retention.
func (p *Processor) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	n, err := p.repo.DeleteOld(ctx, retention)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		p.logger.Info("deleted old outbox messages", "count", n, "retention", retention)
	}
	return n, nil
}

func (p *Processor) handleFailure(ctx context.Context, msg *Message, err error) {
	p.logger.Warn("failed to publish message",
		"id", msg.ID,
		"routing_key", msg.RoutingKey,
		"event_id", msg.EventID,
		"retry_count", msg.RetryCount,
		"error", err,
	)
	p.recordError(err)

	if msg.RetryCount+1 >= p.config.MaxRetries {
		p.mu.Lock()
		p.stats.DeadCount++
		p.mu.Unlock()
		p.metrics.Counter(observability.MetricOutboxDead, 1, observability.T("routing_key", msg.RoutingKey))
		if markErr := p.repo.MarkDead(ctx, msg.ID, err.Error()); markErr != nil {
			p.logger.Error("failed to dead-letter message", "id", msg.ID, "error", markErr)
		}
		return
	}

	p.mu.Lock()
	p.stats.FailedCount++
	p.mu.Unlock()
	p.metrics.Counter(observability.MetricOutboxFailed, 1, observability.T("routing_key", msg.RoutingKey))
	next := time.Now().Add(p.backoff(msg.RetryCount + 1))
	if markErr := p.repo.MarkFailed(ctx, msg.ID, err.Error(), next); markErr != nil {
		p.logger.Error("failed to mark message as failed", "id", msg.ID, "error", markErr)
	}
}

// backoff doubles from the base per attempt, capped at the max.
func (p *Processor) backoff(attempt int) time.Duration {
	base, limit := p.config.RetryBackoffBase, p.config.RetryBackoffMax
	if base <= 0 {
		base = time.Second
	}
	if limit <= 0 {
		limit = time.Minute
	}
	d := base
	for i := 1; i < attempt && d < limit; i++ {
		d *= 2
	}
	if d > limit {
		return limit
	}
	return d
}

// GetStats returns a copy of the counters.
func (p *Processor) GetStats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.stats
	s.IsRunning = p.running
	return s
}

func (p *Processor) touch() {
	now := time.Now()
	p.mu.Lock()
	p.stats.LastProcessedAt = &now
	p.mu.Unlock()
}

func (p *Processor) recordError(err error) {
	now := time.Now()
	p.mu.Lock()
	p.stats.LastError = err.Error()
	p.stats.LastErrorAt = &now
	p.mu.Unlock()
}
