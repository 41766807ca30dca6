package eventbus

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

// ErrBrokerUnavailable is returned while the breaker is open.
var ErrBrokerUnavailable = errors.New("event broker unavailable")

// BreakerConfig configures the circuit breaker around a publisher.
type BreakerConfig struct {
	// MaxFailures consecutive failures trip the breaker.
	MaxFailures uint32
	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
	// HalfOpenRequests is the number of probes allowed while half-open.
	HalfOpenRequests uint32
}

// DefaultBreakerConfig returns the settings used by the worker.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxFailures:      5,
		OpenTimeout:      30 * time.Second,
		HalfOpenRequests: 1,
	}
}

// BreakerPublisher stops hammering a broker that keeps failing. The outbox
// keeps the messages, so a short-circuited publish is just a deferred one.
type BreakerPublisher struct {
	next    Publisher
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// NewBreakerPublisher wraps next with a circuit breaker.
func NewBreakerPublisher(next Publisher, cfg BreakerConfig, logger *slog.Logger) *BreakerPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = DefaultBreakerConfig().MaxFailures
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = DefaultBreakerConfig().OpenTimeout
	}
	if cfg.HalfOpenRequests == 0 {
		cfg.HalfOpenRequests = 1
	}

	settings := gobreaker.Settings{
		Name:        "event-publisher",
		MaxRequests: cfg.HalfOpenRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("publisher circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &BreakerPublisher{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

func (p *BreakerPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	_, err := p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.next.Publish(ctx, routingKey, payload)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrBrokerUnavailable
	}
	return err
}

// State reports the breaker state, used by the health endpoint.
func (p *BreakerPublisher) State() string {
	return p.breaker.State().String()
}

func (p *BreakerPublisher) Close() error {
	return p.next.Close()
}
