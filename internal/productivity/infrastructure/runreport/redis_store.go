// Package runreport stores refresh run reports in Redis.
package runreport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/quadra/internal/productivity/application/workers"
	"github.com/redis/go-redis/v9"
)

// DefaultKey is the Redis key holding the last report.
const DefaultKey = "quadra:refresh:last_run"

// RedisStore implements workers.RunReportStore. Reports survive worker
// restarts and are shared between the worker and API processes.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisStore creates a store writing to key. A zero ttl keeps the report
// until it is overwritten.
func NewRedisStore(client *redis.Client, key string, ttl time.Duration) *RedisStore {
	if key == "" {
		key = DefaultKey
	}
	return &RedisStore{client: client, key: key, ttl: ttl}
}

func (s *RedisStore) SaveLast(ctx context.Context, report workers.RunReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal run report: %w", err)
	}
	return s.client.Set(ctx, s.key, data, s.ttl).Err()
}

func (s *RedisStore) Last(ctx context.Context) (*workers.RunReport, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, workers.ErrNoRunReport
	}
	if err != nil {
		return nil, err
	}

	var report workers.RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("unmarshal run report: %w", err)
	}
	return &report, nil
}
