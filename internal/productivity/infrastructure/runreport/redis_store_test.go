package runreport

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/felixgeelhaar/quadra/internal/productivity/application/workers"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient connects to REDIS_TEST_URL or skips.
func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opt)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())
	return client
}

func TestRedisStore_SaveAndLast(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	key := "quadra:test:" + uuid.NewString()
	t.Cleanup(func() { client.Del(context.Background(), key) })

	store := NewRedisStore(client, key, time.Minute)

	_, err := store.Last(ctx)
	assert.ErrorIs(t, err, workers.ErrNoRunReport)

	report := workers.RunReport{
		RunID:      uuid.New(),
		Trigger:    workers.TriggerManual,
		StartedAt:  time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2026, 3, 10, 9, 0, 1, 0, time.UTC),
		Examined:   12,
		Changed:    3,
		Success:    true,
	}
	require.NoError(t, store.SaveLast(ctx, report))

	got, err := store.Last(ctx)
	require.NoError(t, err)
	assert.Equal(t, report.RunID, got.RunID)
	assert.Equal(t, 3, got.Changed)
	assert.True(t, got.FinishedAt.Equal(report.FinishedAt))
}

func TestNewRedisStore_DefaultKey(t *testing.T) {
	store := NewRedisStore(redis.NewClient(&redis.Options{Addr: "localhost:0"}), "", 0)
	assert.Equal(t, DefaultKey, store.key)
}
