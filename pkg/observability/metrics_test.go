package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInMemoryMetrics(t *testing.T) {
	t.Run("counter", func(t *testing.T) {
		m := NewInMemoryMetrics()
		m.Counter(MetricRefreshRuns, 1)
		m.Counter(MetricRefreshRuns, 1)
		assert.Equal(t, int64(2), m.GetCounter(MetricRefreshRuns))
	})

	t.Run("counter with tags", func(t *testing.T) {
		m := NewInMemoryMetrics()
		m.Counter(MetricHTTPRequests, 1, T("method", "GET"), T("status", "200"))
		m.Counter(MetricHTTPRequests, 1, T("status", "200"), T("method", "GET"))
		m.Counter(MetricHTTPRequests, 1, T("method", "POST"), T("status", "201"))

		assert.Equal(t, int64(2), m.GetCounter(MetricHTTPRequests, T("method", "GET"), T("status", "200")))
		assert.Equal(t, int64(1), m.GetCounter(MetricHTTPRequests, T("method", "POST"), T("status", "201")))
	})

	t.Run("gauge keeps the last value", func(t *testing.T) {
		m := NewInMemoryMetrics()
		m.Gauge("outbox.pending", 10)
		m.Gauge("outbox.pending", 4)
		assert.Equal(t, 4.0, m.GetGauge("outbox.pending"))
	})

	t.Run("timing", func(t *testing.T) {
		m := NewInMemoryMetrics()
		m.Timing(MetricRefreshDuration, 100*time.Millisecond)
		m.Timing(MetricRefreshDuration, 200*time.Millisecond)
		assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, m.GetTimings(MetricRefreshDuration))
	})

	t.Run("snapshot", func(t *testing.T) {
		m := NewInMemoryMetrics()
		m.Counter(MetricRefreshChanged, 3)
		m.Gauge("outbox.pending", 2)
		snap := m.Snapshot()
		assert.Equal(t, 3.0, snap[MetricRefreshChanged])
		assert.Equal(t, 2.0, snap["outbox.pending"])
	})
}

func TestNoopMetrics(t *testing.T) {
	var m Metrics = NoopMetrics{}
	m.Counter("x", 1)
	m.Gauge("x", 1)
	m.Timing("x", time.Second)
}

func TestFormatKey(t *testing.T) {
	tests := []struct {
		name     string
		tags     []Tag
		expected string
	}{
		{"no tags", nil, "requests"},
		{"single tag", []Tag{T("method", "GET")}, "requests:method=GET"},
		{"tags are sorted", []Tag{T("status", "200"), T("method", "GET")}, "requests:method=GET:status=200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatKey("requests", tt.tags))
		})
	}
}
