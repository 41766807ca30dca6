package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("text format", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: LogLevelInfo, Format: LogFormatText, Output: &buf})

		logger.Info("task created", "quadrant", "Q1")

		assert.Contains(t, buf.String(), "task created")
		assert.Contains(t, buf.String(), "quadrant=Q1")
	})

	t.Run("json format with service attributes", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{
			Level:   LogLevelInfo,
			Format:  LogFormatJSON,
			Output:  &buf,
			Service: "quadra-worker",
			Version: "1.2.0",
		})

		logger.Info("refresh finished", "changed", 3)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "refresh finished", entry["msg"])
		assert.Equal(t, float64(3), entry["changed"])
		assert.Equal(t, "quadra-worker", entry["service"])
		assert.Equal(t, "1.2.0", entry["version"])
	})

	t.Run("respects level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: LogLevelWarn, Output: &buf})

		logger.Info("hidden")
		logger.Warn("shown")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("adds ids from context", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Format: LogFormatJSON, Output: &buf})

		ctx := WithCorrelationID(context.Background(), "corr-123")
		ctx = WithRequestID(ctx, "req-456")
		ctx = WithUserID(ctx, "user-789")
		logger.InfoContext(ctx, "request")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "corr-123", entry[CorrelationIDKey])
		assert.Equal(t, "req-456", entry[RequestIDKey])
		assert.Equal(t, "user-789", entry[UserIDKey])
	})

	t.Run("With keeps context attributes", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Format: LogFormatJSON, Output: &buf}).With("component", "api")

		logger.InfoContext(WithCorrelationID(context.Background(), "c-1"), "hello")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "api", entry["component"])
		assert.Equal(t, "c-1", entry[CorrelationIDKey])
	})
}

func TestLogConfigs(t *testing.T) {
	dev := DefaultLogConfig()
	assert.Equal(t, LogFormatText, dev.Format)
	assert.Equal(t, "quadra", dev.Service)

	prod := ProductionLogConfig()
	assert.Equal(t, LogFormatJSON, prod.Format)
	assert.True(t, prod.AddSource)
}

func TestParseSlogLevel(t *testing.T) {
	tests := []struct {
		input    LogLevel
		expected slog.Level
	}{
		{LogLevelDebug, slog.LevelDebug},
		{LogLevelInfo, slog.LevelInfo},
		{LogLevelWarn, slog.LevelWarn},
		{LogLevelError, slog.LevelError},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(string(tt.input), func(t *testing.T) {
			assert.Equal(t, tt.expected, parseSlogLevel(tt.input))
		})
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := NewRequestContext(context.Background(), "")
	assert.NotEmpty(t, CorrelationIDFromContext(ctx))
	assert.NotEmpty(t, RequestIDFromContext(ctx))

	ctx = NewRequestContext(context.Background(), "given")
	assert.Equal(t, "given", CorrelationIDFromContext(ctx))

	assert.Empty(t, UserIDFromContext(context.Background()))
}
