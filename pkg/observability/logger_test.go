package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	t.Run("debug not logged at info level", func(t *testing.T) {
		buf.Reset()
		logger.Debug("debug message")
		assert.Zero(t, buf.Len())
	})

	t.Run("info logged at info level", func(t *testing.T) {
		buf.Reset()
		logger.Info("info message")

		entry := decodeEntry(t, &buf)
		assert.Equal(t, "info", entry["level"])
		assert.Equal(t, "info message", entry["msg"])
	})

	t.Run("warn logged at info level", func(t *testing.T) {
		buf.Reset()
		logger.Warnf("warn %d", 1)
		assert.Equal(t, "warn 1", decodeEntry(t, &buf)["msg"])
	})

	t.Run("error logged at info level", func(t *testing.T) {
		buf.Reset()
		logger.Error("error message")
		assert.Equal(t, "error", decodeEntry(t, &buf)["level"])
	})
}

func TestLogger_WithField(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	logger.WithField("key", "value").Info("message")

	assert.Equal(t, "value", decodeEntry(t, &buf)["key"])
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(DebugLevel, &buf)

	logger.WithFields(map[string]interface{}{
		"files":    3,
		"findings": 7,
	}).Debug("summary")

	entry := decodeEntry(t, &buf)
	assert.Equal(t, float64(3), entry["files"])
	assert.Equal(t, float64(7), entry["findings"])
}

func TestLogger_WithError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	assert.Same(t, logger, logger.WithError(nil))

	logger.WithError(errors.New("boom")).Error("failed")
	assert.Equal(t, "boom", decodeEntry(t, &buf)["error"])
}

func TestLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithFormat(InfoLevel, &buf, TextFormat)

	logger.WithField("rule", "lex-error").Info("checked")

	out := buf.String()
	assert.Contains(t, out, "level=info")
	assert.Contains(t, out, "msg=checked")
	assert.Contains(t, out, "rule=lex-error")
}

func TestNopLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		NopLogger().WithField("a", 1).Error("dropped")
	})
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
		wantErr  bool
	}{
		{"debug", DebugLevel, false},
		{"INFO", InfoLevel, false},
		{"", InfoLevel, false},
		{"warning", WarnLevel, false},
		{"error", ErrorLevel, false},
		{"verbose", InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLogLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", DebugLevel.String())
	assert.Equal(t, "ERROR", ErrorLevel.String())
}

func TestContextHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	ctx := WithRunID(context.Background(), "run-123")
	ctx = WithLogger(ctx, logger)

	assert.Equal(t, "run-123", GetRunID(ctx))
	assert.Same(t, logger, GetLogger(ctx))

	FromContext(ctx).Info("started")
	assert.True(t, strings.Contains(buf.String(), `"run_id":"run-123"`))

	assert.Empty(t, GetRunID(context.Background()))
	assert.NotNil(t, GetLogger(context.Background()))
}
