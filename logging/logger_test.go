package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// compile-time interface checks
var (
	_ Logger = (*RelayLogger)(nil)
	_ Logger = (*SlogAdapter)(nil)
	_ Logger = NoOpLogger{}
)

func newBufferLogger(level LogLevel) (*RelayLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: level, Format: "json", Output: &buf})
	return logger, &buf
}

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	return entry
}

func TestRelayLogger_ContextualAttrs(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelInfo)

	logger.
		WithComponent("runner").
		WithSession("s1", "triage").
		WithContext("request_id", "r-42").
		Info("runner.turn.start", "input_len", 12)

	entry := lastEntry(t, buf)
	assert.Equal(t, "runner.turn.start", entry["msg"])
	assert.Equal(t, "runner", entry["component"])
	assert.Equal(t, "s1", entry["session_id"])
	assert.Equal(t, "triage", entry["agent"])
	assert.Equal(t, "r-42", entry["request_id"])
	assert.Equal(t, float64(12), entry["input_len"])
}

func TestRelayLogger_LevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelWarn)

	logger.Debug("dropped")
	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn("kept")
	assert.Equal(t, "kept", lastEntry(t, buf)["msg"])
}

func TestRelayLogger_CloningDoesNotMutateParent(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelInfo)

	_ = logger.WithComponent("child").WithContext("extra", true)
	logger.Info("parent")

	entry := lastEntry(t, buf)
	assert.NotContains(t, entry, "component")
	assert.NotContains(t, entry, "extra")
}

func TestRelayLogger_DomainHelpers(t *testing.T) {
	t.Run("model call success", func(t *testing.T) {
		logger, buf := newBufferLogger(LogLevelInfo)
		logger.LogModelCall("gpt-4o-mini", 128, 250*time.Millisecond, true, nil)

		entry := lastEntry(t, buf)
		assert.Equal(t, "Model call completed", entry["msg"])
		assert.Equal(t, "gpt-4o-mini", entry["model"])
		assert.Equal(t, float64(128), entry["token_count"])
		assert.Equal(t, true, entry["success"])
	})

	t.Run("model call failure", func(t *testing.T) {
		logger, buf := newBufferLogger(LogLevelInfo)
		logger.LogModelCall("gpt-4o-mini", 0, time.Second, false, errors.New("timeout"))

		entry := lastEntry(t, buf)
		assert.Equal(t, "Model call failed", entry["msg"])
		assert.Equal(t, "ERROR", entry["level"])
		assert.Equal(t, "timeout", entry["error"])
	})

	t.Run("handoff", func(t *testing.T) {
		logger, buf := newBufferLogger(LogLevelInfo)
		logger.LogHandoff("triage", "billing", "invoice question")

		entry := lastEntry(t, buf)
		assert.Equal(t, "Handoff requested", entry["msg"])
		assert.Equal(t, "triage", entry["from_agent"])
		assert.Equal(t, "billing", entry["to_agent"])
		assert.Equal(t, "invoice question", entry["reason"])
	})

	t.Run("cancellation without reason", func(t *testing.T) {
		logger, buf := newBufferLogger(LogLevelInfo)
		logger.LogCancellation("s1", "")

		entry := lastEntry(t, buf)
		assert.Equal(t, "Session cancelled", entry["msg"])
		assert.Equal(t, "s1", entry["cancelled_session"])
		assert.NotContains(t, entry, "reason")
	})

	t.Run("timer", func(t *testing.T) {
		logger, buf := newBufferLogger(LogLevelInfo)
		done := logger.StartTimer("store.apply")
		done()

		entry := lastEntry(t, buf)
		assert.Equal(t, "Operation completed", entry["msg"])
		assert.Equal(t, "store.apply", entry["operation"])
		assert.Contains(t, entry, "duration")
	})
}

func TestNewLogger_NilConfigDefaults(t *testing.T) {
	logger := NewLogger(nil)
	require.NotNil(t, logger)
	assert.Equal(t, LogLevelInfo, logger.level)
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(slog.New(slog.NewJSONHandler(&buf, nil)))

	logger.Info("adapter.test", "key", "value")

	entry := lastEntry(t, &buf)
	assert.Equal(t, "adapter.test", entry["msg"])
	assert.Equal(t, "value", entry["key"])
}

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LogLevelDebug.String())
	assert.Equal(t, "INFO", LogLevelInfo.String())
	assert.Equal(t, "WARN", LogLevelWarn.String())
	assert.Equal(t, "ERROR", LogLevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(99).String())
}
