package lotofacil

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(SlogOptions{Level: "info", Output: &buf, NoColor: true})

	logger.Info("generated %d game(s) for user=%s", 2, "u1")
	logger.Debug("hidden %d", 1)
	logger.Error("store failed: %v", assert.AnError)

	out := buf.String()
	assert.Contains(t, out, "generated 2 game(s) for user=u1")
	assert.Contains(t, out, "store failed")
	assert.NotContains(t, out, "hidden")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLogLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLogLevel("verbose"))
}

func TestZapLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := NewZapLogger(zap.New(core))

	logger.Info("activated code for user=%s", "u1")
	logger.Debug("cleared history")
	logger.Error("boom %d", 42)

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "activated code for user=u1", entries[0].Message)
	assert.Equal(t, "boom 42", entries[2].Message)

	// nil falls back to a no-op logger
	NewZapLogger(nil).Info("ignored")
}

func TestNewLogger(t *testing.T) {
	l, err := NewLogger(&LogConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)
	_, ok := l.(*ZapLogger)
	assert.True(t, ok)

	l, err = NewLogger(nil)
	require.NoError(t, err)
	_, ok = l.(*SlogLogger)
	assert.True(t, ok)
}

func TestSilentLogger(t *testing.T) {
	logger := NewSilentLogger()

	// 不应 panic
	logger.Info("test info message")
	logger.Error("test error message: %v", assert.AnError)
	logger.Debug("test debug message")

	var _ Logger = logger
}
