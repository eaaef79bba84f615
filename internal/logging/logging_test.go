package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("DASHAI_LOG_LEVEL", "debug")
	t.Setenv("DASHAI_LOG_DIR", "-")

	cfg := ConfigFromEnv()
	assert.Equal(t, LevelDebug, cfg.Level)
	assert.Empty(t, cfg.LogDir)
}

func TestConsoleRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(Config{Level: LevelWarn}, &buf)
	require.NoError(t, err)

	log.Info("hidden message")
	log.Warn("visible message", F("key", "value"))
	require.NoError(t, log.Close())

	out := buf.String()
	assert.NotContains(t, out, "hidden message")
	assert.Contains(t, out, "visible message")
	assert.Contains(t, out, "value")
}

func TestQuietDisablesConsole(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(Config{Level: LevelDebug, Quiet: true}, &buf)
	require.NoError(t, err)

	log.Error("nobody sees this")
	assert.Empty(t, buf.String())
}

func TestFileCapturesAllLevels(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	log, err := NewWithWriter(Config{Level: LevelError, LogDir: dir}, &buf)
	require.NoError(t, err)

	log.Debug("debug for the file", SessionID("s-1"))
	require.NoError(t, log.Close())

	entries, err := filepath.Glob(filepath.Join(dir, "session_*.log"))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(entries[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "debug for the file")
	assert.Contains(t, string(data), `"session_id":"s-1"`)
	assert.NotContains(t, buf.String(), "debug for the file")
}

func TestWithPrefixAndFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := FromZap(zap.New(core)).WithPrefix("agent").With(SessionID("abc"))

	log.Warn("tool skipped", ToolName("deleteEverything"), Error(errors.New("unknown")))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "agent", entries[0].LoggerName)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "abc", ctx["session_id"])
	assert.Equal(t, "deleteEverything", ctx["tool"])
	assert.Equal(t, "unknown", ctx["error"])
}

func TestNilLoggerIsSafe(t *testing.T) {
	var log *Logger
	log.Info("nothing")
	log.WithPrefix("x").Debug("still nothing")
	assert.False(t, log.IsDebugEnabled())
	assert.NoError(t, log.Close())
}

func TestQueryTruncates(t *testing.T) {
	f := Query(strings.Repeat("a", 300))
	s, ok := f.Value.(string)
	require.True(t, ok)
	assert.Len(t, s, 200)
	assert.True(t, strings.HasSuffix(s, "..."))
}

func TestOrFallsBackToNop(t *testing.T) {
	require.NoError(t, Close())
	log := Or(nil)
	require.NotNil(t, log)
	log.Info("discarded")
}
