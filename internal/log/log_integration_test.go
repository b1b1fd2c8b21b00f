package log

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogging(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "test.log")

	logger, err := New(Config{
		Level:    "debug",
		FilePath: logPath,
	})
	require.NoError(t, err)

	SetDefaultLogger(logger)
	t.Cleanup(func() { SetDefaultLogger(nil) })

	Debug("Debug message", "test", true)
	Info("Info message", "test", true)
	Warn("Warning message", "test", true)
	Error("Error message", "error", fmt.Errorf("test error"))
	Trace("Trace message")

	// Close logger to ensure file is written
	logger.Close()

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)

	contentStr := string(content)
	assert.Contains(t, contentStr, "Debug message")
	assert.Contains(t, contentStr, "Info message")
	assert.Contains(t, contentStr, "Warning message")
	assert.Contains(t, contentStr, "Error message")
	assert.Contains(t, contentStr, "test error")
	// Trace lines are only written at the trace level
	assert.NotContains(t, contentStr, "Trace message")
}

func TestTraceLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "trace").With("component", "test")

	logger.Trace("poll tick", "fraction", 0.5)
	logger.Info("plain")

	out := buf.String()
	assert.Contains(t, out, "TRACE: poll tick")
	assert.Contains(t, out, `"component":"test"`)
	assert.Contains(t, out, "plain")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "warn")

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNoDefaultLogger(t *testing.T) {
	SetDefaultLogger(nil)
	// Must not panic without a default logger
	Info("dropped")
	Trace("dropped")
}
