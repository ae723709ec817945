package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	l := NewZerologLogger("test")
	if l == nil {
		t.Fatalf("nil logger")
	}
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestNewWithWriter_Level(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "fit", "warn")
	l.Infof("hidden")
	l.Debugw("hidden", map[string]any{"station_id": 1})
	l.Warnf("station %d failed", 7)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "fit", entry["component"])
	assert.Equal(t, "station 7 failed", entry["message"])
}

func TestNewWithWriter_Fields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "fit", "debug")
	l.Debugw("station end", map[string]any{"station_id": 42, "key": "poisson_results_42_rebalanced"})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.EqualValues(t, 42, entry["station_id"])
	assert.Equal(t, "poisson_results_42_rebalanced", entry["key"])
}

func TestSetup_FileOutput(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	path := filepath.Join(t.TempDir(), "logs", "dockflow.log")
	closer, err := Setup(Options{Level: "warn", File: path, MaxSizeMB: 1})
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = Setup(Options{})
	})

	l := New("batch")
	l.Infof("hidden")
	l.Warnf("station %d skipped", 3)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "batch", entry["component"])
	assert.Equal(t, "station 3 skipped", entry["message"])
	assert.NotEmpty(t, entry["time"])
}

func TestSetup_EnvLevelWins(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	path := filepath.Join(t.TempDir(), "dockflow.log")
	closer, err := Setup(Options{Level: "debug", File: path})
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = Setup(Options{})
	})

	l := New("fit")
	l.Warnf("hidden")
	l.Errorf("visible")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "visible")
}
