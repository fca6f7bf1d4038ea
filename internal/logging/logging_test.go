package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWritesConsoleAndJSONFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	var console bytes.Buffer

	logger, path, cleanup, err := New(Options{Dir: dir, Console: &console})
	require.NoError(t, err)

	logger.Debug("hidden from console", zap.String("code", "A1"))
	logger.Info("turn issued", zap.String("code", "A1"))
	cleanup()

	assert.Equal(t, filepath.Join(dir, FileName), path)
	assert.Contains(t, console.String(), "turn issued")
	assert.NotContains(t, console.String(), "hidden from console")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2, "file core records debug")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &entry))
	assert.Equal(t, "turn issued", entry["msg"])
	assert.Equal(t, "A1", entry["code"])
	assert.Contains(t, entry, "timestamp")
}

func TestNewWithoutOutputsIsNop(t *testing.T) {
	logger, path, cleanup, err := New(Options{})
	require.NoError(t, err)
	defer cleanup()

	assert.Empty(t, path)
	logger.Info("nowhere")
}

func TestNewFileOnly(t *testing.T) {
	dir := t.TempDir()
	logger, path, cleanup, err := New(Options{Dir: dir})
	require.NoError(t, err)
	logger.Warn("poll failed")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"level":"warn"`)
}
