package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleLevelFiltering(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWithOptions(Options{Level: "warn"}, &buf)
	log.Info("hidden")
	log.Warn("shown", "id", "abc")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "id=abc")
}

func TestRotatingFileSink(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "tradebook.log")
	var console bytes.Buffer
	log := NewWithOptions(Options{Level: "debug", File: path, MaxSizeMB: 1}, &console)

	log.With("component", "test").Debug("trade saved", "id", "01H")
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"trade saved"`)
	assert.Contains(t, string(data), `"component":"test"`)
	assert.Contains(t, console.String(), "trade saved")
}

func TestNop(t *testing.T) {
	t.Parallel()

	log := Nop()
	log.Error("ignored")
	assert.NoError(t, log.Close())
}
