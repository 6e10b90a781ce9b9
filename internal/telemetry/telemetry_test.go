package telemetry

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("loud"))
}

func TestInitLoggerWritesJSON(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	dir := t.TempDir()
	var out bytes.Buffer

	logger, closer, err := InitLogger(dir, "relay.log", slog.LevelInfo, &out)
	require.NoError(t, err)

	logger.Info("relay ready", "addr", ":8080")
	require.NoError(t, closer.Close())

	assert.Contains(t, out.String(), `"msg":"relay ready"`)

	data, err := os.ReadFile(filepath.Join(dir, "relay.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"addr":":8080"`)
}
