package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNew_TextHasNoColorOnBuffer(t *testing.T) {
	var buf bytes.Buffer
	l, _, err := New(Options{Level: "debug", Writer: &buf})
	require.NoError(t, err)

	l.Debug("block started", "block", "title", "error", errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, "block started")
	assert.Contains(t, out, "block=title")
	assert.Contains(t, out, "boom")
	assert.NotContains(t, out, "\x1b[")
}

func TestNew_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l, _, err := New(Options{Level: "warn", Format: "json", Writer: &buf})
	require.NoError(t, err)

	l.Info("hidden")
	l.Warn("shown", "locale", "fr_FR")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "fr_FR", rec["locale"])
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "descstream.log")
	l, closeLog, err := New(Options{Output: path, Format: "json"})
	require.NoError(t, err)

	l.Info("written")
	require.NoError(t, closeLog())
	// A second close reports the file is already closed.
	require.Error(t, closeLog())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written")
}

func TestNew_StreamCloseIsNoop(t *testing.T) {
	_, closeLog, err := New(Options{Output: "stderr"})
	require.NoError(t, err)
	require.NoError(t, closeLog())
	require.NoError(t, closeLog())
}

func TestNew_BadFileOutput(t *testing.T) {
	_, _, err := New(Options{Output: filepath.Join(t.TempDir(), "missing", "x.log")})
	require.Error(t, err)
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l, _, err := New(Options{Format: "json", Writer: &buf})
	require.NoError(t, err)

	WithComponent(l, "httpapi").Info("hello")
	assert.Contains(t, buf.String(), `"component":"httpapi"`)

	// A nil logger falls back to a discarding one.
	WithComponent(nil, "x").Info("dropped")
}
