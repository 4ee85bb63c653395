package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readJSONLine(t *testing.T, data string) map[string]interface{} {
	t.Helper()
	line := strings.TrimSpace(data)
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	require.NotEmpty(t, line, "expected log output")

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line), &event))
	return event
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, closer := New(Config{Format: "json", Level: "debug", Component: "hook"}, &buf)
	defer closer.Close()

	logger.Debug().Str("path", "/etc/passwd").Msg("classified path")
	event := readJSONLine(t, buf.String())
	assert.Equal(t, "debug", event["level"])
	assert.Equal(t, "hook", event["component"])
	assert.Equal(t, "/etc/passwd", event["path"])
	assert.Contains(t, event, "time")
}

func TestNewLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := New(Config{Format: "json", Level: "warn"}, &buf)
	logger.Info().Msg("hidden")
	assert.Empty(t, buf.String())
	logger.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewDisabled(t *testing.T) {
	var buf bytes.Buffer
	logger, closer := New(Config{Level: "disabled", FilePath: filepath.Join(t.TempDir(), "never.log")}, &buf)
	logger.Error().Msg("nothing")
	assert.Empty(t, buf.String())
	assert.NoError(t, closer.Close())
}

func TestNewInvalidSettings(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := New(Config{Format: "xml", Level: "loud"}, &buf)
	out := buf.String()
	assert.Contains(t, out, `invalid level "loud"`)
	assert.Contains(t, out, `invalid format "xml"`)

	buf.Reset()
	logger.Info().Msg("fallback")
	event := readJSONLine(t, buf.String())
	assert.Equal(t, "info", event["level"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
		ok   bool
	}{
		{"", zerolog.InfoLevel, true},
		{"INFO", zerolog.InfoLevel, true},
		{"trace", zerolog.TraceLevel, true},
		{"debug", zerolog.DebugLevel, true},
		{" warning ", zerolog.WarnLevel, true},
		{"error", zerolog.ErrorLevel, true},
		{"off", zerolog.Disabled, true},
		{"verbose", zerolog.InfoLevel, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestSelectWriterAuto(t *testing.T) {
	orig := isTerminalFn
	t.Cleanup(func() { isTerminalFn = orig })

	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()

	isTerminalFn = func(int) bool { return true }
	_, console := selectWriter("auto", f).(zerolog.ConsoleWriter)
	assert.True(t, console)

	isTerminalFn = func(int) bool { return false }
	assert.Equal(t, f, selectWriter("auto", f))

	var buf bytes.Buffer
	assert.Equal(t, &buf, selectWriter("", &buf), "writers without a descriptor are never terminals")

	_, console = selectWriter("console", &buf).(zerolog.ConsoleWriter)
	assert.True(t, console)
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "pathguard.log")
	var buf bytes.Buffer
	logger, closer := New(Config{Format: "json", Level: "info", FilePath: path}, &buf)
	logger.Info().Msg("first")
	require.NoError(t, closer.Close())

	logger, closer = New(Config{Format: "json", Level: "info", FilePath: path}, &buf)
	logger.Info().Msg("second")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
	assert.Contains(t, string(data), "first")
	assert.Contains(t, string(data), "second")

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
}

func TestFileOutputRejectsDirectory(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	logger, closer := New(Config{Format: "json", FilePath: dir}, &buf)
	defer closer.Close()
	assert.Contains(t, buf.String(), "not a regular file")

	buf.Reset()
	logger.Info().Msg("still logs")
	assert.Contains(t, buf.String(), "still logs")
}

func TestWithCheckID(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	logger, id := WithCheckID(base, "  fixed ")
	assert.Equal(t, "fixed", id)
	logger.Info().Msg("x")
	assert.Equal(t, "fixed", readJSONLine(t, buf.String())["check_id"])

	_, generated := WithCheckID(base, "")
	assert.Len(t, generated, 36)
	_, other := WithCheckID(base, "")
	assert.NotEqual(t, generated, other)
}
