// Package logging builds the zerolog loggers used by the pathguard command.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

const defaultTimeFmt = time.RFC3339

// Config controls logger construction.
type Config struct {
	Format    string // "json", "console", or "auto"
	Level     string // "trace", "debug", "info", "warn", "error" or "disabled"
	Component string // optional component name
	FilePath  string // optional log file, always written as JSON
}

var (
	isTerminalFn = term.IsTerminal
	mkdirAllFn   = os.MkdirAll
	openFileFn   = os.OpenFile
	lstatFn      = os.Lstat
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns a logger that writes to out and, when cfg.FilePath is set, to
// that file. Invalid settings are reported on out and replaced by defaults.
// The returned closer releases the log file and is never nil.
func New(cfg Config, out io.Writer) (zerolog.Logger, io.Closer) {
	level := parseLevel(cfg.Level, out)
	if level == zerolog.Disabled {
		return zerolog.Nop(), nopCloser{}
	}

	writer := selectWriter(cfg.Format, out)
	var closer io.Closer = nopCloser{}
	if file, err := openLogFile(cfg.FilePath); err != nil {
		fmt.Fprintf(out, "logging: unable to configure file output: %v\n", err)
	} else if file != nil {
		writer = zerolog.MultiLevelWriter(writer, file)
		closer = file
	}

	ctx := zerolog.New(writer).Level(level).With().Timestamp()
	if component := strings.TrimSpace(cfg.Component); component != "" {
		ctx = ctx.Str("component", component)
	}
	return ctx.Logger(), closer
}

// WithCheckID tags logger with a check ID, generating one when id is blank.
func WithCheckID(logger zerolog.Logger, id string) (zerolog.Logger, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.NewString()
	}
	return logger.With().Str("check_id", id).Logger(), id
}

// ParseLevel reports the zerolog level for name and whether name is valid.
// An empty name means info.
func ParseLevel(name string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return zerolog.InfoLevel, true
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseLevel(name string, out io.Writer) zerolog.Level {
	level, ok := ParseLevel(name)
	if !ok {
		fmt.Fprintf(out, "logging: invalid level %q; using %q\n", name, "info")
	}
	return level
}

func selectWriter(format string, out io.Writer) io.Writer {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "console":
		return newConsoleWriter(out)
	case "json":
		return out
	case "auto", "":
		if isTerminal(out) {
			return newConsoleWriter(out)
		}
		return out
	default:
		fmt.Fprintf(out, "logging: invalid format %q; using %q\n", format, "json")
		return out
	}
}

func newConsoleWriter(out io.Writer) io.Writer {
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: defaultTimeFmt,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isTerminalFn(int(f.Fd()))
}

// openLogFile opens path for appending, creating it and its directory. An
// existing path must be a regular file.
func openLogFile(path string) (*os.File, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	path = filepath.Clean(path)

	if err := mkdirAllFn(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	if fi, err := lstatFn(path); err == nil && !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("log file %s is not a regular file", path)
	}
	f, err := openFileFn(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return f, nil
}
