// Package log is the process-wide leveled logger. Verbosity follows the
// number of -v flags given on the command line.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// Verbosity levels
const (
	LevelQuiet = iota // warnings and errors only
	LevelInfo         // -v: tier decisions, counts, progress
	LevelDebug        // -vv: every mutation and API call
	LevelTrace        // -vvv: raw responses
)

const slogLevelTrace = slog.Level(-8)

var (
	mu         sync.Mutex
	verbosity  int
	logger     *slog.Logger
	output     io.Writer
	inProgress bool
)

// Initialize sets up the global logger with the specified verbosity level.
func Initialize(level int, w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	verbosity = level
	output = w
	logger = newLogger(level, w)
}

// Discard silences all output, including warnings. Used while the TUI owns
// the terminal.
func Discard() {
	Initialize(LevelQuiet, io.Discard)
}

func newLogger(level int, w io.Writer) *slog.Logger {
	var slogLevel slog.Level
	switch {
	case level >= LevelTrace:
		slogLevel = slogLevelTrace
	case level >= LevelDebug:
		slogLevel = slog.LevelDebug
	case level >= LevelInfo:
		slogLevel = slog.LevelInfo
	default:
		slogLevel = slog.LevelWarn
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: slogLevel,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == slogLevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}))
}

// Info logs at info level (-v)
func Info(msg string, args ...any) {
	logAt(LevelInfo, slog.LevelInfo, msg, args)
}

// Debug logs at debug level (-vv)
func Debug(msg string, args ...any) {
	logAt(LevelDebug, slog.LevelDebug, msg, args)
}

// Trace logs at trace level (-vvv)
func Trace(msg string, args ...any) {
	logAt(LevelTrace, slogLevelTrace, msg, args)
}

// Warn logs at warn level (always visible)
func Warn(msg string, args ...any) {
	logAt(LevelQuiet, slog.LevelWarn, msg, args)
}

// Error logs at error level (always visible)
func Error(msg string, args ...any) {
	logAt(LevelQuiet, slog.LevelError, msg, args)
}

func logAt(min int, level slog.Level, msg string, args []any) {
	mu.Lock()
	defer mu.Unlock()

	if verbosity < min {
		return
	}
	clearProgress()
	logger.Log(context.Background(), level, msg, args...)
}

// Progress prints a progress message with carriage return (no newline).
// Only shown at info level or higher.
func Progress(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if verbosity >= LevelInfo {
		inProgress = true
		_, _ = fmt.Fprintf(output, "\r"+format, args...)
	}
}

// ProgressDone completes a progress line with "done" and newline.
func ProgressDone() {
	mu.Lock()
	defer mu.Unlock()

	if verbosity >= LevelInfo && inProgress {
		_, _ = fmt.Fprintln(output, " done")
		inProgress = false
	}
}

// ProgressClear clears the current progress line.
func ProgressClear() {
	mu.Lock()
	defer mu.Unlock()

	if inProgress {
		_, _ = fmt.Fprint(output, "\r\033[K")
		inProgress = false
	}
}

// clearProgress keeps a log line from overwriting a progress line. Callers
// hold mu.
func clearProgress() {
	if inProgress {
		_, _ = fmt.Fprintln(output)
		inProgress = false
	}
}

// IsInfo returns true if info-level logging is enabled
func IsInfo() bool {
	return Verbosity() >= LevelInfo
}

// IsDebug returns true if debug-level logging is enabled
func IsDebug() bool {
	return Verbosity() >= LevelDebug
}

// IsTrace returns true if trace-level logging is enabled
func IsTrace() bool {
	return Verbosity() >= LevelTrace
}

// Verbosity returns the current verbosity level
func Verbosity() int {
	mu.Lock()
	defer mu.Unlock()
	return verbosity
}

func init() {
	output = os.Stderr
	verbosity = LevelQuiet
	logger = newLogger(LevelQuiet, output)
}
