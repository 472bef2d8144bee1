// Package log provides leveled logging for stalesweep, built on slog.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Verbosity levels
const (
	LevelQuiet = iota // Default: only errors and warnings
	LevelInfo         // -v: per-repo progress, operation summaries
	LevelDebug        // -vv: API calls, pagination, per-operation detail
	LevelTrace        // -vvv: full details
)

// slogLevelTrace sits below slog's debug level.
const slogLevelTrace = slog.Level(-8)

var (
	verbosity int
	logger    *slog.Logger
)

// Initialize sets up the global logger with the specified verbosity level.
func Initialize(level int, w io.Writer) {
	verbosity = level

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

	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: slogLevel,
	}))
}

// Info logs at info level (-v)
func Info(msg string, args ...any) {
	if verbosity >= LevelInfo {
		logger.Info(msg, args...)
	}
}

// Debug logs at debug level (-vv)
func Debug(msg string, args ...any) {
	if verbosity >= LevelDebug {
		logger.Debug(msg, args...)
	}
}

// Trace logs at trace level (-vvv)
func Trace(msg string, args ...any) {
	if verbosity >= LevelTrace {
		logger.Log(context.Background(), slogLevelTrace, msg, args...)
	}
}

// Warn logs at warn level (always visible)
func Warn(msg string, args ...any) {
	logger.Warn(msg, args...)
}

// Error logs at error level (always visible)
func Error(msg string, args ...any) {
	logger.Error(msg, args...)
}

// IsDebug returns true if debug-level logging is enabled
func IsDebug() bool {
	return verbosity >= LevelDebug
}

// Verbosity returns the current verbosity level
func Verbosity() int {
	return verbosity
}

func init() {
	verbosity = LevelQuiet
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}
