// Package logging provides structured leveled logging for the animation
// runtime using Go's slog package. Logging is observability only: no caller
// behavior depends on whether a message is emitted.
package logging

import (
	"context"
	"log/slog"
	"os"
	"time"
)

var (
	// defaultLogger is the global logger instance.
	defaultLogger *slog.Logger
)

func init() {
	// Initialize with a default logger (text format, Info level)
	Init(LevelInfo, FormatText)
}

// Level represents a log level.
type Level int

const (
	// LevelTrace is for fine-grained per-frame diagnostics.
	LevelTrace Level = iota
	// LevelDebug is for debug messages.
	LevelDebug
	// LevelInfo is for informational messages.
	LevelInfo
	// LevelWarn is for warning messages.
	LevelWarn
	// LevelError is for error messages.
	LevelError
	// LevelCritical is for unrecoverable conditions.
	LevelCritical
)

// slog has no built-in trace or critical levels; these slot below Debug and
// above Error on slog's numeric scale.
const (
	slogLevelTrace    = slog.Level(-8)
	slogLevelCritical = slog.Level(12)
)

// Format represents a log output format.
type Format int

const (
	// FormatText outputs logs in human-readable text format.
	FormatText Format = iota
	// FormatJSON outputs logs in JSON format.
	FormatJSON
)

// Init initializes the global logger with the specified level and format.
//
// Parameters:
//   - level: the minimum level to emit
//   - format: text or JSON output
func Init(level Level, format Format) {
	var slogLevel slog.Level
	switch level {
	case LevelTrace:
		slogLevel = slogLevelTrace
	case LevelDebug:
		slogLevel = slog.LevelDebug
	case LevelInfo:
		slogLevel = slog.LevelInfo
	case LevelWarn:
		slogLevel = slog.LevelWarn
	case LevelError:
		slogLevel = slog.LevelError
	case LevelCritical:
		slogLevel = slogLevelCritical
	default:
		slogLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: slogLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.TimeKey:
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
			case slog.LevelKey:
				// Render the custom levels with their own names instead of
				// slog's DEBUG-4 / ERROR+4 spellings.
				if lv, ok := a.Value.Any().(slog.Level); ok {
					switch lv {
					case slogLevelTrace:
						return slog.String(slog.LevelKey, "TRACE")
					case slogLevelCritical:
						return slog.String(slog.LevelKey, "CRITICAL")
					}
				}
			}
			return a
		},
	}

	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	defaultLogger = slog.New(handler)
}

// Logger returns the global logger instance.
//
// Returns:
//   - *slog.Logger: the global logger
func Logger() *slog.Logger {
	return defaultLogger
}

// Helper functions for common logging patterns

// Trace logs a trace message with optional key-value pairs.
func Trace(msg string, args ...any) {
	defaultLogger.Log(context.Background(), slogLevelTrace, msg, args...)
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) {
	defaultLogger.Debug(msg, args...)
}

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) {
	defaultLogger.Info(msg, args...)
}

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) {
	defaultLogger.Warn(msg, args...)
}

// Error logs an error message with optional key-value pairs.
func Error(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
}

// Critical logs a critical message with optional key-value pairs.
func Critical(msg string, args ...any) {
	defaultLogger.Log(context.Background(), slogLevelCritical, msg, args...)
}
