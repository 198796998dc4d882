package rcslice

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with rcslice-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithName tags every record with the name of the buffer or blob.
func (l *Logger) WithName(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("name", name),
	}
}

// LogAlloc logs the creation of a backing allocation.
func (l *Logger) LogAlloc(elements int) {
	l.Debug("backing allocated", "elements", elements)
}

// LogRelease logs the reclamation of a backing allocation.
func (l *Logger) LogRelease(elements int) {
	l.Debug("backing released", "elements", elements)
}

// LogLoad logs a blob load.
func (l *Logger) LogLoad(ctx context.Context, name string, size int64, mapped bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"name", name,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "load completed",
			"name", name,
			"size", size,
			"mapped", mapped,
		)
	}
}

// LogEvict logs the eviction of a cached buffer.
func (l *Logger) LogEvict(name string, size int, refs int64) {
	l.Debug("cache eviction",
		"name", name,
		"size", size,
		"refs", refs,
	)
}
