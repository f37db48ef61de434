package slicefinder

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with slice finder specific helpers.
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
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithK adds a k (top-K size) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// LogBasicSlices logs the level-1 summary: one-hot columns considered and
// basic slices kept.
func (l *Logger) LogBasicSlices(ctx context.Context, lvl slog.Level, columns, kept int) {
	l.Log(ctx, lvl, "basic slices created",
		"columns", columns,
		"kept", kept,
		"dropped", columns-kept,
	)
}

// LogLevel logs the summary of one lattice level. entered counts the slices
// of the level that entered the top-K list.
func (l *Logger) LogLevel(ctx context.Context, lvl slog.Level, t Trace, topk, entered int, d time.Duration) {
	l.Log(ctx, lvl, "level evaluated",
		"level", t.Level,
		"generated", t.Generated,
		"valid", t.Valid,
		"topk", topk,
		"entered", entered,
		"max_score", t.MaxScore,
		"min_score", t.MinScore,
		"duration", d,
	)
}

// LogRun logs the outcome of a search.
func (l *Logger) LogRun(ctx context.Context, levels, found int, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "slice search failed",
			"levels", levels,
			"duration", d,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "slice search completed",
			"levels", levels,
			"topk", found,
			"duration", d,
		)
	}
}
