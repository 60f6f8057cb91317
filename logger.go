package bovw

import (
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with pipeline-specific field helpers so log
// records carry consistent names across components.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler. A nil handler
// falls back to a text handler on stderr at info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger creates a Logger with human-readable output on stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewJSONLogger creates a Logger with JSON output on stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, nil))
}

// WithIndex tags records with a corpus image index.
func (l *Logger) WithIndex(index int) *Logger {
	return &Logger{Logger: l.Logger.With("index", index)}
}

// WithAlpha tags records with the samples-per-image parameter.
func (l *Logger) WithAlpha(alpha int) *Logger {
	return &Logger{Logger: l.Logger.With("alpha", alpha)}
}

// WithK tags records with the dictionary size.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{Logger: l.Logger.With("k", k)}
}

// WithWorkers tags records with the pool size.
func (l *Logger) WithWorkers(workers int) *Logger {
	return &Logger{Logger: l.Logger.With("workers", workers)}
}
