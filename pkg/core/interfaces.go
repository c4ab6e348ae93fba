package core

import (
	"context"
	"fmt"
	"log/slog"
)

// Logger interface for progress and diagnostic output
type Logger interface {
	Printf(format string, args ...interface{})
}

// NopLogger discards everything
type NopLogger struct{}

// Printf implements Logger
func (NopLogger) Printf(string, ...interface{}) {}

// SlogLogger adapts a structured slog.Logger to the Logger interface
type SlogLogger struct {
	logger *slog.Logger
	level  slog.Level
}

// NewSlogLogger creates a Logger that writes formatted messages at level
func NewSlogLogger(logger *slog.Logger, level slog.Level) *SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogLogger{logger: logger, level: level}
}

// Printf implements Logger
func (l *SlogLogger) Printf(format string, args ...interface{}) {
	ctx := context.Background()
	if !l.logger.Enabled(ctx, l.level) {
		return
	}
	l.logger.Log(ctx, l.level, fmt.Sprintf(format, args...))
}
