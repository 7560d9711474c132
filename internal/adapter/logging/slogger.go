package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/antonio-hickey/dev-notify/internal/domain/ports"
)

// SLogger is an adapter around slog.Logger implementing ports.Logger.
type SLogger struct {
	logger *slog.Logger
}

var _ ports.Logger = (*SLogger)(nil)

// New creates a new SLogger.
func New(logger *slog.Logger) *SLogger {
	return &SLogger{logger: logger}
}

// NewJSON creates an SLogger emitting JSON records to stdout at the given
// level (debug, info, warn, error).
func NewJSON(level string) *SLogger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseSlogLevel(level),
	})
	return New(slog.New(handler))
}

// Info logs an informational message.
func (l *SLogger) Info(ctx context.Context, msg string, args ...any) {
	if l.logger == nil {
		return
	}
	l.logger.Log(ctx, slog.LevelInfo, msg, args...)
}

// Error logs an error message.
func (l *SLogger) Error(ctx context.Context, msg string, args ...any) {
	if l.logger == nil {
		return
	}
	l.logger.Log(ctx, slog.LevelError, msg, args...)
}

func parseSlogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
