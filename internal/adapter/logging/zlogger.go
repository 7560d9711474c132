package logging

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/antonio-hickey/dev-notify/internal/domain/ports"
)

// keep timestamps short and readable
const consoleTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// ZLogger is an adapter around zerolog implementing ports.Logger with
// human-readable console output for interactive runs.
type ZLogger struct {
	logger zerolog.Logger
}

var _ ports.Logger = (*ZLogger)(nil)

// NewConsole creates a ZLogger writing to stderr at the given level, so a
// piped stdout stays clean for payload output.
func NewConsole(level string) *ZLogger {
	cw := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: consoleTimeFormat}
	zl := zerolog.New(cw).Level(parseZerologLevel(level)).With().Timestamp().Logger()
	return &ZLogger{logger: zl}
}

// Info logs an informational message.
func (l *ZLogger) Info(ctx context.Context, msg string, args ...any) {
	l.emit(l.logger.Info(), msg, args)
}

// Error logs an error message.
func (l *ZLogger) Error(ctx context.Context, msg string, args ...any) {
	l.emit(l.logger.Error(), msg, args)
}

// emit applies slog-style alternating key/value args as zerolog fields. A
// trailing key without a value is dropped.
func (l *ZLogger) emit(e *zerolog.Event, msg string, args []any) {
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		switch v := args[i+1].(type) {
		case error:
			e = e.AnErr(key, v)
		default:
			e = e.Interface(key, v)
		}
	}
	e.Msg(msg)
}

// ForFormat selects the logger implementation for a configured format:
// "console" for zerolog console output, anything else for slog JSON.
func ForFormat(format, level string) ports.Logger {
	if strings.EqualFold(format, "console") {
		return NewConsole(level)
	}
	return NewJSON(level)
}

func parseZerologLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
