package internal

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/mama165/sdk-go/logs"
)

// NewLogger builds the application logger at the given level.
// When logfile is set, every record is also written there, whatever its level.
func NewLogger(level string, logfile io.Writer) *slog.Logger {
	log := logs.GetLoggerFromString(level)
	if logfile == nil {
		return log
	}
	file := slog.NewJSONHandler(logfile, &slog.HandlerOptions{Level: slog.LevelDebug})
	log = slog.New(fanout{log.Handler(), file})
	slog.SetDefault(log)
	return log
}

// fanout hands each record to every handler enabled for its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, record.Level) {
			errs = append(errs, h.Handle(ctx, record.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make(fanout, 0, len(f))
	for _, h := range f {
		handlers = append(handlers, h.WithAttrs(attrs))
	}
	return handlers
}

func (f fanout) WithGroup(name string) slog.Handler {
	handlers := make(fanout, 0, len(f))
	for _, h := range f {
		handlers = append(handlers, h.WithGroup(name))
	}
	return handlers
}
