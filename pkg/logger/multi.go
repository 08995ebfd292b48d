package logger

import (
	"context"
	"errors"
	"log/slog"
)

// multiHandler fans out log records to multiple slog.Handler instances.
// Used by the serve command to write pretty output to stdout and JSON to a
// log file simultaneously.
type multiHandler []slog.Handler

// Multi creates a *slog.Logger that dispatches every record to the handlers
// of all provided loggers.
func Multi(loggers ...*slog.Logger) *slog.Logger {
	hs := make(multiHandler, 0, len(loggers))
	for _, l := range loggers {
		hs = append(hs, l.Handler())
	}
	return slog.New(hs)
}

func (m multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle forwards r to every enabled handler. A failing handler does not stop
// delivery to the others.
func (m multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range m {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return m.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (m multiHandler) WithGroup(name string) slog.Handler {
	return m.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (m multiHandler) each(fn func(slog.Handler) slog.Handler) multiHandler {
	children := make(multiHandler, len(m))
	for i, h := range m {
		children[i] = fn(h)
	}
	return children
}
