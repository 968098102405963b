package app

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
)

// AtomicLogger is a slog logger whose level and output format can change at
// runtime. Loggers handed out by Get, and any derived with With, follow the
// change.
type AtomicLogger struct {
	out   io.Writer
	level *slog.LevelVar
	base  *atomic.Pointer[slog.Handler]
	log   *slog.Logger
}

// NewAtomicLogger creates a logger writing to out.
func NewAtomicLogger(out io.Writer, level, format string) *AtomicLogger {
	l := &AtomicLogger{
		out:   out,
		level: new(slog.LevelVar),
		base:  new(atomic.Pointer[slog.Handler]),
	}
	l.Update(level, format)
	l.log = slog.New(&swapHandler{base: l.base, level: l.level})
	return l
}

// Get returns the shared logger.
func (l *AtomicLogger) Get() *slog.Logger {
	return l.log
}

// Update switches level and format.
func (l *AtomicLogger) Update(level, format string) {
	l.level.Set(parseLevel(level))

	opts := &slog.HandlerOptions{Level: l.level}
	var h slog.Handler
	if strings.EqualFold(format, "text") {
		h = slog.NewTextHandler(l.out, opts)
	} else {
		h = slog.NewJSONHandler(l.out, opts)
	}
	l.base.Store(&h)
}

// Level reports the current level.
func (l *AtomicLogger) Level() slog.Level {
	return l.level.Level()
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// swapHandler resolves the current base handler on every record and replays
// the attrs and groups it was derived with.
type swapHandler struct {
	base  *atomic.Pointer[slog.Handler]
	level *slog.LevelVar
	ops   []func(slog.Handler) slog.Handler
}

func (h *swapHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *swapHandler) Handle(ctx context.Context, r slog.Record) error {
	current := *h.base.Load()
	for _, op := range h.ops {
		current = op(current)
	}
	return current.Handle(ctx, r)
}

func (h *swapHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	return h.derive(func(next slog.Handler) slog.Handler { return next.WithAttrs(attrs) })
}

func (h *swapHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return h.derive(func(next slog.Handler) slog.Handler { return next.WithGroup(name) })
}

func (h *swapHandler) derive(op func(slog.Handler) slog.Handler) *swapHandler {
	ops := make([]func(slog.Handler) slog.Handler, len(h.ops), len(h.ops)+1)
	copy(ops, h.ops)
	return &swapHandler{base: h.base, level: h.level, ops: append(ops, op)}
}

// slogAdapter adapts slog.Logger to the logger.Logger interface.
type slogAdapter struct {
	logger *slog.Logger
}

func (a *slogAdapter) Debug(msg string, keysAndValues ...any) {
	a.logger.Debug(msg, keysAndValues...)
}

func (a *slogAdapter) Info(msg string, keysAndValues ...any) {
	a.logger.Info(msg, keysAndValues...)
}

func (a *slogAdapter) Warn(msg string, keysAndValues ...any) {
	a.logger.Warn(msg, keysAndValues...)
}

func (a *slogAdapter) Error(msg string, keysAndValues ...any) {
	a.logger.Error(msg, keysAndValues...)
}
