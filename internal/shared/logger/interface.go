package logger

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"time"
)

// Interface is the structured logger handed to every component. Arguments
// after the message are alternating keys and values.
type Interface interface {
	Debugw(msg string, keysAndValues ...any)
	Infow(msg string, keysAndValues ...any)
	Warnw(msg string, keysAndValues ...any)
	Errorw(msg string, keysAndValues ...any)

	With(keysAndValues ...any) Interface
	Named(name string) Interface
}

type slogLogger struct {
	base *slog.Logger
	name string
}

// NewLogger wraps the process logger configured by Init.
func NewLogger() Interface {
	return Wrap(Get())
}

func Wrap(l *slog.Logger) Interface {
	return &slogLogger{base: l}
}

// NewNopLogger returns a logger that discards everything. Intended for tests.
func NewNopLogger() Interface {
	return Wrap(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// ForNetwork tags every record with the chat network a session belongs to.
func ForNetwork(l Interface, network string) Interface {
	return l.With("network", network)
}

func (l *slogLogger) With(keysAndValues ...any) Interface {
	return &slogLogger{base: l.base.With(keysAndValues...), name: l.name}
}

// Named tags records with a component name; nested names are dot-joined.
func (l *slogLogger) Named(name string) Interface {
	if l.name != "" {
		name = l.name + "." + name
	}
	return &slogLogger{base: l.base, name: name}
}

func (l *slogLogger) log(level slog.Level, msg string, keysAndValues []any) {
	ctx := context.Background()
	if !l.base.Enabled(ctx, level) {
		return
	}
	// skip runtime.Callers, log and the exported method
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:])

	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	if l.name != "" {
		r.AddAttrs(slog.String("component", l.name))
	}
	r.Add(keysAndValues...)
	_ = l.base.Handler().Handle(ctx, r)
}

func (l *slogLogger) Debugw(msg string, keysAndValues ...any) {
	l.log(slog.LevelDebug, msg, keysAndValues)
}

func (l *slogLogger) Infow(msg string, keysAndValues ...any) {
	l.log(slog.LevelInfo, msg, keysAndValues)
}

func (l *slogLogger) Warnw(msg string, keysAndValues ...any) {
	l.log(slog.LevelWarn, msg, keysAndValues)
}

func (l *slogLogger) Errorw(msg string, keysAndValues ...any) {
	l.log(slog.LevelError, msg, keysAndValues)
}
