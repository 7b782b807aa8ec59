// Package logger configures the process-wide slog logger and the structured
// Interface components log through.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"

	"github.com/chamberirc/chamberbnc/internal/shared/config"
)

var (
	mu      sync.RWMutex
	current *slog.Logger
)

// Init builds the process logger from cfg. Console output is colourised only
// when it goes to a terminal. Warnings and errors carry their source
// location; at debug level every record does.
func Init(cfg *config.LoggerConfig) error {
	w, err := openOutput(cfg.OutputPath)
	if err != nil {
		return err
	}

	level := parseLevel(cfg.Level)
	sourceLevels := []slog.Level{slog.LevelWarn, slog.LevelError}
	if level == slog.LevelDebug {
		sourceLevels = append(sourceLevels, slog.LevelDebug, slog.LevelInfo)
	}

	var base slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		base = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	} else {
		base = consoleHandler(w, level)
	}

	l := slog.New(NewConditionalSourceHandler(base, sourceLevels...))
	mu.Lock()
	current = l
	mu.Unlock()
	slog.SetDefault(l)
	return nil
}

// Get returns the process logger, falling back to an info-level console
// logger on stdout before Init has run.
func Get() *slog.Logger {
	mu.RLock()
	l := current
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if current == nil {
		current = slog.New(NewConditionalSourceHandler(consoleHandler(os.Stdout, slog.LevelInfo), slog.LevelWarn, slog.LevelError))
	}
	return current
}

func reset() {
	mu.Lock()
	current = nil
	mu.Unlock()
}

func openOutput(path string) (io.Writer, error) {
	switch strings.ToLower(path) {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log output %s: %w", path, err)
	}
	return f, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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

func consoleHandler(w io.Writer, level slog.Leveler) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
		NoColor:    !isTerminal(w),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if err, ok := a.Value.Any().(error); ok && a.Value.Kind() == slog.KindAny {
				return tint.Err(err)
			}
			return a
		},
	})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
