// Package logging builds the process-wide slog logger. Interactive
// terminals get colored tint output, everything else plain text.
package logging

import (
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// ParseLevel maps a config level name to a slog level. Unknown names fall
// back to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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

// New builds a logger writing to stderr at the given level.
func New(level string) *slog.Logger {
	lvl := ParseLevel(level)
	var h slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) {
		h = tint.NewHandler(os.Stderr, &tint.Options{
			Level: lvl,
		})
	} else {
		h = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: lvl,
		})
	}
	return slog.New(h)
}

// Setup builds the logger and installs it as the slog default.
func Setup(level string) *slog.Logger {
	log := New(level)
	slog.SetDefault(log)
	return log
}
