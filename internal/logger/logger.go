// Package logger configures structured JSON logging with log/slog.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps a LOG_LEVEL value to a slog level.  Unknown values
// fall back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// Setup returns a JSON slog.Logger writing to w at the given level.
func Setup(w io.Writer, level string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	return slog.New(handler)
}

// SetupDefault installs a JSON logger as the global slog logger.  A nil
// writer means os.Stdout.
func SetupDefault(w io.Writer, level string) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	l := Setup(w, level)
	slog.SetDefault(l)
	return l
}
