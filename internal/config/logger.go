package config

import (
	"io"
	"log/slog"
)

// NewLogger creates a slog.Logger writing to w. It does not set the global
// logger. Unknown levels fall back to info.
func NewLogger(levelStr, formatStr string, w io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if formatStr == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
