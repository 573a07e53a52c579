// Package observability constructs the structured logger pyprune uses for
// per-file progress and failure reporting.
package observability

import (
	"io"
	"log/slog"
	"strings"
)

// LoggerConfig controls handler construction.
type LoggerConfig struct {
	// Level is one of debug, info, warn, error. Unknown values mean info.
	Level string
	// JSON selects the JSON handler instead of the text handler.
	JSON bool
	// Quiet raises the level to error regardless of Level.
	Quiet bool
}

// NewLogger builds a slog.Logger writing to w.
func NewLogger(w io.Writer, cfg LoggerConfig) *slog.Logger {
	level := ParseLevel(cfg.Level)
	if cfg.Quiet {
		level = slog.LevelError
	}

	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}

	return slog.New(handler)
}

// ParseLevel maps a config level string to a slog level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
