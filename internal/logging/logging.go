// Package logging configures the process-wide structured logger.
//
// The daemon has no CLI or configuration file, so the only tuning knobs
// are environment variables:
//
//	NUMPADD_LOG_LEVEL   debug | info | warn | error (default info)
//	NUMPADD_LOG_FORMAT  text | json (default text)
//
// Logs go to stderr; under systemd that lands in the journal.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Environment variable names.
const (
	EnvLevel  = "NUMPADD_LOG_LEVEL"
	EnvFormat = "NUMPADD_LOG_FORMAT"
)

// New builds the root logger from the environment.
func New() *slog.Logger {
	return newWithOutput(os.Stderr, os.Getenv(EnvLevel), os.Getenv(EnvFormat))
}

func newWithOutput(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// parseLevel maps a level name to its slog level, defaulting to info for
// anything unrecognized.
func parseLevel(s string) slog.Level {
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
