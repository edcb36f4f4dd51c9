// Package logging builds the single slog.Logger a dimpact CLI invocation
// uses for its lifetime, selecting between a human-readable text handler and
// slog's own JSON handler by output format. Grounded on internal/slogutil in
// SimplyLiz-CodeMCP (its CKBHandler text format, ported verbatim in handler.go)
// merged with internal/logging's Config/NewLogger shape from the same
// teacher, narrowed from a multi-subsystem factory (MCP/API/daemon loggers
// with file rotation) to the one logger a one-shot CLI process needs.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the log line encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Config controls logger construction.
type Config struct {
	Format Format
	Level  slog.Level
	Output io.Writer // defaults to os.Stderr
}

// New builds a logger per cfg. Logs are written to stderr by convention so
// they never interleave with a command's stdout payload (§6.3).
func New(cfg Config) *slog.Logger {
	w := cfg.Output
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: cfg.Level}
	var handler slog.Handler
	if cfg.Format == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = newTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Discard returns a logger that drops every record, for tests and --quiet.
func Discard() *slog.Logger {
	return slog.New(newTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(100)}))
}

// LevelFromString converts a case-insensitive level name to a slog.Level,
// defaulting to Info for anything unrecognized.
func LevelFromString(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelFromVerbosity maps the CLI's -v/--quiet flags to a slog.Level,
// mirroring internal/slogutil.LevelFromVerbosity in SimplyLiz-CodeMCP.
func LevelFromVerbosity(verbosity int, quiet bool) slog.Level {
	if quiet {
		return slog.Level(100)
	}
	switch {
	case verbosity <= 0:
		return slog.LevelWarn
	case verbosity == 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
