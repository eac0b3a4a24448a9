// Package logging configures structured logging via log/slog.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options controls handler construction.
type Options struct {
	// Level is the minimum level to emit.
	Level slog.Level
	// JSON switches to JSON output, for running under a collector.
	JSON bool
	// Output defaults to os.Stderr so reports on stdout stay clean.
	Output io.Writer
}

// FromEnv builds Options from LOG_LEVEL and LOG_FORMAT. Unset or unknown
// values fall back to INFO text logging.
func FromEnv() Options {
	return Options{
		Level:  ParseLevel(os.Getenv("LOG_LEVEL")),
		JSON:   strings.EqualFold(os.Getenv("LOG_FORMAT"), "json"),
		Output: os.Stderr,
	}
}

// ParseLevel maps a level name to slog.Level, defaulting to Info.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup builds a logger from the options and installs it as the slog
// default.
func Setup(opts Options) *slog.Logger {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: opts.Level}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(opts.Output, handlerOpts)
	} else {
		handler = slog.NewTextHandler(opts.Output, handlerOpts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}
