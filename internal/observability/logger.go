package observability

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// LoggerOptions holds configuration for the console logger.
type LoggerOptions struct {
	Level           log.Level
	ReportTimestamp bool
	Prefix          string
	Output          io.Writer
}

// DefaultLoggerOptions returns options for a quiet, prefixed stderr logger.
func DefaultLoggerOptions() LoggerOptions {
	return LoggerOptions{
		Level:           log.InfoLevel,
		ReportTimestamp: false,
		Prefix:          "todo",
		Output:          os.Stderr,
	}
}

// NewLogger creates a leveled text logger.
func NewLogger(opts LoggerOptions) *log.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	return log.NewWithOptions(out, log.Options{
		Level:           opts.Level,
		Formatter:       log.TextFormatter,
		ReportTimestamp: opts.ReportTimestamp,
		Prefix:          opts.Prefix,
	})
}

// ParseLevel converts a level name into a log.Level. Unknown names map to info.
func ParseLevel(level string) log.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		level = "warn"
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
