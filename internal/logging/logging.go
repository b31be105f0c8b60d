// Package logging configures the structured zerolog logger used across the
// pipeline, replacing the ad-hoc verbosef closures of the CLI this system is
// built on top of with one base logger carrying run/intent identifiers.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds a base logger writing human-readable output to w when pretty is
// true (interactive terminal use) or compact JSON lines otherwise (log
// aggregation, the logs/ subtree of the data directory).
func New(w io.Writer, verbose, pretty bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339

	var out io.Writer = w
	if pretty {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Default returns a logger suitable for CLI use: pretty console output on
// stderr if it looks like a terminal, JSON lines otherwise.
func Default(verbose bool) zerolog.Logger {
	pretty := isTerminal(os.Stderr)
	return New(os.Stderr, verbose, pretty)
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

// ForIntent returns a child logger carrying the intent id, so every
// downstream component's log lines are attributable to a single run.
func ForIntent(base zerolog.Logger, intentID string) zerolog.Logger {
	return base.With().Str("intent_id", intentID).Logger()
}
