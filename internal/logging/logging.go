// Package logging builds the zerolog logger used for diagnostics.
//
// Diagnostics always go to stderr so they never interleave with the
// interactive transcript on stdout.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// ResolveLevel picks the log level. An explicit level wins, then verbose
// (debug), then the fallback. Invalid names resolve to warn.
func ResolveLevel(explicit string, verbose bool, fallback string) zerolog.Level {
	name := fallback
	if verbose {
		name = "debug"
	}
	if explicit != "" {
		name = explicit
	}

	level, err := zerolog.ParseLevel(name)
	if err != nil || name == "" {
		return zerolog.WarnLevel
	}
	return level
}

// New creates a console logger writing to w at the given level.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	writer := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.Kitchen,
		NoColor:    os.Getenv("NO_COLOR") != "",
	}

	return zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// NewStderr creates a console logger on stderr.
func NewStderr(level zerolog.Level) zerolog.Logger {
	return New(os.Stderr, level)
}
