package logger

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// New builds the diagnostic logger. Output always goes to w (stderr in the
// binary) so that stdout carries results only.
func New(w io.Writer, env, level string) zerolog.Logger {
	if env == "development" || env == "dev" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339

	return zerolog.New(w).Level(lvl).With().
		Timestamp().
		Str("service", "redditwatch").
		Logger()
}

// WithRunID returns a logger tagged with a run id
func WithRunID(l zerolog.Logger, runID string) zerolog.Logger {
	return l.With().Str("run_id", runID).Logger()
}
