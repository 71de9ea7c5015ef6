package main

import (
	"io"

	"github.com/rs/zerolog"
)

// newLogger writes human-readable lines; an unknown level falls back to info.
func newLogger(level string, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "2006-01-02 15:04:05"}).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}
