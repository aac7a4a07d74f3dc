package main

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// newLogger builds the process logger. The level is read through a LevelVar
// so a config reload can change it.
func newLogger(w io.Writer, format string, level *slog.LevelVar) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler).With(
		"service", "zkrest",
		"version", Version,
		"pid", os.Getpid(),
	)
}
