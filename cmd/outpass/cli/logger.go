// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewCommandLogger creates the structured logger for CLI commands at
// level ("debug", "info", "warn", "error"; anything else is warn).
// When stderr is a terminal it writes slog text, otherwise JSON.
//
// Callers scope the logger with command context via With():
//
//	logger := cli.NewCommandLogger("info").With("command", "outpass/approve")
func NewCommandLogger(level string) *slog.Logger {
	return newLogger(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())), level)
}

func newLogger(w io.Writer, terminal bool, level string) *slog.Logger {
	options := &slog.HandlerOptions{Level: ParseLevel(level)}
	if terminal {
		return slog.New(slog.NewTextHandler(w, options))
	}
	return slog.New(slog.NewJSONHandler(w, options))
}

// ParseLevel maps a config log level to slog.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
