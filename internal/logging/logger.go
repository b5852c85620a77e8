// Copyright (c) 2025 Notewire
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"log/slog"
	"os"
)

// Setup installs the process-wide slog default. Debug level is enabled
// when verbose is true or NOTEWIRE_VERBOSE=1 is set. Logs go to stderr
// so command output on stdout stays scriptable.
func Setup(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose || Verbose() {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// Verbose reports whether NOTEWIRE_VERBOSE=1 is set in the environment.
func Verbose() bool {
	return os.Getenv("NOTEWIRE_VERBOSE") == "1"
}
