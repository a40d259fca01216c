// Package testutil holds small helpers shared by tests across packages.
package testutil

import (
	"io"
	"log/slog"
)

// NopLogger returns a logger whose records go nowhere, keeping component
// log chatter out of test output.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
