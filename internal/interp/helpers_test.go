// File: helpers_test.go
// Title: Shared Test Helpers
// Description: Common construction helpers for interpreter tests.
// Author: msto63 with Claude Sonnet 4.0
// Version: v0.1.0
// Created: 2026-02-10
// Modified: 2026-02-10

package interp

import (
	"io"

	"github.com/msto63/chainterm/pkg/core/logging"
)

// testLogger returns a logger that discards all output
func testLogger() *logging.Logger {
	return logging.NewWithConfig(logging.Config{
		Level:  logging.LevelError,
		Format: logging.FormatJSON,
		Output: io.Discard,
		Name:   "test",
	})
}
