// ============================================================================
// chainterm - Browser Command Terminal for Blockchain Networks
// ============================================================================
//
// Package:     version
// Description: Central version management for the chainterm host
// Author:      Mike Stoffels with Claude
// Created:     2026-02-10
// License:     MIT
// ============================================================================

package version

import "fmt"

// Version constants
const (
	// Platform is the chainterm release version
	Platform = "1.0.0"

	// Interpreter is the command line interpreter core version
	Interpreter = "1.0.0"

	// Protocol is the WebSocket terminal protocol version
	Protocol = "1"
)

// Full returns the full version string including the protocol revision
func Full() string {
	return fmt.Sprintf("chainterm %s (interpreter %s, protocol v%s)", Platform, Interpreter, Protocol)
}
