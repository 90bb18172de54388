// ============================================================================
// chainterm - Browser Command Terminal for Blockchain Networks
// ============================================================================
//
// Package:     main
// Description: chainterm CLI entry point
// Author:      Mike Stoffels with Claude
// Created:     2026-02-10
// License:     MIT
// ============================================================================

package main

import (
	"os"

	"github.com/msto63/chainterm/cmd/chainterm/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
