// ============================================================================
// chainterm - Browser Command Terminal for Blockchain Networks
// ============================================================================
//
// Package:     repl
// Description: Bubbletea message types for the REPL
// Author:      Mike Stoffels with Claude
// Created:     2026-02-10
// License:     MIT
// ============================================================================

package repl

import (
	"time"

	"github.com/msto63/chainterm/internal/interp"
)

// dispatchDoneMsg carries the result of one dispatched line
type dispatchDoneMsg struct {
	input    string
	result   interp.Result
	duration time.Duration
}

// transcriptLine is one rendered line of the scrollback
type transcriptLine struct {
	prompt  bool
	err     bool
	errCode string
	text    string
}
