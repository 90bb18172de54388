// File: errors.go
// Title: Interpreter Error Kinds and Results
// Description: Defines the error classification used by the dispatcher and
//              the Result value every dispatch produces. Errors are data,
//              not panics: every failure is folded into a Result.
// Author: msto63 with Claude Sonnet 4.0
// Version: v0.1.0
// Created: 2026-02-10
// Modified: 2026-02-10

package interp

// Kind classifies a dispatch failure
type Kind string

const (
	// KindNone marks a successful result
	KindNone Kind = ""

	// KindNoHistory is returned for !! against an empty history log
	KindNoHistory Kind = "NO_HISTORY"

	// KindInvalidHistoryIndex is returned for !n or !-n out of range
	KindInvalidHistoryIndex Kind = "INVALID_HISTORY_INDEX"

	// KindNoMatchingHistory is returned for !text with no prefix match
	KindNoMatchingHistory Kind = "NO_MATCHING_HISTORY"

	// KindCommandNotFound is returned when the first token resolves to
	// neither a built-in alias nor a registered command
	KindCommandNotFound Kind = "COMMAND_NOT_FOUND"

	// KindExecutionError is returned when a handler panics
	KindExecutionError Kind = "EXECUTION_ERROR"
)

// Result is the outcome of a single dispatch call. It is transient and
// never persisted.
type Result struct {
	// Output is the human-readable result text, prefixed with expansion
	// notes where alias or history expansion occurred
	Output string

	// Success indicates whether the command completed without error
	Success bool

	// Error classifies the failure when Success is false
	Error Kind
}

// Ok builds a successful result with the given output
func Ok(output string) Result {
	return Result{Output: output, Success: true}
}

// Fail builds a failed result with the given kind and message
func Fail(kind Kind, message string) Result {
	return Result{Output: message, Success: false, Error: kind}
}
