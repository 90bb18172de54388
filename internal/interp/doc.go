// File: doc.go
// Title: Interpreter Package Documentation
// Description: Package overview for the chainterm command line interpreter.
// Author: msto63 with Claude Sonnet 4.0
// Version: v0.1.0
// Created: 2026-02-10
// Modified: 2026-02-10

// Package interp implements the chainterm command line interpreter: the
// component that turns a raw terminal input line into a handler invocation.
//
// Processing order for a dispatched line:
//
//	raw line
//	  → alias expansion (first word, one level)
//	  → history back-reference expansion (!!, !n, !-n, !prefix)
//	  → tokenization (single/double quote aware)
//	  → handler lookup (built-in aliases first, then command names)
//	  → execution
//	  → history recording (the original line, not the expanded one)
//
// The package owns four collaborating pieces:
//
//   - Tokenize splits a line into argument tokens honoring quoting.
//   - AliasTable maps user-defined shortcuts to replacement commands and
//     rejects direct and transitive recursion at Set time.
//   - HistoryLog keeps a bounded, deduplicated record of executed lines and
//     resolves back-references against it.
//   - Dispatcher orchestrates the steps above over a handler Registry and
//     folds every failure into a Result value. Nothing escapes Dispatch as
//     a panic.
//
// All state is owned by explicit values created per session. The package
// provides no internal mutual exclusion beyond what each type documents;
// the embedding session serializes dispatch calls.
package interp
