// File: history.go
// Title: Session History Log
// Description: Implements the ordered, size-bounded log of previously
//              executed input lines, including positional and textual
//              back-reference expansion (!!, !n, !-n, !prefix).
// Author: msto63 with Claude Sonnet 4.0
// Version: v0.1.0
// Created: 2026-02-10
// Modified: 2026-02-10

package interp

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/msto63/chainterm/pkg/core/logging"
)

// MaxHistoryEntries bounds the log; the oldest entries are evicted first
const MaxHistoryEntries = 1000

// HistoryMatch is a search hit with its 1-based display index
type HistoryMatch struct {
	Index   int    `json:"index"`
	Command string `json:"command"`
}

// Expansion is a resolved history back-reference
type Expansion struct {
	// Expanded is the history entry the back-reference resolved to
	Expanded string

	// Original is the back-reference as typed
	Original string
}

// historyExport is the persisted JSON shape of the log
type historyExport struct {
	History   []string `json:"history"`
	Timestamp string   `json:"timestamp"`
	Size      int      `json:"size"`
}

// HistoryLog records executed input lines in order. Entries are 1-indexed
// for user-facing display. The log is owned by a single session and is not
// safe for concurrent use.
type HistoryLog struct {
	entries []string
	logger  *logging.Logger
}

// NewHistoryLog creates an empty history log
func NewHistoryLog(logger *logging.Logger) *HistoryLog {
	if logger == nil {
		logger = logging.GetDefault()
	}
	return &HistoryLog{
		logger: logger.WithField("component", "history-log"),
	}
}

// Add appends a command to the log. Blank input, a repeat of the most
// recent entry, and lines that are themselves history commands or
// back-references are silently dropped. The log is then truncated to the
// most recent MaxHistoryEntries entries.
func (h *HistoryLog) Add(command string) {
	if strings.TrimSpace(command) == "" {
		return
	}
	if len(h.entries) > 0 && h.entries[len(h.entries)-1] == command {
		return
	}
	if strings.HasPrefix(command, "history") || strings.HasPrefix(command, "!") {
		return
	}

	h.entries = append(h.entries, command)
	if len(h.entries) > MaxHistoryEntries {
		h.entries = h.entries[len(h.entries)-MaxHistoryEntries:]
	}
}

// GetAll returns a copy of all entries, oldest first
func (h *HistoryLog) GetAll() []string {
	entries := make([]string, len(h.entries))
	copy(entries, h.entries)
	return entries
}

// GetRecent returns a copy of the most recent n entries, oldest first
func (h *HistoryLog) GetRecent(n int) []string {
	if n <= 0 {
		return nil
	}
	if n > len(h.entries) {
		n = len(h.entries)
	}

	entries := make([]string, n)
	copy(entries, h.entries[len(h.entries)-n:])
	return entries
}

// GetByIndex returns the entry at the 1-based index i
func (h *HistoryLog) GetByIndex(i int) (string, bool) {
	if i < 1 || i > len(h.entries) {
		return "", false
	}
	return h.entries[i-1], true
}

// GetLast returns the most recent entry
func (h *HistoryLog) GetLast() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	return h.entries[len(h.entries)-1], true
}

// GetFromEnd returns the i-th entry counting back from the tail; 1 is the
// most recent entry
func (h *HistoryLog) GetFromEnd(i int) (string, bool) {
	if i < 1 || i > len(h.entries) {
		return "", false
	}
	return h.entries[len(h.entries)-i], true
}

// Search returns all entries containing text, case-insensitively, with
// their 1-based indices in log order
func (h *HistoryLog) Search(text string) []HistoryMatch {
	text = strings.ToLower(text)

	var matches []HistoryMatch
	for i, entry := range h.entries {
		if strings.Contains(strings.ToLower(entry), text) {
			matches = append(matches, HistoryMatch{Index: i + 1, Command: entry})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Index < matches[j].Index
	})
	return matches
}

// Size returns the number of stored entries
func (h *HistoryLog) Size() int {
	return len(h.entries)
}

// Clear removes all entries
func (h *HistoryLog) Clear() {
	h.entries = nil
}

// Export serializes the log to its persisted JSON form
func (h *HistoryLog) Export() (string, error) {
	export := historyExport{
		History:   h.GetAll(),
		Timestamp: time.Now().Format(time.RFC3339),
		Size:      len(h.entries),
	}

	data, err := json.Marshal(export)
	if err != nil {
		return "", fmt.Errorf("failed to export history: %w", err)
	}
	return string(data), nil
}

// Import replaces the log with a previously exported JSON document,
// keeping at most the most recent MaxHistoryEntries entries
func (h *HistoryLog) Import(data string) error {
	var export historyExport
	if err := json.Unmarshal([]byte(data), &export); err != nil {
		return fmt.Errorf("invalid history data: %w", err)
	}

	entries := export.History
	if len(entries) > MaxHistoryEntries {
		entries = entries[len(entries)-MaxHistoryEntries:]
	}

	h.entries = make([]string, len(entries))
	copy(h.entries, entries)
	return nil
}

// ExpandCommand resolves a history back-reference. It recognizes four
// forms: !! (last entry), !n (1-based index), !-n (n-th from the tail) and
// !text (most recent entry starting with text). The return is nil both
// when input is not a back-reference at all and when a recognized form has
// no matching entry; IsBackReference distinguishes the two for callers.
func (h *HistoryLog) ExpandCommand(input string) *Expansion {
	if !IsBackReference(input) {
		return nil
	}

	if input == "!!" {
		last, ok := h.GetLast()
		if !ok {
			return nil
		}
		return &Expansion{Expanded: last, Original: input}
	}

	suffix := input[1:]

	if n, ok := parsePositiveInt(strings.TrimPrefix(suffix, "-")); ok {
		var entry string
		var found bool
		if strings.HasPrefix(suffix, "-") {
			entry, found = h.GetFromEnd(n)
		} else {
			entry, found = h.GetByIndex(n)
		}
		if !found {
			return nil
		}
		return &Expansion{Expanded: entry, Original: input}
	}

	// Textual form: most recent entry whose value starts with the suffix
	for i := len(h.entries) - 1; i >= 0; i-- {
		if strings.HasPrefix(h.entries[i], suffix) {
			return &Expansion{Expanded: h.entries[i], Original: input}
		}
	}
	return nil
}

// IsBackReference reports whether input has the syntactic shape of a
// history back-reference: a bang followed by a non-empty suffix
func IsBackReference(input string) bool {
	return strings.HasPrefix(input, "!") && len(input) > 1
}

// ClassifyBackReference maps a back-reference that failed to expand to its
// error kind. The result is only meaningful for inputs where
// IsBackReference is true and ExpandCommand returned nil.
func ClassifyBackReference(input string) Kind {
	if input == "!!" {
		return KindNoHistory
	}

	suffix := strings.TrimPrefix(input[1:], "-")
	if _, ok := parsePositiveInt(suffix); ok {
		return KindInvalidHistoryIndex
	}
	return KindNoMatchingHistory
}

// parsePositiveInt parses s as a strictly positive integer
func parsePositiveInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
