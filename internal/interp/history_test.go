// File: history_test.go
// Title: History Log Unit Tests
// Description: Tests history recording suppression rules, the ring bound,
//              retrieval accessors, back-reference expansion and the JSON
//              round trip.
// Author: msto63 with Claude Sonnet 4.0
// Version: v0.1.0
// Created: 2026-02-10
// Modified: 2026-02-10

package interp

import (
	"fmt"
	"reflect"
	"testing"
)

func newTestHistory(t *testing.T, entries ...string) *HistoryLog {
	t.Helper()
	h := NewHistoryLog(testLogger())
	for _, e := range entries {
		h.Add(e)
	}
	return h
}

func TestHistoryLog_Add(t *testing.T) {
	tests := []struct {
		name     string
		inputs   []string
		expected []string
	}{
		{
			name:     "Normal append",
			inputs:   []string{"a", "b", "c"},
			expected: []string{"a", "b", "c"},
		},
		{
			name:     "Consecutive duplicate suppressed",
			inputs:   []string{"a", "a"},
			expected: []string{"a"},
		},
		{
			name:     "Non-adjacent duplicates kept",
			inputs:   []string{"a", "b", "a"},
			expected: []string{"a", "b", "a"},
		},
		{
			name:     "Blank input dropped",
			inputs:   []string{"", "   ", "a"},
			expected: []string{"a"},
		},
		{
			name:     "History command not stored",
			inputs:   []string{"history", "history search x", "a"},
			expected: []string{"a"},
		},
		{
			name:     "Back-references not stored",
			inputs:   []string{"!!", "!3", "!-1", "!wallet", "a"},
			expected: []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHistory(t, tt.inputs...)
			if got := h.GetAll(); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("GetAll() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestHistoryLog_RingBound(t *testing.T) {
	h := newTestHistory(t)

	for i := 0; i < MaxHistoryEntries+50; i++ {
		h.Add(fmt.Sprintf("cmd %d", i))
	}

	if h.Size() != MaxHistoryEntries {
		t.Fatalf("Size() = %d, want %d", h.Size(), MaxHistoryEntries)
	}

	// Oldest entries must have been evicted first
	first, _ := h.GetByIndex(1)
	if first != "cmd 50" {
		t.Errorf("GetByIndex(1) = %q, want cmd 50", first)
	}
	last, _ := h.GetLast()
	if last != fmt.Sprintf("cmd %d", MaxHistoryEntries+49) {
		t.Errorf("GetLast() = %q", last)
	}
}

func TestHistoryLog_Accessors(t *testing.T) {
	h := newTestHistory(t, "a", "b", "c")

	if got := h.GetRecent(2); !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Errorf("GetRecent(2) = %v", got)
	}
	if got := h.GetRecent(10); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("GetRecent(10) = %v", got)
	}
	if got := h.GetRecent(0); got != nil {
		t.Errorf("GetRecent(0) = %v, want nil", got)
	}

	if v, ok := h.GetByIndex(2); !ok || v != "b" {
		t.Errorf("GetByIndex(2) = %q, %v", v, ok)
	}
	if _, ok := h.GetByIndex(0); ok {
		t.Error("GetByIndex(0) should be out of range")
	}
	if _, ok := h.GetByIndex(4); ok {
		t.Error("GetByIndex(4) should be out of range")
	}

	if v, ok := h.GetFromEnd(1); !ok || v != "c" {
		t.Errorf("GetFromEnd(1) = %q, %v", v, ok)
	}
	if v, ok := h.GetFromEnd(3); !ok || v != "a" {
		t.Errorf("GetFromEnd(3) = %q, %v", v, ok)
	}
	if _, ok := h.GetFromEnd(4); ok {
		t.Error("GetFromEnd(4) should be out of range")
	}

	if v, ok := h.GetLast(); !ok || v != "c" {
		t.Errorf("GetLast() = %q, %v", v, ok)
	}

	empty := newTestHistory(t)
	if _, ok := empty.GetLast(); ok {
		t.Error("GetLast() on empty log should report not found")
	}
}

func TestHistoryLog_GetAllIsCopy(t *testing.T) {
	h := newTestHistory(t, "a", "b")

	snapshot := h.GetAll()
	snapshot[0] = "mutated"

	if v, _ := h.GetByIndex(1); v != "a" {
		t.Error("mutating the GetAll snapshot must not affect the log")
	}
}

func TestHistoryLog_Search(t *testing.T) {
	h := newTestHistory(t, "wallet balance", "compile Token.sol", "Wallet status")

	matches := h.Search("wallet")
	if len(matches) != 2 {
		t.Fatalf("Search() = %v, want 2 matches", matches)
	}
	if matches[0].Index != 1 || matches[0].Command != "wallet balance" {
		t.Errorf("first match = %+v", matches[0])
	}
	if matches[1].Index != 3 || matches[1].Command != "Wallet status" {
		t.Errorf("second match = %+v", matches[1])
	}

	if got := h.Search("deploy"); got != nil {
		t.Errorf("Search(deploy) = %v, want nil", got)
	}
}

func TestHistoryLog_ExpandCommand(t *testing.T) {
	h := newTestHistory(t, "wallet status", "compile Token.sol", "wallet balance")

	tests := []struct {
		name     string
		input    string
		expected string // empty means nil expected
	}{
		{"Bang bang", "!!", "wallet balance"},
		{"Positive index", "!2", "compile Token.sol"},
		{"Index out of range", "!5", ""},
		{"Index zero is textual", "!0", ""},
		{"Negative offset last", "!-1", "wallet balance"},
		{"Negative offset first", "!-3", "wallet status"},
		{"Negative offset out of range", "!-4", ""},
		{"Prefix match most recent", "!wallet", "wallet balance"},
		{"Prefix match older entry", "!compile", "compile Token.sol"},
		{"Prefix with spaces", "!wallet s", "wallet status"},
		{"No prefix match", "!deploy", ""},
		{"Not a back-reference", "wallet", ""},
		{"Bare bang", "!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := h.ExpandCommand(tt.input)
			if tt.expected == "" {
				if got != nil {
					t.Errorf("ExpandCommand(%q) = %+v, want nil", tt.input, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("ExpandCommand(%q) = nil, want %q", tt.input, tt.expected)
			}
			if got.Expanded != tt.expected {
				t.Errorf("Expanded = %q, want %q", got.Expanded, tt.expected)
			}
			if got.Original != tt.input {
				t.Errorf("Original = %q, want %q", got.Original, tt.input)
			}
		})
	}
}

func TestHistoryLog_ExpandCommandEmptyLog(t *testing.T) {
	h := newTestHistory(t)

	if got := h.ExpandCommand("!!"); got != nil {
		t.Errorf("ExpandCommand(!!) on empty log = %+v, want nil", got)
	}
	if got := h.ExpandCommand("!1"); got != nil {
		t.Errorf("ExpandCommand(!1) on empty log = %+v, want nil", got)
	}
}

func TestClassifyBackReference(t *testing.T) {
	tests := []struct {
		input    string
		expected Kind
	}{
		{"!!", KindNoHistory},
		{"!7", KindInvalidHistoryIndex},
		{"!-2", KindInvalidHistoryIndex},
		{"!deploy", KindNoMatchingHistory},
		{"!-x", KindNoMatchingHistory},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ClassifyBackReference(tt.input); got != tt.expected {
				t.Errorf("ClassifyBackReference(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestHistoryLog_ExportImportRoundTrip(t *testing.T) {
	h := newTestHistory(t, "wallet status", "compile Token.sol", "wallet status")

	data, err := h.Export()
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	restored := newTestHistory(t)
	if err := restored.Import(data); err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	if !reflect.DeepEqual(restored.GetAll(), h.GetAll()) {
		t.Errorf("restored = %v, want %v", restored.GetAll(), h.GetAll())
	}
}

func TestHistoryLog_ImportMalformed(t *testing.T) {
	h := newTestHistory(t, "keep me")

	if err := h.Import("{broken"); err == nil {
		t.Error("Import() should fail for malformed JSON")
	}
	if h.Size() != 1 {
		t.Error("failed import must not mutate the log")
	}
}

func TestHistoryLog_ImportTruncates(t *testing.T) {
	entries := make([]string, MaxHistoryEntries+10)
	for i := range entries {
		entries[i] = fmt.Sprintf("\"cmd %d\"", i)
	}

	data := fmt.Sprintf(`{"history":[%s],"timestamp":"2026-02-10T00:00:00Z","size":%d}`,
		joinJSON(entries), len(entries))

	h := newTestHistory(t)
	if err := h.Import(data); err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if h.Size() != MaxHistoryEntries {
		t.Errorf("Size() = %d, want %d", h.Size(), MaxHistoryEntries)
	}
	first, _ := h.GetByIndex(1)
	if first != "cmd 10" {
		t.Errorf("GetByIndex(1) = %q, want cmd 10", first)
	}
}

func joinJSON(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ","
		}
		out += p
	}
	return out
}
