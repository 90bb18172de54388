// File: alias.go
// Title: User Alias Table
// Description: Implements the named shortcut table of the interpreter.
//              Validates alias names, enforces the capacity cap, and rejects
//              direct and transitive recursion with a depth-first walk over
//              the alias graph at Set time.
// Author: msto63 with Claude Sonnet 4.0
// Version: v0.1.0
// Created: 2026-02-10
// Modified: 2026-02-10

package interp

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/msto63/chainterm/pkg/core/logging"
)

const (
	// MaxAliases is the capacity cap of the alias table. Updating an
	// existing name never counts against it.
	MaxAliases = 100

	// MaxAliasNameLength is the longest accepted alias name
	MaxAliasNameLength = 50
)

// aliasNamePattern validates alias names: identifier characters only,
// no leading digit
var aliasNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// DefaultReservedNames lists the built-in command names and their aliases.
// An alias may never shadow one of these. The set is fixed at startup.
var DefaultReservedNames = []string{
	"help", "clear", "echo", "date", "history", "alias", "unalias",
	"wallet", "smart", "alchemy", "call", "write", "deploy", "compile",
	"simulate", "gasEstimate", "whoami", "pwd", "ls",
}

// AliasEntry is a single name to replacement-command mapping
type AliasEntry struct {
	Name    string `json:"name"`
	Command string `json:"command"`
}

// AliasImportResult reports the outcome of an Import call. Entries that
// fail validation are skipped with a collected message; entries already
// imported in the same call are not rolled back.
type AliasImportResult struct {
	Success  bool     `json:"success"`
	Imported int      `json:"imported"`
	Errors   []string `json:"errors,omitempty"`
}

// aliasExport is the persisted JSON shape of the table
type aliasExport struct {
	Aliases   map[string]string `json:"aliases"`
	Timestamp string            `json:"timestamp"`
	Count     int               `json:"count"`
}

// AliasTable maps alias names to replacement commands. It is owned by a
// single session and is not safe for concurrent use.
type AliasTable struct {
	entries  map[string]string
	reserved map[string]struct{}
	logger   *logging.Logger
}

// NewAliasTable creates an empty alias table. A nil reserved list selects
// DefaultReservedNames.
func NewAliasTable(logger *logging.Logger, reserved []string) *AliasTable {
	if logger == nil {
		logger = logging.GetDefault()
	}
	if reserved == nil {
		reserved = DefaultReservedNames
	}

	reservedSet := make(map[string]struct{}, len(reserved))
	for _, name := range reserved {
		reservedSet[strings.ToLower(name)] = struct{}{}
	}

	return &AliasTable{
		entries:  make(map[string]string),
		reserved: reservedSet,
		logger:   logger.WithField("component", "alias-table"),
	}
}

// Set stores an alias. A non-nil error means the table was not mutated:
// the name failed validation, is reserved, would create a recursion cycle,
// or the capacity cap is reached for a genuinely new name.
func (t *AliasTable) Set(name, command string) error {
	if err := t.validate(name, command); err != nil {
		t.logger.Debug("alias rejected", logging.Fields{
			"name":   name,
			"reason": err.Error(),
		})
		return err
	}

	t.entries[name] = command
	t.logger.Debug("alias set", logging.Fields{
		"name":    name,
		"command": command,
	})
	return nil
}

// Remove deletes an alias and reports whether it existed
func (t *AliasTable) Remove(name string) bool {
	if _, ok := t.entries[name]; !ok {
		return false
	}
	delete(t.entries, name)
	return true
}

// Has reports whether an alias with the given name exists
func (t *AliasTable) Has(name string) bool {
	_, ok := t.entries[name]
	return ok
}

// Get returns the stored command for an alias name
func (t *AliasTable) Get(name string) (string, bool) {
	command, ok := t.entries[name]
	return command, ok
}

// Clear removes all aliases
func (t *AliasTable) Clear() {
	t.entries = make(map[string]string)
}

// Size returns the number of stored aliases
func (t *AliasTable) Size() int {
	return len(t.entries)
}

// Expand substitutes the first word of input when it names a stored alias.
// Remaining arguments are passed through verbatim and the stored command is
// not expanded further: expansion is exactly one level deep. Input that does
// not start with an alias name is returned unchanged.
func (t *AliasTable) Expand(input string) string {
	word, rest := splitFirstWord(input)
	command, ok := t.entries[word]
	if !ok {
		return input
	}

	if rest == "" {
		return command
	}
	return command + " " + rest
}

// Search returns all entries whose name or command contains the query,
// case-insensitively, sorted by name
func (t *AliasTable) Search(query string) []AliasEntry {
	query = strings.ToLower(query)

	var matches []AliasEntry
	for name, command := range t.entries {
		if strings.Contains(strings.ToLower(name), query) ||
			strings.Contains(strings.ToLower(command), query) {
			matches = append(matches, AliasEntry{Name: name, Command: command})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Name < matches[j].Name
	})
	return matches
}

// List returns all entries sorted by name
func (t *AliasTable) List() []AliasEntry {
	entries := make([]AliasEntry, 0, len(t.entries))
	for name, command := range t.entries {
		entries = append(entries, AliasEntry{Name: name, Command: command})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries
}

// Export serializes the table to its persisted JSON form
func (t *AliasTable) Export() (string, error) {
	export := aliasExport{
		Aliases:   make(map[string]string, len(t.entries)),
		Timestamp: time.Now().Format(time.RFC3339),
		Count:     len(t.entries),
	}
	for name, command := range t.entries {
		export.Aliases[name] = command
	}

	data, err := json.Marshal(export)
	if err != nil {
		return "", fmt.Errorf("failed to export aliases: %w", err)
	}
	return string(data), nil
}

// Import merges a previously exported JSON document into the table. Each
// entry goes through the same validation as Set; failures are collected,
// not fatal, and successfully imported entries stay in place.
func (t *AliasTable) Import(data string) AliasImportResult {
	var export aliasExport
	if err := json.Unmarshal([]byte(data), &export); err != nil {
		return AliasImportResult{
			Success: false,
			Errors:  []string{fmt.Sprintf("invalid alias data: %v", err)},
		}
	}

	// Deterministic import order
	names := make([]string, 0, len(export.Aliases))
	for name := range export.Aliases {
		names = append(names, name)
	}
	sort.Strings(names)

	result := AliasImportResult{Success: true}
	for _, name := range names {
		if err := t.Set(name, export.Aliases[name]); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		result.Imported++
	}

	if len(result.Errors) > 0 {
		result.Success = false
	}
	return result
}

// validate applies the Set preconditions without mutating the table
func (t *AliasTable) validate(name, command string) error {
	if !aliasNamePattern.MatchString(name) {
		return fmt.Errorf("invalid alias name %q: must start with a letter or underscore and contain only letters, digits and underscores", name)
	}
	if len(name) > MaxAliasNameLength {
		return fmt.Errorf("alias name %q exceeds %d characters", name, MaxAliasNameLength)
	}
	if _, ok := t.reserved[strings.ToLower(name)]; ok {
		return fmt.Errorf("%q is a reserved command name", name)
	}
	if strings.TrimSpace(command) == "" {
		return fmt.Errorf("alias command cannot be empty")
	}

	if _, exists := t.entries[name]; !exists && len(t.entries) >= MaxAliases {
		return fmt.Errorf("alias limit of %d reached", MaxAliases)
	}

	if t.createsCycle(name, command) {
		return fmt.Errorf("alias %q would create a recursive loop", name)
	}

	return nil
}

// createsCycle walks the alias graph starting from the first word of the
// candidate command. Nodes are alias names; an edge a→b exists when alias
// a's command starts with name b. The walk fails on reaching the candidate
// name again or on revisiting any node, and terminates in at most Size()
// steps because each step consumes an unvisited table entry.
func (t *AliasTable) createsCycle(name, command string) bool {
	current := firstWord(command)
	if current == name {
		return true
	}

	visited := make(map[string]struct{})
	for {
		stored, ok := t.entries[current]
		if !ok {
			return false
		}
		if _, seen := visited[current]; seen {
			return true
		}
		visited[current] = struct{}{}

		current = firstWord(stored)
		if current == name {
			return true
		}
	}
}
