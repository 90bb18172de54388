// File: dispatcher.go
// Title: Command Dispatcher
// Description: Orchestrates a single dispatch call: alias expansion, history
//              back-reference expansion, tokenization, handler lookup,
//              execution and history recording. Every failure is folded into
//              a Result; nothing escapes Dispatch as a panic.
// Author: msto63 with Claude Sonnet 4.0
// Version: v0.1.0
// Created: 2026-02-10
// Modified: 2026-02-10

package interp

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/msto63/chainterm/pkg/core/logging"
)

// suggestionHistoryDepth is how many recent history entries contribute a
// synthetic !<index> completion token
const suggestionHistoryDepth = 10

// Options configures a dispatcher
type Options struct {
	// Registry holds the dispatchable handlers (required)
	Registry *Registry

	// Aliases is the session alias table (required)
	Aliases *AliasTable

	// History is the session history log (required)
	History *HistoryLog

	// Logger for dispatch operations (optional, defaults to the default
	// logger)
	Logger *logging.Logger

	// Services are handed to every handler context, opaque to the
	// interpreter
	Services map[string]interface{}
}

// Dispatcher coordinates the interpreter components for one session. It
// holds no dispatch state of its own; the caller serializes Dispatch calls.
type Dispatcher struct {
	registry *Registry
	aliases  *AliasTable
	history  *HistoryLog
	logger   *logging.Logger
	services map[string]interface{}
}

// NewDispatcher creates a dispatcher over the given tables and registry
func NewDispatcher(opts Options) (*Dispatcher, error) {
	if opts.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if opts.Aliases == nil {
		return nil, fmt.Errorf("alias table is required")
	}
	if opts.History == nil {
		return nil, fmt.Errorf("history log is required")
	}
	if opts.Logger == nil {
		opts.Logger = logging.GetDefault()
	}

	return &Dispatcher{
		registry: opts.Registry,
		aliases:  opts.Aliases,
		history:  opts.History,
		logger:   opts.Logger.WithField("component", "dispatcher"),
		services: opts.Services,
	}, nil
}

// Dispatch runs a raw input line through the full interpretation pipeline
// and returns its result. The original trimmed line is what gets recorded
// in history, never the alias- or history-expanded form.
func (d *Dispatcher) Dispatch(ctx context.Context, rawInput string) Result {
	trimmed := strings.TrimSpace(rawInput)
	if trimmed == "" {
		return Ok("")
	}

	expanded := d.aliases.Expand(trimmed)
	aliasFired := expanded != trimmed
	if aliasFired {
		d.logger.Debug("alias expanded", logging.Fields{
			"original": trimmed,
			"expanded": expanded,
		})
	}

	if IsBackReference(expanded) {
		return d.dispatchBackReference(ctx, trimmed, expanded, aliasFired)
	}

	result := d.run(ctx, expanded, trimmed)

	if aliasFired && result.Output != "" {
		result.Output = aliasNote(trimmed, expanded) + "\n" + result.Output
	}
	return result
}

// dispatchBackReference resolves a history back-reference and recursively
// dispatches the entry it refers to. The inner dispatch records history on
// its own; the back-reference line itself is never stored.
func (d *Dispatcher) dispatchBackReference(ctx context.Context, original, ref string, aliasFired bool) Result {
	expansion := d.history.ExpandCommand(ref)
	if expansion == nil {
		return d.backReferenceFailure(ref)
	}

	d.logger.Debug("history expanded", logging.Fields{
		"reference": ref,
		"expanded":  expansion.Expanded,
	})

	// history stores original lines, so a recalled entry may itself be an
	// alias invocation and gets expanded again before it runs
	inner := d.run(ctx, d.aliases.Expand(expansion.Expanded), expansion.Expanded)

	note := "Repeating: " + expansion.Expanded
	if aliasFired {
		note = aliasNote(original, ref) + "\n" + note
	}
	if inner.Output != "" {
		inner.Output = note + "\n" + inner.Output
	} else {
		inner.Output = note
	}
	return inner
}

// backReferenceFailure classifies a failed back-reference into its error
// kind with a recovery hint
func (d *Dispatcher) backReferenceFailure(ref string) Result {
	kind := ClassifyBackReference(ref)

	switch kind {
	case KindNoHistory:
		return Fail(kind, "No history yet. Run a command first, then repeat it with !!")
	case KindInvalidHistoryIndex:
		return Fail(kind, fmt.Sprintf("History index %s is out of range. Use 'history' to list entries.", ref))
	default:
		text := strings.TrimPrefix(ref, "!")
		return Fail(kind, fmt.Sprintf("No history entry starts with %q. Try 'history search %s'.", text, text))
	}
}

// run performs the tokenize → resolve → execute → record tail of a
// dispatch. record is the line appended to history afterwards; it is never
// recorded for an unresolvable command.
func (d *Dispatcher) run(ctx context.Context, line, record string) Result {
	tokens := Tokenize(line)
	if len(tokens) == 0 {
		return Ok("")
	}

	name := strings.ToLower(tokens[0])
	handler, ok := d.registry.Resolve(name)
	if !ok {
		return Fail(KindCommandNotFound, fmt.Sprintf("Command not found: %s", name))
	}

	result := d.invoke(ctx, handler, tokens[1:], line)
	d.history.Add(record)
	return result
}

// invoke executes a handler, converting a panic into an execution error
func (d *Dispatcher) invoke(ctx context.Context, handler *Handler, args []string, rawInput string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("handler panicked", logging.Fields{
				"command": handler.Name,
				"panic":   fmt.Sprintf("%v", r),
			})
			result = Fail(KindExecutionError, fmt.Sprintf("Execution error in %s: %v", handler.Name, r))
		}
	}()

	return handler.Execute(&Context{
		Ctx:      ctx,
		Args:     args,
		RawInput: rawInput,
		History:  d.history.GetAll(),
		Services: d.services,
	})
}

// GetSuggestions returns completion candidates for a partial input token:
// command names, built-in aliases, user aliases and synthetic history
// back-reference tokens, prefix-matched case-insensitively and sorted.
func (d *Dispatcher) GetSuggestions(partial string) []string {
	candidates := make(map[string]struct{})

	for _, name := range d.registry.Names() {
		candidates[name] = struct{}{}
	}
	for _, alias := range d.registry.AliasNames() {
		candidates[alias] = struct{}{}
	}
	for _, entry := range d.aliases.List() {
		candidates[entry.Name] = struct{}{}
	}

	candidates["!!"] = struct{}{}
	size := d.history.Size()
	depth := suggestionHistoryDepth
	if size < depth {
		depth = size
	}
	for i := size - depth + 1; i <= size; i++ {
		candidates[fmt.Sprintf("!%d", i)] = struct{}{}
	}

	prefix := strings.ToLower(partial)
	var suggestions []string
	for candidate := range candidates {
		if strings.HasPrefix(strings.ToLower(candidate), prefix) {
			suggestions = append(suggestions, candidate)
		}
	}

	sort.Strings(suggestions)
	return suggestions
}

// aliasNote formats the expansion notice prepended to handler output
func aliasNote(original, expanded string) string {
	return fmt.Sprintf("Alias expanded: %s → %s", original, expanded)
}
