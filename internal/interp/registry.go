// File: registry.go
// Title: Command Handler Registry
// Description: Holds the named command handlers a session can dispatch to,
//              plus the built-in alias map resolved ahead of command names.
//              Handler names are case-insensitive and the last registration
//              wins for lookup purposes.
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

// Context carries the capabilities a handler may use during execution.
// History is a snapshot; handlers never get direct table access.
type Context struct {
	// Ctx is the cancellation context of the dispatch call
	Ctx context.Context

	// Args are the positional argument tokens after the command name
	Args []string

	// RawInput is the full line the handler was resolved from
	RawInput string

	// History is a read-only snapshot of the session history, oldest first
	History []string

	// Services are host-provided collaborators, opaque to the interpreter
	Services map[string]interface{}
}

// Handler is a registered command. Execute must report failures through
// the returned Result; a panic is caught by the dispatcher and converted
// into an execution error.
type Handler struct {
	Name        string
	Description string
	Usage       string
	Aliases     []string
	Execute     func(ctx *Context) Result
}

// Registry maps command names and built-in aliases to handlers. It is
// populated once at session start and treated as immutable afterwards.
type Registry struct {
	handlers map[string]*Handler
	aliases  map[string]string
	logger   *logging.Logger
}

// NewRegistry creates an empty handler registry
func NewRegistry(logger *logging.Logger) *Registry {
	if logger == nil {
		logger = logging.GetDefault()
	}
	return &Registry{
		handlers: make(map[string]*Handler),
		aliases:  make(map[string]string),
		logger:   logger.WithField("component", "registry"),
	}
}

// Register adds a handler under its lower-cased name and built-in aliases.
// Registering an existing name or alias overwrites the previous mapping.
func (r *Registry) Register(h *Handler) error {
	if h == nil {
		return fmt.Errorf("handler cannot be nil")
	}
	if strings.TrimSpace(h.Name) == "" {
		return fmt.Errorf("handler name cannot be empty")
	}
	if h.Execute == nil {
		return fmt.Errorf("handler %q has no execute function", h.Name)
	}

	name := strings.ToLower(h.Name)
	if _, exists := r.handlers[name]; exists {
		r.logger.Warn("handler overwritten", logging.Fields{"name": name})
	}
	r.handlers[name] = h

	for _, alias := range h.Aliases {
		alias = strings.ToLower(alias)
		if alias == "" {
			continue
		}
		r.aliases[alias] = name
	}

	r.logger.Debug("handler registered", logging.Fields{
		"name":    name,
		"aliases": len(h.Aliases),
	})
	return nil
}

// Resolve finds the handler for a lower-cased first token, consulting the
// built-in alias map before command names
func (r *Registry) Resolve(name string) (*Handler, bool) {
	name = strings.ToLower(name)

	if canonical, ok := r.aliases[name]; ok {
		if h, found := r.handlers[canonical]; found {
			return h, true
		}
	}

	h, ok := r.handlers[name]
	return h, ok
}

// Get returns the handler registered under the given name, ignoring the
// built-in alias map
func (r *Registry) Get(name string) (*Handler, bool) {
	h, ok := r.handlers[strings.ToLower(name)]
	return h, ok
}

// Names returns all registered command names, sorted
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AliasNames returns all built-in alias names, sorted
func (r *Registry) AliasNames() []string {
	names := make([]string, 0, len(r.aliases))
	for name := range r.aliases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Size returns the number of registered handlers
func (r *Registry) Size() int {
	return len(r.handlers)
}
