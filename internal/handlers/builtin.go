// ============================================================================
// chainterm - Browser Command Terminal for Blockchain Networks
// ============================================================================
//
// Package:     handlers
// Description: Built-in terminal commands. Handlers reach the alias table
//              and history log only through the narrow service interfaces
//              the session hands them, never by direct table access.
// Author:      Mike Stoffels with Claude
// Created:     2026-02-10
// License:     MIT
// ============================================================================

package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/msto63/chainterm/internal/interp"
)

// ClearScreenOutput is the control sequence the clear command emits; hosts
// that render output themselves intercept it instead of printing it
const ClearScreenOutput = "\x1b[2J\x1b[H"

// AliasService is the mediated alias access handed to the alias and
// unalias commands
type AliasService interface {
	Set(name, command string) error
	Remove(name string) bool
	List() []interp.AliasEntry
	Search(query string) []interp.AliasEntry
	Export() (string, error)
	Size() int
}

// HistoryService is the mediated history access handed to the history
// command
type HistoryService interface {
	GetAll() []string
	GetRecent(n int) []string
	Search(text string) []interp.HistoryMatch
	Clear()
	Size() int
}

// SessionInfo describes the session environment to the introspection
// commands (whoami, pwd, ls)
type SessionInfo struct {
	ID        string
	User      string
	Network   string
	StartedAt time.Time
}

// Deps bundles everything the built-in handlers need
type Deps struct {
	Aliases AliasService
	History HistoryService
	Info    SessionInfo
}

// RegisterBuiltins registers all built-in terminal commands
func RegisterBuiltins(reg *interp.Registry, deps Deps) error {
	builtins := []*interp.Handler{
		helpHandler(reg),
		echoHandler(),
		dateHandler(),
		clearHandler(),
		historyHandler(deps.History),
		aliasHandler(deps.Aliases),
		unaliasHandler(deps.Aliases),
		whoamiHandler(deps.Info),
		pwdHandler(deps.Info),
		lsHandler(reg),
	}

	for _, h := range builtins {
		if err := reg.Register(h); err != nil {
			return fmt.Errorf("failed to register builtin %s: %w", h.Name, err)
		}
	}
	return nil
}

func helpHandler(reg *interp.Registry) *interp.Handler {
	return &interp.Handler{
		Name:        "help",
		Description: "Show available commands or details for one command",
		Usage:       "help [command]",
		Aliases:     []string{"?"},
		Execute: func(ctx *interp.Context) interp.Result {
			if len(ctx.Args) > 0 {
				h, ok := reg.Get(ctx.Args[0])
				if !ok {
					return interp.Fail(interp.KindCommandNotFound,
						fmt.Sprintf("Unknown command: %s", ctx.Args[0]))
				}
				var b strings.Builder
				fmt.Fprintf(&b, "%s - %s", h.Name, h.Description)
				if h.Usage != "" {
					fmt.Fprintf(&b, "\nUsage: %s", h.Usage)
				}
				if len(h.Aliases) > 0 {
					fmt.Fprintf(&b, "\nAliases: %s", strings.Join(h.Aliases, ", "))
				}
				return interp.Ok(b.String())
			}

			var b strings.Builder
			b.WriteString("Available commands:\n")
			for _, name := range reg.Names() {
				h, _ := reg.Get(name)
				fmt.Fprintf(&b, "  %-12s %s\n", name, h.Description)
			}
			b.WriteString("\nUse !! to repeat the last command, !n for entry n, !text for a prefix match.")
			return interp.Ok(b.String())
		},
	}
}

func echoHandler() *interp.Handler {
	return &interp.Handler{
		Name:        "echo",
		Description: "Print the given arguments",
		Usage:       "echo [text...]",
		Execute: func(ctx *interp.Context) interp.Result {
			return interp.Ok(strings.Join(ctx.Args, " "))
		},
	}
}

func dateHandler() *interp.Handler {
	return &interp.Handler{
		Name:        "date",
		Description: "Print the current date and time",
		Execute: func(ctx *interp.Context) interp.Result {
			return interp.Ok(time.Now().Format("Mon Jan 2 15:04:05 MST 2006"))
		},
	}
}

func clearHandler() *interp.Handler {
	return &interp.Handler{
		Name:        "clear",
		Description: "Clear the terminal screen",
		Aliases:     []string{"cls"},
		Execute: func(ctx *interp.Context) interp.Result {
			return interp.Ok(ClearScreenOutput)
		},
	}
}

func historyHandler(history HistoryService) *interp.Handler {
	return &interp.Handler{
		Name:        "history",
		Description: "Show, search or clear the command history",
		Usage:       "history [recent <n> | search <text> | clear]",
		Execute: func(ctx *interp.Context) interp.Result {
			if len(ctx.Args) == 0 {
				return interp.Ok(formatHistory(history.GetAll(), 1))
			}

			switch ctx.Args[0] {
			case "recent":
				n := 10
				if len(ctx.Args) > 1 {
					parsed, err := strconv.Atoi(ctx.Args[1])
					if err != nil || parsed < 1 {
						return interp.Fail(interp.KindExecutionError,
							fmt.Sprintf("Invalid count: %s", ctx.Args[1]))
					}
					n = parsed
				}
				start := history.Size() - n
				if start < 0 {
					start = 0
				}
				return interp.Ok(formatHistory(history.GetRecent(n), start+1))

			case "search":
				if len(ctx.Args) < 2 {
					return interp.Fail(interp.KindExecutionError, "Usage: history search <text>")
				}
				matches := history.Search(strings.Join(ctx.Args[1:], " "))
				if len(matches) == 0 {
					return interp.Ok("No matching history entries.")
				}
				var b strings.Builder
				for _, m := range matches {
					fmt.Fprintf(&b, "%4d  %s\n", m.Index, m.Command)
				}
				return interp.Ok(strings.TrimRight(b.String(), "\n"))

			case "clear":
				history.Clear()
				return interp.Ok("History cleared.")

			default:
				return interp.Fail(interp.KindExecutionError,
					fmt.Sprintf("Unknown history subcommand: %s", ctx.Args[0]))
			}
		},
	}
}

// formatHistory renders entries with 1-based display indices starting at
// firstIndex
func formatHistory(entries []string, firstIndex int) string {
	if len(entries) == 0 {
		return "History is empty."
	}

	var b strings.Builder
	for i, entry := range entries {
		fmt.Fprintf(&b, "%4d  %s\n", firstIndex+i, entry)
	}
	return strings.TrimRight(b.String(), "\n")
}

func aliasHandler(aliases AliasService) *interp.Handler {
	return &interp.Handler{
		Name:        "alias",
		Description: "List, define or search command aliases",
		Usage:       "alias [<name> <command...> | <name>=<command> | search <text> | export]",
		Execute: func(ctx *interp.Context) interp.Result {
			if len(ctx.Args) == 0 {
				entries := aliases.List()
				if len(entries) == 0 {
					return interp.Ok("No aliases defined.")
				}
				var b strings.Builder
				for _, e := range entries {
					fmt.Fprintf(&b, "%s = %s\n", e.Name, e.Command)
				}
				return interp.Ok(strings.TrimRight(b.String(), "\n"))
			}

			switch ctx.Args[0] {
			case "search":
				if len(ctx.Args) < 2 {
					return interp.Fail(interp.KindExecutionError, "Usage: alias search <text>")
				}
				matches := aliases.Search(strings.Join(ctx.Args[1:], " "))
				if len(matches) == 0 {
					return interp.Ok("No matching aliases.")
				}
				var b strings.Builder
				for _, e := range matches {
					fmt.Fprintf(&b, "%s = %s\n", e.Name, e.Command)
				}
				return interp.Ok(strings.TrimRight(b.String(), "\n"))

			case "export":
				data, err := aliases.Export()
				if err != nil {
					return interp.Fail(interp.KindExecutionError,
						fmt.Sprintf("Export failed: %v", err))
				}
				return interp.Ok(data)
			}

			name, command := parseAliasDefinition(ctx.Args)
			if command == "" {
				return interp.Fail(interp.KindExecutionError,
					"Usage: alias <name> <command...> or alias <name>=<command>")
			}

			if err := aliases.Set(name, command); err != nil {
				return interp.Fail(interp.KindExecutionError, fmt.Sprintf("Cannot set alias: %v", err))
			}
			return interp.Ok(fmt.Sprintf("Alias set: %s = %s", name, command))
		},
	}
}

// parseAliasDefinition accepts both "name command args" and "name=command"
// argument shapes
func parseAliasDefinition(args []string) (name, command string) {
	if idx := strings.Index(args[0], "="); idx > 0 {
		name = args[0][:idx]
		command = args[0][idx+1:]
		if len(args) > 1 {
			command = strings.TrimSpace(command + " " + strings.Join(args[1:], " "))
		}
		return name, strings.TrimSpace(command)
	}

	if len(args) < 2 {
		return args[0], ""
	}
	return args[0], strings.Join(args[1:], " ")
}

func unaliasHandler(aliases AliasService) *interp.Handler {
	return &interp.Handler{
		Name:        "unalias",
		Description: "Remove one or more aliases",
		Usage:       "unalias <name...>",
		Execute: func(ctx *interp.Context) interp.Result {
			if len(ctx.Args) == 0 {
				return interp.Fail(interp.KindExecutionError, "Usage: unalias <name...>")
			}

			var removed, missing []string
			for _, name := range ctx.Args {
				if aliases.Remove(name) {
					removed = append(removed, name)
				} else {
					missing = append(missing, name)
				}
			}

			var parts []string
			if len(removed) > 0 {
				parts = append(parts, "Removed: "+strings.Join(removed, ", "))
			}
			if len(missing) > 0 {
				parts = append(parts, "Not found: "+strings.Join(missing, ", "))
			}

			out := strings.Join(parts, "\n")
			if len(removed) == 0 {
				return interp.Fail(interp.KindExecutionError, out)
			}
			return interp.Ok(out)
		},
	}
}

func whoamiHandler(info SessionInfo) *interp.Handler {
	return &interp.Handler{
		Name:        "whoami",
		Description: "Show the current user and session",
		Execute: func(ctx *interp.Context) interp.Result {
			user := info.User
			if user == "" {
				user = "anonymous"
			}
			return interp.Ok(fmt.Sprintf("%s (session %s)", user, info.ID))
		},
	}
}

func pwdHandler(info SessionInfo) *interp.Handler {
	return &interp.Handler{
		Name:        "pwd",
		Description: "Show the active network context",
		Execute: func(ctx *interp.Context) interp.Result {
			network := info.Network
			if network == "" {
				network = "offline"
			}
			return interp.Ok("/" + network)
		},
	}
}

func lsHandler(reg *interp.Registry) *interp.Handler {
	return &interp.Handler{
		Name:        "ls",
		Description: "List command names",
		Execute: func(ctx *interp.Context) interp.Result {
			return interp.Ok(strings.Join(reg.Names(), "  "))
		},
	}
}
