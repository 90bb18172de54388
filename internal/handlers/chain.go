// ============================================================================
// chainterm - Browser Command Terminal for Blockchain Networks
// ============================================================================
//
// Package:     handlers
// Description: Blockchain command surface. These handlers own argument
//              validation and response formatting for the terminal; the
//              actual RPC execution is delegated to a ChainGateway the
//              host wires in, so the interpreter stays network-agnostic.
// Author:      Mike Stoffels with Claude
// Created:     2026-02-10
// License:     MIT
// ============================================================================

package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/msto63/chainterm/internal/interp"
)

// ChainGateway executes blockchain operations on behalf of the chain
// command handlers. A nil gateway leaves the commands registered but
// reporting their offline state, so completion and help keep working
// without an RPC endpoint.
type ChainGateway interface {
	WalletStatus(ctx context.Context) (string, error)
	Call(ctx context.Context, target string) (string, error)
	Write(ctx context.Context, target string) (string, error)
	Deploy(ctx context.Context, artifact string, args []string) (string, error)
	Compile(ctx context.Context, source string) (string, error)
	Simulate(ctx context.Context, target string) (string, error)
	GasEstimate(ctx context.Context, target string) (string, error)
	Query(ctx context.Context, method string, args []string) (string, error)
}

// ChainEnv describes the configured chain environment the handlers report
type ChainEnv struct {
	Network     string
	RPCEndpoint string
	ChainID     int64
	CompilerURL string
}

// RegisterChainCommands registers the blockchain command set. gateway may
// be nil.
func RegisterChainCommands(reg *interp.Registry, env ChainEnv, gateway ChainGateway) error {
	commands := []*interp.Handler{
		walletHandler(env, gateway),
		smartHandler(env, gateway),
		alchemyHandler(env, gateway),
		targetHandler("call", "Read a contract method (no state change)", "call <address>.<method>(<args>)",
			env, gateway, func(g ChainGateway, ctx context.Context, target string) (string, error) {
				return g.Call(ctx, target)
			}),
		targetHandler("write", "Send a state-changing contract transaction", "write <address>.<method>(<args>)",
			env, gateway, func(g ChainGateway, ctx context.Context, target string) (string, error) {
				return g.Write(ctx, target)
			}),
		targetHandler("simulate", "Dry-run a transaction against the current state", "simulate <address>.<method>(<args>)",
			env, gateway, func(g ChainGateway, ctx context.Context, target string) (string, error) {
				return g.Simulate(ctx, target)
			}),
		targetHandler("gasEstimate", "Estimate gas for a transaction", "gasEstimate <address>.<method>(<args>)",
			env, gateway, func(g ChainGateway, ctx context.Context, target string) (string, error) {
				return g.GasEstimate(ctx, target)
			}),
		deployHandler(env, gateway),
		compileHandler(env, gateway),
	}

	for _, h := range commands {
		if err := reg.Register(h); err != nil {
			return fmt.Errorf("failed to register chain command %s: %w", h.Name, err)
		}
	}
	return nil
}

func offlineResult(env ChainEnv, name string) interp.Result {
	return interp.Fail(interp.KindExecutionError,
		fmt.Sprintf("%s: no chain gateway connected (network %s, endpoint %s)",
			name, env.Network, env.RPCEndpoint))
}

func gatewayResult(output string, err error) interp.Result {
	if err != nil {
		return interp.Fail(interp.KindExecutionError, err.Error())
	}
	return interp.Ok(output)
}

func walletHandler(env ChainEnv, gateway ChainGateway) *interp.Handler {
	return &interp.Handler{
		Name:        "wallet",
		Description: "Show wallet connection and balance status",
		Usage:       "wallet [status]",
		Execute: func(ctx *interp.Context) interp.Result {
			if gateway == nil {
				return offlineResult(env, "wallet")
			}
			return gatewayResult(gateway.WalletStatus(ctx.Ctx))
		},
	}
}

func smartHandler(env ChainEnv, gateway ChainGateway) *interp.Handler {
	return &interp.Handler{
		Name:        "smart",
		Description: "Run a smart-contract helper query",
		Usage:       "smart <subcommand> [args...]",
		Execute: func(ctx *interp.Context) interp.Result {
			if len(ctx.Args) == 0 {
				return interp.Fail(interp.KindExecutionError, "Usage: smart <subcommand> [args...]")
			}
			if gateway == nil {
				return offlineResult(env, "smart")
			}
			return gatewayResult(gateway.Query(ctx.Ctx, "smart."+ctx.Args[0], ctx.Args[1:]))
		},
	}
}

func alchemyHandler(env ChainEnv, gateway ChainGateway) *interp.Handler {
	return &interp.Handler{
		Name:        "alchemy",
		Description: "Query the node provider API",
		Usage:       "alchemy <method> [args...]",
		Execute: func(ctx *interp.Context) interp.Result {
			if len(ctx.Args) == 0 {
				return interp.Fail(interp.KindExecutionError, "Usage: alchemy <method> [args...]")
			}
			if gateway == nil {
				return offlineResult(env, "alchemy")
			}
			return gatewayResult(gateway.Query(ctx.Ctx, ctx.Args[0], ctx.Args[1:]))
		},
	}
}

// targetHandler builds the shape shared by call, write, simulate and
// gasEstimate: one <address>.<method>(...) target argument.
func targetHandler(name, description, usage string, env ChainEnv, gateway ChainGateway,
	invoke func(ChainGateway, context.Context, string) (string, error)) *interp.Handler {
	return &interp.Handler{
		Name:        name,
		Description: description,
		Usage:       usage,
		Execute: func(ctx *interp.Context) interp.Result {
			if len(ctx.Args) == 0 {
				return interp.Fail(interp.KindExecutionError, "Usage: "+usage)
			}
			target := strings.Join(ctx.Args, " ")
			if !looksLikeTarget(target) {
				return interp.Fail(interp.KindExecutionError,
					fmt.Sprintf("Invalid target %q, expected <address>.<method>(<args>)", target))
			}
			if gateway == nil {
				return offlineResult(env, name)
			}
			return gatewayResult(invoke(gateway, ctx.Ctx, target))
		},
	}
}

// looksLikeTarget checks the <address>.<method>(...) shape without
// validating the address itself
func looksLikeTarget(target string) bool {
	dot := strings.Index(target, ".")
	if dot <= 0 {
		return false
	}
	rest := target[dot+1:]
	open := strings.Index(rest, "(")
	return open > 0 && strings.HasSuffix(rest, ")")
}

func deployHandler(env ChainEnv, gateway ChainGateway) *interp.Handler {
	return &interp.Handler{
		Name:        "deploy",
		Description: "Deploy a compiled contract artifact",
		Usage:       "deploy <artifact> [constructor args...]",
		Execute: func(ctx *interp.Context) interp.Result {
			if len(ctx.Args) == 0 {
				return interp.Fail(interp.KindExecutionError, "Usage: deploy <artifact> [constructor args...]")
			}
			if gateway == nil {
				return offlineResult(env, "deploy")
			}
			return gatewayResult(gateway.Deploy(ctx.Ctx, ctx.Args[0], ctx.Args[1:]))
		},
	}
}

func compileHandler(env ChainEnv, gateway ChainGateway) *interp.Handler {
	return &interp.Handler{
		Name:        "compile",
		Description: "Compile contract source via the configured compiler service",
		Usage:       "compile <source>",
		Execute: func(ctx *interp.Context) interp.Result {
			if len(ctx.Args) == 0 {
				return interp.Fail(interp.KindExecutionError, "Usage: compile <source>")
			}
			if gateway == nil {
				return interp.Fail(interp.KindExecutionError,
					fmt.Sprintf("compile: no compiler connected (service %s)", env.CompilerURL))
			}
			return gatewayResult(gateway.Compile(ctx.Ctx, ctx.Args[0]))
		},
	}
}
