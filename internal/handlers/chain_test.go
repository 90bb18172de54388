// ============================================================================
// chainterm - Browser Command Terminal for Blockchain Networks
// ============================================================================
//
// Package:     handlers
// Description: Tests for the blockchain command surface
// Author:      Mike Stoffels with Claude
// Created:     2026-02-10
// License:     MIT
// ============================================================================

package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/msto63/chainterm/internal/interp"
)

// fakeGateway records the last operation and returns canned responses
type fakeGateway struct {
	lastOp     string
	lastTarget string
	failWith   error
}

func (g *fakeGateway) respond(op, target string) (string, error) {
	g.lastOp = op
	g.lastTarget = target
	if g.failWith != nil {
		return "", g.failWith
	}
	return fmt.Sprintf("%s ok: %s", op, target), nil
}

func (g *fakeGateway) WalletStatus(ctx context.Context) (string, error) {
	return g.respond("wallet", "")
}

func (g *fakeGateway) Call(ctx context.Context, target string) (string, error) {
	return g.respond("call", target)
}

func (g *fakeGateway) Write(ctx context.Context, target string) (string, error) {
	return g.respond("write", target)
}

func (g *fakeGateway) Deploy(ctx context.Context, artifact string, args []string) (string, error) {
	return g.respond("deploy", artifact)
}

func (g *fakeGateway) Compile(ctx context.Context, source string) (string, error) {
	return g.respond("compile", source)
}

func (g *fakeGateway) Simulate(ctx context.Context, target string) (string, error) {
	return g.respond("simulate", target)
}

func (g *fakeGateway) GasEstimate(ctx context.Context, target string) (string, error) {
	return g.respond("gasEstimate", target)
}

func (g *fakeGateway) Query(ctx context.Context, method string, args []string) (string, error) {
	return g.respond("query:"+method, strings.Join(args, " "))
}

func testEnv() ChainEnv {
	return ChainEnv{
		Network:     "sepolia",
		RPCEndpoint: "http://localhost:8545",
		ChainID:     11155111,
		CompilerURL: "http://localhost:8546",
	}
}

func chainFixture(t *testing.T, gateway ChainGateway) *interp.Registry {
	t.Helper()
	reg := interp.NewRegistry(testLogger())
	if err := RegisterChainCommands(reg, testEnv(), gateway); err != nil {
		t.Fatalf("RegisterChainCommands() error = %v", err)
	}
	return reg
}

func runChain(t *testing.T, reg *interp.Registry, name string, args ...string) interp.Result {
	t.Helper()
	h, ok := reg.Resolve(name)
	if !ok {
		t.Fatalf("command %q not registered", name)
	}
	return h.Execute(&interp.Context{Ctx: context.Background(), Args: args})
}

func TestRegisterChainCommands(t *testing.T) {
	reg := chainFixture(t, nil)

	expected := []string{
		"wallet", "smart", "alchemy", "call", "write",
		"deploy", "compile", "simulate", "gasestimate",
	}
	for _, name := range expected {
		if _, ok := reg.Get(name); !ok {
			t.Errorf("chain command %q not registered", name)
		}
	}
}

func TestChainCommandsWithoutGateway(t *testing.T) {
	reg := chainFixture(t, nil)

	result := runChain(t, reg, "wallet")
	if result.Success {
		t.Error("wallet without gateway should fail")
	}
	if result.Error != interp.KindExecutionError {
		t.Errorf("error kind = %q, want %q", result.Error, interp.KindExecutionError)
	}
	if !strings.Contains(result.Output, "sepolia") {
		t.Errorf("offline message should name the network: %q", result.Output)
	}
}

func TestTargetCommands(t *testing.T) {
	gateway := &fakeGateway{}
	reg := chainFixture(t, gateway)

	tests := []struct {
		command string
		wantOp  string
	}{
		{"call", "call"},
		{"write", "write"},
		{"simulate", "simulate"},
		{"gasEstimate", "gasEstimate"},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			result := runChain(t, reg, tt.command, "0xABC.hi()")
			if !result.Success {
				t.Fatalf("%s failed: %s", tt.command, result.Output)
			}
			if gateway.lastOp != tt.wantOp || gateway.lastTarget != "0xABC.hi()" {
				t.Errorf("gateway saw (%q, %q)", gateway.lastOp, gateway.lastTarget)
			}
		})
	}

	t.Run("malformed target rejected before gateway", func(t *testing.T) {
		gateway.lastOp = ""
		result := runChain(t, reg, "call", "notatarget")
		if result.Success {
			t.Error("malformed target should fail")
		}
		if gateway.lastOp != "" {
			t.Error("gateway must not be invoked for malformed targets")
		}
	})

	t.Run("missing target", func(t *testing.T) {
		if result := runChain(t, reg, "call"); result.Success {
			t.Error("call without target should fail")
		}
	})
}

func TestLooksLikeTarget(t *testing.T) {
	tests := []struct {
		target string
		want   bool
	}{
		{"0xABC.hi()", true},
		{"0xABC.transfer(0xDEF, 10)", true},
		{"0xABC", false},
		{".hi()", false},
		{"0xABC.()", false},
		{"0xABC.hi(", false},
	}

	for _, tt := range tests {
		if got := looksLikeTarget(tt.target); got != tt.want {
			t.Errorf("looksLikeTarget(%q) = %v, want %v", tt.target, got, tt.want)
		}
	}
}

func TestGatewayErrorsSurface(t *testing.T) {
	gateway := &fakeGateway{failWith: errors.New("execution reverted")}
	reg := chainFixture(t, gateway)

	result := runChain(t, reg, "call", "0xABC.hi()")
	if result.Success {
		t.Fatal("gateway error must fail the command")
	}
	if !strings.Contains(result.Output, "execution reverted") {
		t.Errorf("gateway error not surfaced: %q", result.Output)
	}
}

func TestQueryCommands(t *testing.T) {
	gateway := &fakeGateway{}
	reg := chainFixture(t, gateway)

	t.Run("smart prefixes the method", func(t *testing.T) {
		result := runChain(t, reg, "smart", "verify", "0xABC")
		if !result.Success {
			t.Fatalf("smart failed: %s", result.Output)
		}
		if gateway.lastOp != "query:smart.verify" {
			t.Errorf("method = %q", gateway.lastOp)
		}
	})

	t.Run("alchemy passes the method through", func(t *testing.T) {
		runChain(t, reg, "alchemy", "eth_blockNumber")
		if gateway.lastOp != "query:eth_blockNumber" {
			t.Errorf("method = %q", gateway.lastOp)
		}
	})

	t.Run("smart requires a subcommand", func(t *testing.T) {
		if result := runChain(t, reg, "smart"); result.Success {
			t.Error("smart without arguments should fail")
		}
	})
}

func TestDeployAndCompile(t *testing.T) {
	gateway := &fakeGateway{}
	reg := chainFixture(t, gateway)

	runChain(t, reg, "deploy", "Token.sol", "1000")
	if gateway.lastOp != "deploy" || gateway.lastTarget != "Token.sol" {
		t.Errorf("deploy saw (%q, %q)", gateway.lastOp, gateway.lastTarget)
	}

	runChain(t, reg, "compile", "Token.sol")
	if gateway.lastOp != "compile" {
		t.Errorf("compile saw %q", gateway.lastOp)
	}

	t.Run("compile offline names the compiler service", func(t *testing.T) {
		offline := chainFixture(t, nil)
		result := runChain(t, offline, "compile", "Token.sol")
		if result.Success || !strings.Contains(result.Output, "8546") {
			t.Errorf("got %+v", result)
		}
	})
}
