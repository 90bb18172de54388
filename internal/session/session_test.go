// ============================================================================
// chainterm - Browser Command Terminal for Blockchain Networks
// ============================================================================
//
// Package:     session
// Description: Tests for session lifecycle, persistence and bootstrap
// Author:      Mike Stoffels with Claude
// Created:     2026-02-10
// License:     MIT
// ============================================================================

package session

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/msto63/chainterm/internal/interp"
	"github.com/msto63/chainterm/internal/store"
	"github.com/msto63/chainterm/pkg/core/config"
	"github.com/msto63/chainterm/pkg/core/logging"
)

func testLogger() *logging.Logger {
	return logging.NewWithConfig(logging.Config{
		Name:   "test",
		Level:  logging.LevelError,
		Output: io.Discard,
	})
}

func newTestSession(t *testing.T, opts Options) *Session {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = testLogger()
	}
	s, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestNewSession(t *testing.T) {
	s := newTestSession(t, Options{User: "dev"})

	if s.ID() == "" {
		t.Error("session must generate an id")
	}
	if s.User() != "dev" {
		t.Errorf("User() = %q", s.User())
	}

	// both built-in and chain commands are registered
	result := s.Dispatch(context.Background(), "help")
	if !result.Success {
		t.Fatalf("help failed: %s", result.Output)
	}
	for _, name := range []string{"echo", "wallet", "deploy"} {
		if !strings.Contains(result.Output, name) {
			t.Errorf("help missing %q", name)
		}
	}
}

func TestSessionIDOverride(t *testing.T) {
	s := newTestSession(t, Options{ID: "reconnect-1"})
	if s.ID() != "reconnect-1" {
		t.Errorf("ID() = %q, want reconnect-1", s.ID())
	}
}

func TestDispatchFlow(t *testing.T) {
	s := newTestSession(t, Options{})
	ctx := context.Background()

	s.Dispatch(ctx, `alias greet=echo hello`)
	result := s.Dispatch(ctx, "greet")
	if !result.Success {
		t.Fatalf("greet failed: %s", result.Output)
	}
	if !strings.Contains(result.Output, "Alias expanded: greet → echo hello") {
		t.Errorf("missing alias note: %q", result.Output)
	}
	if !strings.Contains(result.Output, "hello") {
		t.Errorf("missing command output: %q", result.Output)
	}

	repeat := s.Dispatch(ctx, "!!")
	if !strings.Contains(repeat.Output, "Repeating: greet") {
		t.Errorf("back-reference note missing: %q", repeat.Output)
	}
}

func TestSuggest(t *testing.T) {
	s := newTestSession(t, Options{})
	s.Dispatch(context.Background(), "alias gm=echo gm")

	got := s.Suggest("g")
	found := false
	for _, c := range got {
		if c == "gm" {
			found = true
		}
	}
	if !found {
		t.Errorf("Suggest(\"g\") = %v, want gm included", got)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	kv := store.NewMemoryStore()
	ctx := context.Background()

	s1 := newTestSession(t, Options{Store: kv})
	s1.Dispatch(ctx, "alias greet=echo hello")
	s1.Dispatch(ctx, "echo first")
	if err := s1.Close(ctx); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	s2 := newTestSession(t, Options{Store: kv})
	if _, ok := s2.aliases.Get("greet"); !ok {
		t.Error("alias not restored from store")
	}
	if s2.history.Size() == 0 {
		t.Error("history not restored from store")
	}

	// restored history is reachable through back-references
	result := s2.Dispatch(ctx, "!echo")
	if !result.Success {
		t.Errorf("back-reference into restored history failed: %+v", result)
	}
}

func TestRestoreMalformedState(t *testing.T) {
	kv := store.NewMemoryStore()
	ctx := context.Background()
	kv.Set(ctx, store.KeyAliases, "{not json")
	kv.Set(ctx, store.KeyHistory, "also not json")

	s := newTestSession(t, Options{Store: kv})
	if s.aliases.Size() != 0 {
		t.Errorf("malformed alias payload must leave table empty, size = %d", s.aliases.Size())
	}
	if s.history.Size() != 0 {
		t.Errorf("malformed history payload must leave log empty, size = %d", s.history.Size())
	}

	// the session stays fully usable
	if result := s.Dispatch(ctx, "echo ok"); !result.Success {
		t.Errorf("dispatch after malformed restore failed: %+v", result)
	}
}

func TestBusyRejectsOverlap(t *testing.T) {
	s := newTestSession(t, Options{})
	s.busy.Store(true)

	result := s.Dispatch(context.Background(), "echo hi")
	if result.Success {
		t.Fatal("busy session must reject dispatch")
	}
	if result.Error != interp.KindExecutionError {
		t.Errorf("error kind = %q", result.Error)
	}

	s.busy.Store(false)
	if result := s.Dispatch(context.Background(), "echo hi"); !result.Success {
		t.Errorf("dispatch after release failed: %+v", result)
	}
}

func writeBootstrapFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing bootstrap file: %v", err)
	}
	return path
}

func TestLoadBootstrap(t *testing.T) {
	path := writeBootstrapFile(t, `
aliases:
  - name: gm
    command: echo gm
  - name: bal
    command: wallet status
`)

	entries, err := LoadBootstrap(path)
	if err != nil {
		t.Fatalf("LoadBootstrap() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Name != "gm" || entries[0].Command != "echo gm" {
		t.Errorf("first entry = %+v", entries[0])
	}
}

func TestBootstrapApplied(t *testing.T) {
	path := writeBootstrapFile(t, `
aliases:
  - name: gm
    command: echo gm
  - name: wallet
    command: echo shadowed
`)

	cfg := config.Default()
	cfg.Session.AliasBootstrap = path

	s := newTestSession(t, Options{Config: cfg})
	if cmd, ok := s.aliases.Get("gm"); !ok || cmd != "echo gm" {
		t.Errorf("bootstrap alias gm = %q, ok = %v", cmd, ok)
	}
	// reserved names stay rejected even from the bootstrap file
	if s.aliases.Has("wallet") {
		t.Error("reserved name must not be bootstrapped")
	}
}

func TestBootstrapDoesNotOverrideStoredAlias(t *testing.T) {
	kv := store.NewMemoryStore()
	ctx := context.Background()

	first := newTestSession(t, Options{Store: kv})
	first.Dispatch(ctx, "alias gm=echo my version")
	first.Close(ctx)

	path := writeBootstrapFile(t, `
aliases:
  - name: gm
    command: echo bootstrap version
`)
	cfg := config.Default()
	cfg.Session.AliasBootstrap = path

	s := newTestSession(t, Options{Config: cfg, Store: kv})
	if cmd, _ := s.aliases.Get("gm"); cmd != "echo my version" {
		t.Errorf("stored alias overridden by bootstrap: %q", cmd)
	}
}

func TestBootstrapMissingFileIgnored(t *testing.T) {
	cfg := config.Default()
	cfg.Session.AliasBootstrap = filepath.Join(t.TempDir(), "missing.yaml")

	s := newTestSession(t, Options{Config: cfg})
	if result := s.Dispatch(context.Background(), "echo ok"); !result.Success {
		t.Errorf("session unusable after missing bootstrap: %+v", result)
	}
}
