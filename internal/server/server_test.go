// ============================================================================
// chainterm - Browser Command Terminal for Blockchain Networks
// ============================================================================
//
// Package:     server
// Description: Tests for the HTTP server endpoints
// Author:      Mike Stoffels with Claude
// Created:     2026-02-10
// License:     MIT
// ============================================================================

package server

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/msto63/chainterm/pkg/core/config"
	"github.com/msto63/chainterm/pkg/core/version"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := config.Default()
	cfg.General.DataDir = t.TempDir()
	cfg.Session.StoragePath = filepath.Join(cfg.General.DataDir, "sessions.db")
	// no node running during tests
	cfg.Chain.RPCEndpoint = ""

	s, err := New(Options{Config: cfg, Logger: testLogger()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { s.Stop(context.Background()) })
	return s
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest("GET", "/healthz", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Status  string        `json:"status"`
		Network string        `json:"network"`
		Checks  []interface{} `json:"checks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Status != "healthy" {
		t.Errorf("status field = %q", body.Status)
	}
	if body.Network == "" {
		t.Error("health response must name the network")
	}
	if len(body.Checks) == 0 {
		t.Error("health response must list individual checks")
	}
}

func TestVersionEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleVersion(rec, httptest.NewRequest("GET", "/api/v1/version", nil))

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["interpreter"] != version.Interpreter {
		t.Errorf("interpreter = %q, want %q", body["interpreter"], version.Interpreter)
	}
	if body["protocol"] != version.Protocol {
		t.Errorf("protocol = %q, want %q", body["protocol"], version.Protocol)
	}
}

func TestServerAddress(t *testing.T) {
	s := newTestServer(t)
	if s.Address() == "" {
		t.Error("Address() must report the configured listen address")
	}
}
