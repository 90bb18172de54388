// ============================================================================
// chainterm - Browser Command Terminal for Blockchain Networks
// ============================================================================
//
// Package:     server
// Description: HTTP server hosting the browser terminal: the WebSocket
//              endpoint, a health probe and a version endpoint. Session
//              state is shared across connections through one SQLite
//              database.
// Author:      Mike Stoffels with Claude
// Created:     2026-02-10
// License:     MIT
// ============================================================================

package server

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/msto63/chainterm/internal/handlers"
	"github.com/msto63/chainterm/internal/session"
	"github.com/msto63/chainterm/internal/store"
	"github.com/msto63/chainterm/pkg/core/config"
	"github.com/msto63/chainterm/pkg/core/health"
	"github.com/msto63/chainterm/pkg/core/logging"
	"github.com/msto63/chainterm/pkg/core/version"
)

// Server hosts the terminal endpoints
type Server struct {
	httpServer *http.Server
	db         *sql.DB
	health     *health.Registry
	logger     *logging.Logger
	config     *config.Config
}

// Options configures the terminal server
type Options struct {
	Config  *config.Config
	Gateway handlers.ChainGateway
	Logger  *logging.Logger
}

// New creates the terminal server and opens the session database
func New(opts Options) (*Server, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.GetDefault()
	}
	logger = logger.WithField("component", "server")

	db, err := openSessionDB(cfg.Session.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	s := &Server{
		db:     db,
		health: health.NewRegistry("chainterm", version.Platform),
		logger: logger,
		config: cfg,
	}

	s.health.RegisterFunc("database", func(ctx context.Context) health.CheckResult {
		if err := db.PingContext(ctx); err != nil {
			return health.CheckResult{Status: health.StatusUnhealthy, Message: err.Error()}
		}
		return health.CheckResult{Status: health.StatusHealthy, Message: "session database reachable"}
	})
	if cfg.Chain.RPCEndpoint != "" {
		// the terminal keeps working without the node, so a dead endpoint
		// only degrades the report
		s.health.Register(downgraded(health.HTTPCheck("rpc", cfg.Chain.RPCEndpoint, 3*time.Second)))
	}

	factory := func(id string) (*session.Session, error) {
		// a fresh terminal gets its id here so the store can be scoped
		// before the session exists
		if id == "" {
			id = uuid.NewString()
		}

		kv, err := store.NewSQLiteStoreWithDB(db, id)
		if err != nil {
			return nil, err
		}
		return session.New(session.Options{
			Config:  cfg,
			Store:   kv,
			Gateway: opts.Gateway,
			Logger:  logger,
			ID:      id,
		})
	}

	terminal := NewTerminalHandler(factory, cfg.Server.AllowedOrigins, logger)

	mux := http.NewServeMux()
	mux.Handle("/terminal/ws", terminal)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/v1/version", s.handleVersion)

	s.httpServer = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      loggingMiddleware(logger, mux),
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return s, nil
}

// openSessionDB opens the shared session database, creating its directory
// if needed
func openSessionDB(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL")
}

// Start starts the server and blocks until it stops
func (s *Server) Start() error {
	s.logger.Info("Starting terminal server", logging.Fields{
		"addr":    s.httpServer.Addr,
		"network": s.config.Chain.Network,
	})
	return s.httpServer.ListenAndServe()
}

// Stop gracefully stops the server and closes the session database
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping terminal server")

	err := s.httpServer.Shutdown(ctx)
	if closeErr := s.db.Close(); err == nil {
		err = closeErr
	}
	return err
}

// Address returns the server listen address
func (s *Server) Address() string {
	return s.httpServer.Addr
}

// downgraded caps a checker's failures at degraded
func downgraded(c health.Checker) health.Checker {
	return health.NewChecker(c.Name(), func(ctx context.Context) health.CheckResult {
		result := c.Check(ctx)
		if result.Status == health.StatusUnhealthy {
			result.Status = health.StatusDegraded
		}
		return result
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]interface{}{
		"status":  report.Status,
		"network": s.config.Chain.Network,
		"uptime":  report.Uptime.String(),
		"checks":  report.Checks,
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"platform":    version.Platform,
		"interpreter": version.Interpreter,
		"protocol":    version.Protocol,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// loggingMiddleware adds request logging
func loggingMiddleware(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		logger.Debug("HTTP request", logging.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   wrapper.statusCode,
			"duration": time.Since(start).String(),
		})
	})
}

// responseWrapper wraps http.ResponseWriter to capture the status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWrapper) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack keeps the WebSocket upgrade working behind the middleware
func (w *responseWrapper) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hj.Hijack()
}
