// ============================================================================
// chainterm - Browser Command Terminal for Blockchain Networks
// ============================================================================
//
// Package:     cmd
// Description: serve command - hosts the browser terminal server
// Author:      Mike Stoffels with Claude
// Created:     2026-02-10
// License:     MIT
// ============================================================================

package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/chainterm/internal/server"
	"github.com/msto63/chainterm/pkg/core/logging"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Host the browser terminal server",
	Long: `Starts the HTTP server that hosts the browser terminal.

Endpoints:
  /terminal/ws     - WebSocket terminal (one session per connection)
  /healthz         - health probe
  /api/v1/version  - platform, interpreter and protocol versions

Examples:
  chainterm serve
  chainterm serve --port 9000
  CHAINTERM_CONFIG=./my.toml chainterm serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	logger := setupLogger(cfg)

	srv, err := server.New(server.Options{
		Config: cfg,
		Logger: logger,
	})
	if err != nil {
		printError("could not create server", err)
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	fmt.Printf("chainterm terminal server listening on %s (network %s)\n",
		srv.Address(), cfg.Chain.Network)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", logging.Fields{"signal": sig.String()})
	case err := <-errCh:
		printError("server failed", err)
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(ctx)
}
