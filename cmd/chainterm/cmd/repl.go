// ============================================================================
// chainterm - Browser Command Terminal for Blockchain Networks
// ============================================================================
//
// Package:     cmd
// Description: repl command - local terminal in the current shell
// Author:      Mike Stoffels with Claude
// Created:     2026-02-10
// License:     MIT
// ============================================================================

package cmd

import (
	"context"
	"os/user"

	"github.com/spf13/cobra"

	"github.com/msto63/chainterm/internal/session"
	"github.com/msto63/chainterm/internal/store"
	"github.com/msto63/chainterm/internal/tui/repl"
)

var (
	replSessionID string
	replEphemeral bool
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Run a local terminal in this shell",
	Long: `Runs the command terminal locally without the browser frontend.

State is persisted per session id; reuse --session to pick up aliases
and history from an earlier run.

Examples:
  chainterm repl
  chainterm repl --session work
  chainterm repl --ephemeral`,
	RunE: runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
	replCmd.Flags().StringVar(&replSessionID, "session", "local", "session id for persisted state")
	replCmd.Flags().BoolVar(&replEphemeral, "ephemeral", false, "keep all state in memory")
}

func runRepl(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	logger := setupLogger(cfg)

	var kv store.KVStore
	if !replEphemeral {
		var err error
		kv, err = store.NewSQLiteStore(store.SQLiteConfig{
			Path:      cfg.Session.StoragePath,
			SessionID: replSessionID,
		})
		if err != nil {
			printError("could not open session store", err)
			return err
		}
		defer kv.Close()
	}

	userName := ""
	if u, err := user.Current(); err == nil {
		userName = u.Username
	}

	sess, err := session.New(session.Options{
		Config: cfg,
		Store:  kv,
		Logger: logger,
		User:   userName,
		ID:     replSessionID,
	})
	if err != nil {
		printError("could not create session", err)
		return err
	}
	defer sess.Close(context.Background())

	return repl.Run(repl.Config{
		Session: sess,
		Network: cfg.Chain.Network,
	})
}
