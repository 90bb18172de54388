// ============================================================================
// chainterm - Browser Command Terminal for Blockchain Networks
// ============================================================================
//
// Package:     cmd
// Description: Root command and shared CLI setup
// Author:      Mike Stoffels with Claude
// Created:     2026-02-10
// License:     MIT
// ============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/msto63/chainterm/pkg/core/config"
	"github.com/msto63/chainterm/pkg/core/logging"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "chainterm",
	Short: "chainterm - browser command terminal for blockchain networks",
	Long: `chainterm hosts a command terminal for blockchain networks.

The interpreter understands quoted arguments, user-defined aliases and
bang back-references into the command history (!!, !3, !wal).

Modes:
  serve - host the browser terminal over WebSocket
  repl  - run a local terminal in this shell`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./configs/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig resolves the configuration from the --config flag, the
// CHAINTERM_CONFIG environment variable or the default search paths
func loadConfig() *config.Config {
	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			printError("could not load config, using defaults", err)
			return config.Default()
		}
		return cfg
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		printError("could not load config, using defaults", err)
		return config.Default()
	}
	return cfg
}

// setupLogger builds the process logger from config and the verbose flag
func setupLogger(cfg *config.Config) *logging.Logger {
	level := logging.ParseLevel(cfg.General.LogLevel)
	if verbose {
		level = logging.LevelDebug
	}

	format := logging.FormatText
	if cfg.General.LogFormat == "json" {
		format = logging.FormatJSON
	}

	return logging.NewWithConfig(logging.Config{
		Name:   "chainterm",
		Level:  level,
		Format: format,
		Output: os.Stderr,
	})
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
}
