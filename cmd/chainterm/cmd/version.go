// ============================================================================
// chainterm - Browser Command Terminal for Blockchain Networks
// ============================================================================
//
// Package:     cmd
// Description: version command
// Author:      Mike Stoffels with Claude
// Created:     2026-02-10
// License:     MIT
// ============================================================================

package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/msto63/chainterm/pkg/core/version"
)

var (
	GitCommit = "development"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("chainterm v%s\n", version.Platform)
		fmt.Printf("  Interpreter: %s\n", version.Interpreter)
		fmt.Printf("  Protocol:    %s\n", version.Protocol)
		fmt.Printf("  Git Commit:  %s\n", GitCommit)
		fmt.Printf("  Build Date:  %s\n", BuildDate)
		fmt.Printf("  Go Version:  %s\n", runtime.Version())
		fmt.Printf("  OS/Arch:     %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
