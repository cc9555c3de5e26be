// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "vmengine",
	Short: "Deterministic voting/allocation computation engine",
	Long: `vmengine loads a division registry, a ballot tally, and a parameter
set from disk, runs the fixed-order pipeline over them, and writes the
resulting Result and RunRecord artifacts as canonical JSON.

It is a driver only: argument parsing, file I/O, and output formatting
live here, never tabulation or allocation logic.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "optional defaults file (default is ./vmengine.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level stage logging")
	rootCmd.AddCommand(runCmd)
}

// Commands are defined in separate files:
// - runCmd in run.go

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
