package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "minerva",
	Short: "Minerva - transcript compliance evaluation engine",
	Long: `Minerva evaluates conversational AI transcripts against versioned
jurisdiction policy packs.

It provides:
  - Declarative policy packs with regex, keyword, flow, and ML detectors
  - Violation scoring with rule-level regulation traceability
  - Serious-incident classification and obligation mapping
  - Tamper-evident audit records with SHA-256 integrity hashes
  - Evidence documentation fragments for record-keeping reviews`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
