package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	dryRun  bool
	verbose bool
	output  string
	baseDir string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Manifest: intent-to-implementation pipeline",
	Long: `manifest compiles a natural-language feature request into an
executable Specification, generates candidate implementations across
several strategies, verifies each in an isolated workspace, ranks the
survivors, and drives a human judgment over the result.

Core commands:
  run       Submit a new Intent from a raw message
  status    Show an Intent's current phase and artifacts
  abort     Abort an in-flight Intent
  history   List recent Intents
  judge     Record a human Judgment over presented Survivors
  config    Show resolved configuration`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "show what would happen without executing")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "output format (json, table)")
	rootCmd.PersistentFlags().StringVar(&baseDir, "base-dir", "", "Manifest data directory (default: .manifest)")
}

// GetDryRun returns the dry-run flag value for use by subcommands.
func GetDryRun() bool { return dryRun }

// GetVerbose returns the verbose flag value for use by subcommands.
func GetVerbose() bool { return verbose }

// GetOutput returns the output format for use by subcommands.
func GetOutput() string { return output }

// GetBaseDir returns the configured data directory override, empty if unset.
func GetBaseDir() string { return baseDir }
