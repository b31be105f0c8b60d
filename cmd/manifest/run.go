package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boshu2/manifest/internal/types"
)

var (
	runSession string
	runWait    bool
)

var runCmd = &cobra.Command{
	Use:   "run <message>",
	Short: "Submit a new Intent from a raw message",
	Long: `run submits a natural-language feature request as a new Intent and
drives it through parsing. With --wait, a request that parses cleanly
continues on to compiling, generating, verifying, and ranking; without
it, run returns once parsing is done. If the Compiler flags
unclear requirements the Intent halts at clarifying and "manifest status"
shows the outstanding questions.

Examples:
  manifest run "add a retry with backoff to the HTTP client"
  manifest run "add rate limiting" --session team-a --wait`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runSession, "session", "default", "session identifier grouping related Intents")
	runCmd.Flags().BoolVar(&runWait, "wait", false, "drive the Intent through to judging before returning")
}

func runRun(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Store.Close()

	intent, err := a.Orchestrator.Submit(runSession, args[0])
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}

	if runWait && intent.Status != types.StatusClarifying && intent.Status != types.StatusFailed {
		if err := a.Orchestrator.Continue(intent); err != nil {
			return fmt.Errorf("continue: %w", err)
		}
		intent, err = a.Store.LoadIntent(intent.ID)
		if err != nil {
			return err
		}
	}

	printIntentSummary(intent)
	return nil
}
