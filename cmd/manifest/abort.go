package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boshu2/manifest/internal/types"
)

var abortIntentID string

var abortCmd = &cobra.Command{
	Use:   "abort",
	Short: "Abort an in-flight Intent",
	Long: `abort records a Judgment-equivalent abort decision against an
Intent in any non-terminal phase, transitioning it straight to aborted
without applying any Survivor's changes.

Examples:
  manifest abort --intent 3f9c...`,
	RunE: runAbort,
}

func init() {
	rootCmd.AddCommand(abortCmd)
	abortCmd.Flags().StringVar(&abortIntentID, "intent", "", "Intent ID to abort (required)")
	abortCmd.MarkFlagRequired("intent")
}

func runAbort(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Store.Close()

	intent, err := a.Store.LoadIntent(abortIntentID)
	if err != nil {
		return fmt.Errorf("load intent: %w", err)
	}
	if _, _, err := a.Orchestrator.Judge(intent, types.DecisionAbort, "", ""); err != nil {
		return fmt.Errorf("abort: %w", err)
	}
	fmt.Printf("Intent %s aborted\n", intent.ID)
	return nil
}
