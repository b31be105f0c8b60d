package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boshu2/manifest/internal/types"
)

var (
	judgeIntentID   string
	judgeDecision   string
	judgeSurvivorID string
	judgeText       string
)

var judgeCmd = &cobra.Command{
	Use:   "judge",
	Short: "Record a human Judgment over presented Survivors",
	Long: `judge applies a decision to an Intent currently in judging status:

  accept    apply the named Survivor's changes to the project and complete
  refine    re-enter compiling with --text appended as refinement guidance
  redirect  abort this Intent and start a fresh Intent with --text
  abort     abort this Intent with no further action (any non-terminal phase)

Examples:
  manifest judge --intent 3f9c... --decision accept --survivor 8a1b...
  manifest judge --intent 3f9c... --decision refine --text "also handle nil input"`,
	RunE: runJudge,
}

func init() {
	rootCmd.AddCommand(judgeCmd)
	judgeCmd.Flags().StringVar(&judgeIntentID, "intent", "", "Intent ID to judge (required)")
	judgeCmd.Flags().StringVar(&judgeDecision, "decision", "", "accept|refine|redirect|abort (required)")
	judgeCmd.Flags().StringVar(&judgeSurvivorID, "survivor", "", "Survivor ID (required for accept)")
	judgeCmd.Flags().StringVar(&judgeText, "text", "", "refinement or redirect text")
	judgeCmd.MarkFlagRequired("intent")
	judgeCmd.MarkFlagRequired("decision")
}

func runJudge(cmd *cobra.Command, args []string) error {
	decision := types.Decision(judgeDecision)
	switch decision {
	case types.DecisionAccept, types.DecisionRefine, types.DecisionRedirect, types.DecisionAbort:
	default:
		return fmt.Errorf("judge: unknown decision %q", judgeDecision)
	}

	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Store.Close()

	intent, err := a.Store.LoadIntent(judgeIntentID)
	if err != nil {
		return fmt.Errorf("load intent: %w", err)
	}

	judgment, redirected, err := a.Orchestrator.Judge(intent, decision, judgeSurvivorID, judgeText)
	if err != nil {
		return fmt.Errorf("judge: %w", err)
	}

	fmt.Printf("Judgment %s recorded: %s\n", judgment.ID, judgment.Decision)
	switch decision {
	case types.DecisionRefine:
		intent, err = a.Store.LoadIntent(judgeIntentID)
		if err != nil {
			return err
		}
		if err := a.Orchestrator.Continue(intent); err != nil {
			return fmt.Errorf("continue after refine: %w", err)
		}
	case types.DecisionRedirect:
		fmt.Printf("Redirected to new Intent %s\n", redirected.ID)
	}
	return nil
}
