package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/boshu2/manifest/internal/types"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent Intents",
	Long: `history lists Intents newest-first, capped to --limit.

Examples:
  manifest history
  manifest history --limit 50`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of Intents to list")
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Store.Close()

	intents, err := a.Store.ListIntents()
	if err != nil {
		return fmt.Errorf("list intents: %w", err)
	}
	sort.Slice(intents, func(i, j int) bool {
		return intents[i].CreatedAt.After(intents[j].CreatedAt)
	})
	if historyLimit > 0 && len(intents) > historyLimit {
		intents = intents[:historyLimit]
	}

	if GetOutput() == "json" {
		data, err := json.MarshalIndent(intents, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	for _, intent := range intents {
		fmt.Printf("%-36s  %-10s  %-12s  %s\n", intent.ID, intent.Session, intent.Status, summarize(intent))
	}
	return nil
}

func summarize(intent *types.Intent) string {
	if intent.Parsed.Core != "" {
		return intent.Parsed.Core
	}
	return intent.RawMessage
}
