package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/boshu2/manifest/internal/formatter"
	"github.com/boshu2/manifest/internal/ranking"
	"github.com/boshu2/manifest/internal/types"
)

// printIntentSummary renders an Intent in the format requested by --output.
func printIntentSummary(intent *types.Intent) {
	if GetOutput() == "json" {
		data, err := json.MarshalIndent(intent, "", "  ")
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Intent %s\n", intent.ID)
	fmt.Printf("  session: %s\n", intent.Session)
	fmt.Printf("  status:  %s\n", intent.Status)
	if len(intent.Parsed.Unclear) > 0 {
		fmt.Println("  unclear:")
		for _, q := range intent.Parsed.Unclear {
			fmt.Printf("    - %s\n", q)
		}
	}
}

func printSurvivors(survivors []*types.Survivor) {
	if GetOutput() == "json" {
		data, err := json.MarshalIndent(survivors, "", "  ")
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println(string(data))
		return
	}

	if len(survivors) == 0 {
		fmt.Println("no survivors")
		return
	}
	tbl := formatter.NewTable(os.Stdout, "RANK", "SURVIVOR", "ATTEMPT", "OVERALL", "TIER", "REVIEW?")
	for _, s := range survivors {
		tier, reviewRecommended := ranking.SurvivorTier(s)
		review := ""
		if reviewRecommended {
			review = "yes"
		}
		tbl.AddRow(fmt.Sprintf("%d", s.Rank), s.ID, s.AttemptID, fmt.Sprintf("%.2f", s.Score.Overall), string(tier), review)
	}
	if err := tbl.Render(); err != nil {
		fmt.Println(err)
	}
}
