package orchestrator

import (
	"sort"

	"github.com/boshu2/manifest/internal/types"
)

// FailureCount pairs a first-failure summary with how many Verifications in
// the batch hit it, used for the "no survivors" aggregate report.
type FailureCount struct {
	Summary string
	Count   int
}

// aggregateFailures counts each failing Verification's FirstFailure summary
// and returns the top 3 by count, ties broken by first occurrence order —
// the report attached to an Intent's terminal state when ranking produced
// zero Survivors.
func aggregateFailures(verifications []*types.Verification) []FailureCount {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, v := range verifications {
		if v.Passed || v.FirstFailure == "" {
			continue
		}
		if _, seen := counts[v.FirstFailure]; !seen {
			order = append(order, v.FirstFailure)
		}
		counts[v.FirstFailure]++
	}

	results := make([]FailureCount, 0, len(order))
	for _, summary := range order {
		results = append(results, FailureCount{Summary: summary, Count: counts[summary]})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Count > results[j].Count
	})
	if len(results) > 3 {
		results = results[:3]
	}
	return results
}
