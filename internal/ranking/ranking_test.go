package ranking

import (
	"testing"

	"github.com/boshu2/manifest/internal/config"
	"github.com/boshu2/manifest/internal/types"
)

func defaultWeights() config.ScoreWeights {
	return config.ScoreWeights{Assertions: 0.5, Simplicity: 0.2, Readability: 0.2, Performance: 0.1}
}

func newCandidate(t *testing.T, id string, confidence float64, content string, assertionsTotal int) Candidate {
	t.Helper()
	attempt := &types.Attempt{
		ID:         id,
		Confidence: confidence,
		Changes:    []types.FileChange{{Path: "a.go", Action: types.ActionModify, Content: content}},
	}
	v := &types.Verification{
		ID:               "v-" + id,
		AttemptID:        id,
		Passed:           true,
		AssertionsPassed: assertionsTotal,
		AssertionsTotal:  assertionsTotal,
	}
	return Candidate{Attempt: attempt, Verification: v}
}

func TestRankFiltersToPassingOnly(t *testing.T) {
	e := New(defaultWeights(), 3)
	passing := newCandidate(t, "a1", 0.9, "package main\n", 2)
	failing := Candidate{
		Attempt:      &types.Attempt{ID: "a2"},
		Verification: &types.Verification{ID: "v2", AttemptID: "a2", Passed: false},
	}

	survivors, err := e.Rank([]Candidate{passing, failing})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(survivors) != 1 {
		t.Fatalf("expected exactly one survivor, got %d", len(survivors))
	}
	if survivors[0].AttemptID != "a1" {
		t.Fatalf("expected survivor from passing attempt, got %s", survivors[0].AttemptID)
	}
	if survivors[0].Rank != 1 {
		t.Fatalf("expected rank 1, got %d", survivors[0].Rank)
	}
}

func TestRankOrdersByOverallThenTieBreaks(t *testing.T) {
	e := New(defaultWeights(), 10)
	// Same assertion ratio and content length; differ by confidence to force
	// the tie-break path.
	low := newCandidate(t, "low", 0.2, "x", 1)
	high := newCandidate(t, "high", 0.9, "x", 1)

	survivors, err := e.Rank([]Candidate{low, high})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(survivors) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(survivors))
	}
	if survivors[0].AttemptID != "high" {
		t.Fatalf("expected higher-confidence attempt ranked first, got %s", survivors[0].AttemptID)
	}
	if survivors[0].Rank != 1 || survivors[1].Rank != 2 {
		t.Fatalf("expected ranks to be a permutation of 1..2, got %d,%d", survivors[0].Rank, survivors[1].Rank)
	}
}

func TestRankRespectsTopK(t *testing.T) {
	e := New(defaultWeights(), 1)
	a := newCandidate(t, "a", 0.5, "x", 1)
	b := newCandidate(t, "b", 0.6, "x", 1)

	survivors, err := e.Rank([]Candidate{a, b})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(survivors) != 1 {
		t.Fatalf("expected top-1 cap to hold, got %d", len(survivors))
	}
}

func TestRankEmptyWhenNoPassingVerifications(t *testing.T) {
	e := New(defaultWeights(), 3)
	failing := Candidate{
		Attempt:      &types.Attempt{ID: "a"},
		Verification: &types.Verification{ID: "v", AttemptID: "a", Passed: false},
	}
	survivors, err := e.Rank([]Candidate{failing})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if survivors != nil {
		t.Fatalf("expected nil survivors, got %v", survivors)
	}
}

func TestSimplicityScoreDecreasesWithSize(t *testing.T) {
	small, _ := measureLines("a\nb\n")
	large, _ := measureLines(repeatLines(500))
	if simplicityScore(small) <= simplicityScore(large) {
		t.Fatalf("expected small change to score higher simplicity than large change")
	}
}

func repeatLines(n int) string {
	s := ""
	for i := 0; i < n; i++ {
		s += "line\n"
	}
	return s
}

func TestRedistributeWhenReadabilityUnavailable(t *testing.T) {
	w := redistribute(defaultWeights())
	if w.Readability != 0 {
		t.Fatalf("expected readability weight zeroed, got %f", w.Readability)
	}
	sum := w.Assertions + w.Simplicity + w.Performance
	if sum < 0.99 || sum > 1.01 {
		t.Fatalf("expected redistributed weights to sum to ~1, got %f", sum)
	}
}

func TestScoreWithinUnitInterval(t *testing.T) {
	e := New(defaultWeights(), 1)
	c := newCandidate(t, "a", 0.5, "package main\n", 1)
	score := e.score(c, lineMetrics{lines: 10, maxDepth: 2})
	if err := score.Validate(); err != nil {
		t.Fatalf("expected valid score, got %v", err)
	}
}
