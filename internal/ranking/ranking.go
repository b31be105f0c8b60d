// Package ranking scores and orders the Survivors of a generation batch:
// for every passing Verification it computes a composite Score over four
// fixed axes, sorts descending with a total tie-break order, and emits the
// configured top-K.
package ranking

import (
	"sort"

	"github.com/boshu2/manifest/internal/config"
	"github.com/boshu2/manifest/internal/types"
	"github.com/boshu2/manifest/internal/worker"
)

// simplicityLineCeiling is the changed-line count above which simplicity
// bottoms out at 0; simplicityDepthCeiling is the brace-nesting depth above
// which it likewise bottoms out. Both are linear ramps picked to keep
// ordinary single-file patches well above the floor.
const (
	simplicityLineCeiling  = 400.0
	simplicityDepthCeiling = 12.0
)

// Candidate supplies what the Ranking Engine needs about a candidate: the
// Attempt and the Verification it is scored from, plus an optional
// externally-sourced readability score.
type Candidate struct {
	Attempt      *types.Attempt
	Verification *types.Verification
	// Readability is the AI-assessed readability score in [0,1]; Has is
	// false when no score is available, triggering weight redistribution.
	Readability    float64
	HasReadability bool
}

// Engine computes and orders Survivors from a batch of passing Candidates.
type Engine struct {
	Weights config.ScoreWeights
	TopK    int
	pool    *worker.Pool[lineMetrics]
}

// New constructs a Engine with the given per-axis weights and result cap.
func New(weights config.ScoreWeights, topK int) *Engine {
	return &Engine{Weights: weights, TopK: topK, pool: worker.NewPool[lineMetrics](0)}
}

// Rank filters candidates to those whose Verification passed, scores each,
// sorts them with the fixed total order below, and returns the top TopK as
// Survivors with ranks 1..len(result) — a permutation with no duplicates.
func (e *Engine) Rank(candidates []Candidate) ([]*types.Survivor, error) {
	var passing []Candidate
	for _, c := range candidates {
		if c.Verification != nil && c.Verification.Passed {
			passing = append(passing, c)
		}
	}
	if len(passing) == 0 {
		return nil, nil
	}

	scored := make([]scoredCandidate, len(passing))
	contents := make([]string, len(passing))
	for i, c := range passing {
		contents[i] = concatContent(c.Attempt.Changes)
	}
	metrics := e.pool.Process(contents, measureLines)

	for i, c := range passing {
		score := e.score(c, metrics[i].Value)
		scored[i] = scoredCandidate{candidate: c, score: score, changedLines: metrics[i].Value.lines}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return less(scored[i], scored[j])
	})

	k := e.TopK
	if k <= 0 || k > len(scored) {
		k = len(scored)
	}

	survivors := make([]*types.Survivor, 0, k)
	for i := 0; i < k; i++ {
		s, err := types.NewSurvivor(scored[i].candidate.Verification, i+1, scored[i].score, nowFunc())
		if err != nil {
			return nil, err
		}
		survivors = append(survivors, s)
	}
	return survivors, nil
}

// nowFunc is a seam so tests can freeze the Survivor CreatedAt timestamp;
// production callers get time.Now.
var nowFunc = defaultNow

type scoredCandidate struct {
	candidate    Candidate
	score        types.Score
	changedLines int
}

// less implements total order: overall score descending,
// then confidence descending, then changed-line count ascending, then
// attempt id ascending — a strict total order with no ties left open.
func less(a, b scoredCandidate) bool {
	if a.score.Overall != b.score.Overall {
		return a.score.Overall > b.score.Overall
	}
	if a.candidate.Attempt.Confidence != b.candidate.Attempt.Confidence {
		return a.candidate.Attempt.Confidence > b.candidate.Attempt.Confidence
	}
	if a.changedLines != b.changedLines {
		return a.changedLines < b.changedLines
	}
	return a.candidate.Attempt.ID < b.candidate.Attempt.ID
}

// score computes the four-axis Score for one candidate, redistributing the
// readability weight proportionally across the other axes when
// unavailable.
func (e *Engine) score(c Candidate, m lineMetrics) types.Score {
	assertions := 1.0
	if c.Verification.AssertionsTotal > 0 {
		assertions = float64(c.Verification.AssertionsPassed) / float64(c.Verification.AssertionsTotal)
	}
	simplicity := simplicityScore(m)
	performance := 1.0

	weights := e.Weights
	readability := neutralReadability
	if c.HasReadability {
		readability = c.Readability
	} else {
		weights = redistribute(weights)
	}

	overall := assertions*weights.Assertions + simplicity*weights.Simplicity +
		readability*weights.Readability + performance*weights.Performance

	return types.Score{
		Assertions:  assertions,
		Simplicity:  simplicity,
		Readability: readability,
		Performance: performance,
		Overall:     clamp01(overall),
	}
}

// neutralReadability is substituted when no AI-assessed readability score
// is available.
const neutralReadability = 0.5

// redistribute folds the readability weight proportionally into the other
// three axes so their relative shares are preserved and the total still
// sums to (approximately) 1.
func redistribute(w config.ScoreWeights) config.ScoreWeights {
	rest := w.Assertions + w.Simplicity + w.Performance
	if rest <= 0 || w.Readability <= 0 {
		return w
	}
	factor := (rest + w.Readability) / rest
	return config.ScoreWeights{
		Assertions: w.Assertions * factor,
		Simplicity: w.Simplicity * factor,
		Performance: w.Performance * factor,
		Readability: 0,
	}
}

func simplicityScore(m lineMetrics) float64 {
	lineScore := 1 - float64(m.lines)/simplicityLineCeiling
	depthScore := 1 - float64(m.maxDepth)/simplicityDepthCeiling
	return clamp01((clamp01(lineScore) + clamp01(depthScore)) / 2)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func concatContent(changes []types.FileChange) string {
	var total string
	for _, fc := range changes {
		total += fc.Content
	}
	return total
}
