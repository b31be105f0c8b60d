// Package swarm fans an Intent's Specification out across generation
// strategies, collecting validated, deduplicated Attempts, using a
// dynamically-sized golang.org/x/sync/errgroup pool: each wave's size is
// re-read from a limit function before it starts, since the AI Gateway may
// shrink the effective outstanding-call ceiling under rate-limit pressure
// between waves.
package swarm

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/boshu2/manifest/internal/aigateway"
	"github.com/boshu2/manifest/internal/runctx"
	"github.com/boshu2/manifest/internal/types"
)

// Swarm generates candidate Attempts for a Specification.
type Swarm struct {
	Gateway      *aigateway.Gateway
	CallDeadline time.Duration
}

// New constructs a Swarm.
func New(gateway *aigateway.Gateway, callDeadline time.Duration) *Swarm {
	return &Swarm{Gateway: gateway, CallDeadline: callDeadline}
}

type task struct {
	strategy types.Strategy
	ordinal  int
}

// Generate expands strategyDist into N (strategy, ordinal) tasks and
// processes them in waves whose size is limit() re-read before each wave,
// discarding invalid or duplicate attempts and stopping early if the Run's
// cost ceiling is hit mid-batch. Partial
// failure is never fatal: Generate returns whatever survived.
func (s *Swarm) Generate(run *runctx.Run, spec *types.Specification, strategyDist map[string]int, limit func() int) []*types.Attempt {
	tasks := expand(strategyDist)

	var mu sync.Mutex
	var survivors []*types.Attempt
	seenHashes := make(map[string]struct{})

	for len(tasks) > 0 {
		n := limit()
		if n < 1 {
			n = 1
		}
		if n > len(tasks) {
			n = len(tasks)
		}
		wave := tasks[:n]
		tasks = tasks[n:]

		g, ctx := errgroup.WithContext(run.Context)
		waveRun := run.WithContext(ctx)
		for _, t := range wave {
			t := t
			g.Go(func() error {
				mu.Lock()
				sibling := lastCompletedLocked(survivors)
				mu.Unlock()

				attempt, ok := s.runTask(waveRun, spec, t, sibling)
				if !ok {
					return nil
				}
				mu.Lock()
				defer mu.Unlock()
				if _, dup := seenHashes[attempt.ContentHash]; dup {
					return nil
				}
				seenHashes[attempt.ContentHash] = struct{}{}
				survivors = append(survivors, attempt)
				return nil
			})
		}
		_ = g.Wait()

		if run.Cost.Spent() >= run.Cost.Ceiling() {
			break
		}
	}

	return survivors
}

func lastCompletedLocked(survivors []*types.Attempt) *types.Attempt {
	if len(survivors) == 0 {
		return nil
	}
	return survivors[len(survivors)-1]
}

// runTask issues one implementation completion and validates its response.
// A failure anywhere (AI error, malformed response, path violation) causes a
// silent discard of this one Attempt rather than aborting the whole batch.
func (s *Swarm) runTask(run *runctx.Run, spec *types.Specification, t task, sibling *types.Attempt) (*types.Attempt, bool) {
	strategy := t.strategy
	var siblingNote string
	if strategy == types.StrategyMutation {
		if sibling == nil {
			strategy = types.StrategyVanilla
		} else {
			siblingNote = fmt.Sprintf("\n\nVary this prior attempt:\n%s", sibling.Approach)
		}
	}

	prompt := fmt.Sprintf(
		"Implement this specification using the %s strategy.\nAssertions: %v\nMay touch: %v\nMust not touch: %v%s\n\nRespond as JSON: {\"approach\": string, \"confidence\": number, \"changes\": [{\"path\":string,\"action\":\"create|modify|delete\",\"content\":string}]}",
		strategy, spec.Assertions, spec.MayTouch, spec.MustNotTouch, siblingNote)

	comp, err := s.Gateway.Complete(run, prompt, aigateway.PurposeImplement, s.CallDeadline)
	if err != nil {
		return nil, false
	}

	var resp struct {
		Approach   string              `json:"approach"`
		Confidence float64             `json:"confidence"`
		Changes    []types.FileChange  `json:"changes"`
	}
	if err := json.Unmarshal([]byte(comp.Text), &resp); err != nil {
		return nil, false
	}

	attempt, err := types.NewAttempt(spec, strategy, resp.Changes, resp.Approach, resp.Confidence, time.Now())
	if err != nil {
		return nil, false
	}
	return attempt, true
}

func expand(dist map[string]int) []task {
	var out []task
	for strategy, count := range dist {
		for i := 0; i < count; i++ {
			out = append(out, task{strategy: types.Strategy(strategy), ordinal: i + 1})
		}
	}
	return out
}
