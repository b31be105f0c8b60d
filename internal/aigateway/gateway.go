// Package aigateway is the single seam between the pipeline and whatever AI
// backend compiles Intents, generates Attempts, and scores Survivors. Retry
// and rate-limit handling use sentinel errors plus
// github.com/cenkalti/backoff/v4 for exponential backoff with jitter.
package aigateway

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/boshu2/manifest/internal/runctx"
)

// Purpose is a closed enum naming why a completion call is being made, so a
// Backend implementation (or a test double) can vary behavior per call site
// without string matching prompts.
type Purpose string

const (
	PurposeParse      Purpose = "parse"
	PurposeAnalyze    Purpose = "analyze"
	PurposeSpec       Purpose = "spec"
	PurposeImplement  Purpose = "implement"
	PurposeScore      Purpose = "score"
)

func (p Purpose) valid() bool {
	switch p {
	case PurposeParse, PurposeAnalyze, PurposeSpec, PurposeImplement, PurposeScore:
		return true
	default:
		return false
	}
}

// Completion is the result of one successful backend call.
type Completion struct {
	Text       string
	CostMicros int64
}

// RateLimitError marks a backend error as a rate-limit signal so the Gateway
// can shrink its concurrency window instead of simply retrying.
type RateLimitError struct{ Err error }

func (e *RateLimitError) Error() string { return e.Err.Error() }
func (e *RateLimitError) Unwrap() error { return e.Err }

// Backend is the external AI collaborator. Implementations are expected to
// return *RateLimitError for rate-limit responses so the Gateway can react.
type Backend interface {
	Complete(ctx context.Context, prompt string, purpose Purpose) (Completion, error)
}

// Gateway wraps a Backend with retry, cost-ceiling enforcement, and
// rate-limit-aware concurrency throttling.
type Gateway struct {
	backend                 Backend
	limiter                 *rateLimiter
	retryBudget             int
	estimatedCallCostMicros int64
}

// New constructs a Gateway. concurrency is the outstanding-call ceiling
// before rate-limit throttling kicks in; cooldown is how long a halved
// window holds before linear recovery begins. estimatedCallCostMicros is
// reserved against the cost ceiling before each call is issued, since the
// call's actual cost is only known once it returns.
func New(backend Backend, concurrency int, cooldown time.Duration, retryBudget int, estimatedCallCostMicros int64) *Gateway {
	return &Gateway{
		backend:                 backend,
		limiter:                 newRateLimiter(concurrency, cooldown),
		retryBudget:             retryBudget,
		estimatedCallCostMicros: estimatedCallCostMicros,
	}
}

// Complete issues one completion call scoped to run: it reserves the
// Gateway's estimated call cost against run.Cost's ceiling before issuing
// the call (so the ceiling actually gates submission, not just accounting),
// trues the reservation up to the call's actual cost once it returns,
// retries transient failures with exponential backoff up to the Gateway's
// retry budget, and halves its concurrency window on a rate-limit signal.
func (g *Gateway) Complete(run *runctx.Run, prompt string, purpose Purpose, deadline time.Duration) (Completion, error) {
	if !purpose.valid() {
		return Completion{}, ErrUnknownPurpose
	}
	if !run.Cost.Reserve(g.estimatedCallCostMicros) {
		return Completion{}, ErrCostCeilingReached
	}

	callCtx, cancel := context.WithTimeout(run.Context, deadline)
	defer cancel()

	if err := g.limiter.acquire(callCtx); err != nil {
		run.Cost.Adjust(-g.estimatedCallCostMicros)
		return Completion{}, err
	}
	defer g.limiter.release()

	var result Completion
	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(g.retryBudget)), callCtx)

	op := func() error {
		comp, err := g.backend.Complete(callCtx, prompt, purpose)
		if err == nil {
			result = comp
			return nil
		}
		var rl *RateLimitError
		if errors.As(err, &rl) {
			g.limiter.shrink()
			return err
		}
		if callCtx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}

	if err := backoff.Retry(op, bo); err != nil {
		run.Cost.Adjust(-g.estimatedCallCostMicros)
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return Completion{}, err
		}
		var rl *RateLimitError
		if errors.As(err, &rl) {
			return Completion{}, ErrRateLimited
		}
		return Completion{}, ErrRetryBudgetExhausted
	}

	run.Cost.Adjust(result.CostMicros - g.estimatedCallCostMicros)
	return result, nil
}
