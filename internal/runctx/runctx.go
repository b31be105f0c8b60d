// Package runctx defines the Run context threaded through the pipeline:
// cancellation, cost accounting, and concurrency permits carried as values
// instead of package-level mutable state, generalizing the worker pool's
// fixed-concurrency shape (internal/worker.Pool) to a pipeline-wide budget
// shared across every component touching one Intent.
package runctx

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// CostMeter tracks AI Gateway spend in micro-dollars (1e-6 USD) against a
// ceiling, shared across every Complete call made while compiling, generating
// for, and scoring one Intent.
type CostMeter struct {
	ceiling int64
	spent   atomic.Int64
}

// NewCostMeter constructs a CostMeter with the given ceiling in micro-dollars.
func NewCostMeter(ceilingMicros int64) *CostMeter {
	return &CostMeter{ceiling: ceilingMicros}
}

// Reserve attempts to account amountMicros against the ceiling, returning
// false without reserving anything if doing so would exceed it.
func (m *CostMeter) Reserve(amountMicros int64) bool {
	for {
		cur := m.spent.Load()
		next := cur + amountMicros
		if next > m.ceiling {
			return false
		}
		if m.spent.CompareAndSwap(cur, next) {
			return true
		}
	}
}

// Adjust applies a signed correction to the accounted spend without
// consulting the ceiling, used to true up a pre-call reservation to a call's
// actual cost (or refund it entirely on failure) after the ceiling has
// already gated submission via Reserve.
func (m *CostMeter) Adjust(deltaMicros int64) {
	m.spent.Add(deltaMicros)
}

// Spent reports the current accounted spend.
func (m *CostMeter) Spent() int64 { return m.spent.Load() }

// Ceiling reports the configured ceiling.
func (m *CostMeter) Ceiling() int64 { return m.ceiling }

// Permits bounds concurrent callers to n at a time via a buffered channel
// semaphore of fixed size; it has no resize operation.
type Permits struct {
	ch chan struct{}
}

// NewPermits constructs a Permits pool of the given size.
func NewPermits(n int) *Permits {
	if n < 1 {
		n = 1
	}
	p := &Permits{ch: make(chan struct{}, n)}
	for i := 0; i < n; i++ {
		p.ch <- struct{}{}
	}
	return p
}

// Acquire blocks until a permit is available or ctx is done.
func (p *Permits) Acquire(ctx context.Context) error {
	select {
	case <-p.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a permit to the pool.
func (p *Permits) Release() {
	select {
	case p.ch <- struct{}{}:
	default:
		// more releases than acquires; drop the permit rather than block
	}
}

// Run is the value threaded through every pipeline stage for one Intent: its
// cancellation scope, its AI spend meter, and its two concurrency permits
// (AI Gateway calls, Verification Harness workers).
type Run struct {
	Context  context.Context
	IntentID string
	Cost     *CostMeter
	AI       *Permits
	Harness  *Permits
	Log      zerolog.Logger
}

// New constructs a Run for the given intent, deriving a child logger carrying
// the intent id.
func New(ctx context.Context, intentID string, costCeilingMicros int64, aiConcurrency, harnessConcurrency int, base zerolog.Logger) *Run {
	return &Run{
		Context:  ctx,
		IntentID: intentID,
		Cost:     NewCostMeter(costCeilingMicros),
		AI:       NewPermits(aiConcurrency),
		Harness:  NewPermits(harnessConcurrency),
		Log:      base.With().Str("intent_id", intentID).Logger(),
	}
}

// WithContext returns a shallow copy of r carrying a new context, used when a
// stage needs to narrow the deadline without affecting siblings.
func (r *Run) WithContext(ctx context.Context) *Run {
	cp := *r
	cp.Context = ctx
	return &cp
}
