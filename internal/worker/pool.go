// Package worker fans per-item work out across a bounded pool of goroutines
// and collects the results in input order, built on
// golang.org/x/sync/errgroup instead of a hand-rolled WaitGroup so it shares
// its concurrency primitive with the Generation Swarm's fan-out. The Ranking
// Engine uses it to compute per-attempt line metrics (changed-line counts,
// brace-nesting depth) across every passing candidate's FileChange content
// in parallel.
package worker

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Result pairs a processed value with its original index to preserve ordering.
type Result[T any] struct {
	Index int
	Value T
	Err   error
}

// Pool fans out work items to a fixed number of goroutine workers
// and collects results preserving the original input order.
type Pool[T any] struct {
	concurrency int
}

// NewPool creates a worker pool with the given concurrency.
// If concurrency <= 0, defaults to runtime.NumCPU().
func NewPool[T any](concurrency int) *Pool[T] {
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	return &Pool[T]{concurrency: concurrency}
}

// Process distributes items across workers, applies fn to each, and returns
// results in the same order as the input slice. An individual item's error
// is captured on its own Result rather than aborting the batch, since one
// candidate's metrics failure must never sink the whole ranking pass.
func (p *Pool[T]) Process(items []string, fn func(string) (T, error)) []Result[T] {
	if len(items) == 0 {
		return nil
	}

	workers := p.concurrency
	if workers > len(items) {
		workers = len(items)
	}

	results := make([]Result[T], len(items))
	jobs := make(chan int, len(items))
	for i := range items {
		jobs <- i
	}
	close(jobs)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := range jobs {
				val, err := fn(items[i])
				results[i] = Result[T]{Index: i, Value: val, Err: err}
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}
