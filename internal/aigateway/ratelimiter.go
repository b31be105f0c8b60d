package aigateway

import (
	"context"
	"sync"
	"time"
)

// rateLimiter is an outstanding-call semaphore whose size the Gateway halves
// on a rate-limit signal and restores linearly on a cooldown ticker, rather
// than a fixed worker count.
type rateLimiter struct {
	mu       sync.RWMutex
	size     int
	max      int
	cooldown time.Duration
	slots    chan struct{}
	recoverT *time.Timer
}

func newRateLimiter(max int, cooldown time.Duration) *rateLimiter {
	if max < 1 {
		max = 1
	}
	rl := &rateLimiter{
		size:     max,
		max:      max,
		cooldown: cooldown,
		slots:    make(chan struct{}, max),
	}
	for i := 0; i < max; i++ {
		rl.slots <- struct{}{}
	}
	return rl
}

func (rl *rateLimiter) acquire(ctx context.Context) error {
	select {
	case <-rl.slots:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (rl *rateLimiter) release() {
	select {
	case rl.slots <- struct{}{}:
	default:
	}
}

// shrink halves the window size (minimum 1) and schedules linear recovery
// back to max, one slot per cooldown tick, after cooldown elapses.
func (rl *rateLimiter) shrink() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	newSize := rl.size / 2
	if newSize < 1 {
		newSize = 1
	}
	if newSize == rl.size {
		return
	}
	drained := rl.size - newSize
	for i := 0; i < drained; i++ {
		select {
		case <-rl.slots:
		default:
		}
	}
	rl.size = newSize

	if rl.recoverT != nil {
		rl.recoverT.Stop()
	}
	rl.recoverT = time.AfterFunc(rl.cooldown, rl.recoverOneStep)
}

// recoverOneStep restores one slot per tick until size returns to max,
// the "linear recovery" half of throttling policy.
func (rl *rateLimiter) recoverOneStep() {
	rl.mu.Lock()
	if rl.size < rl.max {
		rl.size++
		rl.slots <- struct{}{}
	}
	again := rl.size < rl.max
	if again {
		rl.recoverT = time.AfterFunc(rl.cooldown, rl.recoverOneStep)
	}
	rl.mu.Unlock()
}
