package workspace

import (
	"context"
	"time"
)

// diskCap is a chan struct{} capacity semaphore bounding the number of
// concurrently live workspaces, sized by an estimated mean workspace size.
type diskCap struct {
	slots    chan struct{}
	deadline time.Duration
}

func newDiskCap(n int, acquireDeadline time.Duration) *diskCap {
	return &diskCap{slots: make(chan struct{}, n), deadline: acquireDeadline}
}

func (d *diskCap) acquire(ctx context.Context) error {
	deadline := d.deadline
	if deadline <= 0 {
		deadline = 30 * time.Second
	}
	acquireCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()
	select {
	case d.slots <- struct{}{}:
		return nil
	case <-acquireCtx.Done():
		return ErrDiskCapReached
	}
}

func (d *diskCap) release() {
	select {
	case <-d.slots:
	default:
	}
}
