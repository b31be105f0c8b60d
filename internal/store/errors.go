package store

import "errors"

// Sentinel errors for the store package. Using sentinels instead of ad-hoc
// fmt.Errorf allows callers to match with errors.Is for reliable handling.
var (
	// ErrNotFound is returned when an entity does not exist under the given id.
	ErrNotFound = errors.New("entity not found")

	// ErrSchemaMismatch is returned at open time when the on-disk schema
	// version does not match this build's expectation. The Store refuses to
	// start rather than silently discard or migrate data it does not
	// recognize.
	ErrSchemaMismatch = errors.New("store schema version mismatch")

	// ErrLockTimeout is returned when the advisory lock could not be
	// acquired within the busy-retry budget.
	ErrLockTimeout = errors.New("store lock acquisition timed out")

	// ErrDiskFull is returned when a write fails because the underlying
	// filesystem is out of space.
	ErrDiskFull = errors.New("store disk full")
)
