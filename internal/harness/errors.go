package harness

import "errors"

// ErrSpawnFailed marks a stage whose subprocess could not even start.
var ErrSpawnFailed = errors.New("harness: stage failed to spawn")
