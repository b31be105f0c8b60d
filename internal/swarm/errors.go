package swarm

import "errors"

// ErrNoSurvivingAttempts names the case where every attempt in a batch was
// discarded as invalid or a duplicate. Generate does not return it: it
// returns an empty slice, and the Orchestrator proceeds to its "no
// survivors" branch.
var ErrNoSurvivingAttempts = errors.New("swarm: no attempts survived generation")
