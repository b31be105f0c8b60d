package aigateway

import "errors"

var (
	// ErrCostCeilingReached is returned without making a call when the
	// configured per-run cost ceiling would be exceeded.
	ErrCostCeilingReached = errors.New("ai gateway cost ceiling reached")

	// ErrRateLimited is returned when the backend signals a rate limit and
	// the retry budget has been exhausted.
	ErrRateLimited = errors.New("ai gateway rate limited")

	// ErrRetryBudgetExhausted is returned when every retry attempt failed.
	ErrRetryBudgetExhausted = errors.New("ai gateway retry budget exhausted")

	// ErrUnknownPurpose is returned for a Purpose value outside the closed
	// enum.
	ErrUnknownPurpose = errors.New("ai gateway unknown purpose")
)
