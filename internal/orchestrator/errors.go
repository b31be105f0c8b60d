package orchestrator

import "errors"

var (
	// ErrNotClarifying is returned when Clarify is called on an Intent not
	// currently awaiting clarification.
	ErrNotClarifying = errors.New("orchestrator: intent is not awaiting clarification")

	// ErrNotJudging is returned when Judge is called on an Intent not
	// currently presenting Survivors for judgment.
	ErrNotJudging = errors.New("orchestrator: intent is not awaiting judgment")

	// ErrAlreadyComplete is returned when Judge is called on an Intent
	// already complete — re-applying accept is a refused no-op, per
	// idempotence property, not a retried error.
	ErrAlreadyComplete = errors.New("orchestrator: intent is already complete")

	// ErrNoSpecification is returned when a phase needs the latest
	// Specification but none has been persisted yet.
	ErrNoSpecification = errors.New("orchestrator: no specification persisted for intent")
)
