package compiler

import "errors"

// Sentinel errors mirroring the Intent Compiler's failure taxonomy
//: empty_message, ai_unavailable, malformed_ai_response,
// no_testable_conditions, codebase_unreadable, contradictory_constraints.
var (
	ErrAIUnavailable          = errors.New("compiler: ai backend unavailable")
	ErrMalformedAIResponse    = errors.New("compiler: malformed ai response")
	ErrNoTestableConditions   = errors.New("compiler: no testable conditions")
	ErrCodebaseUnreadable     = errors.New("compiler: codebase unreadable")
	ErrContradictoryConstraints = errors.New("compiler: contradictory constraints")

	// ErrClarificationNeeded signals compilation halted because the parse
	// step's response carried a non-empty unclear[] list. Callers should
	// transition the Intent to clarifying rather than treat this as fatal.
	ErrClarificationNeeded = errors.New("compiler: clarification needed")
)
