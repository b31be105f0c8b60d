package types

import "errors"

// Sentinel errors for domain invariant violations. Using sentinels instead of
// ad-hoc fmt.Errorf lets callers match with errors.Is for reliable handling.
var (
	// ErrEmptyMessage is returned when an Intent is created from a blank message.
	ErrEmptyMessage = errors.New("intent message is empty")

	// ErrTouchSetOverlap is returned when may_touch and must_not_touch intersect.
	ErrTouchSetOverlap = errors.New("may_touch and must_not_touch overlap")

	// ErrNoAssertions is returned when a Specification has no Assertions.
	ErrNoAssertions = errors.New("specification has no assertions")

	// ErrEmptyAssertionTest is returned when an Assertion carries no executable test.
	ErrEmptyAssertionTest = errors.New("assertion has empty test text")

	// ErrInvalidWeight is returned when an Assertion weight falls outside 1..10.
	ErrInvalidWeight = errors.New("assertion weight must be in range 1..10")

	// ErrPathNotAllowed is returned when a FileChange touches a path outside may_touch.
	ErrPathNotAllowed = errors.New("file change path is not in may_touch")

	// ErrPathForbidden is returned when a FileChange touches a path in must_not_touch.
	ErrPathForbidden = errors.New("file change path is in must_not_touch")

	// ErrContentRequired is returned when a create/modify FileChange has no content.
	ErrContentRequired = errors.New("file change requires content for create/modify")

	// ErrContentForbidden is returned when a delete FileChange carries content.
	ErrContentForbidden = errors.New("delete file change must not carry content")

	// ErrInvalidScore is returned when a score axis falls outside [0,1].
	ErrInvalidScore = errors.New("score must be in range [0,1]")

	// ErrJudgmentIncomplete is returned when a Judgment is missing a field its decision requires.
	ErrJudgmentIncomplete = errors.New("judgment is missing a required field for its decision")

	// ErrUnknownStatus is returned when a status string does not match a known value.
	ErrUnknownStatus = errors.New("unknown status value")
)
