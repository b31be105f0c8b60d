package workspace

import "errors"

var (
	// ErrDiskCapReached is returned when acquiring disk headroom times out.
	ErrDiskCapReached = errors.New("workspace disk cap reached")

	// ErrInvalidWorkspacePath names a workspace path that fails the
	// same-prefix validation Sweep applies before deleting anything; Sweep
	// skips such a path rather than returning this error.
	ErrInvalidWorkspacePath = errors.New("workspace path failed validation")

	// ErrSourceNotDir is returned when the project root to copy is not a
	// directory.
	ErrSourceNotDir = errors.New("workspace source is not a directory")
)
