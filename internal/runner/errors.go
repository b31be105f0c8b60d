package runner

import "errors"

var (
	// ErrDeadlineExceeded is returned when a subprocess is killed because its
	// deadline elapsed before it exited on its own.
	ErrDeadlineExceeded = errors.New("subprocess deadline exceeded")

	// ErrOutputTruncated names the condition where stdout or stderr hit the
	// capture cap; Run does not return it, and reports truncation through
	// Result's truncation flags instead. The process itself may still have
	// succeeded.
	ErrOutputTruncated = errors.New("subprocess output truncated")
)
