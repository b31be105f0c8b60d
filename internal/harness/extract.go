package harness

import (
	"strconv"
	"strings"
)

// assertionMarker is the line prefix the spec test-suite is expected to
// print on its last line of output, e.g. "ASSERTIONS_PASSED=3".
const assertionMarker = "ASSERTIONS_PASSED="

// extractAssertionCount scans stage output for the trailing assertion-count
// marker a structured spec-test runner emits, returning ok=false when none
// is present.
func extractAssertionCount(output string) (int, bool) {
	lines := strings.Split(output, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, assertionMarker) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(line, assertionMarker))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
