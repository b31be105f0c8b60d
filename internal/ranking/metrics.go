package ranking

import (
	"strings"
	"time"
)

// lineMetrics is the per-attempt simplicity input: total changed lines
// across every FileChange's content plus the deepest brace-nesting depth
// observed across those files.
type lineMetrics struct {
	lines    int
	maxDepth int
}

// measureLines counts newlines and walks brace depth over the concatenated
// content of an Attempt's FileChanges. Run through worker.Pool so the
// Ranking Engine scores every passing candidate's file content in
// parallel rather than serially.
func measureLines(content string) (lineMetrics, error) {
	lines := strings.Count(content, "\n")
	if content != "" && !strings.HasSuffix(content, "\n") {
		lines++
	}

	depth, maxDepth := 0, 0
	for _, r := range content {
		switch r {
		case '{', '(', '[':
			depth++
			if depth > maxDepth {
				maxDepth = depth
			}
		case '}', ')', ']':
			if depth > 0 {
				depth--
			}
		}
	}
	return lineMetrics{lines: lines, maxDepth: maxDepth}, nil
}

func defaultNow() time.Time { return time.Now() }
