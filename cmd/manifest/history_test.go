package main

import (
	"testing"

	"github.com/boshu2/manifest/internal/types"
)

func TestSummarizePrefersParsedCore(t *testing.T) {
	intent := &types.Intent{
		RawMessage: "add a thing please",
		Parsed:     types.ParsedIntent{Core: "add thing"},
	}
	if got := summarize(intent); got != "add thing" {
		t.Errorf("summarize = %q, want %q", got, "add thing")
	}
}

func TestSummarizeFallsBackToRawMessage(t *testing.T) {
	intent := &types.Intent{RawMessage: "add a thing please"}
	if got := summarize(intent); got != "add a thing please" {
		t.Errorf("summarize = %q, want raw message", got)
	}
}
