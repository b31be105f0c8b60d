package compiler

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/boshu2/manifest/internal/aigateway"
	"github.com/boshu2/manifest/internal/config"
	"github.com/boshu2/manifest/internal/runctx"
	"github.com/boshu2/manifest/internal/types"
)

type scriptedBackend struct {
	responses map[aigateway.Purpose]string
}

func (s *scriptedBackend) Complete(ctx context.Context, prompt string, purpose aigateway.Purpose) (aigateway.Completion, error) {
	text, ok := s.responses[purpose]
	if !ok {
		return aigateway.Completion{}, errors.New("unscripted purpose")
	}
	return aigateway.Completion{Text: text, CostMicros: 10}, nil
}

func newTestRun() *runctx.Run {
	return runctx.New(context.Background(), "intent-1", 1_000_000, 4, 4, zerolog.Nop())
}

func TestParseReturnsUnclearWhenAmbiguous(t *testing.T) {
	raw, _ := json.Marshal(types.ParsedIntent{Unclear: []string{"which endpoint?"}})
	backend := &scriptedBackend{responses: map[aigateway.Purpose]string{aigateway.PurposeParse: string(raw)}}
	c := New(aigateway.New(backend, 4, time.Second, 2, 100), t.TempDir(), config.Default().Analysis, time.Second)

	parsed, err := c.Parse(newTestRun(), "make it better")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(parsed.Unclear) == 0 {
		t.Fatal("expected non-empty Unclear")
	}
}

func TestParseRejectsMalformedResponse(t *testing.T) {
	backend := &scriptedBackend{responses: map[aigateway.Purpose]string{aigateway.PurposeParse: "not json"}}
	c := New(aigateway.New(backend, 4, time.Second, 2, 100), t.TempDir(), config.Default().Analysis, time.Second)

	if _, err := c.Parse(newTestRun(), "add auth"); !errors.Is(err, ErrMalformedAIResponse) {
		t.Fatalf("expected ErrMalformedAIResponse, got %v", err)
	}
}

func TestCompileSpecProducesValidSpecification(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "main.go"), []byte("package main"), 0o644); err != nil {
		t.Fatal(err)
	}

	analysisResp, _ := json.Marshal(codebaseAnalysis{
		RelevantFiles:     []string{"main.go"},
		IntegrationPoints: []string{"main.go"},
		ForbiddenZones:    []string{"migrations/"},
	})
	specResp, _ := json.Marshal(map[string]any{
		"assertions": []map[string]any{
			{"description": "returns 200", "test": "expect(200).toBe(200)", "weight": 5},
		},
		"test_suite":    "suite",
		"type_contract": "contract",
	})
	backend := &scriptedBackend{responses: map[aigateway.Purpose]string{
		aigateway.PurposeAnalyze: string(analysisResp),
		aigateway.PurposeSpec:    string(specResp),
	}}
	c := New(aigateway.New(backend, 4, time.Second, 2, 100), root, config.Default().Analysis, time.Second)

	intent, err := types.NewIntent("sess", "add a health endpoint", time.Now())
	if err != nil {
		t.Fatalf("NewIntent: %v", err)
	}
	intent.ApplyParsed(types.ParsedIntent{Core: "add a health endpoint", DoneWhen: []string{"GET /health returns 200"}}, time.Now())

	spec, err := c.CompileSpec(newTestRun(), intent, 1, nil)
	if err != nil {
		t.Fatalf("CompileSpec: %v", err)
	}
	if len(spec.Assertions) != 1 {
		t.Fatalf("expected 1 assertion, got %d", len(spec.Assertions))
	}
	if len(spec.MayTouch) != 1 || spec.MayTouch[0] != "main.go" {
		t.Errorf("expected MayTouch=[main.go], got %v", spec.MayTouch)
	}
}

func TestCompileSpecRejectsNoTestableConditions(t *testing.T) {
	c := New(aigateway.New(&scriptedBackend{responses: map[aigateway.Purpose]string{}}, 4, time.Second, 2, 100), t.TempDir(), config.Default().Analysis, time.Second)
	intent, _ := types.NewIntent("sess", "do something", time.Now())
	intent.ApplyParsed(types.ParsedIntent{Core: "do something"}, time.Now())

	if _, err := c.CompileSpec(newTestRun(), intent, 1, nil); !errors.Is(err, ErrNoTestableConditions) {
		t.Fatalf("expected ErrNoTestableConditions, got %v", err)
	}
}
