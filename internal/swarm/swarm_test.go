package swarm

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/boshu2/manifest/internal/aigateway"
	"github.com/boshu2/manifest/internal/runctx"
	"github.com/boshu2/manifest/internal/types"
)

type fixedBackend struct {
	text string
	err  error
}

func (f *fixedBackend) Complete(ctx context.Context, prompt string, purpose aigateway.Purpose) (aigateway.Completion, error) {
	if f.err != nil {
		return aigateway.Completion{}, f.err
	}
	return aigateway.Completion{Text: f.text, CostMicros: 1}, nil
}

func mustSpec(t *testing.T) *types.Specification {
	t.Helper()
	spec, err := types.NewSpecification("intent-1", 1, nil,
		[]types.Assertion{{ID: "a1", Test: "t", Weight: 5}},
		"suite", "contract", []string{"src/a.go"}, nil, nil, time.Now())
	if err != nil {
		t.Fatalf("NewSpecification: %v", err)
	}
	return spec
}

func TestGenerateCollectsValidAttempts(t *testing.T) {
	resp, _ := json.Marshal(map[string]any{
		"approach":   "vanilla fix",
		"confidence": 0.8,
		"changes": []map[string]any{
			{"path": "src/a.go", "action": "modify", "content": "package a"},
		},
	})
	backend := &fixedBackend{text: string(resp)}
	s := New(aigateway.New(backend, 4, time.Second, 1, 100), time.Second)
	run := runctx.New(context.Background(), "intent-1", 1_000_000, 4, 4, zerolog.Nop())

	attempts := s.Generate(run, mustSpec(t), map[string]int{"vanilla": 2}, func() int { return 4 })
	if len(attempts) != 1 {
		t.Fatalf("expected 1 deduplicated attempt, got %d", len(attempts))
	}
}

func TestGenerateDiscardsInvalidPaths(t *testing.T) {
	resp, _ := json.Marshal(map[string]any{
		"approach":   "bad",
		"confidence": 0.1,
		"changes": []map[string]any{
			{"path": "forbidden/x.go", "action": "create", "content": "package x"},
		},
	})
	backend := &fixedBackend{text: string(resp)}
	s := New(aigateway.New(backend, 4, time.Second, 1, 100), time.Second)
	run := runctx.New(context.Background(), "intent-1", 1_000_000, 4, 4, zerolog.Nop())

	attempts := s.Generate(run, mustSpec(t), map[string]int{"vanilla": 1}, func() int { return 4 })
	if len(attempts) != 0 {
		t.Fatalf("expected 0 attempts, got %d", len(attempts))
	}
}

func TestGenerateMutationDowngradesWithoutSibling(t *testing.T) {
	resp, _ := json.Marshal(map[string]any{
		"approach":   "mutated",
		"confidence": 0.5,
		"changes": []map[string]any{
			{"path": "src/a.go", "action": "modify", "content": "package a // v2"},
		},
	})
	backend := &fixedBackend{text: string(resp)}
	s := New(aigateway.New(backend, 4, time.Second, 1, 100), time.Second)
	run := runctx.New(context.Background(), "intent-1", 1_000_000, 4, 4, zerolog.Nop())

	attempts := s.Generate(run, mustSpec(t), map[string]int{"mutation": 1}, func() int { return 4 })
	if len(attempts) != 1 {
		t.Fatalf("expected mutation to downgrade and still produce an attempt, got %d", len(attempts))
	}
}

func TestExpandBuildsOnePerCount(t *testing.T) {
	tasks := expand(map[string]int{"vanilla": 2, "minimal": 1})
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}
}
