package types

import (
	"errors"
	"testing"
	"time"
)

func TestNewIntentRejectsEmptyMessage(t *testing.T) {
	if _, err := NewIntent("sess", "", time.Now()); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestIntentApplyParsedSetsClarifyingWhenUnclear(t *testing.T) {
	in, err := NewIntent("sess", "make it better", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	in.ApplyParsed(ParsedIntent{Unclear: []string{"which part?"}}, time.Now())
	if in.Status != StatusClarifying {
		t.Errorf("expected clarifying, got %s", in.Status)
	}

	in2, _ := NewIntent("sess", "add auth", time.Now())
	in2.ApplyParsed(ParsedIntent{Core: "add auth"}, time.Now())
	if in2.Status != StatusCompiling {
		t.Errorf("expected compiling, got %s", in2.Status)
	}
}

func TestIntentTransitionRefusesTerminal(t *testing.T) {
	in, _ := NewIntent("sess", "add auth", time.Now())
	in.Status = StatusComplete
	if err := in.Transition(StatusGenerating, time.Now()); err == nil {
		t.Fatal("expected error transitioning out of a terminal state")
	}
}

func validAssertions() []Assertion {
	return []Assertion{{ID: "a1", Description: "d", Test: "expect(true).toBe(true)", Weight: 5}}
}

func TestNewSpecificationRejectsOverlappingTouchSets(t *testing.T) {
	_, err := NewSpecification("intent-1", 1, nil, validAssertions(), "suite", "contract",
		[]string{"src/a.go"}, []string{"src/a.go"}, nil, time.Now())
	if !errors.Is(err, ErrTouchSetOverlap) {
		t.Fatalf("expected ErrTouchSetOverlap, got %v", err)
	}
}

func TestNewSpecificationRejectsEmptyAssertions(t *testing.T) {
	_, err := NewSpecification("intent-1", 1, nil, nil, "suite", "contract",
		[]string{"src/a.go"}, nil, nil, time.Now())
	if !errors.Is(err, ErrNoAssertions) {
		t.Fatalf("expected ErrNoAssertions, got %v", err)
	}
}

func TestNewSpecificationRejectsUnweightedAssertion(t *testing.T) {
	bad := []Assertion{{ID: "a1", Test: "t", Weight: 0}}
	_, err := NewSpecification("intent-1", 1, nil, bad, "suite", "contract",
		[]string{"src/a.go"}, nil, nil, time.Now())
	if !errors.Is(err, ErrInvalidWeight) {
		t.Fatalf("expected ErrInvalidWeight, got %v", err)
	}
}

func TestDeriveSpecIDIsDeterministic(t *testing.T) {
	s1, err := NewSpecification("intent-1", 1, nil, validAssertions(), "suite", "contract",
		[]string{"src/a.go"}, nil, nil, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s2, err := NewSpecification("intent-1", 2, nil, validAssertions(), "suite", "contract",
		[]string{"src/a.go"}, nil, nil, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s1.ID != s2.ID {
		t.Errorf("expected identical spec id for identical (intent, files, assertions), got %s vs %s", s1.ID, s2.ID)
	}
}

func mustSpec(t *testing.T) *Specification {
	t.Helper()
	spec, err := NewSpecification("intent-1", 1, nil, validAssertions(), "suite", "contract",
		[]string{"src/a.go", "src/b.go"}, []string{"migrations/"}, nil, time.Now())
	if err != nil {
		t.Fatalf("unexpected error building spec: %v", err)
	}
	return spec
}

func TestNewAttemptRejectsPathOutsideMayTouch(t *testing.T) {
	spec := mustSpec(t)
	changes := []FileChange{{Path: "src/c.go", Action: ActionCreate, Content: "package x"}}
	if _, err := NewAttempt(spec, StrategyVanilla, changes, "approach", 0.5, time.Now()); !errors.Is(err, ErrPathNotAllowed) {
		t.Fatalf("expected ErrPathNotAllowed, got %v", err)
	}
}

func TestNewAttemptRejectsForbiddenPath(t *testing.T) {
	spec := mustSpec(t)
	spec.MayTouch = append(spec.MayTouch, "migrations/001.sql")
	changes := []FileChange{{Path: "migrations/001.sql", Action: ActionModify, Content: "--"}}
	if _, err := NewAttempt(spec, StrategyVanilla, changes, "approach", 0.5, time.Now()); !errors.Is(err, ErrPathForbidden) {
		t.Fatalf("expected ErrPathForbidden, got %v", err)
	}
}

func TestNewAttemptComputesContentHash(t *testing.T) {
	spec := mustSpec(t)
	changes := []FileChange{{Path: "src/a.go", Action: ActionModify, Content: "package a"}}
	att, err := NewAttempt(spec, StrategyMinimal, changes, "minimal edit", 0.8, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if att.ContentHash != ContentHash(changes) {
		t.Errorf("expected matching content hash")
	}
	att2, _ := NewAttempt(spec, StrategyVanilla, changes, "different approach text", 0.1, time.Now())
	if att.ContentHash != att2.ContentHash {
		t.Error("expected identical content hash for identical file changes regardless of strategy/approach")
	}
}

func TestFileChangeValidateContentRules(t *testing.T) {
	del := FileChange{Path: "a", Action: ActionDelete, Content: "oops"}
	if err := del.Validate(); !errors.Is(err, ErrContentForbidden) {
		t.Errorf("expected ErrContentForbidden, got %v", err)
	}
	create := FileChange{Path: "a", Action: ActionCreate}
	if err := create.Validate(); !errors.Is(err, ErrContentRequired) {
		t.Errorf("expected ErrContentRequired, got %v", err)
	}
}

func TestNewVerificationPassedIsConjunction(t *testing.T) {
	stages := []CheckResult{
		{Stage: StageTypecheck, Passed: true},
		{Stage: StageLint, Passed: true},
		{Stage: StageUnitTests, Passed: false, Errors: []string{"TestFoo failed"}},
		{Stage: StageSpecTests, Passed: true},
	}
	v := NewVerification("att-1", stages, 2, 5, time.Second, time.Now())
	if v.Passed {
		t.Error("expected passed=false when a stage fails")
	}
	if v.AssertionsPassed != 2 || v.AssertionsTotal != 5 {
		t.Errorf("expected assertions 2/5, got %d/%d", v.AssertionsPassed, v.AssertionsTotal)
	}
	if v.FirstFailure == "" {
		t.Error("expected a non-empty first-failure summary")
	}
}

func TestNewVerificationAllPassedEqualsTotal(t *testing.T) {
	stages := []CheckResult{
		{Stage: StageTypecheck, Passed: true},
		{Stage: StageLint, Passed: true},
		{Stage: StageUnitTests, Passed: true},
		{Stage: StageSpecTests, Passed: true},
	}
	v := NewVerification("att-1", stages, 0, 5, time.Second, time.Now())
	if !v.Passed {
		t.Fatal("expected passed=true")
	}
	if v.AssertionsPassed != v.AssertionsTotal {
		t.Errorf("expected assertions_passed == assertions_total on full pass, got %d != %d", v.AssertionsPassed, v.AssertionsTotal)
	}
}

func TestNewSurvivorRejectsFailedVerification(t *testing.T) {
	v := NewVerification("att-1", []CheckResult{{Stage: StageLint, Passed: false}}, 0, 1, time.Second, time.Now())
	if _, err := NewSurvivor(v, 1, Score{Overall: 1}, time.Now()); err == nil {
		t.Fatal("expected error constructing a Survivor from a failed Verification")
	}
}

func TestNewSurvivorRejectsOutOfRangeScore(t *testing.T) {
	v := NewVerification("att-1", []CheckResult{{Stage: StageLint, Passed: true}}, 1, 1, time.Second, time.Now())
	if _, err := NewSurvivor(v, 1, Score{Overall: 1.5}, time.Now()); !errors.Is(err, ErrInvalidScore) {
		t.Fatalf("expected ErrInvalidScore, got %v", err)
	}
}

func TestNewJudgmentRequiresFieldsPerDecision(t *testing.T) {
	cases := []struct {
		name     string
		decision Decision
		survivor string
		refine   string
		redirect string
		wantErr  bool
	}{
		{"accept without survivor", DecisionAccept, "", "", "", true},
		{"accept with survivor", DecisionAccept, "surv-1", "", "", false},
		{"refine without text", DecisionRefine, "", "", "", true},
		{"refine with text", DecisionRefine, "", "add rate limiting", "", false},
		{"redirect without text", DecisionRedirect, "", "", "", true},
		{"abort needs nothing", DecisionAbort, "", "", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewJudgment("intent-1", tc.decision, tc.survivor, tc.refine, tc.redirect, time.Now())
			if (err != nil) != tc.wantErr {
				t.Errorf("decision=%s: wantErr=%v got err=%v", tc.decision, tc.wantErr, err)
			}
		})
	}
}
