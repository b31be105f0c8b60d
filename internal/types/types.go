// Package types defines the domain entities of the Manifest pipeline:
// Intent, Specification, Attempt, Verification, Survivor, and Judgment,
// plus the value types that compose them. Each constructor validates its
// own invariants at the boundary rather than leaving them to be checked
// ad-hoc downstream.
package types

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"time"

	"github.com/google/uuid"
)

// IntentStatus is the lifecycle phase of an Intent.
type IntentStatus string

const (
	StatusParsing    IntentStatus = "parsing"
	StatusClarifying IntentStatus = "clarifying"
	StatusCompiling  IntentStatus = "compiling"
	StatusGenerating IntentStatus = "generating"
	StatusVerifying  IntentStatus = "verifying"
	StatusRanking    IntentStatus = "ranking"
	StatusJudging    IntentStatus = "judging"
	StatusComplete   IntentStatus = "complete"
	StatusFailed     IntentStatus = "failed"
	StatusAborted    IntentStatus = "aborted"
)

// IsTerminal reports whether the status admits no further phase transitions.
func (s IntentStatus) IsTerminal() bool {
	switch s {
	case StatusComplete, StatusFailed, StatusAborted:
		return true
	default:
		return false
	}
}

// ParsedIntent is the structured form of a raw message, as produced by the
// Intent Compiler's parse step.
type ParsedIntent struct {
	Core     string   `json:"core"`
	Must     []string `json:"must"`
	MustNot  []string `json:"must_not"`
	DoneWhen []string `json:"done_when"`
	Unclear  []string `json:"unclear"`
	Scope    string   `json:"scope"`
}

// Intent is one pipeline run: a raw feature request moving through
// compilation, generation, verification, ranking, and judgment.
type Intent struct {
	ID              string       `json:"id"`
	Session         string       `json:"session"`
	RawMessage      string       `json:"raw_message"`
	Parsed          ParsedIntent `json:"parsed"`
	Status          IntentStatus `json:"status"`
	RefinementCount int          `json:"refinement_count"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// NewIntent constructs an Intent from a raw message, enforcing that the
// message is non-empty (spec failure taxonomy: empty_message).
func NewIntent(session, rawMessage string, now time.Time) (*Intent, error) {
	if rawMessage == "" {
		return nil, ErrEmptyMessage
	}
	return &Intent{
		ID:         uuid.NewString(),
		Session:    session,
		RawMessage: rawMessage,
		Status:     StatusParsing,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// ApplyParsed attaches the Compiler's parse result and derives status:
// status becomes clarifying whenever Unclear is non-empty, else compiling.
func (in *Intent) ApplyParsed(p ParsedIntent, now time.Time) {
	in.Parsed = p
	if len(p.Unclear) > 0 {
		in.Status = StatusClarifying
	} else {
		in.Status = StatusCompiling
	}
	in.UpdatedAt = now
}

// Transition moves the Intent to a new status, refusing to leave a
// terminal state and bumping UpdatedAt. Restart callers should construct a
// fresh Intent rather than reopening a terminal one.
func (in *Intent) Transition(next IntentStatus, now time.Time) error {
	if in.Status.IsTerminal() {
		return ErrUnknownStatus
	}
	in.Status = next
	in.UpdatedAt = now
	return nil
}

// Assertion is a single testable success criterion.
type Assertion struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Test        string `json:"test"`
	Weight      int    `json:"weight"`
}

// Validate checks that the Assertion carries an executable test and a
// weight in the documented range.
func (a Assertion) Validate() error {
	if a.Test == "" {
		return ErrEmptyAssertionTest
	}
	if a.Weight < 1 || a.Weight > 10 {
		return ErrInvalidWeight
	}
	return nil
}

// Pattern names a codebase convention the Generation Swarm's "patterned"
// strategy should imitate (e.g. "repository-pattern", "table-driven-tests").
type Pattern struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Specification is the executable, testable definition of "done" compiled
// from an Intent. Refining an Intent produces a new, strictly-greater
// version of its Specification.
type Specification struct {
	ID            string      `json:"id"`
	IntentID      string      `json:"intent_id"`
	Version       int         `json:"version"`
	ParentVersion *int        `json:"parent_version,omitempty"`
	Assertions    []Assertion `json:"assertions"`
	TestSuite     string      `json:"test_suite"`
	TypeContract  string      `json:"type_contract"`
	MayTouch      []string    `json:"may_touch"`
	MustNotTouch  []string    `json:"must_not_touch"`
	Patterns      []Pattern   `json:"patterns"`
	CreatedAt     time.Time   `json:"created_at"`
}

// NewSpecification builds a Specification, enforcing may_touch ∩
// must_not_touch = ∅, a non-empty assertion set, and per-assertion
// executability, the checks a Specification must pass before it is
// considered ready for generation.
func NewSpecification(intentID string, version int, parent *int, assertions []Assertion, testSuite, typeContract string, mayTouch, mustNotTouch []string, patterns []Pattern, now time.Time) (*Specification, error) {
	if len(assertions) == 0 {
		return nil, ErrNoAssertions
	}
	for _, a := range assertions {
		if err := a.Validate(); err != nil {
			return nil, err
		}
	}
	if pathSetsOverlap(mayTouch, mustNotTouch) {
		return nil, ErrTouchSetOverlap
	}
	return &Specification{
		ID:           deriveSpecID(intentID, mayTouch, assertions),
		IntentID:     intentID,
		Version:      version,
		ParentVersion: parent,
		Assertions:   assertions,
		TestSuite:    testSuite,
		TypeContract: typeContract,
		MayTouch:     mayTouch,
		MustNotTouch: mustNotTouch,
		Patterns:     patterns,
		CreatedAt:    now,
	}, nil
}

// deriveSpecID derives a stable id from a hash of the normalized intent id,
// the relevant-files set, and the assertion texts, so recompiling the same
// Intent against the same codebase state yields the same Specification ID.
func deriveSpecID(intentID string, mayTouch []string, assertions []Assertion) string {
	sorted := append([]string(nil), mayTouch...)
	sort.Strings(sorted)
	h := sha256.New()
	h.Write([]byte(intentID))
	for _, p := range sorted {
		h.Write([]byte{0})
		h.Write([]byte(p))
	}
	for _, a := range assertions {
		h.Write([]byte{0})
		h.Write([]byte(a.Test))
	}
	return "spec-" + hex.EncodeToString(h.Sum(nil))[:24]
}

func pathSetsOverlap(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, p := range a {
		set[p] = struct{}{}
	}
	for _, p := range b {
		if _, ok := set[p]; ok {
			return true
		}
	}
	return false
}

// FileAction is the kind of change a FileChange applies.
type FileAction string

const (
	ActionCreate FileAction = "create"
	ActionModify FileAction = "modify"
	ActionDelete FileAction = "delete"
)

// FileChange is one file-level edit within an Attempt.
type FileChange struct {
	Path    string     `json:"path"`
	Action  FileAction `json:"action"`
	Content string     `json:"content,omitempty"`
}

// Validate enforces that content is present iff the action is not delete.
func (fc FileChange) Validate() error {
	switch fc.Action {
	case ActionDelete:
		if fc.Content != "" {
			return ErrContentForbidden
		}
	case ActionCreate, ActionModify:
		if fc.Content == "" {
			return ErrContentRequired
		}
	}
	return nil
}

// Strategy tags the generation approach that produced an Attempt.
type Strategy string

const (
	StrategyVanilla    Strategy = "vanilla"
	StrategyMinimal    Strategy = "minimal"
	StrategyDefensive  Strategy = "defensive"
	StrategyPatterned  Strategy = "patterned"
	StrategyMutation   Strategy = "mutation"
	StrategyAdversarial Strategy = "adversarial"
)

// AttemptStatus is the lifecycle stage of a single candidate implementation.
type AttemptStatus string

const (
	AttemptPending   AttemptStatus = "pending"
	AttemptVerifying AttemptStatus = "verifying"
	AttemptPassed    AttemptStatus = "passed"
	AttemptFailed    AttemptStatus = "failed"
	AttemptDiscarded AttemptStatus = "discarded"
)

// Attempt is one candidate implementation produced by one generation call.
type Attempt struct {
	ID          string        `json:"id"`
	SpecID      string        `json:"spec_id"`
	SpecVersion int           `json:"spec_version"`
	Strategy    Strategy      `json:"strategy"`
	Changes     []FileChange  `json:"changes"`
	Approach    string        `json:"approach"`
	Confidence  float64       `json:"confidence"`
	Status      AttemptStatus `json:"status"`
	ContentHash string        `json:"content_hash"`
	CreatedAt   time.Time     `json:"created_at"`
}

// NewAttempt builds an Attempt after validating every FileChange lies in
// may_touch and none lies in must_not_touch (Attempt
// invariant), then derives the dedup content hash.
func NewAttempt(spec *Specification, strategy Strategy, changes []FileChange, approach string, confidence float64, now time.Time) (*Attempt, error) {
	mayTouch := toSet(spec.MayTouch)
	mustNot := toSet(spec.MustNotTouch)
	for _, fc := range changes {
		if err := fc.Validate(); err != nil {
			return nil, err
		}
		if _, forbidden := mustNot[fc.Path]; forbidden {
			return nil, ErrPathForbidden
		}
		if _, ok := mayTouch[fc.Path]; !ok {
			return nil, ErrPathNotAllowed
		}
	}
	return &Attempt{
		ID:          uuid.NewString(),
		SpecID:      spec.ID,
		SpecVersion: spec.Version,
		Strategy:    strategy,
		Changes:     changes,
		Approach:    approach,
		Confidence:  confidence,
		Status:      AttemptPending,
		ContentHash: ContentHash(changes),
		CreatedAt:   now,
	}, nil
}

// ContentHash derives a stable hash over an ordered FileChange set, used by
// the Generation Swarm to deduplicate attempts.
func ContentHash(changes []FileChange) string {
	h := sha256.New()
	for _, fc := range changes {
		h.Write([]byte(fc.Path))
		h.Write([]byte{0})
		h.Write([]byte(fc.Action))
		h.Write([]byte{0})
		h.Write([]byte(fc.Content))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func toSet(paths []string) map[string]struct{} {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return set
}

// StageName identifies one step of the Verification Harness pipeline.
type StageName string

const (
	StageTypecheck StageName = "typecheck"
	StageLint      StageName = "lint"
	StageUnitTests StageName = "unit-tests"
	StageSpecTests StageName = "spec-tests"
)

// CheckResult is the outcome of one verification stage.
type CheckResult struct {
	Stage    StageName     `json:"stage"`
	Passed   bool          `json:"passed"`
	Output   string        `json:"output"`
	Errors   []string      `json:"errors,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Verification is the stage-by-stage reality check of one Attempt in an
// isolated workspace.
type Verification struct {
	ID               string        `json:"id"`
	AttemptID        string        `json:"attempt_id"`
	Passed           bool          `json:"passed"`
	Stages           []CheckResult `json:"stages"`
	AssertionsPassed int           `json:"assertions_passed"`
	AssertionsTotal  int           `json:"assertions_total"`
	Duration         time.Duration `json:"duration"`
	FirstFailure     string        `json:"first_failure,omitempty"`
	WorkspacePath    string        `json:"workspace_path,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
}

// NewVerification assembles a Verification from completed stage results,
// deriving the overall passed flag as the conjunction of every stage result.
func NewVerification(attemptID string, stages []CheckResult, assertionsPassed, assertionsTotal int, duration time.Duration, now time.Time) *Verification {
	passed := len(stages) > 0
	var firstFailure string
	for _, s := range stages {
		if !s.Passed {
			passed = false
			if firstFailure == "" {
				firstFailure = summarizeFailure(s)
			}
		}
	}
	if passed {
		assertionsPassed = assertionsTotal
	}
	return &Verification{
		ID:               uuid.NewString(),
		AttemptID:        attemptID,
		Passed:           passed,
		Stages:           stages,
		AssertionsPassed: assertionsPassed,
		AssertionsTotal:  assertionsTotal,
		Duration:         duration,
		FirstFailure:     firstFailure,
		CreatedAt:        now,
	}
}

func summarizeFailure(c CheckResult) string {
	if len(c.Errors) > 0 {
		return string(c.Stage) + ": " + c.Errors[0]
	}
	return string(c.Stage) + " failed"
}

// Score is a composite ranking score broken down by axis plus overall.
type Score struct {
	Assertions  float64 `json:"assertions"`
	Simplicity  float64 `json:"simplicity"`
	Readability float64 `json:"readability"`
	Performance float64 `json:"performance"`
	Overall     float64 `json:"overall"`
}

// Validate checks every axis lies in [0,1].
func (s Score) Validate() error {
	for _, v := range []float64{s.Assertions, s.Simplicity, s.Readability, s.Performance, s.Overall} {
		if v < 0 || v > 1 {
			return ErrInvalidScore
		}
	}
	return nil
}

// Survivor is an Attempt whose Verification passed, ranked among its peers.
type Survivor struct {
	ID              string    `json:"id"`
	AttemptID       string    `json:"attempt_id"`
	VerificationID  string    `json:"verification_id"`
	Rank            int       `json:"rank"`
	Score           Score     `json:"score"`
	Presented       bool      `json:"presented"`
	FailureCategory string    `json:"failure_category,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewSurvivor builds a Survivor from a passing Verification; it is an error
// to construct one from a failed Verification.
func NewSurvivor(v *Verification, rank int, score Score, now time.Time) (*Survivor, error) {
	if !v.Passed {
		return nil, ErrUnknownStatus
	}
	if err := score.Validate(); err != nil {
		return nil, err
	}
	return &Survivor{
		ID:             uuid.NewString(),
		AttemptID:      v.AttemptID,
		VerificationID: v.ID,
		Rank:           rank,
		Score:          score,
		CreatedAt:      now,
	}, nil
}

// Decision is the human's verdict over presented Survivors.
type Decision string

const (
	DecisionAccept   Decision = "accept"
	DecisionRefine   Decision = "refine"
	DecisionRedirect Decision = "redirect"
	DecisionAbort    Decision = "abort"
)

// Judgment is the human's decision over presented Survivors: accept,
// refine, redirect, or abort.
type Judgment struct {
	ID         string    `json:"id"`
	IntentID   string    `json:"intent_id"`
	SurvivorID string    `json:"survivor_id,omitempty"`
	Decision   Decision  `json:"decision"`
	Refinement string    `json:"refinement,omitempty"`
	Redirect   string    `json:"redirect,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewJudgment validates that the fields required by its decision are
// present before constructing the value.
func NewJudgment(intentID string, decision Decision, survivorID, refinement, redirect string, now time.Time) (*Judgment, error) {
	switch decision {
	case DecisionAccept:
		if survivorID == "" {
			return nil, ErrJudgmentIncomplete
		}
	case DecisionRefine:
		if refinement == "" {
			return nil, ErrJudgmentIncomplete
		}
	case DecisionRedirect:
		if redirect == "" {
			return nil, ErrJudgmentIncomplete
		}
	case DecisionAbort:
		// no required fields
	default:
		return nil, ErrUnknownStatus
	}
	return &Judgment{
		ID:         uuid.NewString(),
		IntentID:   intentID,
		SurvivorID: survivorID,
		Decision:   decision,
		Refinement: refinement,
		Redirect:   redirect,
		CreatedAt:  now,
	}, nil
}
