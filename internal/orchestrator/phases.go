package orchestrator

import (
	"time"

	"github.com/boshu2/manifest/internal/ranking"
	"github.com/boshu2/manifest/internal/runctx"
	"github.com/boshu2/manifest/internal/types"
)

// parsePhase runs the Intent Compiler's parse step and applies its result,
// transitioning to clarifying (if the response carries unclear questions)
// or compiling. An AI/parse failure fails the Intent terminally, since
// failure taxonomy treats ai_unavailable and malformed_ai_response
// at the parse step as surfaced, not retried silently.
func (o *Orchestrator) parsePhase(run *runctx.Run, intent *types.Intent) error {
	parsed, err := o.Compiler.Parse(run, intent.RawMessage)
	if err != nil {
		return o.failIntent(intent, types.StatusParsing, err)
	}
	intent.ApplyParsed(parsed, time.Now())
	if err := o.Store.SaveIntent(intent); err != nil {
		return err
	}
	return o.Store.RecordTransition(intent.ID, types.StatusParsing, intent.Status, time.Now())
}

// Clarify appends clarification text (a human's answers to the Compiler's
// unclear[] questions) to the raw message and reparses, re-entering the
// parsing phase from clarifying.
func (o *Orchestrator) Clarify(intent *types.Intent, answers string) error {
	if intent.Status != types.StatusClarifying {
		return ErrNotClarifying
	}
	intent.RawMessage = intent.RawMessage + "\n\nClarification: " + answers
	run := o.newRun(intent.ID)
	return o.parsePhase(run, intent)
}

// compilingPhase compiles the current Specification version for intent and
// advances to generating on success.
func (o *Orchestrator) compilingPhase(run *runctx.Run, intent *types.Intent) error {
	specs, err := o.Store.ListSpecificationsForIntent(intent.ID)
	if err != nil {
		return err
	}
	version := 1
	var parent *int
	if len(specs) > 0 {
		latest := latestSpec(specs)
		version = latest.Version + 1
		parent = &latest.Version
	}

	spec, err := o.Compiler.CompileSpec(run, intent, version, parent)
	if err != nil {
		return o.failIntent(intent, types.StatusCompiling, err)
	}
	if err := o.Store.SaveSpecification(spec); err != nil {
		return err
	}
	return o.transition(intent, types.StatusGenerating)
}

// generatingPhase fans the latest Specification out across the configured
// strategy distribution, persists every surviving Attempt, and advances to
// verifying — even if the Swarm returned zero Attempts, since partial/empty
// generation failure is not fatal.
func (o *Orchestrator) generatingPhase(run *runctx.Run, intent *types.Intent) error {
	spec, err := o.latestSpecForIntent(intent.ID)
	if err != nil {
		return err
	}
	limit := func() int { return o.Config.AI.Concurrency }
	attempts := o.Swarm.Generate(run, spec, o.Config.Generation.ResolvedDistribution(), limit)
	for _, a := range attempts {
		if err := o.Store.SaveAttempt(a); err != nil {
			return err
		}
	}
	return o.transition(intent, types.StatusVerifying)
}

// verifyingPhase runs the Verification Harness over every pending Attempt
// of the latest Specification, bounded by the configured harness
// concurrency (enforced inside Harness.Verify via run.Harness permits), and
// advances to ranking once every Attempt has terminated.
func (o *Orchestrator) verifyingPhase(run *runctx.Run, intent *types.Intent) error {
	spec, err := o.latestSpecForIntent(intent.ID)
	if err != nil {
		return err
	}
	attempts, err := o.Store.ListAttemptsForSpec(spec.ID)
	if err != nil {
		return err
	}

	results := make(chan verifyResult, len(attempts))
	for _, a := range attempts {
		a := a
		go func() {
			v, err := o.Harness.Verify(run, a, spec)
			results <- verifyResult{attempt: a, verification: v, err: err}
		}()
	}
	for range attempts {
		r := <-results
		if r.err != nil {
			o.Log.Warn().Str("attempt_id", r.attempt.ID).Err(r.err).Msg("verification errored")
			continue
		}
		if err := o.Store.SaveVerification(r.verification); err != nil {
			return err
		}
	}
	return o.transition(intent, types.StatusRanking)
}

type verifyResult struct {
	attempt      *types.Attempt
	verification *types.Verification
	err          error
}

// rankingPhase scores and orders every passing Verification of the latest
// Specification, persists the resulting Survivors, and advances to judging
// regardless of whether any survived ("no survivors" is a successful,
// first-class outcome).
func (o *Orchestrator) rankingPhase(run *runctx.Run, intent *types.Intent) error {
	spec, err := o.latestSpecForIntent(intent.ID)
	if err != nil {
		return err
	}
	attempts, err := o.Store.ListAttemptsForSpec(spec.ID)
	if err != nil {
		return err
	}
	attemptIDs := make([]string, 0, len(attempts))
	byID := make(map[string]*types.Attempt, len(attempts))
	for _, a := range attempts {
		attemptIDs = append(attemptIDs, a.ID)
		byID[a.ID] = a
	}
	verifications, err := o.Store.ListVerificationsForAttempts(attemptIDs)
	if err != nil {
		return err
	}

	candidates := make([]ranking.Candidate, 0, len(verifications))
	for _, v := range verifications {
		a, ok := byID[v.AttemptID]
		if !ok {
			continue
		}
		candidates = append(candidates, ranking.Candidate{Attempt: a, Verification: v})
	}

	survivors, err := o.Ranking.Rank(candidates)
	if err != nil {
		return err
	}
	for _, s := range survivors {
		if err := o.Store.SaveSurvivor(s); err != nil {
			return err
		}
	}
	if len(survivors) == 0 {
		report := aggregateFailures(verifications)
		o.Log.Info().Str("intent_id", intent.ID).Interface("top_failures", report).Msg("no survivors")
	}
	return o.transition(intent, types.StatusJudging)
}

func (o *Orchestrator) latestSpecForIntent(intentID string) (*types.Specification, error) {
	specs, err := o.Store.ListSpecificationsForIntent(intentID)
	if err != nil {
		return nil, err
	}
	if len(specs) == 0 {
		return nil, ErrNoSpecification
	}
	return latestSpec(specs), nil
}

func latestSpec(specs []*types.Specification) *types.Specification {
	latest := specs[0]
	for _, s := range specs[1:] {
		if s.Version > latest.Version {
			latest = s
		}
	}
	return latest
}
