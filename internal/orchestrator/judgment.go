package orchestrator

import (
	"time"

	"github.com/boshu2/manifest/internal/types"
)

// Present marks every Survivor of intent's latest Specification as
// presented and returns them ordered by rank, implementing the "present
// the top-K survivors" half of the judging phase. Callers
// (the CLI's `status`/`judge` commands) use this to render the choices a
// human judgment decides between.
func (o *Orchestrator) Present(intent *types.Intent) ([]*types.Survivor, error) {
	spec, err := o.latestSpecForIntent(intent.ID)
	if err != nil {
		return nil, err
	}
	all, err := o.Store.ListSurvivorsForIntent(intent.ID)
	if err != nil {
		return nil, err
	}
	var survivors []*types.Survivor
	for _, s := range all {
		a, err := o.Store.LoadAttempt(s.AttemptID)
		if err != nil {
			return nil, err
		}
		if a.SpecVersion != spec.Version {
			continue
		}
		survivors = append(survivors, s)
		if !s.Presented {
			s.Presented = true
			if err := o.Store.SaveSurvivor(s); err != nil {
				return nil, err
			}
		}
	}
	sortByRank(survivors)
	return survivors, nil
}

func sortByRank(survivors []*types.Survivor) {
	for i := 1; i < len(survivors); i++ {
		for j := i; j > 0 && survivors[j].Rank < survivors[j-1].Rank; j-- {
			survivors[j], survivors[j-1] = survivors[j-1], survivors[j]
		}
	}
}

// Judge applies a human Judgment to intent and carries out the decision's
// effect:
//
//   - accept: atomically apply the Survivor's FileChanges to the real
//     project tree, then transition to complete. Requires judging status.
//   - refine: append refinement text to the raw message, bump the
//     Specification version, and re-enter compiling. Requires judging status.
//   - redirect: mark this Intent aborted and Submit a fresh Intent in the
//     same session carrying the redirect text, returned as the second
//     result. Requires judging status.
//   - abort: mark this Intent aborted. Unlike the other three decisions,
//     abort is not limited to judging status — it cancels an Intent from
//     any non-terminal phase (parsing, clarifying, compiling, generating,
//     verifying, ranking, or judging), matching the "cancel current intent"
//     command surface.
//
// Re-applying accept on an already-complete Intent is a no-op refusal,
// not an error retried by the caller; the same holds for re-aborting an
// Intent already in a terminal status.
func (o *Orchestrator) Judge(intent *types.Intent, decision types.Decision, survivorID, text string) (*types.Judgment, *types.Intent, error) {
	if decision == types.DecisionAbort {
		if intent.Status.IsTerminal() {
			return nil, nil, ErrAlreadyComplete
		}
	} else {
		if intent.Status == types.StatusComplete {
			return nil, nil, ErrAlreadyComplete
		}
		if intent.Status != types.StatusJudging {
			return nil, nil, ErrNotJudging
		}
	}

	judgment, err := types.NewJudgment(intent.ID, decision, survivorID, text, text, time.Now())
	if err != nil {
		return nil, nil, err
	}

	var redirected *types.Intent
	switch decision {
	case types.DecisionAccept:
		if err := o.applyAccept(intent, survivorID); err != nil {
			return nil, nil, err
		}
	case types.DecisionRefine:
		intent.RefinementCount++
		intent.RawMessage = intent.RawMessage + "\n\nRefinement: " + text
		if intent.RefinementCount > o.Config.Judgment.RefinementWarnAfter {
			o.Log.Warn().Str("intent_id", intent.ID).Int("refinement_count", intent.RefinementCount).
				Msg("refinement count exceeds configured warning threshold")
		}
		if err := o.transition(intent, types.StatusCompiling); err != nil {
			return nil, nil, err
		}
	case types.DecisionRedirect:
		if err := o.transition(intent, types.StatusAborted); err != nil {
			return nil, nil, err
		}
		redirected, err = o.Submit(intent.Session, text)
		if err != nil {
			return nil, nil, err
		}
	case types.DecisionAbort:
		if err := o.transition(intent, types.StatusAborted); err != nil {
			return nil, nil, err
		}
	}

	if err := o.Store.SaveJudgment(judgment); err != nil {
		return nil, nil, err
	}
	return judgment, redirected, nil
}

// applyAccept applies the chosen Survivor's Attempt FileChanges to the real
// project tree in a single all-or-nothing step: every touched file's
// pre-image is captured before any write, temp files are written and
// renamed into place, and on any failure already-applied files are rolled
// back from the captured pre-images (project-filesystem
// interface).
func (o *Orchestrator) applyAccept(intent *types.Intent, survivorID string) error {
	survivor, err := o.Store.LoadSurvivor(survivorID)
	if err != nil {
		return err
	}
	attempt, err := o.Store.LoadAttempt(survivor.AttemptID)
	if err != nil {
		return err
	}
	if err := applyChangesAtomically(o.Workspace.ProjectRoot, attempt.Changes); err != nil {
		return err
	}
	return o.transition(intent, types.StatusComplete)
}
