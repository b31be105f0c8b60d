// Package orchestrator drives one Intent through its phase state machine:
// parsing → clarifying* → compiling → generating → verifying → ranking →
// judging → {complete, failed, aborted}. Every phase writes its
// artifact through the Store before declaring complete, so a crash mid-phase
// leaves the Intent resumable at the last persisted boundary.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/boshu2/manifest/internal/aigateway"
	"github.com/boshu2/manifest/internal/compiler"
	"github.com/boshu2/manifest/internal/config"
	"github.com/boshu2/manifest/internal/harness"
	"github.com/boshu2/manifest/internal/ranking"
	"github.com/boshu2/manifest/internal/runctx"
	"github.com/boshu2/manifest/internal/store"
	"github.com/boshu2/manifest/internal/swarm"
	"github.com/boshu2/manifest/internal/types"
	"github.com/boshu2/manifest/internal/workspace"
)

// Orchestrator composes every pipeline component and drives one Intent's
// transitions, persisting each before the next phase's side effects begin.
type Orchestrator struct {
	Store     store.Store
	Compiler  *compiler.Compiler
	Swarm     *swarm.Swarm
	Harness   *harness.Harness
	Ranking   *ranking.Engine
	Gateway   *aigateway.Gateway
	Workspace *workspace.Manager
	Config    *config.Config
	Log       zerolog.Logger
}

// New constructs an Orchestrator.
func New(st store.Store, c *compiler.Compiler, sw *swarm.Swarm, h *harness.Harness, r *ranking.Engine, gw *aigateway.Gateway, ws *workspace.Manager, cfg *config.Config, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{Store: st, Compiler: c, Swarm: sw, Harness: h, Ranking: r, Gateway: gw, Workspace: ws, Config: cfg, Log: log}
}

// Submit constructs a new Intent from a raw message, persists it, and runs
// the parse step. A non-empty parsed.unclear[] halts at status=clarifying
// without producing a Specification; otherwise the caller should follow up
// with Continue to drive compilation onward.
func (o *Orchestrator) Submit(session, rawMessage string) (*types.Intent, error) {
	intent, err := types.NewIntent(session, rawMessage, time.Now())
	if err != nil {
		return nil, err
	}
	if err := o.Store.SaveIntent(intent); err != nil {
		return nil, err
	}
	run := o.newRun(intent.ID)
	if err := o.parsePhase(run, intent); err != nil {
		return intent, err
	}
	return intent, nil
}

// newRun builds a fresh Run context scoped to one Intent, sized by the
// Orchestrator's Config.
func (o *Orchestrator) newRun(intentID string) *runctx.Run {
	return runctx.New(
		context.Background(),
		intentID,
		o.Config.AI.CostCeilingMicros,
		o.Config.AI.Concurrency,
		o.Config.Verification.Concurrency,
		o.Log,
	)
}

// transition persists the Intent's new status before returning, recording
// an audit entry, so that a crash between this call and the next phase's
// side effects leaves the Intent resumable at the boundary.
func (o *Orchestrator) transition(intent *types.Intent, next types.IntentStatus) error {
	from := intent.Status
	if err := intent.Transition(next, time.Now()); err != nil {
		return err
	}
	if err := o.Store.SaveIntent(intent); err != nil {
		return err
	}
	return o.Store.RecordTransition(intent.ID, from, next, time.Now())
}

// Continue drives intent forward from its current persisted status through
// compiling, generating, verifying, and ranking, stopping at judging (or a
// terminal status). It is the single re-entry point used both by fresh
// Submits that parsed cleanly and by Resume after a crash.
func (o *Orchestrator) Continue(intent *types.Intent) error {
	run := o.newRun(intent.ID)
	for {
		switch intent.Status {
		case types.StatusCompiling:
			if err := o.compilingPhase(run, intent); err != nil {
				return err
			}
		case types.StatusGenerating:
			if err := o.generatingPhase(run, intent); err != nil {
				return err
			}
		case types.StatusVerifying:
			if err := o.verifyingPhase(run, intent); err != nil {
				return err
			}
		case types.StatusRanking:
			if err := o.rankingPhase(run, intent); err != nil {
				return err
			}
		case types.StatusJudging, types.StatusComplete, types.StatusFailed, types.StatusAborted, types.StatusClarifying, types.StatusParsing:
			return nil
		default:
			return fmt.Errorf("orchestrator: %w: %s", types.ErrUnknownStatus, intent.Status)
		}
	}
}

// failIntent records a terminal failure, attaching the failing phase and
// condition to the log so the operator-facing report can name both.
func (o *Orchestrator) failIntent(intent *types.Intent, phase types.IntentStatus, err error) error {
	o.Log.Error().Str("intent_id", intent.ID).Str("phase", string(phase)).Err(err).Msg("intent failed")
	return o.transition(intent, types.StatusFailed)
}
