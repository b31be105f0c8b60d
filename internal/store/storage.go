// Package store provides durable persistence for the Manifest pipeline's
// lineage: Intents, Specifications, Attempts, Verifications, Survivors, and
// Judgments. Writes are crash-safe (atomic rename, fsync'd); concurrent
// writers serialize through an advisory lock with bounded busy-retry.
package store

import (
	"time"

	"github.com/boshu2/manifest/internal/types"
)

// Store is the interface for persisting and retrieving pipeline entities.
type Store interface {
	// Init creates the required directory structure and checks the schema
	// version, refusing to start on a mismatch.
	Init() error
	// Close releases any resources (lock files, open handles).
	Close() error

	SaveIntent(intent *types.Intent) error
	LoadIntent(id string) (*types.Intent, error)
	ListIntents() ([]*types.Intent, error)
	ListOpenIntents() ([]*types.Intent, error)

	SaveSpecification(spec *types.Specification) error
	LoadSpecification(id string) (*types.Specification, error)
	ListSpecificationsForIntent(intentID string) ([]*types.Specification, error)

	SaveAttempt(att *types.Attempt) error
	LoadAttempt(id string) (*types.Attempt, error)
	ListAttemptsForSpec(specID string) ([]*types.Attempt, error)

	SaveVerification(v *types.Verification) error
	LoadVerification(id string) (*types.Verification, error)
	ListVerificationsForAttempts(attemptIDs []string) ([]*types.Verification, error)

	SaveSurvivor(s *types.Survivor) error
	LoadSurvivor(id string) (*types.Survivor, error)
	// ListSurvivorsForIntent enumerates every Survivor whose Attempt traces
	// back to the given Intent, across every Specification version.
	ListSurvivorsForIntent(intentID string) ([]*types.Survivor, error)

	SaveJudgment(j *types.Judgment) error
	ListJudgmentsForIntent(intentID string) ([]*types.Judgment, error)

	// RecordTransition appends an entry to the append-only phase-transition
	// log, independent of (and in addition to) the entity's own persisted
	// status field — the durable audit trail requires for every
	// observed phase transition.
	RecordTransition(intentID string, from, to types.IntentStatus, at time.Time) error

	// ListOrphanWorkspaces lists workspace directory names left over from a
	// prior crash, for the Workspace Manager's startup sweep.
	ListOrphanWorkspaces() ([]string, error)
}

// Transition is one append-only record of an Intent's phase change: every
// observed move is recorded, never rewritten.
type Transition struct {
	IntentID string             `json:"intent_id"`
	From     types.IntentStatus `json:"from"`
	To       types.IntentStatus `json:"to"`
	At       time.Time          `json:"at"`
}
