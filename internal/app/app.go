// Package app wires every pipeline component into one Orchestrator from a
// resolved config.Config, the single construction seam used by cmd/manifest
// so each subcommand doesn't repeat the dependency graph. Each command
// builds a fresh App from its resolved config rather than sharing a
// package-level singleton.
package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/boshu2/manifest/internal/aigateway"
	"github.com/boshu2/manifest/internal/compiler"
	"github.com/boshu2/manifest/internal/config"
	"github.com/boshu2/manifest/internal/harness"
	"github.com/boshu2/manifest/internal/logging"
	"github.com/boshu2/manifest/internal/orchestrator"
	"github.com/boshu2/manifest/internal/ranking"
	"github.com/boshu2/manifest/internal/store"
	"github.com/boshu2/manifest/internal/swarm"
	"github.com/boshu2/manifest/internal/types"
	"github.com/boshu2/manifest/internal/workspace"
)

// App holds the constructed pipeline and the config it was built from.
type App struct {
	Config       *config.Config
	Store        store.Store
	Orchestrator *orchestrator.Orchestrator
	Log          zerolog.Logger
}

// New resolves configuration, opens the Store, and wires every component
// into an Orchestrator rooted at projectRoot.
func New(projectRoot string, flagOverrides *config.Config) (*App, error) {
	cfg, err := config.Load(flagOverrides)
	if err != nil {
		return nil, fmt.Errorf("app: load config: %w", err)
	}

	log := logging.Default(cfg.Verbose)

	fileStore := store.NewFileStore(filepath.Join(cfg.BaseDir, "store"))
	if err := fileStore.Init(); err != nil {
		return nil, fmt.Errorf("app: init store: %w", err)
	}

	var backend aigateway.Backend
	if cfg.AI.Endpoint != "" {
		backend = aigateway.NewHTTPBackend(cfg.AI.Endpoint, cfg.AI.APIKey, nil)
	} else {
		backend = unconfiguredBackend{}
	}
	gateway := aigateway.New(backend, cfg.AI.Concurrency, cfg.AI.RateLimitCooldown, cfg.AI.RetryBudget, cfg.AI.EstimatedCallCostMicros)

	ws := workspace.New(projectRoot, filepath.Join(cfg.BaseDir, "workspaces"), cfg.Workspace.ExcludeDirs, cfg.Workspace.DiskCapBytes, cfg.Workspace.AcquireDeadline)

	comp := compiler.New(gateway, projectRoot, cfg.Analysis, cfg.AI.CallDeadline)
	sw := swarm.New(gateway, cfg.AI.CallDeadline)
	h := harness.New(ws, goToolchainChecker, cfg.Verification, !cfg.Workspace.CleanupWorkspaces)
	rk := ranking.New(cfg.Ranking.Weights, cfg.Ranking.TopK)

	orch := orchestrator.New(fileStore, comp, sw, h, rk, gateway, ws, cfg, log)

	return &App{Config: cfg, Store: fileStore, Orchestrator: orch, Log: log}, nil
}

// unconfiguredBackend refuses every call, surfacing a clear configuration
// error instead of silently calling nothing when cfg.AI.Endpoint is unset.
type unconfiguredBackend struct{}

func (unconfiguredBackend) Complete(_ context.Context, _ string, _ aigateway.Purpose) (aigateway.Completion, error) {
	return aigateway.Completion{}, fmt.Errorf("app: no AI backend configured (set ai.endpoint or MANIFEST_AI_ENDPOINT)")
}

// goToolchainChecker is the default Checker: Go project verification driven
// by the standard toolchain through the Harness's opaque-subprocess
// contract. workspacePath is unused; the Subprocess Runner already sets
// Dir to it, so every command stays workspace-relative. The unit-tests
// stage relies on SpecTestDir's leading underscore to keep `go test ./...`
// from ever entering it, so the two test stages stay disjoint.
func goToolchainChecker(stage types.StageName, _ string) (string, []string) {
	switch stage {
	case harness.InstallStage:
		return "go", []string{"mod", "download"}
	case types.StageTypecheck:
		return "go", []string{"build", "./..."}
	case types.StageLint:
		return "go", []string{"vet", "./..."}
	case types.StageUnitTests:
		return "go", []string{"test", "./..."}
	case types.StageSpecTests:
		return "go", []string{"test", "./" + harness.SpecTestDir + "/..."}
	default:
		return "", nil
	}
}
