// Package harness runs one Attempt through the staged Verification pipeline
// inside an isolated workspace: typecheck, lint, unit-tests, spec-tests,
// each a Subprocess Runner call with its own deadline and a Checker treated
// as an opaque argv'd black box.
package harness

import (
	"context"
	"os"
	"time"

	"github.com/boshu2/manifest/internal/config"
	"github.com/boshu2/manifest/internal/runctx"
	"github.com/boshu2/manifest/internal/runner"
	"github.com/boshu2/manifest/internal/types"
	"github.com/boshu2/manifest/internal/workspace"
)

// Checker resolves the argv for one stage against a workspace path. Keeping
// this a function (rather than a fixed command table) lets the caller wire
// in project-specific lint/type/test tools without the harness knowing their
// identities.
type Checker func(stage types.StageName, workspacePath string) (command string, args []string)

// Harness runs Verifications inside Workspace-Manager-scoped directories.
type Harness struct {
	Workspace *workspace.Manager
	Checker   Checker
	Config    config.VerificationConfig

	// PreserveFailedWorkspaces, when set, asks the Workspace Manager to
	// save a debug copy of a workspace whose Verification failed before
	// the live workspace is torn down (config's CleanupWorkspaces=false).
	PreserveFailedWorkspaces bool
}

// New constructs a Harness.
func New(ws *workspace.Manager, checker Checker, cfg config.VerificationConfig, preserveFailedWorkspaces bool) *Harness {
	return &Harness{Workspace: ws, Checker: checker, Config: cfg, PreserveFailedWorkspaces: preserveFailedWorkspaces}
}

// stageOrder is the fixed verification pipeline sequence.
var stageOrder = []types.StageName{
	types.StageTypecheck,
	types.StageLint,
	types.StageUnitTests,
	types.StageSpecTests,
}

// SpecTestDir is where the Specification's test suite is written inside the
// workspace. The leading underscore keeps `go test ./...` from walking into
// it during the unit-tests stage, the same rule the Go toolchain applies to
// any "_"-prefixed directory; a Checker wiring the spec-tests stage scopes
// its own `go test` invocation explicitly to this directory.
const SpecTestDir = "_manifest_spec_test_generated"

// specTestFile is the generated test file's path within SpecTestDir.
const specTestFile = SpecTestDir + "/spec_test.go"

// InstallStage is the reserved Checker stage name resolved, when
// config.VerificationConfig.AutoInstallDependencies is set, for a
// dependency-install command run once before the first pipeline stage. A
// Checker that declines to support it returns an empty command, which
// Verify treats as "nothing to install" rather than a failure. It is not
// one of the four persisted CheckResult stages — a failure here is
// recorded against StageTypecheck, since nothing downstream can typecheck
// without its dependencies resolved first.
const InstallStage types.StageName = "install"

// blackholeProxy is an address nothing listens on, used to make an
// AllowNetworkInTests=false test's outbound connection attempt fail fast
// instead of reaching the real network or hanging on an unreachable host.
const blackholeProxy = "http://127.0.0.1:1"

// Verify applies attempt's FileChanges to a fresh workspace, writes spec's
// test-suite at a reserved path, and runs the four-stage pipeline in order,
// short-circuiting after the first hard stage failure (deeper stages are
// skipped, not retried). The workspace is released unconditionally via the
// Workspace Manager's scoped contract regardless of outcome.
func (h *Harness) Verify(run *runctx.Run, attempt *types.Attempt, spec *types.Specification) (*types.Verification, error) {
	if err := run.Harness.Acquire(run.Context); err != nil {
		return nil, err
	}
	defer run.Harness.Release()

	start := time.Now()
	var stages []types.CheckResult
	var assertionsPassed int

	err := h.Workspace.WithWorkspace(run.Context, attempt.ID, attempt.Changes, spec.TestSuite, specTestFile, func(path string) error {
		if h.Config.AutoInstallDependencies {
			if blocked, result := h.runInstall(run.Context, path); blocked {
				stages = append(stages, result)
			}
		}
		if len(stages) == 0 {
			for _, stage := range stageOrder {
				result := h.runStage(run.Context, stage, path)
				stages = append(stages, result)
				if !result.Passed {
					break
				}
			}
		}
		if h.PreserveFailedWorkspaces && !allPassed(stages) {
			_ = h.Workspace.PreserveDebugCopy(attempt.ID, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	duration := time.Since(start)
	passed := allPassed(stages)
	if passed {
		assertionsPassed = len(spec.Assertions)
	} else {
		assertionsPassed = parseAssertionsPassed(stages)
	}
	assertionsTotal := len(spec.Assertions)

	v := types.NewVerification(attempt.ID, stages, assertionsPassed, assertionsTotal, duration, time.Now())
	return v, nil
}

// runInstall resolves and runs the dependency-install command under
// InstallStage, returning blocked=true only when the Checker supplied a
// command and it failed — a successful or absent install step leaves the
// pipeline's stage list untouched rather than recording a phantom passing
// stage.
func (h *Harness) runInstall(ctx context.Context, workspacePath string) (blocked bool, result types.CheckResult) {
	command, args := h.Checker(InstallStage, workspacePath)
	if command == "" {
		return false, types.CheckResult{}
	}
	deadline := h.Config.StageDeadlines[string(types.StageTypecheck)]
	res, err := runner.Run(ctx, runner.Spec{Dir: workspacePath, Command: command, Args: args, Deadline: deadline})
	if err == nil && res.ExitCode == 0 {
		return false, types.CheckResult{}
	}
	return true, types.CheckResult{
		Stage:    types.StageTypecheck,
		Passed:   false,
		Output:   res.Stdout + res.Stderr,
		Duration: res.Duration,
		Errors:   stageErrors(res, err),
	}
}

// runStage dispatches a stage to the Subprocess Runner, applying the
// flaky-retry policy to unit-tests and spec-tests: the stage's "passed"
// verdict is the majority of up to 1+FlakyRetryCount runs.
func (h *Harness) runStage(ctx context.Context, stage types.StageName, workspacePath string) types.CheckResult {
	deadline := h.Config.StageDeadlines[string(stage)]

	retries := 0
	if stage == types.StageUnitTests || stage == types.StageSpecTests {
		retries = h.Config.FlakyRetryCount
	}
	runs := retries + 1

	env := h.stageEnv(stage)

	var last runner.Result
	var lastErr error
	passes := 0
	var command string
	var args []string
	for i := 0; i < runs; i++ {
		command, args = h.Checker(stage, workspacePath)
		res, err := runner.Run(ctx, runner.Spec{
			Dir:      workspacePath,
			Command:  command,
			Args:     args,
			Env:      env,
			Deadline: deadline,
		})
		last, lastErr = res, err
		if err == nil && res.ExitCode == 0 {
			passes++
		}
	}

	passed := passes*2 > runs
	out := types.CheckResult{
		Stage:    stage,
		Passed:   passed,
		Output:   last.Stdout + last.Stderr,
		Duration: last.Duration,
	}
	if !passed {
		out.Errors = stageErrors(last, lastErr)
	}
	return out
}

// stageEnv returns nil (inherit the parent process's environment unchanged)
// except for the unit-tests and spec-tests stages when
// Config.AllowNetworkInTests is false, where it routes outbound
// connections through an unroutable proxy so a test that dials out fails
// fast instead of reaching the real network.
func (h *Harness) stageEnv(stage types.StageName) []string {
	if h.Config.AllowNetworkInTests {
		return nil
	}
	if stage != types.StageUnitTests && stage != types.StageSpecTests {
		return nil
	}
	env := os.Environ()
	env = append(env,
		"HTTP_PROXY="+blackholeProxy,
		"HTTPS_PROXY="+blackholeProxy,
		"http_proxy="+blackholeProxy,
		"https_proxy="+blackholeProxy,
		"NO_PROXY=",
		"no_proxy=",
	)
	return env
}

func stageErrors(res runner.Result, err error) []string {
	switch {
	case err == runner.ErrDeadlineExceeded:
		return []string{"stage_timeout: deadline exceeded"}
	case err != nil:
		return []string{"stage_crashed: " + err.Error()}
	default:
		if res.Stderr != "" {
			return []string{res.Stderr}
		}
		return []string{"stage exited non-zero"}
	}
}

func allPassed(stages []types.CheckResult) bool {
	if len(stages) != len(stageOrder) {
		return false
	}
	for _, s := range stages {
		if !s.Passed {
			return false
		}
	}
	return true
}

// parseAssertionsPassed extracts a structured assertions-passed count from
// the spec-tests stage's captured output when available, else reports zero.
// Structured extraction is left to extractAssertionCount, which looks for a
// trailing "ASSERTIONS_PASSED=N" marker the spec test-suite is expected to
// emit.
func parseAssertionsPassed(stages []types.CheckResult) int {
	for _, s := range stages {
		if s.Stage != types.StageSpecTests {
			continue
		}
		if n, ok := extractAssertionCount(s.Output); ok {
			return n
		}
	}
	return 0
}
