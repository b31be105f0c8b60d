// Package config provides configuration management for Manifest.
// Configuration is loaded from (highest to lowest priority):
// 1. Command-line flags
// 2. Environment variables (MANIFEST_*)
// 3. Project config (<data-dir>/config.yaml)
// 4. Home config (~/.manifest/config.yaml)
// 5. Defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable setting for a Manifest run.
type Config struct {
	// Output controls the default CLI output format (table, json).
	Output string `yaml:"output" json:"output"`

	// BaseDir is the Manifest data directory: store/, workspaces/, logs/.
	BaseDir string `yaml:"base_dir" json:"base_dir"`

	// Verbose enables verbose logging.
	Verbose bool `yaml:"verbose" json:"verbose"`

	Generation   GenerationConfig   `yaml:"generation" json:"generation"`
	AI           AIConfig           `yaml:"ai" json:"ai"`
	Verification VerificationConfig `yaml:"verification" json:"verification"`
	Workspace    WorkspaceConfig    `yaml:"workspace" json:"workspace"`
	Analysis     AnalysisConfig     `yaml:"analysis" json:"analysis"`
	Ranking      RankingConfig      `yaml:"ranking" json:"ranking"`
	Judgment     JudgmentConfig     `yaml:"judgment" json:"judgment"`
}

// AnalysisConfig controls the Intent Compiler's codebase-analysis step: the
// same include/exclude filter shape the Workspace Manager uses for copying.
type AnalysisConfig struct {
	// ExcludeDirs lists directory names never walked for analysis.
	ExcludeDirs []string `yaml:"exclude_dirs" json:"exclude_dirs"`
	// MaxFileBytes skips files larger than this when building the tree
	// summary handed to the AI Gateway.
	MaxFileBytes int64 `yaml:"max_file_bytes" json:"max_file_bytes"`
	// BinaryExtensions lists file extensions treated as non-analyzable.
	BinaryExtensions []string `yaml:"binary_extensions" json:"binary_extensions"`
}

// GenerationConfig controls the Generation Swarm.
type GenerationConfig struct {
	// DefaultCount is N when StrategyDistribution is empty: ResolvedDistribution
	// falls back to an all-vanilla distribution of this size rather than
	// generating zero Attempts.
	DefaultCount int `yaml:"default_count" json:"default_count"`
	// MaxCount is the hard ceiling on N regardless of caller request.
	MaxCount int `yaml:"max_count" json:"max_count"`
	// StrategyDistribution maps strategy name to its share of N attempts.
	StrategyDistribution map[string]int `yaml:"strategy_distribution" json:"strategy_distribution"`
}

// ResolvedDistribution returns StrategyDistribution unless it is empty (sums
// to zero), in which case it falls back to DefaultCount vanilla Attempts —
// the "N when the caller does not specify one" behavior DefaultCount names.
func (g GenerationConfig) ResolvedDistribution() map[string]int {
	total := 0
	for _, n := range g.StrategyDistribution {
		total += n
	}
	if total > 0 {
		return g.StrategyDistribution
	}
	if g.DefaultCount <= 0 {
		return g.StrategyDistribution
	}
	return map[string]int{"vanilla": g.DefaultCount}
}

// AIConfig controls the AI Gateway.
type AIConfig struct {
	// CostCeilingMicros is the per-run cost ceiling in micro-dollars (1e-6 USD).
	CostCeilingMicros int64 `yaml:"cost_ceiling_micros" json:"cost_ceiling_micros"`
	// CallDeadline bounds a single completion call.
	CallDeadline time.Duration `yaml:"call_deadline" json:"call_deadline"`
	// Concurrency is the outstanding-call ceiling before rate-limit throttling.
	Concurrency int `yaml:"concurrency" json:"concurrency"`
	// RetryBudget caps the number of retried attempts per call.
	RetryBudget int `yaml:"retry_budget" json:"retry_budget"`
	// RateLimitCooldown is how long a halved concurrency window lasts before
	// linear recovery begins.
	RateLimitCooldown time.Duration `yaml:"rate_limit_cooldown" json:"rate_limit_cooldown"`
	// EstimatedCallCostMicros is reserved against the cost ceiling before a
	// call is issued, since the actual CostMicros is only known afterward;
	// the reservation is trued up to the actual cost once the call returns.
	EstimatedCallCostMicros int64 `yaml:"estimated_call_cost_micros" json:"estimated_call_cost_micros"`
	// Endpoint is the HTTP completion endpoint the CLI's default Backend
	// posts prompts to. Empty disables wiring a live Backend.
	Endpoint string `yaml:"endpoint" json:"endpoint"`
	// APIKey is sent as a Bearer token; read from MANIFEST_AI_API_KEY rather
	// than committed to a config file in practice.
	APIKey string `yaml:"api_key" json:"-"`
}

// VerificationConfig controls the Verification Harness.
type VerificationConfig struct {
	// StageDeadlines maps stage name to its subprocess deadline.
	StageDeadlines map[string]time.Duration `yaml:"stage_deadlines" json:"stage_deadlines"`
	// FlakyRetryCount is how many times unit-tests/spec-tests may be re-run.
	FlakyRetryCount int `yaml:"flaky_retry_count" json:"flaky_retry_count"`
	// Concurrency is the harness worker pool size.
	Concurrency int `yaml:"concurrency" json:"concurrency"`
	// AllowNetworkInTests permits subprocess checkers to reach the network.
	// When false, the Harness routes the unit-tests and spec-tests stages'
	// subprocess environment through an unroutable proxy, so a test that
	// tries to dial out fails fast instead of hanging or silently
	// succeeding against a live network.
	AllowNetworkInTests bool `yaml:"allow_network_in_tests" json:"allow_network_in_tests"`
	// AutoInstallDependencies lets the harness run a package-manager install
	// step (resolved from the Checker under the reserved "install" stage
	// name) before the first verification stage.
	AutoInstallDependencies bool `yaml:"auto_install_dependencies" json:"auto_install_dependencies"`
}

// WorkspaceConfig controls the Workspace Manager.
type WorkspaceConfig struct {
	// DiskCapBytes is the total disk budget across all live workspaces.
	DiskCapBytes int64 `yaml:"disk_cap_bytes" json:"disk_cap_bytes"`
	// AcquireDeadline bounds how long a caller waits for disk headroom.
	AcquireDeadline time.Duration `yaml:"acquire_deadline" json:"acquire_deadline"`
	// CleanupWorkspaces, if false, preserves a copy of a workspace whose
	// Verification failed under a sibling failed-workspaces/ directory
	// (Manager.DebugRoot) just before teardown. The live workspace under
	// Root is still destroyed unconditionally either way — the Workspace
	// Manager's "removed on every exit path" contract never depends on a
	// debug copy succeeding or being requested.
	CleanupWorkspaces bool `yaml:"cleanup_workspaces" json:"cleanup_workspaces"`
	// ExcludeDirs lists directory names never copied into a workspace.
	ExcludeDirs []string `yaml:"exclude_dirs" json:"exclude_dirs"`
}

// RankingConfig controls the Ranking Engine.
type RankingConfig struct {
	// TopK is how many survivors are presented to the human.
	TopK int `yaml:"top_k" json:"top_k"`
	// Weights are the per-axis ranking weights; must sum to 1.
	Weights ScoreWeights `yaml:"weights" json:"weights"`
}

// ScoreWeights are the Ranking Engine's per-axis weights.
type ScoreWeights struct {
	Assertions  float64 `yaml:"assertions" json:"assertions"`
	Simplicity  float64 `yaml:"simplicity" json:"simplicity"`
	Readability float64 `yaml:"readability" json:"readability"`
	Performance float64 `yaml:"performance" json:"performance"`
}

// JudgmentConfig controls the Orchestrator's judgment loop.
type JudgmentConfig struct {
	// RefinementWarnAfter is the refinement count past which the Orchestrator
	// surfaces a warning (it never blocks further refinement).
	RefinementWarnAfter int `yaml:"refinement_warn_after" json:"refinement_warn_after"`
}

const (
	defaultOutput  = "table"
	defaultBaseDir = ".manifest"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Output:  defaultOutput,
		BaseDir: defaultBaseDir,
		Verbose: false,
		Generation: GenerationConfig{
			DefaultCount: 4,
			MaxCount:     16,
			StrategyDistribution: map[string]int{
				"vanilla":   2,
				"minimal":   1,
				"defensive": 1,
			},
		},
		AI: AIConfig{
			CostCeilingMicros:       5_000_000,
			CallDeadline:            90 * time.Second,
			Concurrency:             8,
			RetryBudget:             4,
			RateLimitCooldown:       60 * time.Second,
			EstimatedCallCostMicros: 300_000,
		},
		Verification: VerificationConfig{
			StageDeadlines: map[string]time.Duration{
				"typecheck":  60 * time.Second,
				"lint":       60 * time.Second,
				"unit-tests": 180 * time.Second,
				"spec-tests": 180 * time.Second,
			},
			FlakyRetryCount:         2,
			Concurrency:             4,
			AllowNetworkInTests:     false,
			AutoInstallDependencies: false,
		},
		Workspace: WorkspaceConfig{
			DiskCapBytes:      2 << 30, // 2 GiB
			AcquireDeadline:   30 * time.Second,
			CleanupWorkspaces: true,
			ExcludeDirs:       []string{".git", "node_modules", "vendor", "dist", "build", ".manifest"},
		},
		Analysis: AnalysisConfig{
			ExcludeDirs:      []string{".git", "node_modules", "vendor", "dist", "build", ".manifest"},
			MaxFileBytes:     512 << 10, // 512 KiB
			BinaryExtensions: []string{".png", ".jpg", ".jpeg", ".gif", ".pdf", ".zip", ".gz", ".exe", ".so", ".dylib", ".bin"},
		},
		Ranking: RankingConfig{
			TopK: 3,
			Weights: ScoreWeights{
				Assertions:  0.5,
				Simplicity:  0.2,
				Readability: 0.2,
				Performance: 0.1,
			},
		},
		Judgment: JudgmentConfig{
			RefinementWarnAfter: 3,
		},
	}
}

// Load loads configuration with precedence: flags > env > project > home > defaults.
func Load(flagOverrides *Config) (*Config, error) {
	cfg := Default()

	if home, err := loadFromPath(homeConfigPath()); err == nil && home != nil {
		cfg = merge(cfg, home)
	}
	projectDir := cfg.BaseDir
	if v := os.Getenv("MANIFEST_BASE_DIR"); v != "" {
		projectDir = v
	}
	if flagOverrides != nil && flagOverrides.BaseDir != "" {
		projectDir = flagOverrides.BaseDir
	}
	if proj, err := loadFromPath(projectConfigPath(projectDir)); err == nil && proj != nil {
		cfg = merge(cfg, proj)
	}
	cfg = applyEnv(cfg)
	if flagOverrides != nil {
		cfg = merge(cfg, flagOverrides)
	}
	return cfg, nil
}

func homeConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".manifest", "config.yaml")
}

func projectConfigPath(baseDir string) string {
	if override := os.Getenv("MANIFEST_CONFIG"); override != "" {
		return override
	}
	return filepath.Join(baseDir, "config.yaml")
}

// ProjectConfigPath exposes projectConfigPath for the CLI's "config set",
// which writes its overrides to the same file Load reads project settings
// from.
func ProjectConfigPath(baseDir string) string {
	return projectConfigPath(baseDir)
}

func loadFromPath(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) *Config {
	if v := os.Getenv("MANIFEST_OUTPUT"); v != "" {
		cfg.Output = v
	}
	if v := os.Getenv("MANIFEST_BASE_DIR"); v != "" {
		cfg.BaseDir = v
	}
	if v := os.Getenv("MANIFEST_VERBOSE"); v == "true" || v == "1" {
		cfg.Verbose = true
	}
	if v := os.Getenv("MANIFEST_AI_ENDPOINT"); v != "" {
		cfg.AI.Endpoint = v
	}
	if v := os.Getenv("MANIFEST_AI_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}
	return cfg
}

// merge overlays non-zero fields of src onto dst, returning dst.
func merge(dst, src *Config) *Config {
	if src.Output != "" {
		dst.Output = src.Output
	}
	if src.BaseDir != "" {
		dst.BaseDir = src.BaseDir
	}
	if src.Verbose {
		dst.Verbose = true
	}
	if src.Generation.DefaultCount != 0 {
		dst.Generation.DefaultCount = src.Generation.DefaultCount
	}
	if src.Generation.MaxCount != 0 {
		dst.Generation.MaxCount = src.Generation.MaxCount
	}
	if len(src.Generation.StrategyDistribution) > 0 {
		dst.Generation.StrategyDistribution = src.Generation.StrategyDistribution
	}
	if src.AI.CostCeilingMicros != 0 {
		dst.AI.CostCeilingMicros = src.AI.CostCeilingMicros
	}
	if src.AI.CallDeadline != 0 {
		dst.AI.CallDeadline = src.AI.CallDeadline
	}
	if src.AI.Concurrency != 0 {
		dst.AI.Concurrency = src.AI.Concurrency
	}
	if src.AI.RetryBudget != 0 {
		dst.AI.RetryBudget = src.AI.RetryBudget
	}
	if src.AI.RateLimitCooldown != 0 {
		dst.AI.RateLimitCooldown = src.AI.RateLimitCooldown
	}
	if src.AI.EstimatedCallCostMicros != 0 {
		dst.AI.EstimatedCallCostMicros = src.AI.EstimatedCallCostMicros
	}
	if src.AI.Endpoint != "" {
		dst.AI.Endpoint = src.AI.Endpoint
	}
	if src.AI.APIKey != "" {
		dst.AI.APIKey = src.AI.APIKey
	}
	if len(src.Verification.StageDeadlines) > 0 {
		dst.Verification.StageDeadlines = src.Verification.StageDeadlines
	}
	if src.Verification.FlakyRetryCount != 0 {
		dst.Verification.FlakyRetryCount = src.Verification.FlakyRetryCount
	}
	if src.Verification.Concurrency != 0 {
		dst.Verification.Concurrency = src.Verification.Concurrency
	}
	if src.Verification.AllowNetworkInTests {
		dst.Verification.AllowNetworkInTests = true
	}
	if src.Verification.AutoInstallDependencies {
		dst.Verification.AutoInstallDependencies = true
	}
	if src.Workspace.DiskCapBytes != 0 {
		dst.Workspace.DiskCapBytes = src.Workspace.DiskCapBytes
	}
	if src.Workspace.AcquireDeadline != 0 {
		dst.Workspace.AcquireDeadline = src.Workspace.AcquireDeadline
	}
	if len(src.Workspace.ExcludeDirs) > 0 {
		dst.Workspace.ExcludeDirs = src.Workspace.ExcludeDirs
	}
	if len(src.Analysis.ExcludeDirs) > 0 {
		dst.Analysis.ExcludeDirs = src.Analysis.ExcludeDirs
	}
	if src.Analysis.MaxFileBytes != 0 {
		dst.Analysis.MaxFileBytes = src.Analysis.MaxFileBytes
	}
	if len(src.Analysis.BinaryExtensions) > 0 {
		dst.Analysis.BinaryExtensions = src.Analysis.BinaryExtensions
	}
	if src.Ranking.TopK != 0 {
		dst.Ranking.TopK = src.Ranking.TopK
	}
	if (src.Ranking.Weights != ScoreWeights{}) {
		dst.Ranking.Weights = src.Ranking.Weights
	}
	if src.Judgment.RefinementWarnAfter != 0 {
		dst.Judgment.RefinementWarnAfter = src.Judgment.RefinementWarnAfter
	}
	return dst
}

// Validate checks cross-field constraints that yaml unmarshalling cannot.
func (c *Config) Validate() error {
	sum := c.Ranking.Weights.Assertions + c.Ranking.Weights.Simplicity +
		c.Ranking.Weights.Readability + c.Ranking.Weights.Performance
	if sum < 0.99 || sum > 1.01 {
		return fmt.Errorf("ranking weights must sum to 1, got %.4f", sum)
	}
	total := 0
	for _, n := range c.Generation.ResolvedDistribution() {
		total += n
	}
	if total > c.Generation.MaxCount {
		return fmt.Errorf("strategy distribution total %d exceeds max_count %d", total, c.Generation.MaxCount)
	}
	return nil
}
