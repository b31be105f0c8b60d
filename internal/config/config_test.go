package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Output != "table" {
		t.Errorf("Default Output = %q, want %q", cfg.Output, "table")
	}
	if cfg.BaseDir != ".manifest" {
		t.Errorf("Default BaseDir = %q, want %q", cfg.BaseDir, ".manifest")
	}
	if cfg.Verbose {
		t.Error("Default Verbose = true, want false")
	}
	if cfg.Generation.DefaultCount != 4 {
		t.Errorf("Default Generation.DefaultCount = %d, want 4", cfg.Generation.DefaultCount)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default() should validate cleanly: %v", err)
	}
}

func TestMerge(t *testing.T) {
	dst := Default()
	src := &Config{
		Output:  "json",
		BaseDir: "/custom/path",
		AI:      AIConfig{CostCeilingMicros: 9_000_000},
	}

	result := merge(dst, src)

	if result.Output != "json" {
		t.Errorf("merge Output = %q, want json", result.Output)
	}
	if result.BaseDir != "/custom/path" {
		t.Errorf("merge BaseDir = %q, want /custom/path", result.BaseDir)
	}
	if result.AI.CostCeilingMicros != 9_000_000 {
		t.Errorf("merge AI.CostCeilingMicros = %d, want 9000000", result.AI.CostCeilingMicros)
	}
	// Untouched fields fall back to dst's existing values.
	if result.AI.CallDeadline != Default().AI.CallDeadline {
		t.Errorf("merge should not zero untouched fields")
	}
}

func TestValidateRejectsWeightsNotSummingToOne(t *testing.T) {
	cfg := Default()
	cfg.Ranking.Weights.Assertions = 0.9
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for weights not summing to 1")
	}
}

func TestValidateRejectsOverflowingStrategyDistribution(t *testing.T) {
	cfg := Default()
	cfg.Generation.MaxCount = 2
	cfg.Generation.StrategyDistribution = map[string]int{"vanilla": 3}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for strategy distribution exceeding max_count")
	}
}

func TestLoadReadsProjectConfigOverDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MANIFEST_CONFIG", filepath.Join(dir, "config.yaml"))
	content := "output: json\nai:\n  call_deadline: 30s\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Output != "json" {
		t.Errorf("expected project config to override output, got %q", cfg.Output)
	}
	if cfg.AI.CallDeadline != 30*time.Second {
		t.Errorf("expected project config call_deadline 30s, got %v", cfg.AI.CallDeadline)
	}
}
