package main

import (
	"testing"

	"github.com/boshu2/manifest/internal/config"
)

func TestApplyConfigKeyKnownKeys(t *testing.T) {
	var cfg config.Config
	cases := []struct {
		key, value string
	}{
		{"output", "json"},
		{"verbose", "true"},
		{"ranking.top_k", "5"},
		{"ai.cost_ceiling_micros", "1000000"},
		{"ai.endpoint", "https://ai.internal/complete"},
	}
	for _, c := range cases {
		if err := applyConfigKey(&cfg, c.key, c.value); err != nil {
			t.Fatalf("applyConfigKey(%q, %q): %v", c.key, c.value, err)
		}
	}

	if cfg.Output != "json" {
		t.Errorf("Output = %q, want json", cfg.Output)
	}
	if !cfg.Verbose {
		t.Error("Verbose = false, want true")
	}
	if cfg.Ranking.TopK != 5 {
		t.Errorf("Ranking.TopK = %d, want 5", cfg.Ranking.TopK)
	}
	if cfg.AI.CostCeilingMicros != 1_000_000 {
		t.Errorf("AI.CostCeilingMicros = %d, want 1000000", cfg.AI.CostCeilingMicros)
	}
	if cfg.AI.Endpoint != "https://ai.internal/complete" {
		t.Errorf("AI.Endpoint = %q, want the given URL", cfg.AI.Endpoint)
	}
}

func TestApplyConfigKeyUnknownKey(t *testing.T) {
	var cfg config.Config
	if err := applyConfigKey(&cfg, "bogus.key", "x"); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestApplyConfigKeyInvalidValue(t *testing.T) {
	var cfg config.Config
	if err := applyConfigKey(&cfg, "ranking.top_k", "not-a-number"); err == nil {
		t.Fatal("expected error for non-numeric top_k")
	}
}
