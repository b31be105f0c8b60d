package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/boshu2/manifest/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show resolved configuration",
	Long: `config show prints the fully resolved configuration (flags >
environment > project config > home config > defaults).

Examples:
  manifest config show
  manifest config show -o json`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Persist a configuration override to the project config file",
	Long: `set writes a single key to <base-dir>/config.yaml, the project
config layer Load merges between environment variables and the home
config. Supported keys: output, base_dir, verbose, ranking.top_k,
ai.cost_ceiling_micros, ai.endpoint.

Examples:
  manifest config set ranking.top_k 5
  manifest config set ai.endpoint https://ai.internal/complete`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	baseDir := GetBaseDir()
	if baseDir == "" {
		baseDir = ".manifest"
	}
	path := config.ProjectConfigPath(baseDir)

	var cfg config.Config
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parse existing project config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read project config: %w", err)
	}

	if err := applyConfigKey(&cfg, args[0], args[1]); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create base dir: %w", err)
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write project config: %w", err)
	}
	fmt.Printf("set %s = %s (%s)\n", args[0], args[1], path)
	return nil
}

func applyConfigKey(cfg *config.Config, key, value string) error {
	switch key {
	case "output":
		cfg.Output = value
	case "base_dir":
		cfg.BaseDir = value
	case "verbose":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("verbose: %w", err)
		}
		cfg.Verbose = b
	case "ranking.top_k":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("ranking.top_k: %w", err)
		}
		cfg.Ranking.TopK = n
	case "ai.cost_ceiling_micros":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("ai.cost_ceiling_micros: %w", err)
		}
		cfg.AI.CostCeilingMicros = n
	case "ai.endpoint":
		cfg.AI.Endpoint = value
	default:
		return fmt.Errorf("config set: unknown key %q", key)
	}
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	overrides := &config.Config{Output: GetOutput(), BaseDir: GetBaseDir(), Verbose: GetVerbose()}
	cfg, err := config.Load(overrides)
	if err != nil {
		return err
	}

	if GetOutput() == "json" {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}
