package main

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/boshu2/codexops/internal/config"
	"github.com/boshu2/codexops/internal/executor"
	"github.com/boshu2/codexops/internal/policy"
	"github.com/boshu2/codexops/internal/rubric"
)

// loadConfig resolves configuration with per-command path overrides applied
// at flag priority.
func loadConfig(overrides *config.Config) (*config.Config, error) {
	cfg, err := config.Load(overrides)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// buildEngine assembles the execution engine from the configured policy
// catalog, environment document, and rubric schema.
func buildEngine(cfg *config.Config) (*executor.Engine, error) {
	catalog, err := policy.LoadCatalog(cfg.Paths.PoliciesFile)
	if err != nil {
		return nil, fmt.Errorf("load policy catalog: %w", err)
	}
	environment, err := policy.LoadEnvironment(cfg.Paths.EnvironmentFile)
	if err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	schema, err := rubric.LoadSchema(cfg.Paths.RubricFile)
	if err != nil {
		return nil, fmt.Errorf("load rubric schema: %w", err)
	}
	return executor.New(catalog, environment, rubric.NewEvaluator(schema)), nil
}

// emit renders v to stdout in the selected output format. Table rendering
// is command-specific; commands without one fall back to JSON.
func emit(v any) error {
	switch GetOutput() {
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return enc.Encode(v)
	default:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	}
}
