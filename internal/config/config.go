// Package config provides configuration management for codexops.
// Configuration is loaded from (highest to lowest priority):
// 1. Command-line flags
// 2. Environment variables (CODEXOPS_*)
// 3. Project config (.codexops/config.yaml in cwd)
// 4. Home config (~/.codexops/config.yaml)
// 5. Defaults
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all codexops configuration.
type Config struct {
	// Output controls the default output format (json, yaml, table).
	Output string `yaml:"output" json:"output"`

	// Verbose enables verbose output.
	Verbose bool `yaml:"verbose" json:"verbose"`

	// Paths settings for document locations.
	Paths PathsConfig `yaml:"paths" json:"paths"`

	// Digest settings.
	Digest DigestConfig `yaml:"digest" json:"digest"`
}

// PathsConfig holds the document locations the pipeline reads.
type PathsConfig struct {
	// StacksDir holds the stack YAML documents.
	// Default: stacks
	StacksDir string `yaml:"stacks_dir" json:"stacks_dir"`

	// PoliciesFile is the policy catalog document.
	// Default: config/policies.yaml
	PoliciesFile string `yaml:"policies_file" json:"policies_file"`

	// EnvironmentFile is the environment description document.
	// Default: config/environment.yaml
	EnvironmentFile string `yaml:"environment_file" json:"environment_file"`

	// RubricFile is the evaluation rubric schema.
	// Default: config/rubric.json
	RubricFile string `yaml:"rubric_file" json:"rubric_file"`

	// Vault is the run archive root.
	// Default: PreservationVault
	Vault string `yaml:"vault" json:"vault"`
}

// DigestConfig holds digest-specific settings.
type DigestConfig struct {
	// WindowDays is the trailing window for digest aggregation.
	// Default: 7
	WindowDays int `yaml:"window_days" json:"window_days"`
}

// Default config values (used in resolution and validation).
const (
	defaultOutput     = "json"
	defaultStacksDir  = "stacks"
	defaultPolicies   = "config/policies.yaml"
	defaultEnv        = "config/environment.yaml"
	defaultRubric     = "config/rubric.json"
	defaultVault      = "PreservationVault"
	defaultWindowDays = 7
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Output:  defaultOutput,
		Verbose: false,
		Paths: PathsConfig{
			StacksDir:       defaultStacksDir,
			PoliciesFile:    defaultPolicies,
			EnvironmentFile: defaultEnv,
			RubricFile:      defaultRubric,
			Vault:           defaultVault,
		},
		Digest: DigestConfig{
			WindowDays: defaultWindowDays,
		},
	}
}

// Load loads configuration with proper precedence.
// Priority: flags > env > project > home > defaults
func Load(flagOverrides *Config) (*Config, error) {
	cfg := Default()

	homeConfig, _ := loadFromPath(homeConfigPath())
	if homeConfig != nil {
		cfg = merge(cfg, homeConfig)
	}

	projectConfig, _ := loadFromPath(projectConfigPath())
	if projectConfig != nil {
		cfg = merge(cfg, projectConfig)
	}

	cfg = applyEnv(cfg)

	if flagOverrides != nil {
		cfg = merge(cfg, flagOverrides)
	}

	return cfg, nil
}

// homeConfigPath returns the home config path.
func homeConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".codexops", "config.yaml")
}

// projectConfigPath returns the project config path.
func projectConfigPath() string {
	if override := strings.TrimSpace(os.Getenv("CODEXOPS_CONFIG")); override != "" {
		return override
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(cwd, ".codexops", "config.yaml")
}

// loadFromPath loads config from a YAML file.
func loadFromPath(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnv applies environment variable overrides.
func applyEnv(cfg *Config) *Config {
	if v := os.Getenv("CODEXOPS_OUTPUT"); v != "" {
		cfg.Output = v
	}
	if os.Getenv("CODEXOPS_VERBOSE") == "true" || os.Getenv("CODEXOPS_VERBOSE") == "1" {
		cfg.Verbose = true
	}
	if v := os.Getenv("CODEXOPS_STACKS_DIR"); v != "" {
		cfg.Paths.StacksDir = v
	}
	if v := os.Getenv("CODEXOPS_POLICIES"); v != "" {
		cfg.Paths.PoliciesFile = v
	}
	if v := os.Getenv("CODEXOPS_ENVIRONMENT"); v != "" {
		cfg.Paths.EnvironmentFile = v
	}
	if v := os.Getenv("CODEXOPS_RUBRIC"); v != "" {
		cfg.Paths.RubricFile = v
	}
	if v := os.Getenv("CODEXOPS_VAULT"); v != "" {
		cfg.Paths.Vault = v
	}
	if v := os.Getenv("CODEXOPS_WINDOW_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			cfg.Digest.WindowDays = days
		}
	}
	return cfg
}

// mergeStr overwrites dst with src when src is non-empty.
func mergeStr(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// mergeInt overwrites dst with src when src is non-zero.
func mergeInt(dst *int, src int) {
	if src != 0 {
		*dst = src
	}
}

// merge merges src into dst, with src values taking precedence.
func merge(dst, src *Config) *Config {
	mergeStr(&dst.Output, src.Output)
	if src.Verbose {
		dst.Verbose = true
	}

	mergeStr(&dst.Paths.StacksDir, src.Paths.StacksDir)
	mergeStr(&dst.Paths.PoliciesFile, src.Paths.PoliciesFile)
	mergeStr(&dst.Paths.EnvironmentFile, src.Paths.EnvironmentFile)
	mergeStr(&dst.Paths.RubricFile, src.Paths.RubricFile)
	mergeStr(&dst.Paths.Vault, src.Paths.Vault)
	mergeInt(&dst.Digest.WindowDays, src.Digest.WindowDays)

	return dst
}

// Source represents where a config value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceHome    Source = "~/.codexops/config.yaml"
	SourceProject Source = ".codexops/config.yaml"
	SourceEnv     Source = "environment"
	SourceFlag    Source = "flag"
)

type resolved struct {
	Value  any    `json:"value"`
	Source Source `json:"source"`
}

// ResolvedConfig shows config values with their sources.
type ResolvedConfig struct {
	Output          resolved `json:"output"`
	StacksDir       resolved `json:"stacks_dir"`
	PoliciesFile    resolved `json:"policies_file"`
	EnvironmentFile resolved `json:"environment_file"`
	RubricFile      resolved `json:"rubric_file"`
	Vault           resolved `json:"vault"`
	WindowDays      resolved `json:"window_days"`
	Verbose         resolved `json:"verbose"`
}

// resolveStringField resolves a string through the precedence chain.
func resolveStringField(home, project, env, flag, def string) resolved {
	result := resolved{Value: def, Source: SourceDefault}
	if home != "" {
		result = resolved{Value: home, Source: SourceHome}
	}
	if project != "" {
		result = resolved{Value: project, Source: SourceProject}
	}
	if env != "" {
		result = resolved{Value: env, Source: SourceEnv}
	}
	if flag != "" {
		result = resolved{Value: flag, Source: SourceFlag}
	}
	return result
}

// Resolve returns configuration with source tracking.
// Uses precedence chain: flags > env > project > home > defaults.
func Resolve(flagOutput string, flagVerbose bool) *ResolvedConfig {
	homeConfig, _ := loadFromPath(homeConfigPath())
	projectConfig, _ := loadFromPath(projectConfigPath())

	var home, project Config
	if homeConfig != nil {
		home = *homeConfig
	}
	if projectConfig != nil {
		project = *projectConfig
	}

	rc := &ResolvedConfig{
		Output: resolveStringField(home.Output, project.Output, os.Getenv("CODEXOPS_OUTPUT"), flagOutput, defaultOutput),
		StacksDir: resolveStringField(
			home.Paths.StacksDir, project.Paths.StacksDir, os.Getenv("CODEXOPS_STACKS_DIR"), "", defaultStacksDir),
		PoliciesFile: resolveStringField(
			home.Paths.PoliciesFile, project.Paths.PoliciesFile, os.Getenv("CODEXOPS_POLICIES"), "", defaultPolicies),
		EnvironmentFile: resolveStringField(
			home.Paths.EnvironmentFile, project.Paths.EnvironmentFile, os.Getenv("CODEXOPS_ENVIRONMENT"), "", defaultEnv),
		RubricFile: resolveStringField(
			home.Paths.RubricFile, project.Paths.RubricFile, os.Getenv("CODEXOPS_RUBRIC"), "", defaultRubric),
		Vault: resolveStringField(
			home.Paths.Vault, project.Paths.Vault, os.Getenv("CODEXOPS_VAULT"), "", defaultVault),
		WindowDays: resolved{Value: defaultWindowDays, Source: SourceDefault},
		Verbose:    resolved{Value: false, Source: SourceDefault},
	}

	if home.Digest.WindowDays != 0 {
		rc.WindowDays = resolved{Value: home.Digest.WindowDays, Source: SourceHome}
	}
	if project.Digest.WindowDays != 0 {
		rc.WindowDays = resolved{Value: project.Digest.WindowDays, Source: SourceProject}
	}
	if v := os.Getenv("CODEXOPS_WINDOW_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			rc.WindowDays = resolved{Value: days, Source: SourceEnv}
		}
	}

	if home.Verbose {
		rc.Verbose = resolved{Value: true, Source: SourceHome}
	}
	if project.Verbose {
		rc.Verbose = resolved{Value: true, Source: SourceProject}
	}
	if os.Getenv("CODEXOPS_VERBOSE") == "true" || os.Getenv("CODEXOPS_VERBOSE") == "1" {
		rc.Verbose = resolved{Value: true, Source: SourceEnv}
	}
	if flagVerbose {
		rc.Verbose = resolved{Value: true, Source: SourceFlag}
	}

	return rc
}
