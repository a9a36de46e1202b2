package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/boshu2/codexops/internal/config"
)

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{
		"relay":      false,
		"execute":    false,
		"log":        false,
		"digest":     false,
		"init":       false,
		"config":     false,
		"version":    false,
		"completion": false,
	}
	for _, cmd := range rootCmd.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestSyncConfigFlagToEnv(t *testing.T) {
	t.Setenv("CODEXOPS_CONFIG", "")
	old := cfgFile
	defer func() { cfgFile = old }()

	cfgFile = "  /tmp/custom.yaml  "
	syncConfigFlagToEnv()
	if got := os.Getenv("CODEXOPS_CONFIG"); got != "/tmp/custom.yaml" {
		t.Errorf("CODEXOPS_CONFIG = %q, want /tmp/custom.yaml", got)
	}
}

func TestBuildEngine_MissingDocuments(t *testing.T) {
	// Absent policy/environment/rubric documents are valid: the engine
	// runs with empty catalogs and the fallback scorer.
	tmp := t.TempDir()
	cfg := config.Default()
	cfg.Paths.PoliciesFile = filepath.Join(tmp, "missing-policies.yaml")
	cfg.Paths.EnvironmentFile = filepath.Join(tmp, "missing-environment.yaml")
	cfg.Paths.RubricFile = filepath.Join(tmp, "missing-rubric.json")

	engine, err := buildEngine(cfg)
	if err != nil {
		t.Fatalf("buildEngine: %v", err)
	}
	if engine == nil {
		t.Fatal("buildEngine returned nil engine")
	}
}
