package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/boshu2/codexops/embedded"
	"github.com/boshu2/codexops/pkg/vault"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Scaffold a codexops workspace in the current directory",
	Long: `Set up a workspace for codexops: example documents and the vault.

This creates:
  stacks/                  - Stack documents + shared invariants include
  config/policies.yaml     - Policy catalog
  config/environment.yaml  - Environment description
  config/rubric.json       - Evaluation rubric schema
  PreservationVault/runs/  - Run archive
  .codexops/               - Vault marker / project config directory

Existing files are left untouched unless --force is given. Safe to run
multiple times (idempotent).`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing scaffold files")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	written, skipped := 0, 0
	err = fs.WalkDir(embedded.TemplatesFS, embedded.TemplatesRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel := strings.TrimPrefix(path, embedded.TemplatesRoot+"/")
		target := filepath.Join(cwd, rel)

		if !initForce {
			if _, statErr := os.Stat(target); statErr == nil {
				skipped++
				VerbosePrintf("skip %s (exists)\n", rel)
				return nil
			}
		}

		data, err := fs.ReadFile(embedded.TemplatesFS, path)
		if err != nil {
			return fmt.Errorf("read template %s: %w", path, err)
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", filepath.Dir(target), err)
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", target, err)
		}
		written++
		VerbosePrintf("write %s\n", rel)
		return nil
	})
	if err != nil {
		return err
	}

	for _, dir := range []string{
		filepath.Join(vault.MarkerDir),
		filepath.Join("PreservationVault", vault.RunsDir),
	} {
		if err := os.MkdirAll(filepath.Join(cwd, dir), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	fmt.Printf("Initialized codexops workspace: %d files written, %d kept\n", written, skipped)
	return nil
}
