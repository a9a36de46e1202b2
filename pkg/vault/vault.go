// Package vault provides Preservation Vault detection utilities.
package vault

import (
	"os"
	"path/filepath"
)

// MarkerDir is the directory that marks a vault root.
const MarkerDir = ".codexops"

// RunsDir is the vault subdirectory where runs are recorded.
const RunsDir = "runs"

// Detect walks up from the given directory to find a Preservation Vault
// root: a directory carrying the marker or an existing runs tree.
// Returns the vault path if found, empty string otherwise.
func Detect(startDir string) string {
	if startDir == "" {
		var err error
		startDir, err = os.Getwd()
		if err != nil {
			return ""
		}
	}

	dir := startDir
	for {
		if isVaultRoot(dir) {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break // Reached root
		}
		dir = parent
	}

	return ""
}

// isVaultRoot reports whether dir carries a vault marker or runs tree.
func isVaultRoot(dir string) bool {
	for _, name := range []string{MarkerDir, RunsDir} {
		if info, err := os.Stat(filepath.Join(dir, name)); err == nil && info.IsDir() {
			return true
		}
	}
	return false
}

// RunsRoot returns the runs tree path inside the vault.
func RunsRoot(vaultPath string) string {
	return filepath.Join(vaultPath, RunsDir)
}

// IsInVault returns true if the given directory is within a vault.
func IsInVault(dir string) bool {
	return Detect(dir) != ""
}
