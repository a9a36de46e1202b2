// Package digest aggregates recorded runs within a trailing time window
// into a rolling report: average criterion scores, persona/role coverage,
// and a recent-run summary.
package digest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/boshu2/codexops/internal/worker"
)

// RelayDoc is the subset of the relay envelope the aggregator reads.
type RelayDoc struct {
	Persona string `json:"persona"`
	Role    string `json:"role"`
	Result  struct {
		StackID    string `json:"stack_id"`
		Evaluation struct {
			Criteria      map[string]json.RawMessage `json:"criteria"`
			WeightedTotal float64                    `json:"weighted_total"`
		} `json:"evaluation"`
	} `json:"result"`
}

// RunRecord is one recorded run within the aggregation window.
type RunRecord struct {
	Timestamp string
	RunDir    string
	Relay     RelayDoc
}

// Repository lists recorded runs. The filesystem layout behind it is an
// implementation detail so aggregation can be tested against fixtures.
type Repository interface {
	// ListRunsSince returns runs recorded at or after cutoff, oldest first.
	ListRunsSince(cutoff time.Time) ([]RunRecord, error)
}

// runsDirName is the vault subdirectory holding recorded runs.
const runsDirName = "runs"

// Run directories encode their timestamp in the path:
// <vault>/runs/<YYYY-MM-DD>/<HHMMSS>.
const (
	dateLayout  = "2006-01-02"
	timeLayout  = "150405"
	stampLayout = dateLayout + "T" + timeLayout
)

// FSRepository scans a vault's runs tree.
type FSRepository struct {
	// Vault is the vault root directory.
	Vault string
}

// NewFSRepository creates a repository over the given vault root.
func NewFSRepository(vault string) *FSRepository {
	return &FSRepository{Vault: vault}
}

// candidate is a run directory whose name parsed and fell inside the
// window, before its relay envelope has been read.
type candidate struct {
	timestamp string
	runDir    string
}

// ListRunsSince walks <vault>/runs/<date>/<time> in sorted order. Run
// directories with unparseable names, runs older than cutoff, and runs
// without a readable relay envelope are skipped. A missing runs tree yields
// an empty result. Relay envelopes are loaded concurrently; results keep
// the sorted run order.
func (r *FSRepository) ListRunsSince(cutoff time.Time) ([]RunRecord, error) {
	runsRoot := filepath.Join(r.Vault, runsDirName)
	dateDirs, err := sortedSubdirs(runsRoot)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan runs root %s: %w", runsRoot, err)
	}

	var candidates []candidate
	for _, dateDir := range dateDirs {
		timeDirs, err := sortedSubdirs(filepath.Join(runsRoot, dateDir))
		if err != nil {
			return nil, fmt.Errorf("scan runs for %s: %w", dateDir, err)
		}
		for _, timeDir := range timeDirs {
			stamp, ok := parseRunStamp(dateDir, timeDir)
			if !ok || stamp.Before(cutoff) {
				continue
			}
			candidates = append(candidates, candidate{
				timestamp: dateDir + "T" + timeDir + "Z",
				runDir:    filepath.Join(runsRoot, dateDir, timeDir),
			})
		}
	}

	loaded := worker.Map(candidates, 0, func(c candidate) (RelayDoc, error) {
		return loadRelay(filepath.Join(c.runDir, "relay.json"))
	})

	runs := make([]RunRecord, 0, len(candidates))
	for i, outcome := range loaded {
		if outcome.Err != nil {
			continue
		}
		runs = append(runs, RunRecord{
			Timestamp: candidates[i].timestamp,
			RunDir:    candidates[i].runDir,
			Relay:     outcome.Value,
		})
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return runs, nil
}

// parseRunStamp decodes a date/time directory pair into a UTC timestamp.
func parseRunStamp(dateDir, timeDir string) (time.Time, bool) {
	stamp, err := time.ParseInLocation(stampLayout, dateDir+"T"+timeDir, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return stamp, true
}

// loadRelay reads a relay envelope. Missing, empty, and malformed
// documents all error so the caller can drop the run.
func loadRelay(path string) (RelayDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RelayDoc{}, err
	}
	if len(data) == 0 {
		return RelayDoc{}, fmt.Errorf("empty relay envelope %s", path)
	}
	var doc RelayDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return RelayDoc{}, fmt.Errorf("decode relay envelope %s: %w", path, err)
	}
	return doc, nil
}

// sortedSubdirs lists the subdirectory names of dir in sorted order.
func sortedSubdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
