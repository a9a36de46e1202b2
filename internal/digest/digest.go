package digest

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"
)

// PersonaRole is a persona/role pair observed in the window.
type PersonaRole struct {
	Persona string `json:"persona" yaml:"persona"`
	Role    string `json:"role" yaml:"role"`
}

// RunSummary is the per-run line item in the digest.
type RunSummary struct {
	Timestamp     string  `json:"timestamp" yaml:"timestamp"`
	StackID       string  `json:"stack_id" yaml:"stack_id"`
	WeightedTotal float64 `json:"weighted_total" yaml:"weighted_total"`
}

// Digest is the rolling aggregate over recorded runs.
type Digest struct {
	GeneratedAt    string             `json:"generated_at" yaml:"generated_at"`
	WindowDays     int                `json:"window_days" yaml:"window_days"`
	RunsConsidered int                `json:"runs_considered" yaml:"runs_considered"`
	PersonaRoles   []PersonaRole      `json:"persona_roles" yaml:"persona_roles"`
	AverageScores  map[string]float64 `json:"average_scores" yaml:"average_scores"`
	RecentRuns     []RunSummary       `json:"recent_runs" yaml:"recent_runs"`
}

// Build aggregates the runs recorded within the trailing window ending at
// now.
func Build(repo Repository, windowDays int, now time.Time) (Digest, error) {
	runs, err := Collect(repo, windowDays, now)
	if err != nil {
		return Digest{}, err
	}
	return FromRuns(runs, windowDays, now), nil
}

// Collect lists the runs recorded within the trailing window ending at now.
func Collect(repo Repository, windowDays int, now time.Time) ([]RunRecord, error) {
	cutoff := now.UTC().Add(-time.Duration(windowDays) * 24 * time.Hour)
	runs, err := repo.ListRunsSince(cutoff)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// FromRuns aggregates an already-collected run set.
func FromRuns(runs []RunRecord, windowDays int, now time.Time) Digest {
	personaRoles := make([]PersonaRole, 0, len(runs))
	recent := make([]RunSummary, 0, len(runs))
	for _, run := range runs {
		personaRoles = append(personaRoles, PersonaRole{Persona: run.Relay.Persona, Role: run.Relay.Role})
		recent = append(recent, RunSummary{
			Timestamp:     run.Timestamp,
			StackID:       run.Relay.Result.StackID,
			WeightedTotal: run.Relay.Result.Evaluation.WeightedTotal,
		})
	}

	return Digest{
		GeneratedAt:    now.UTC().Format(time.RFC3339Nano),
		WindowDays:     windowDays,
		RunsConsidered: len(runs),
		PersonaRoles:   personaRoles,
		AverageScores:  averageScores(runs),
		RecentRuns:     recent,
	}
}

// averageScores computes the per-criterion mean over all runs, rounded to
// three decimals. Criterion entries may be {score, weight} objects or bare
// numbers; anything else is skipped.
func averageScores(runs []RunRecord) map[string]float64 {
	totals := make(map[string]float64)
	counts := make(map[string]int)
	for _, run := range runs {
		for key, raw := range run.Relay.Result.Evaluation.Criteria {
			score, ok := criterionScore(raw)
			if !ok {
				continue
			}
			totals[key] += score
			counts[key]++
		}
	}

	averages := make(map[string]float64, len(totals))
	for key, total := range totals {
		averages[key] = math.Round(total/float64(counts[key])*1000) / 1000
	}
	return averages
}

// criterionScore extracts a score from either a {score, weight} object or a
// bare number.
func criterionScore(raw json.RawMessage) (float64, bool) {
	var entry struct {
		Score float64 `json:"score"`
	}
	if err := json.Unmarshal(raw, &entry); err == nil {
		return entry.Score, true
	}
	var bare float64
	if err := json.Unmarshal(raw, &bare); err == nil {
		return bare, true
	}
	return 0, false
}

// Write persists the digest as indented JSON, creating parent directories
// as needed.
func Write(path string, d Digest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create digest directory: %w", err)
	}
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encode digest: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write digest: %w", err)
	}
	return nil
}
