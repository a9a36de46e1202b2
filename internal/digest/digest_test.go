package digest

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"
)

// fakeRepo returns canned run records regardless of cutoff.
type fakeRepo struct {
	runs []RunRecord
	err  error
}

func (f *fakeRepo) ListRunsSince(cutoff time.Time) ([]RunRecord, error) {
	return f.runs, f.err
}

func runWithScores(timestamp, stackID string, total float64, scores map[string]float64) RunRecord {
	criteria := make(map[string]json.RawMessage, len(scores))
	for key, score := range scores {
		criteria[key] = json.RawMessage(fmt.Sprintf(`{"score": %v, "weight": 0.5}`, score))
	}
	record := RunRecord{Timestamp: timestamp}
	record.Relay.Persona = "sage"
	record.Relay.Role = "advisor"
	record.Relay.Result.StackID = stackID
	record.Relay.Result.Evaluation.Criteria = criteria
	record.Relay.Result.Evaluation.WeightedTotal = total
	return record
}

func TestBuild_AverageScores(t *testing.T) {
	repo := &fakeRepo{runs: []RunRecord{
		runWithScores("2026-08-28T120000Z", "sage-advisor", 0.7, map[string]float64{"a": 0.8, "b": 0.6}),
		runWithScores("2026-08-29T120000Z", "sage-advisor", 0.7, map[string]float64{"a": 1.0, "b": 0.4}),
	}}

	d, err := Build(repo, 7, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	if got := d.AverageScores["a"]; got != 0.9 {
		t.Errorf("average a = %v, want 0.9", got)
	}
	if got := d.AverageScores["b"]; got != 0.5 {
		t.Errorf("average b = %v, want 0.5", got)
	}
}

func TestBuild_RoundsToThreeDecimals(t *testing.T) {
	repo := &fakeRepo{runs: []RunRecord{
		runWithScores("2026-08-28T120000Z", "s", 0, map[string]float64{"a": 0.8}),
		runWithScores("2026-08-29T120000Z", "s", 0, map[string]float64{"a": 0.8}),
		runWithScores("2026-08-29T130000Z", "s", 0, map[string]float64{"a": 0.9}),
	}}

	d, err := Build(repo, 7, time.Now())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	// (0.8+0.8+0.9)/3 = 0.8333... -> 0.833
	if got := d.AverageScores["a"]; got != 0.833 {
		t.Errorf("average a = %v, want 0.833", got)
	}
}

func TestBuild_BareNumberCriteria(t *testing.T) {
	record := RunRecord{Timestamp: "2026-08-28T120000Z"}
	record.Relay.Result.Evaluation.Criteria = map[string]json.RawMessage{
		"a": json.RawMessage(`0.6`),
		"b": json.RawMessage(`"not a score"`),
	}
	repo := &fakeRepo{runs: []RunRecord{record}}

	d, err := Build(repo, 7, time.Now())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if got := d.AverageScores["a"]; got != 0.6 {
		t.Errorf("average a = %v, want 0.6", got)
	}
	if _, ok := d.AverageScores["b"]; ok {
		t.Error("unparseable criterion should be skipped")
	}
}

func TestBuild_Summary(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	repo := &fakeRepo{runs: []RunRecord{
		runWithScores("2026-08-29T120000Z", "sage-advisor", 0.875, map[string]float64{"a": 1}),
	}}

	d, err := Build(repo, 7, now)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if d.WindowDays != 7 {
		t.Errorf("WindowDays = %d, want 7", d.WindowDays)
	}
	if d.RunsConsidered != 1 {
		t.Errorf("RunsConsidered = %d, want 1", d.RunsConsidered)
	}
	if d.GeneratedAt != now.Format(time.RFC3339Nano) {
		t.Errorf("GeneratedAt = %q", d.GeneratedAt)
	}
	if len(d.PersonaRoles) != 1 || d.PersonaRoles[0] != (PersonaRole{Persona: "sage", Role: "advisor"}) {
		t.Errorf("PersonaRoles = %+v", d.PersonaRoles)
	}
	wantRun := RunSummary{Timestamp: "2026-08-29T120000Z", StackID: "sage-advisor", WeightedTotal: 0.875}
	if len(d.RecentRuns) != 1 || d.RecentRuns[0] != wantRun {
		t.Errorf("RecentRuns = %+v, want [%+v]", d.RecentRuns, wantRun)
	}
}

func TestBuild_EmptyRepository(t *testing.T) {
	d, err := Build(&fakeRepo{}, 7, time.Now())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if d.RunsConsidered != 0 {
		t.Errorf("RunsConsidered = %d, want 0", d.RunsConsidered)
	}
	if len(d.AverageScores) != 0 {
		t.Errorf("AverageScores = %v, want empty", d.AverageScores)
	}
}

func TestBuild_RepositoryError(t *testing.T) {
	repo := &fakeRepo{err: fmt.Errorf("disk gone")}
	if _, err := Build(repo, 7, time.Now()); err == nil {
		t.Error("expected error from failing repository")
	}
}
