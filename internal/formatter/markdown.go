package formatter

import (
	"fmt"
	"io"
	"sort"
	"text/template"

	"github.com/boshu2/codexops/internal/digest"
)

// MarkdownReport renders a digest as a markdown document suitable for
// checking into the vault alongside digest.json.
type MarkdownReport struct{}

// NewMarkdownReport creates a markdown report renderer.
func NewMarkdownReport() *MarkdownReport {
	return &MarkdownReport{}
}

// Extension returns the file extension for markdown reports.
func (m *MarkdownReport) Extension() string {
	return ".md"
}

// Format writes the digest as markdown.
func (m *MarkdownReport) Format(w io.Writer, d digest.Digest) error {
	tmpl, err := template.New("digest").Funcs(m.templateFuncs()).Parse(reportTemplate)
	if err != nil {
		return fmt.Errorf("parse template: %w", err)
	}
	return tmpl.Execute(w, m.buildTemplateData(d))
}

// reportData holds all data for the markdown template.
type reportData struct {
	GeneratedAt    string
	WindowDays     int
	RunsConsidered int
	PersonaRoles   []digest.PersonaRole
	AverageScores  []scoreRow
	RecentRuns     []digest.RunSummary
}

// scoreRow is one criterion average, ordered for stable rendering.
type scoreRow struct {
	Criterion string
	Average   float64
}

// buildTemplateData prepares data for the template. Average scores are
// sorted by criterion so reruns over the same vault produce identical
// reports.
func (m *MarkdownReport) buildTemplateData(d digest.Digest) *reportData {
	scores := make([]scoreRow, 0, len(d.AverageScores))
	for criterion, avg := range d.AverageScores {
		scores = append(scores, scoreRow{Criterion: criterion, Average: avg})
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].Criterion < scores[j].Criterion })

	return &reportData{
		GeneratedAt:    d.GeneratedAt,
		WindowDays:     d.WindowDays,
		RunsConsidered: d.RunsConsidered,
		PersonaRoles:   d.PersonaRoles,
		AverageScores:  scores,
		RecentRuns:     d.RecentRuns,
	}
}

// templateFuncs returns custom template functions.
func (m *MarkdownReport) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"score": func(v float64) string {
			return fmt.Sprintf("%.3f", v)
		},
		"hasRuns": func(runs []digest.RunSummary) bool {
			return len(runs) > 0
		},
		"hasScores": func(scores []scoreRow) bool {
			return len(scores) > 0
		},
	}
}

const reportTemplate = `---
generated_at: {{ .GeneratedAt }}
window_days: {{ .WindowDays }}
runs_considered: {{ .RunsConsidered }}
---

# Codex Digest

**Generated:** {{ .GeneratedAt }}
**Window:** last {{ .WindowDays }} days
**Runs considered:** {{ .RunsConsidered }}

{{- if hasScores .AverageScores }}

## Average Scores

| Criterion | Average |
|-----------|---------|
{{- range .AverageScores }}
| {{ .Criterion }} | {{ score .Average }} |
{{- end }}
{{- end }}

{{- if .PersonaRoles }}

## Persona Coverage

{{- range .PersonaRoles }}
- {{ .Persona }} / {{ .Role }}
{{- end }}
{{- end }}

{{- if hasRuns .RecentRuns }}

## Recent Runs

| Timestamp | Stack | Weighted Total |
|-----------|-------|----------------|
{{- range .RecentRuns }}
| {{ .Timestamp }} | {{ .StackID }} | {{ score .WeightedTotal }} |
{{- end }}
{{- end }}
`
