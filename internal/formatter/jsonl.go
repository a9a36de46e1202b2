package formatter

import (
	"encoding/json"
	"io"

	"github.com/boshu2/codexops/internal/digest"
)

// JSONLExporter writes run records as JSON Lines, one run per line, for
// downstream tooling that tails or streams the export.
type JSONLExporter struct{}

// NewJSONLExporter creates a new JSONL exporter.
func NewJSONLExporter() *JSONLExporter {
	return &JSONLExporter{}
}

// Extension returns the file extension for JSONL exports.
func (e *JSONLExporter) Extension() string {
	return ".jsonl"
}

// jsonlRun is the structure written per line.
type jsonlRun struct {
	Timestamp     string  `json:"timestamp"`
	RunDir        string  `json:"run_dir"`
	Persona       string  `json:"persona"`
	Role          string  `json:"role"`
	StackID       string  `json:"stack_id"`
	WeightedTotal float64 `json:"weighted_total"`
}

// Export writes each run as a single JSON line.
func (e *JSONLExporter) Export(w io.Writer, runs []digest.RunRecord) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)

	for _, run := range runs {
		line := jsonlRun{
			Timestamp:     run.Timestamp,
			RunDir:        run.RunDir,
			Persona:       run.Relay.Persona,
			Role:          run.Relay.Role,
			StackID:       run.Relay.Result.StackID,
			WeightedTotal: run.Relay.Result.Evaluation.WeightedTotal,
		}
		if err := encoder.Encode(line); err != nil {
			return err
		}
	}
	return nil
}
