// Package recorder persists run artifacts to a run directory: one JSON
// document per agent output, the relay envelope, the evaluation section, and
// a logger record with optional environment capture.
//
// Writes are plain file writes, not temp-and-rename; a concurrent digest
// scan can observe a partially written run directory.
package recorder

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/boshu2/codexops/internal/cfms"
	"github.com/boshu2/codexops/internal/envinfo"
	"github.com/boshu2/codexops/internal/executor"
	"github.com/boshu2/codexops/internal/payload"
)

const (
	// OutputsDir holds the per-agent output documents.
	OutputsDir = "outputs"

	// RelayFile is the relay envelope document.
	RelayFile = "relay.json"

	// EvaluationFile is the standalone evaluation section.
	EvaluationFile = "evaluation.json"

	// LogFile is the run-metadata record.
	LogFile = "logger.json"
)

// Envelope wraps an execution result with the routing request that produced
// it. This is the document the digest aggregator consumes.
type Envelope struct {
	RunDir    string          `json:"run_dir" yaml:"run_dir"`
	StackFile string          `json:"stack_file" yaml:"stack_file"`
	Persona   string          `json:"persona" yaml:"persona"`
	Role      string          `json:"role" yaml:"role"`
	Payload   payload.Payload `json:"payload" yaml:"payload"`
	Result    executor.Result `json:"result" yaml:"result"`
	CFMS      cfms.Report     `json:"cfms" yaml:"cfms"`
}

// LogRecord is the logger.json document.
type LogRecord struct {
	RecordID     string        `json:"record_id"`
	Timestamp    string        `json:"timestamp"`
	RunDir       string        `json:"run_dir"`
	FilesPresent []string      `json:"files_present"`
	Environment  *envinfo.Info `json:"environment,omitempty"`
}

// Recorder writes run artifacts under a single run directory.
type Recorder struct {
	runDir string
	now    func() time.Time
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithClock overrides the log record timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

// New creates a recorder rooted at runDir.
func New(runDir string, opts ...Option) *Recorder {
	r := &Recorder{runDir: runDir, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunDir returns the directory this recorder writes into.
func (r *Recorder) RunDir() string { return r.runDir }

// WriteAgentOutputs persists each agent's output as outputs/<agent>.json.
func (r *Recorder) WriteAgentOutputs(result executor.Result) error {
	outputsDir := filepath.Join(r.runDir, OutputsDir)
	if err := os.MkdirAll(outputsDir, 0o755); err != nil {
		return fmt.Errorf("create outputs directory: %w", err)
	}
	for name, output := range result.Outputs {
		path := filepath.Join(outputsDir, name+".json")
		if err := writeJSON(path, output); err != nil {
			return fmt.Errorf("write agent output %s: %w", name, err)
		}
	}
	return nil
}

// WriteEnvelope persists the relay envelope and its evaluation section.
func (r *Recorder) WriteEnvelope(envelope Envelope) error {
	if err := os.MkdirAll(r.runDir, 0o755); err != nil {
		return fmt.Errorf("create run directory: %w", err)
	}
	if err := writeJSON(filepath.Join(r.runDir, RelayFile), envelope); err != nil {
		return fmt.Errorf("write relay envelope: %w", err)
	}
	if err := writeJSON(filepath.Join(r.runDir, EvaluationFile), envelope.Result.Evaluation); err != nil {
		return fmt.Errorf("write evaluation: %w", err)
	}
	return nil
}

// WriteLog persists the run-metadata record, listing the files present in
// the run directory at write time. When recordEnv is set the host
// environment snapshot is attached.
func (r *Recorder) WriteLog(recordEnv bool) (LogRecord, error) {
	if err := os.MkdirAll(r.runDir, 0o755); err != nil {
		return LogRecord{}, fmt.Errorf("create run directory: %w", err)
	}

	record := LogRecord{
		RecordID:     uuid.NewString(),
		Timestamp:    r.now().UTC().Format(time.RFC3339Nano),
		RunDir:       r.runDir,
		FilesPresent: r.listFiles(),
	}
	if recordEnv {
		info := envinfo.Capture()
		record.Environment = &info
	}

	if err := writeJSON(filepath.Join(r.runDir, LogFile), record); err != nil {
		return LogRecord{}, fmt.Errorf("write log record: %w", err)
	}
	return record, nil
}

// listFiles returns the sorted names of entries in the run directory.
func (r *Recorder) listFiles() []string {
	entries, err := os.ReadDir(r.runDir)
	if err != nil {
		return []string{}
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names
}

// writeJSON writes v as indented JSON.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
