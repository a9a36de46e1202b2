package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boshu2/codexops/internal/cfms"
	"github.com/boshu2/codexops/internal/config"
	"github.com/boshu2/codexops/internal/payload"
	"github.com/boshu2/codexops/internal/recorder"
	"github.com/boshu2/codexops/internal/stack"
)

var (
	relayPersona     string
	relayRole        string
	relayPayload     string
	relayStacksDir   string
	relayStackFile   string
	relayRunDir      string
	relayPolicies    string
	relayEnvironment string
	relayRubric      string
	relayRecordEnv   bool
)

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Route a payload to a stack, execute, evaluate, and record",
	Long: `Route a persona/role request to a stack, synthesize and score the
advisory outputs, and persist the run artifacts.

The run directory receives outputs/<agent>.json per agent, the relay
envelope (relay.json), the evaluation section (evaluation.json), and a
run-metadata record (logger.json). The envelope is also printed to stdout.`,
	RunE: runRelay,
}

func init() {
	relayCmd.Flags().StringVar(&relayPersona, "persona", "", "Persona id to route (required)")
	relayCmd.Flags().StringVar(&relayRole, "role", "", "Role requested (required)")
	relayCmd.Flags().StringVar(&relayPayload, "payload", "{}", "JSON payload provided to the persona")
	relayCmd.Flags().StringVar(&relayStacksDir, "stacks-dir", "", "Directory that stores stack YAML files")
	relayCmd.Flags().StringVar(&relayStackFile, "stack-file", "", "Optional explicit stack file path")
	relayCmd.Flags().StringVar(&relayRunDir, "run-dir", "", "Directory for this run's artifacts (required)")
	relayCmd.Flags().StringVar(&relayPolicies, "policies", "", "Policy catalog path")
	relayCmd.Flags().StringVar(&relayEnvironment, "environment", "", "Environment document path")
	relayCmd.Flags().StringVar(&relayRubric, "rubric", "", "Rubric schema path")
	relayCmd.Flags().BoolVar(&relayRecordEnv, "record-env", false, "Attach host environment details to the run log")
	_ = relayCmd.MarkFlagRequired("persona")
	_ = relayCmd.MarkFlagRequired("role")
	_ = relayCmd.MarkFlagRequired("run-dir")
	rootCmd.AddCommand(relayCmd)
}

func runRelay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(&config.Config{
		Paths: config.PathsConfig{
			StacksDir:       relayStacksDir,
			PoliciesFile:    relayPolicies,
			EnvironmentFile: relayEnvironment,
			RubricFile:      relayRubric,
		},
	})
	if err != nil {
		return err
	}

	p, err := payload.Parse(relayPayload)
	if err != nil {
		return err
	}

	resolved, err := stack.Select(relayPersona, relayRole, cfg.Paths.StacksDir, relayStackFile)
	if err != nil {
		return err
	}
	VerbosePrintf("selected stack %s\n", resolved.Path)

	report := cfms.Check(resolved)

	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	result := engine.Execute(resolved, p)

	rec := recorder.New(relayRunDir)
	if err := rec.WriteAgentOutputs(result); err != nil {
		return fmt.Errorf("record agent outputs: %w", err)
	}
	envelope := recorder.Envelope{
		RunDir:    relayRunDir,
		StackFile: resolved.Path,
		Persona:   relayPersona,
		Role:      relayRole,
		Payload:   p,
		Result:    result,
		CFMS:      report,
	}
	if err := rec.WriteEnvelope(envelope); err != nil {
		return fmt.Errorf("record envelope: %w", err)
	}
	if _, err := rec.WriteLog(relayRecordEnv); err != nil {
		return fmt.Errorf("record run log: %w", err)
	}

	return emit(envelope)
}
