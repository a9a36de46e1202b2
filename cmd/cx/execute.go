package main

import (
	"github.com/spf13/cobra"

	"github.com/boshu2/codexops/internal/config"
	"github.com/boshu2/codexops/internal/payload"
	"github.com/boshu2/codexops/internal/stack"
)

var (
	executePayload     string
	executePolicies    string
	executeEnvironment string
	executeRubric      string
)

var executeCmd = &cobra.Command{
	Use:   "execute <stack-file>",
	Short: "Run the executor against an explicit stack file",
	Long: `Execute a stack standalone, without routing validation or run
recording. Includes are not composed, so the invariants snapshot is empty;
use relay for the full pipeline.`,
	Args: cobra.ExactArgs(1),
	RunE: runExecute,
}

func init() {
	executeCmd.Flags().StringVar(&executePayload, "payload", "{}", "JSON payload to feed the executor")
	executeCmd.Flags().StringVar(&executePolicies, "policies", "", "Policy catalog path")
	executeCmd.Flags().StringVar(&executeEnvironment, "environment", "", "Environment document path")
	executeCmd.Flags().StringVar(&executeRubric, "rubric", "", "Rubric schema path")
	rootCmd.AddCommand(executeCmd)
}

func runExecute(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(&config.Config{
		Paths: config.PathsConfig{
			PoliciesFile:    executePolicies,
			EnvironmentFile: executeEnvironment,
			RubricFile:      executeRubric,
		},
	})
	if err != nil {
		return err
	}

	doc, err := stack.Load(args[0])
	if err != nil {
		return err
	}

	p, err := payload.Parse(executePayload)
	if err != nil {
		return err
	}

	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	result := engine.Execute(&stack.Resolved{Document: doc}, p)
	return emit(result)
}
