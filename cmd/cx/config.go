package main

import (
	"github.com/spf13/cobra"

	"github.com/boshu2/codexops/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show resolved configuration",
	Long: `Show the resolved configuration and where each value came from.

Configuration priority (highest to lowest):
  1. Command-line flags
  2. Environment variables (CODEXOPS_*)
  3. Project config (.codexops/config.yaml)
  4. Home config (~/.codexops/config.yaml)
  5. Defaults

Environment variables:
  CODEXOPS_CONFIG       - Explicit config file path
  CODEXOPS_OUTPUT       - Default output format (json, yaml, table)
  CODEXOPS_STACKS_DIR   - Stack documents directory
  CODEXOPS_POLICIES     - Policy catalog path
  CODEXOPS_ENVIRONMENT  - Environment document path
  CODEXOPS_RUBRIC       - Rubric schema path
  CODEXOPS_VAULT        - Run archive root
  CODEXOPS_WINDOW_DAYS  - Digest aggregation window
  CODEXOPS_VERBOSE      - Enable verbose output (true/1)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flagOutput := ""
		if cmd.Root().PersistentFlags().Changed("output") {
			flagOutput = GetOutput()
		}
		return emit(config.Resolve(flagOutput, GetVerbose()))
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
