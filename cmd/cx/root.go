package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
	output  string
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "cx",
	Short: "Codex persona stack pipeline CLI",
	Long: `cx routes payloads to persona stacks, scores the advisory outputs
they produce, and aggregates recorded runs into a rolling digest.

Core Commands:
  relay        Route a payload to a stack, execute, evaluate, and record
  execute      Run the executor against an explicit stack file
  log          Record run metadata into a run directory
  digest       Aggregate recorded runs into a digest

Setup:
  init         Scaffold stacks, policies, and rubric documents
  config       Show resolved configuration and value sources

The pipeline order is fixed: relay → executor → logger → evaluation → digest.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		syncConfigFlagToEnv()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "json", "Output format (json, yaml, table)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ~/.codexops/config.yaml)")
}

// GetVerbose returns the verbose flag value for use by subcommands.
func GetVerbose() bool {
	return verbose
}

// GetOutput returns the output format for use by subcommands.
func GetOutput() string {
	return output
}

// GetConfigFile returns the config file path for use by subcommands.
func GetConfigFile() string {
	return cfgFile
}

// VerbosePrintf prints to stderr only when verbose mode is enabled.
func VerbosePrintf(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

func syncConfigFlagToEnv() {
	path := strings.TrimSpace(GetConfigFile())
	if path == "" {
		return
	}
	_ = os.Setenv("CODEXOPS_CONFIG", path)
}
