package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boshu2/codexops/internal/recorder"
)

var (
	logRunDir    string
	logRecordEnv bool
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Record run metadata into a run directory",
	Long: `Write a logger.json record into the run directory: a record id,
timestamp, and the files present, plus host environment details when
--record-env is set.`,
	RunE: runLog,
}

func init() {
	logCmd.Flags().StringVar(&logRunDir, "run-dir", "", "Run directory (required)")
	logCmd.Flags().BoolVar(&logRecordEnv, "record-env", false, "Record execution environment details")
	_ = logCmd.MarkFlagRequired("run-dir")
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, args []string) error {
	record, err := recorder.New(logRunDir).WriteLog(logRecordEnv)
	if err != nil {
		return fmt.Errorf("write run log: %w", err)
	}
	return emit(record)
}
