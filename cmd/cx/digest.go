package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/boshu2/codexops/internal/config"
	"github.com/boshu2/codexops/internal/digest"
	"github.com/boshu2/codexops/internal/formatter"
	"github.com/boshu2/codexops/pkg/vault"
)

var (
	digestVault      string
	digestOut        string
	digestWindowDays int
	digestReport     string
	digestExportRuns string
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Aggregate recorded runs into a digest",
	Long: `Scan the vault's recorded runs within a trailing window and compute
average criterion scores, persona/role coverage, and a recent-run summary.
The digest is written as JSON and printed in the selected output format.
Optionally render a markdown report and export the considered runs as
JSON Lines.`,
	RunE: runDigest,
}

func init() {
	digestCmd.Flags().StringVar(&digestVault, "vault", "", "Path to the Preservation Vault (default: detected or configured)")
	digestCmd.Flags().StringVar(&digestOut, "out", "", "Where to write the digest (default: <vault>/digest.json)")
	digestCmd.Flags().IntVar(&digestWindowDays, "window-days", 0, "How many days to include")
	digestCmd.Flags().StringVar(&digestReport, "report", "", "Also write a markdown report to this path")
	digestCmd.Flags().StringVar(&digestExportRuns, "export-runs", "", "Also export the considered runs as JSONL to this path")
	rootCmd.AddCommand(digestCmd)
}

func runDigest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(&config.Config{
		Paths:  config.PathsConfig{Vault: digestVault},
		Digest: config.DigestConfig{WindowDays: digestWindowDays},
	})
	if err != nil {
		return err
	}

	vaultDir := cfg.Paths.Vault
	if digestVault == "" {
		if detected := vault.Detect(""); detected != "" {
			vaultDir = detected
		}
	}
	VerbosePrintf("aggregating runs under %s\n", vaultDir)

	now := time.Now()
	runs, err := digest.Collect(digest.NewFSRepository(vaultDir), cfg.Digest.WindowDays, now)
	if err != nil {
		return fmt.Errorf("build digest: %w", err)
	}
	d := digest.FromRuns(runs, cfg.Digest.WindowDays, now)

	outPath := digestOut
	if outPath == "" {
		outPath = filepath.Join(vaultDir, "digest.json")
	}
	if err := digest.Write(outPath, d); err != nil {
		return err
	}

	if digestReport != "" {
		if err := writeReport(digestReport, d); err != nil {
			return err
		}
	}
	if digestExportRuns != "" {
		if err := exportRuns(digestExportRuns, runs); err != nil {
			return err
		}
	}

	if GetOutput() == "table" {
		printDigestTable(d)
		return nil
	}
	return emit(d)
}

// writeReport renders the digest as a markdown report.
func writeReport(path string, d digest.Digest) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()
	if err := formatter.NewMarkdownReport().Format(f, d); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// exportRuns writes the considered runs as JSON Lines.
func exportRuns(path string, runs []digest.RunRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create runs export: %w", err)
	}
	defer f.Close()
	if err := formatter.NewJSONLExporter().Export(f, runs); err != nil {
		return fmt.Errorf("export runs: %w", err)
	}
	return nil
}

// printDigestTable renders the digest summary for terminal reading.
func printDigestTable(d digest.Digest) {
	fmt.Printf("Runs considered: %d (last %d days)\n\n", d.RunsConsidered, d.WindowDays)

	keys := make([]string, 0, len(d.AverageScores))
	for key := range d.AverageScores {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	scores := formatter.NewTable(os.Stdout, "CRITERION", "AVG SCORE")
	for _, key := range keys {
		scores.AddRow(key, strconv.FormatFloat(d.AverageScores[key], 'f', 3, 64))
	}
	//nolint:errcheck // terminal output
	scores.Render()

	if len(d.RecentRuns) == 0 {
		return
	}
	fmt.Println()
	recent := formatter.NewTable(os.Stdout, "TIMESTAMP", "STACK", "WEIGHTED TOTAL")
	recent.SetMaxWidth(1, 30)
	for _, run := range d.RecentRuns {
		recent.AddRow(run.Timestamp, run.StackID, strconv.FormatFloat(run.WeightedTotal, 'f', 3, 64))
	}
	//nolint:errcheck // terminal output
	recent.Render()
}
