package main

import (
	"fmt"
	"time"

	"lineaops/internal/benchmark"
	"lineaops/internal/report"
	"lineaops/internal/ui"

	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Rebuild the HTML report from existing artifacts",
	Long: `Reads benchmark_summary.csv, sustained_test.txt and cache_test.txt
from the output directory and writes performance_report.html next to them. Missing
inputs leave their report section empty.`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := ui.NewConsole(cmd.OutOrStdout())
	arts := benchmark.NewArtifacts(cfg.Output.Dir)
	if !benchmark.Exists(cfg.Output.Dir) {
		return fmt.Errorf("output directory %s does not exist", cfg.Output.Dir)
	}

	run, err := benchmark.LoadRun(arts, cfg.Target.URL)
	if err != nil {
		return err
	}
	if len(run.Loads) == 0 {
		out.Warn("No load test results in %s", arts.SummaryPath())
	}

	if err := report.WriteFile(arts.ReportPath(), benchmark.ReportData(run, time.Now())); err != nil {
		return err
	}
	out.Pass("Report written to %s", arts.ReportPath())
	return nil
}
