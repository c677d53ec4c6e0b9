package main

import (
	"fmt"
	"slices"

	"lineaops/internal/benchmark"
	"lineaops/internal/history"
	"lineaops/internal/ui"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded benchmark runs",
	Long: `Lists the runs saved in the history file (--history or history.path), newest first.
With --compare, shows the per-level change between the two most recent runs and fails
when any level regressed by more than --threshold percent.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 10, "Number of runs to list (0 lists all)")
	historyCmd.Flags().Bool("compare", false, "Compare the two most recent runs")
	historyCmd.Flags().Float64("threshold", 10, "Regression threshold in percent for --compare")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.History.Path == "" {
		return fmt.Errorf("no history configured: set --history or history.path")
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	compare, _ := cmd.Flags().GetBool("compare")
	threshold, _ := cmd.Flags().GetFloat64("threshold")
	out := ui.NewConsole(cmd.OutOrStdout())

	if compare {
		runs, err := store.Latest(2)
		if err != nil {
			return err
		}
		if len(runs) < 2 {
			return fmt.Errorf("need two recorded runs to compare, found %d", len(runs))
		}
		curr, prev := runs[0], runs[1]
		out.Section(fmt.Sprintf("%s vs %s", curr.ID, prev.ID))
		comps := benchmark.Compare(prev, curr)
		if len(comps) == 0 {
			out.Warn("The runs share no concurrency level")
			return nil
		}
		printComparisons(cmd.OutOrStdout(), comps, threshold)

		regressed := 0
		for _, c := range comps {
			if c.Regressed(threshold) {
				out.Fail("Regression at %s", c)
				regressed++
			}
		}
		if regressed > 0 {
			return fmt.Errorf("%d of %d levels regressed by more than %.0f%%", regressed, len(comps), threshold)
		}
		out.Pass("No level regressed by more than %.0f%%", threshold)
		return nil
	}

	var runs []benchmark.Run
	if limit > 0 {
		runs, err = store.Latest(limit)
	} else {
		runs, err = store.All()
		slices.Reverse(runs)
	}
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		out.Info("No runs recorded in %s", cfg.History.Path)
		return nil
	}
	printRuns(cmd.OutOrStdout(), runs)
	return nil
}
