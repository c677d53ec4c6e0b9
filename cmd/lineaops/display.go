package main

import (
	"fmt"
	"io"
	"strconv"

	"lineaops/internal/benchmark"
	"lineaops/internal/stack"
	"lineaops/internal/ui"
)

func printRunSummary(w io.Writer, run benchmark.Run) {
	rows := make([][]string, 0, len(run.Loads))
	for _, l := range run.Loads {
		rows = append(rows, []string{
			strconv.Itoa(l.Concurrency),
			fmt.Sprintf("%.2f", l.RequestsPerSecond),
			fmt.Sprintf("%.2f", l.AvgResponseMs),
			strconv.Itoa(l.Failed),
			fmt.Sprintf("%.2f%%", l.SuccessRate),
		})
	}
	_ = ui.Table(w, []string{"clients", "req/s", "avg ms", "errors", "success"}, rows)

	if s := run.Sustained; s != nil {
		rate := "undefined"
		if r, ok := s.ErrorRate(); ok {
			rate = fmt.Sprintf("%.2f%%", r)
		}
		fmt.Fprintf(w, "\nSustained: %d requests, %d errors in %ds (%.2f req/s, error rate %s)\n",
			s.Requests, s.Errors, s.ElapsedSeconds(), s.RequestsPerSecond(), rate)
	}
	if c := run.Cache; c != nil {
		fmt.Fprintf(w, "Cache: %d requests, %.2fms average (%.2f req/s)\n", c.Requests, c.AvgMs(), c.RequestsPerSecond())
	}
}

func printChecks(w io.Writer, checks []stack.Check) {
	rows := make([][]string, 0, len(checks))
	for _, c := range checks {
		state := "OK"
		if !c.OK {
			state = "FAIL"
		}
		rows = append(rows, []string{c.Name, state, c.Detail})
	}
	_ = ui.Table(w, []string{"check", "state", "detail"}, rows)
}

func printRuns(w io.Writer, runs []benchmark.Run) {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		worst := "-"
		if rate, ok := r.WorstSuccessRate(); ok {
			worst = fmt.Sprintf("%.2f%%", rate)
		}
		sustained := "-"
		if r.Sustained != nil {
			if rate, ok := r.Sustained.ErrorRate(); ok {
				sustained = fmt.Sprintf("%.2f%%", rate)
			}
		}
		rows = append(rows, []string{
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Target,
			r.Tool,
			strconv.Itoa(len(r.Loads)),
			worst,
			sustained,
		})
	}
	_ = ui.Table(w, []string{"id", "started", "target", "tool", "levels", "worst success", "sustained errors"}, rows)
}

func printComparisons(w io.Writer, comps []benchmark.Comparison, threshold float64) {
	rows := make([][]string, 0, len(comps))
	for _, c := range comps {
		flag := ""
		if c.Regressed(threshold) {
			flag = "REGRESSION"
		}
		rows = append(rows, []string{
			strconv.Itoa(c.Concurrency),
			fmt.Sprintf("%.2f", c.Prev.RequestsPerSecond),
			fmt.Sprintf("%.2f", c.Curr.RequestsPerSecond),
			fmt.Sprintf("%+.2f%%", c.RPSDiff),
			fmt.Sprintf("%+.2f%%", c.AvgLatencyDiff),
			fmt.Sprintf("%+.2f", c.SuccessDelta),
			flag,
		})
	}
	_ = ui.Table(w, []string{"clients", "prev req/s", "curr req/s", "rps", "latency", "success pts", ""}, rows)
}
