package benchmark

import (
	"fmt"
	"time"

	"lineaops/internal/report"
)

func severityOf(rate float64) string { return report.Severity(rate) }

// ReportData converts a run into what the HTML page shows.
func ReportData(run Run, now time.Time) report.Data {
	d := report.Data{
		GeneratedAt: now,
		Target:      run.Target,
	}
	for _, l := range run.Loads {
		d.Rows = append(d.Rows, report.Row{
			Timestamp:         l.Timestamp,
			Concurrency:       l.Concurrency,
			RequestsPerSecond: l.RequestsPerSecond,
			AvgResponseMs:     l.AvgResponseMs,
			Errors:            l.Failed,
			SuccessRate:       l.SuccessRate,
		})
	}
	if s := run.Sustained; s != nil {
		rate, ok := s.ErrorRate()
		d.Sustained = &report.Sustained{
			DurationSeconds:   s.ElapsedSeconds(),
			Requests:          s.Requests,
			Errors:            s.Errors,
			RequestsPerSecond: s.RequestsPerSecond(),
			ErrorRate:         rate,
			ErrorRateDefined:  ok,
		}
	}
	if c := run.Cache; c != nil {
		d.Cache = &report.Cache{
			Requests:          c.Requests,
			Total:             c.Elapsed,
			AvgMs:             c.AvgMs(),
			RequestsPerSecond: c.RequestsPerSecond(),
		}
	}
	return d
}

// LoadRun rebuilds a run from the artifacts already in the output directory.
func LoadRun(a *Artifacts, target string) (Run, error) {
	run := Run{Target: target}
	var err error
	if run.Loads, err = a.ReadSummary(); err != nil {
		return run, err
	}
	if run.Sustained, err = a.ReadSustained(); err != nil {
		return run, fmt.Errorf("failed to read %s: %w", report.SustainedFile, err)
	}
	if run.Cache, err = a.ReadCache(); err != nil {
		return run, fmt.Errorf("failed to read %s: %w", report.CacheFile, err)
	}
	return run, nil
}
