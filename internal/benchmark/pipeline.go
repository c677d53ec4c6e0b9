package benchmark

import (
	"context"
	"fmt"
	"time"

	"lineaops/internal/report"
	"lineaops/internal/telemetry"
	"lineaops/internal/ui"
)

// Pipeline runs the stages strictly in order: connectivity, load sweep, sustained load,
// cache probe, report. Bookkeeping after the report (metrics file, history, notification)
// only warns on failure.
type Pipeline struct {
	Target    string
	Artifacts *Artifacts
	Prober    Prober
	Load      *LoadDriver
	Sustained *SustainedDriver
	Cache     *CacheProbe
	Metrics   Recorder
	History   HistoryStore
	Notifier  Notifier
	Out       ui.Printer
	Now       func() time.Time
}

// Execute returns the completed run, or the partial run and the first fatal error.
func (p *Pipeline) Execute(ctx context.Context) (*Run, error) {
	if p.Metrics == nil {
		p.Metrics = nopRecorder{}
	}
	if p.Out == nil {
		p.Out = ui.Discard
	}
	if p.Now == nil {
		p.Now = time.Now
	}

	run := NewRun(p.Target, p.Now())
	if p.Load != nil && p.Load.Generator != nil {
		run.Tool = p.Load.Generator.Name()
	}
	telemetry.LogInfo("benchmark run started", "id", run.ID, "target", run.Target)

	if err := p.Artifacts.Reset(); err != nil {
		return run, err
	}

	err := p.stage(ctx, "connectivity", "Connectivity check", func(ctx context.Context) error {
		res, err := p.Prober.Check(ctx)
		run.Block = res.Block
		return err
	})
	if err != nil {
		return run, err
	}

	err = p.stage(ctx, "load", "Load tests", func(ctx context.Context) error {
		if err := p.Load.Generator.EnsureAvailable(ctx); err != nil {
			p.Out.Error("%v", err)
			return err
		}
		return p.Load.Run(ctx, run)
	})
	if err != nil {
		return run, err
	}

	if err := p.stage(ctx, "sustained", "Sustained load", func(ctx context.Context) error {
		return p.Sustained.Run(ctx, run)
	}); err != nil {
		return run, err
	}

	if err := p.stage(ctx, "cache", "Cache probe", func(ctx context.Context) error {
		return p.Cache.Run(ctx, run)
	}); err != nil {
		return run, err
	}

	if err := p.stage(ctx, "report", "Report", func(ctx context.Context) error {
		if err := report.WriteFile(p.Artifacts.ReportPath(), ReportData(*run, p.Now())); err != nil {
			return err
		}
		p.Out.Pass("Report written to %s", p.Artifacts.ReportPath())
		return nil
	}); err != nil {
		return run, err
	}
	run.CompletedAt = p.Now()

	p.finish(ctx, *run)
	telemetry.LogInfo("benchmark run complete", "id", run.ID, "levels", len(run.Loads))
	return run, nil
}

func (p *Pipeline) stage(ctx context.Context, name, title string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run cancelled before %s: %w", name, err)
	}
	p.Out.Section(title)
	start := time.Now()
	err := fn(ctx)
	p.Metrics.ObserveStage(name, time.Since(start))
	if err != nil {
		telemetry.LogError("stage failed", err, "stage", name)
	}
	return err
}

func (p *Pipeline) finish(ctx context.Context, run Run) {
	if w, ok := p.Metrics.(TextfileWriter); ok {
		if err := w.WriteTextfile(p.Artifacts.MetricsPath()); err != nil {
			p.Out.Warn("Failed to write metrics: %v", err)
		}
	}
	if p.History != nil {
		if err := p.History.Save(run); err != nil {
			p.Out.Warn("Failed to save run history: %v", err)
		} else {
			telemetry.LogDebug("run saved to history", "id", run.ID)
		}
	}
	if p.Notifier != nil {
		if err := p.Notifier.NotifyRun(ctx, run); err != nil {
			p.Out.Warn("Failed to send notification: %v", err)
		}
	}
}
