package benchmark

import (
	"context"
	"net/http"
	"time"

	"lineaops/internal/telemetry"
	"lineaops/internal/ui"
)

// CacheProbe times identical requests sent back to back. It only measures from the
// outside and never looks at cache headers.
type CacheProbe struct {
	Sender    Sender
	Requests  int
	Artifacts *Artifacts
	Metrics   Recorder
	Out       ui.Printer
	Now       func() time.Time
}

func (p *CacheProbe) Run(ctx context.Context, run *Run) error {
	if p.Metrics == nil {
		p.Metrics = nopRecorder{}
	}
	if p.Out == nil {
		p.Out = ui.Discard
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	p.Out.Info("Sending %d identical requests", p.Requests)

	res := CacheResult{Requests: p.Requests}
	start := p.Now()
	for i := 0; i < p.Requests; i++ {
		status, err := p.Sender.Send(ctx)
		if err != nil || status != http.StatusOK {
			res.Errors++
		}
	}
	res.Elapsed = p.Now().Sub(start)
	if err := ctx.Err(); err != nil {
		return err
	}

	run.Cache = &res
	if err := p.Artifacts.WriteCache(res); err != nil {
		return err
	}
	p.Metrics.ObserveCache(res.AvgMs(), res.RequestsPerSecond())

	p.Out.Info("Cache probe: %d requests in %s, %.2f ms avg, %.2f req/s",
		res.Requests, res.Elapsed.Round(time.Millisecond), res.AvgMs(), res.RequestsPerSecond())
	if res.Errors > 0 {
		p.Out.Warn("Cache probe: %d of %d requests did not return 200", res.Errors, res.Requests)
	}
	telemetry.LogInfo("cache probe complete", "requests", res.Requests, "elapsed", res.Elapsed, "errors", res.Errors)
	return nil
}
