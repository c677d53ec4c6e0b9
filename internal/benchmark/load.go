package benchmark

import (
	"context"
	"fmt"
	"time"

	"lineaops/internal/loadgen"
	"lineaops/internal/rpc"
	"lineaops/internal/telemetry"
	"lineaops/internal/ui"
)

// LoadDriver sweeps the configured concurrency levels in order, one burst per level.
type LoadDriver struct {
	Generator         loadgen.Generator
	URL               string
	Levels            []int
	RequestsPerClient int
	Cooldown          time.Duration
	Timeout           time.Duration
	Artifacts         *Artifacts
	Metrics           Recorder
	Out               ui.Printer
	Now               func() time.Time
	Sleep             SleepFunc
}

// Run bursts c*RequestsPerClient requests at every level c. Each level appends one CSV row
// and one detail file before the next starts. The first generator error aborts the sweep.
func (d *LoadDriver) Run(ctx context.Context, run *Run) error {
	d.defaults()

	for i, c := range d.Levels {
		if i > 0 && d.Cooldown > 0 {
			d.Out.Info("Cooling down for %s", d.Cooldown)
			if err := d.Sleep(ctx, d.Cooldown); err != nil {
				return err
			}
		}

		requests := c * d.RequestsPerClient
		d.Out.Info("Testing %d concurrent clients (%d requests)", c, requests)

		sum, raw, err := d.Generator.Generate(ctx, loadgen.Burst{
			URL:         d.URL,
			Concurrency: c,
			Requests:    requests,
			Payload:     rpc.BlockNumberPayload(),
			ContentType: "application/json",
			Timeout:     d.Timeout,
		})
		if err != nil {
			d.Out.Fail("Load test with %d clients failed: %v", c, err)
			telemetry.LogDebug("load generator output", "concurrency", c, "output", string(raw))
			return fmt.Errorf("load test at %d clients: %w", c, err)
		}

		res := LoadResult{
			Timestamp:         d.Now(),
			Concurrency:       c,
			RequestsPerSecond: sum.RequestsPerSecond,
			AvgResponseMs:     sum.MeanLatencyMs,
			Failed:            sum.Failed,
			Total:             sum.Complete,
			SuccessRate:       SuccessRate(sum.Complete, sum.Failed),
		}
		if err := d.Artifacts.AppendSummaryRow(res); err != nil {
			return err
		}
		if err := d.Artifacts.WriteLoadDetail(c, raw); err != nil {
			return fmt.Errorf("failed to write load detail: %w", err)
		}
		run.Loads = append(run.Loads, res)
		d.Metrics.ObserveLoad(c, res.RequestsPerSecond, res.AvgResponseMs, res.Failed, res.SuccessRate)

		d.Out.Info("%d clients: %.2f req/s, %.2f ms avg, %d failed, %s success",
			c, res.RequestsPerSecond, res.AvgResponseMs, res.Failed,
			ui.Severity(severityOf(res.SuccessRate), fmt.Sprintf("%.2f%%", res.SuccessRate)))
		telemetry.LogInfo("load level complete",
			"concurrency", c,
			"requests_per_second", res.RequestsPerSecond,
			"avg_response_ms", res.AvgResponseMs,
			"failed", res.Failed,
			"success_rate", res.SuccessRate)
	}
	return nil
}

func (d *LoadDriver) defaults() {
	if d.Metrics == nil {
		d.Metrics = nopRecorder{}
	}
	if d.Out == nil {
		d.Out = ui.Discard
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Sleep == nil {
		d.Sleep = SleepContext
	}
}
