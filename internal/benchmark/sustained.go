package benchmark

import (
	"context"
	"net/http"
	"time"

	"lineaops/internal/telemetry"
	"lineaops/internal/ui"
)

// SustainedDriver sends one request at a time for a fixed wall-clock duration.
type SustainedDriver struct {
	Sender    Sender
	Duration  time.Duration
	Delay     time.Duration
	Artifacts *Artifacts
	Metrics   Recorder
	Out       ui.Printer
	Now       func() time.Time
	Sleep     SleepFunc
}

// Run loops until now >= start+Duration. Only status 200 counts as a request; every other
// status and every transport failure counts as an error and the loop carries on.
// The recorded elapsed time includes the last in-flight request and delay.
func (d *SustainedDriver) Run(ctx context.Context, run *Run) error {
	d.defaults()
	d.Out.Info("Running sustained load for %s (%s between requests)", d.Duration, d.Delay)

	res := SustainedResult{Target: d.Duration}
	start := d.Now()
	deadline := start.Add(d.Duration)

	for d.Now().Before(deadline) {
		if ctx.Err() != nil {
			break
		}
		sent := d.Now()
		status, err := d.Sender.Send(ctx)
		ok := err == nil && status == http.StatusOK
		if ok {
			res.Requests++
		} else {
			res.Errors++
			telemetry.LogDebug("sustained request failed", "status", status, "error", err)
		}
		d.Metrics.ObserveSustainedRequest(ok, d.Now().Sub(sent))

		if err := d.Sleep(ctx, d.Delay); err != nil {
			break
		}
	}
	res.Elapsed = d.Now().Sub(start)
	if err := ctx.Err(); err != nil {
		return err
	}

	run.Sustained = &res
	if err := d.Artifacts.WriteSustained(res); err != nil {
		return err
	}

	if rate, ok := res.ErrorRate(); ok {
		d.Out.Info("Sustained: %ds, %d requests, %d errors, %.2f req/s, %.2f%% errors",
			res.ElapsedSeconds(), res.Requests, res.Errors, res.RequestsPerSecond(), rate)
	} else {
		d.Out.Warn("Sustained: %ds, no requests completed, error rate undefined", res.ElapsedSeconds())
	}
	telemetry.LogInfo("sustained load complete",
		"elapsed", res.Elapsed,
		"requests", res.Requests,
		"errors", res.Errors)
	return nil
}

func (d *SustainedDriver) defaults() {
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
