package benchmark

import (
	"context"
	"time"

	"lineaops/internal/probe"
)

// Sender issues one JSON-RPC request and reports the HTTP status.
type Sender interface {
	Send(ctx context.Context) (int, error)
}

// Prober is the connectivity check run before any load.
type Prober interface {
	Check(ctx context.Context) (probe.Result, error)
}

// Recorder receives the measurements as they are taken.
type Recorder interface {
	ObserveLoad(concurrency int, rps, avgMs float64, failed int, successRate float64)
	ObserveSustainedRequest(ok bool, latency time.Duration)
	ObserveCache(avgMs, rps float64)
	ObserveStage(stage string, d time.Duration)
}

// TextfileWriter is implemented by recorders that can dump themselves in the
// Prometheus text format.
type TextfileWriter interface {
	WriteTextfile(path string) error
}

// HistoryStore persists completed runs.
type HistoryStore interface {
	Save(run Run) error
}

// Notifier announces a completed run.
type Notifier interface {
	NotifyRun(ctx context.Context, run Run) error
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// SleepContext is the default SleepFunc.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type nopRecorder struct{}

func (nopRecorder) ObserveLoad(int, float64, float64, int, float64) {}
func (nopRecorder) ObserveSustainedRequest(bool, time.Duration)     {}
func (nopRecorder) ObserveCache(float64, float64)                   {}
func (nopRecorder) ObserveStage(string, time.Duration)              {}
