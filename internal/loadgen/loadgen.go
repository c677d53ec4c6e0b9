// Package loadgen drives concurrent request bursts against the target and reports
// structured throughput and latency figures.
package loadgen

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrToolMissing means the external load generator is not installed and could not be installed.
	ErrToolMissing = errors.New("load generation tool not available")
	// ErrToolFailed means a burst exited non-zero or produced no usable summary.
	ErrToolFailed = errors.New("load generation failed")
)

// Burst is one fixed-count run at a given concurrency.
type Burst struct {
	URL         string
	Concurrency int
	Requests    int
	Payload     []byte
	ContentType string
	Timeout     time.Duration
}

// Summary holds the figures extracted from a burst.
type Summary struct {
	Complete          int
	Failed            int
	Non2xx            int
	Elapsed           time.Duration
	RequestsPerSecond float64
	MeanLatencyMs     float64
}

// Generator runs bursts. Generate returns the structured summary together with the
// raw transcript that is kept as the per-level detail artifact.
type Generator interface {
	Name() string
	EnsureAvailable(ctx context.Context) error
	Generate(ctx context.Context, b Burst) (Summary, []byte, error)
}

// Options configures the generator returned by New.
type Options struct {
	InstallMissing bool
	InstallCommand string
}

// New selects the generator for tool.
func New(tool string, opts Options) (Generator, error) {
	switch tool {
	case "ab", "":
		return &ApacheBench{
			Binary:         "ab",
			InstallMissing: opts.InstallMissing,
			InstallCommand: opts.InstallCommand,
		}, nil
	case "native":
		return NewNative(), nil
	default:
		return nil, fmt.Errorf("unknown load generation tool: %q", tool)
	}
}
