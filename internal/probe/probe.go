// Package probe implements the startup connectivity check against the target endpoint.
package probe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lineaops/internal/rpc"
	"lineaops/internal/telemetry"
	"lineaops/internal/ui"
)

// ErrRPCCheckFailed is returned when the JSON-RPC check does not yield a block number.
// It is the only fatal probe outcome.
var ErrRPCCheckFailed = errors.New("rpc check failed")

// ExpectedHealthBody is the literal body a healthy load balancer returns.
const ExpectedHealthBody = "healthy"

// Target is the subset of rpc.Client the prober needs.
type Target interface {
	HealthURL() string
	Health(ctx context.Context) (string, error)
	BlockNumber(ctx context.Context) (string, error)
}

// Result reports what each check observed.
type Result struct {
	HealthOK  bool
	Health    string
	Block     string
	WSChecked bool
	WSOK      bool
	WSBlock   string
}

// Prober runs the health, RPC and optional WebSocket checks.
type Prober struct {
	Target  Target
	WSURL   string
	Timeout time.Duration
	Out     ui.Printer

	// wsBlockNumber is swapped in tests.
	wsBlockNumber func(ctx context.Context, url string, timeout time.Duration) (string, error)
}

func New(target Target, wsURL string, timeout time.Duration, out ui.Printer) *Prober {
	if out == nil {
		out = ui.Discard
	}
	return &Prober{
		Target:        target,
		WSURL:         wsURL,
		Timeout:       timeout,
		Out:           out,
		wsBlockNumber: rpc.WSBlockNumber,
	}
}

// Check runs the probes in order. Health and WebSocket failures are warnings;
// an RPC failure returns an error wrapping ErrRPCCheckFailed.
func (p *Prober) Check(ctx context.Context) (Result, error) {
	var res Result

	p.Out.Info("Checking health endpoint %s", p.Target.HealthURL())
	body, err := p.Target.Health(ctx)
	res.Health = body
	switch {
	case err != nil:
		p.Out.Warn("Health check FAILED: %v", err)
		telemetry.LogWarn("health check failed", "url", p.Target.HealthURL(), "error", err)
	case body != ExpectedHealthBody:
		p.Out.Warn("Health check FAILED: unexpected body %q", body)
		telemetry.LogWarn("health check returned unexpected body", "body", body)
	default:
		res.HealthOK = true
		p.Out.Pass("Health check PASSED")
	}

	block, err := p.Target.BlockNumber(ctx)
	if err != nil {
		p.Out.Fail("RPC check FAILED: %v", err)
		telemetry.LogError("rpc check failed", err)
		return res, fmt.Errorf("%w: %w", ErrRPCCheckFailed, err)
	}
	res.Block = block
	p.Out.Pass("RPC check PASSED (block %s)", block)
	telemetry.LogInfo("rpc check passed", "block", block)

	if p.WSURL != "" {
		res.WSChecked = true
		wsBlock, err := p.wsBlockNumber(ctx, p.WSURL, p.Timeout)
		if err != nil {
			p.Out.Warn("WebSocket check FAILED: %v", err)
			telemetry.LogWarn("websocket check failed", "url", p.WSURL, "error", err)
		} else {
			res.WSOK = true
			res.WSBlock = wsBlock
			p.Out.Pass("WebSocket check PASSED (block %s)", wsBlock)
		}
	}

	return res, nil
}
