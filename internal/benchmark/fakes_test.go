package benchmark

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"lineaops/internal/loadgen"
	"lineaops/internal/probe"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.Advance(d)
	return ctx.Err()
}

// fakeSender replays statuses in a loop and advances the clock by step per request.
type fakeSender struct {
	clock    *fakeClock
	step     time.Duration
	statuses []int
	errs     []error
	calls    int
}

func (s *fakeSender) Send(ctx context.Context) (int, error) {
	i := s.calls
	s.calls++
	if s.clock != nil {
		s.clock.Advance(s.step)
	}
	if len(s.errs) > 0 {
		if err := s.errs[i%len(s.errs)]; err != nil {
			return 0, err
		}
	}
	if len(s.statuses) == 0 {
		return 200, nil
	}
	return s.statuses[i%len(s.statuses)], nil
}

// fakeGenerator returns a summary per concurrency level.
type fakeGenerator struct {
	summaries  map[int]loadgen.Summary
	failAt     int
	missing    bool
	bursts     []loadgen.Burst
	ensureCall int
}

func (g *fakeGenerator) Name() string { return "fake" }

func (g *fakeGenerator) EnsureAvailable(ctx context.Context) error {
	g.ensureCall++
	if g.missing {
		return fmt.Errorf("%w: ab not found in PATH", loadgen.ErrToolMissing)
	}
	return nil
}

func (g *fakeGenerator) Generate(ctx context.Context, b loadgen.Burst) (loadgen.Summary, []byte, error) {
	g.bursts = append(g.bursts, b)
	if g.failAt == b.Concurrency {
		return loadgen.Summary{}, []byte("apr_socket_recv: Connection reset by peer (104)"),
			fmt.Errorf("%w: ab exited: exit status 1", loadgen.ErrToolFailed)
	}
	sum, ok := g.summaries[b.Concurrency]
	if !ok {
		sum = loadgen.Summary{Complete: b.Requests, RequestsPerSecond: float64(b.Concurrency) * 10, MeanLatencyMs: 5}
	}
	raw := fmt.Sprintf("Concurrency Level:      %d\nComplete requests:      %d\nFailed requests:        %d\n",
		b.Concurrency, sum.Complete, sum.Failed)
	return sum, []byte(raw), nil
}

type fakeProber struct {
	block string
	err   error
	calls int
}

func (p *fakeProber) Check(ctx context.Context) (probe.Result, error) {
	p.calls++
	if p.err != nil {
		return probe.Result{}, fmt.Errorf("%w: %w", probe.ErrRPCCheckFailed, p.err)
	}
	return probe.Result{HealthOK: true, Block: p.block}, nil
}

type fakeHistory struct {
	runs []Run
	err  error
}

func (h *fakeHistory) Save(run Run) error {
	if h.err != nil {
		return h.err
	}
	h.runs = append(h.runs, run)
	return nil
}

type fakeNotifier struct {
	runs []Run
}

func (n *fakeNotifier) NotifyRun(ctx context.Context, run Run) error {
	n.runs = append(n.runs, run)
	return errors.New("slack unavailable")
}
