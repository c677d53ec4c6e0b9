package loadgen

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"
)

// Native generates bursts in-process, one goroutine per virtual client.
// Like ab, Failed counts only transport failures; non-2xx answers are counted in Non2xx.
type Native struct {
	// newClient builds the HTTP client for a burst; swapped in tests.
	newClient func(b Burst) *http.Client
}

func NewNative() *Native {
	return &Native{newClient: defaultClient}
}

func defaultClient(b Burst) *http.Client {
	return &http.Client{
		Timeout: b.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        b.Concurrency,
			MaxIdleConnsPerHost: b.Concurrency,
			IdleConnTimeout:     30 * time.Second,
		},
	}
}

func (n *Native) Name() string { return "native" }

// EnsureAvailable always succeeds; nothing has to be installed.
func (n *Native) EnsureAvailable(ctx context.Context) error { return nil }

// Generate sends b.Requests requests with b.Concurrency workers pulling from a shared counter.
// A transport error or a non-2xx status counts as a failed request.
func (n *Native) Generate(ctx context.Context, b Burst) (Summary, []byte, error) {
	if b.Concurrency <= 0 || b.Requests <= 0 {
		return Summary{}, nil, fmt.Errorf("%w: concurrency and requests must be positive", ErrToolFailed)
	}
	client := n.newClient(b)
	contentType := b.ContentType
	if contentType == "" {
		contentType = "application/json"
	}

	var (
		next     atomic.Int64
		complete atomic.Int64
		failed   atomic.Int64
		non2xx   atomic.Int64
		wg       sync.WaitGroup
	)

	start := time.Now()
	for i := 0; i < b.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for next.Add(1) <= int64(b.Requests) {
				if ctx.Err() != nil {
					return
				}
				status, err := send(ctx, client, b.URL, contentType, b.Payload)
				complete.Add(1)
				switch {
				case err != nil:
					failed.Add(1)
				case status < 200 || status > 299:
					non2xx.Add(1)
				}
			}
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	if err := ctx.Err(); err != nil {
		return Summary{}, nil, err
	}

	sum := Summary{
		Complete: int(complete.Load()),
		Failed:   int(failed.Load()),
		Non2xx:   int(non2xx.Load()),
		Elapsed:  elapsed,
	}
	if secs := elapsed.Seconds(); secs > 0 {
		sum.RequestsPerSecond = float64(sum.Complete) / secs
	}
	if sum.Complete > 0 {
		sum.MeanLatencyMs = float64(b.Concurrency) * elapsed.Seconds() * 1000 / float64(sum.Complete)
	}
	return sum, transcript(b, sum), nil
}

func send(ctx context.Context, client *http.Client, target, contentType string, payload []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) // Read body to ensure reuse
	return resp.StatusCode, nil
}

// transcript renders the summary in ab's report layout so both generators leave the same
// kind of detail artifact and ParseApacheBench reads either.
func transcript(b Burst, s Summary) []byte {
	var buf bytes.Buffer
	host, path := b.URL, "/"
	if u, err := url.Parse(b.URL); err == nil {
		host = u.Host
		if u.Path != "" {
			path = u.Path
		}
	}
	acrossAll := 0.0
	if s.Complete > 0 {
		acrossAll = s.Elapsed.Seconds() * 1000 / float64(s.Complete)
	}

	fmt.Fprintf(&buf, "lineaops native load generator\n\n")
	fmt.Fprintf(&buf, "Server Hostname:        %s\n", host)
	fmt.Fprintf(&buf, "Document Path:          %s\n\n", path)
	fmt.Fprintf(&buf, "Concurrency Level:      %d\n", b.Concurrency)
	fmt.Fprintf(&buf, "Time taken for tests:   %.3f seconds\n", s.Elapsed.Seconds())
	fmt.Fprintf(&buf, "Complete requests:      %d\n", s.Complete)
	fmt.Fprintf(&buf, "Failed requests:        %d\n", s.Failed)
	if s.Non2xx > 0 {
		fmt.Fprintf(&buf, "Non-2xx responses:      %d\n", s.Non2xx)
	}
	fmt.Fprintf(&buf, "Total body sent:        %d\n", len(b.Payload)*s.Complete)
	fmt.Fprintf(&buf, "Requests per second:    %.2f [#/sec] (mean)\n", s.RequestsPerSecond)
	fmt.Fprintf(&buf, "Time per request:       %.3f [ms] (mean)\n", s.MeanLatencyMs)
	fmt.Fprintf(&buf, "Time per request:       %.3f [ms] (mean, across all concurrent requests)\n", acrossAll)
	return buf.Bytes()
}
