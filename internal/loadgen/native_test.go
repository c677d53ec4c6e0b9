package loadgen

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNative_Generate(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		body, _ := io.ReadAll(r.Body)
		if r.Header.Get("Content-Type") != "application/json" || string(body) != `{"id":1}` {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		io.WriteString(w, `{"jsonrpc":"2.0","id":1,"result":"0x1"}`)
	}))
	defer srv.Close()

	n := NewNative()
	sum, raw, err := n.Generate(context.Background(), Burst{
		URL:         srv.URL,
		Concurrency: 5,
		Requests:    50,
		Payload:     []byte(`{"id":1}`),
		Timeout:     time.Second,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(50), hits.Load())
	assert.Equal(t, 50, sum.Complete)
	assert.Equal(t, 0, sum.Failed)
	assert.Greater(t, sum.RequestsPerSecond, 0.0)
	assert.Greater(t, sum.MeanLatencyMs, 0.0)

	parsed, err := ParseApacheBench(string(raw))
	require.NoError(t, err)
	assert.Equal(t, sum.Complete, parsed.Complete)
	assert.Equal(t, sum.Failed, parsed.Failed)
	assert.Contains(t, string(raw), "Concurrency Level:      5")
}

func TestNative_CountsNon2xxSeparately(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	sum, _, err := NewNative().Generate(context.Background(), Burst{URL: srv.URL, Concurrency: 2, Requests: 10, Timeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, 10, sum.Complete)
	assert.Equal(t, 0, sum.Failed)
	assert.Equal(t, 10, sum.Non2xx)
}

func TestNative_MatchesApacheBenchCounting(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	sum, raw, err := NewNative().Generate(context.Background(), Burst{URL: srv.URL, Concurrency: 1, Requests: 4, Timeout: time.Second})
	require.NoError(t, err)

	parsed, err := ParseApacheBench(string(raw))
	require.NoError(t, err)
	assert.Equal(t, sum.Failed, parsed.Failed)
	assert.Equal(t, sum.Non2xx, parsed.Non2xx)
	assert.Equal(t, 4, parsed.Non2xx)
	assert.Equal(t, 0, parsed.Failed)
}

func TestNative_TransportErrorsAreFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	sum, _, err := NewNative().Generate(context.Background(), Burst{URL: url, Concurrency: 3, Requests: 6, Timeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, 6, sum.Complete)
	assert.Equal(t, 6, sum.Failed)
	assert.Equal(t, 0, sum.Non2xx)
}

func TestNative_RejectsEmptyBurst(t *testing.T) {
	_, _, err := NewNative().Generate(context.Background(), Burst{URL: "http://localhost"})
	assert.ErrorIs(t, err, ErrToolFailed)
}

func TestNew(t *testing.T) {
	g, err := New("ab", Options{InstallMissing: true, InstallCommand: "x"})
	require.NoError(t, err)
	assert.Equal(t, "ab", g.Name())
	assert.True(t, g.(*ApacheBench).InstallMissing)

	g, err = New("native", Options{})
	require.NoError(t, err)
	assert.Equal(t, "native", g.Name())
	assert.NoError(t, g.EnsureAvailable(context.Background()))

	_, err = New("wrk", Options{})
	assert.Error(t, err)
}
