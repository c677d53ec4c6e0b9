package rpc

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTarget(t *testing.T, result string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/health":
			io.WriteString(w, "healthy\n")
		case r.Method == http.MethodPost && r.URL.Path == "/":
			body, _ := io.ReadAll(r.Body)
			if r.Header.Get("Content-Type") != "application/json" || string(body) != string(BlockNumberPayload()) {
				http.Error(w, "bad request", http.StatusBadRequest)
				return
			}
			io.WriteString(w, `{"jsonrpc":"2.0","id":1,"result":`+result+`}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Health(t *testing.T) {
	srv := newTarget(t, `"0x1a"`)
	c := NewClient(srv.URL+"/", "/health", time.Second)

	assert.Equal(t, srv.URL+"/health", c.HealthURL())
	body, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", body)
}

func TestClient_HealthNotFound(t *testing.T) {
	srv := newTarget(t, `"0x1a"`)
	c := NewClient(srv.URL, "/status", time.Second)

	_, err := c.Health(context.Background())
	assert.ErrorContains(t, err, "404")
}

func TestClient_BlockNumber(t *testing.T) {
	srv := newTarget(t, `"0x1a"`)
	c := NewClient(srv.URL, "", time.Second)

	block, err := c.BlockNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0x1a", block)
}

func TestClient_BlockNumberNull(t *testing.T) {
	srv := newTarget(t, `null`)
	c := NewClient(srv.URL, "", time.Second)

	_, err := c.BlockNumber(context.Background())
	assert.ErrorIs(t, err, ErrNoResult)
}

func TestClient_Send(t *testing.T) {
	srv := newTarget(t, `"0x1"`)
	c := NewClient(srv.URL, "", time.Second)

	status, err := c.Send(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 20*time.Millisecond)
	_, err := c.Send(context.Background())
	assert.Error(t, err)
}
