package telemetry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartMetricsServer(t *testing.T) {
	reg := prometheus.NewRegistry()
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "lineaops_test_gauge", Help: "test"})
	reg.MustRegister(gauge)
	gauge.Set(42)

	srv, err := StartMetricsServer("127.0.0.1:0", reg)
	require.NoError(t, err)
	defer srv.Shutdown(context.Background())

	resp, err := http.Get(fmt.Sprintf("http://%s/metrics", srv.Addr()))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "lineaops_test_gauge 42")
}

func TestStartMetricsServer_BindError(t *testing.T) {
	srv, err := StartMetricsServer("127.0.0.1:0", prometheus.NewRegistry())
	require.NoError(t, err)
	defer srv.Shutdown(context.Background())

	_, err = StartMetricsServer(srv.Addr(), prometheus.NewRegistry())
	assert.Error(t, err)
}
