package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the per-run benchmark series on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	LoadRequestsPerSecond *prometheus.GaugeVec
	LoadAvgResponseTime   *prometheus.GaugeVec
	LoadFailedRequests    *prometheus.GaugeVec
	LoadSuccessRate       *prometheus.GaugeVec

	SustainedRequests prometheus.Counter
	SustainedErrors   prometheus.Counter
	SustainedLatency  prometheus.Histogram

	CacheAvgResponseTime prometheus.Gauge
	CacheRequestsPerSec  prometheus.Gauge

	StageDuration *prometheus.GaugeVec
}

// NewMetrics creates and registers every benchmark series.
func NewMetrics() *Metrics {
	m := &Metrics{Registry: prometheus.NewRegistry()}

	m.LoadRequestsPerSecond = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lineaops_load_requests_per_second",
			Help: "Throughput reported by the load generator per concurrency level",
		},
		[]string{"concurrency"},
	)
	m.LoadAvgResponseTime = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lineaops_load_avg_response_time_ms",
			Help: "Mean time per request in milliseconds per concurrency level",
		},
		[]string{"concurrency"},
	)
	m.LoadFailedRequests = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lineaops_load_failed_requests",
			Help: "Failed requests per concurrency level",
		},
		[]string{"concurrency"},
	)
	m.LoadSuccessRate = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lineaops_load_success_rate_percent",
			Help: "Success rate per concurrency level",
		},
		[]string{"concurrency"},
	)

	m.SustainedRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lineaops_sustained_requests_total",
		Help: "Successful requests during the sustained test",
	})
	m.SustainedErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lineaops_sustained_errors_total",
		Help: "Failed requests during the sustained test",
	})
	m.SustainedLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "lineaops_sustained_request_duration_seconds",
		Help:    "Latency of sustained test requests",
		Buckets: prometheus.DefBuckets,
	})

	m.CacheAvgResponseTime = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "lineaops_cache_avg_response_time_ms",
		Help: "Average time per repeated request in the cache probe",
	})
	m.CacheRequestsPerSec = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "lineaops_cache_requests_per_second",
		Help: "Throughput of the cache probe",
	})

	m.StageDuration = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lineaops_stage_duration_seconds",
			Help: "Wall clock duration of each pipeline stage",
		},
		[]string{"stage"},
	)

	m.Registry.MustRegister(
		m.LoadRequestsPerSecond,
		m.LoadAvgResponseTime,
		m.LoadFailedRequests,
		m.LoadSuccessRate,
		m.SustainedRequests,
		m.SustainedErrors,
		m.SustainedLatency,
		m.CacheAvgResponseTime,
		m.CacheRequestsPerSec,
		m.StageDuration,
	)
	return m
}

func (m *Metrics) ObserveLoad(concurrency int, rps, avgMs float64, failed int, successRate float64) {
	label := strconv.Itoa(concurrency)
	m.LoadRequestsPerSecond.WithLabelValues(label).Set(rps)
	m.LoadAvgResponseTime.WithLabelValues(label).Set(avgMs)
	m.LoadFailedRequests.WithLabelValues(label).Set(float64(failed))
	m.LoadSuccessRate.WithLabelValues(label).Set(successRate)
}

func (m *Metrics) ObserveSustainedRequest(ok bool, latency time.Duration) {
	if ok {
		m.SustainedRequests.Inc()
	} else {
		m.SustainedErrors.Inc()
	}
	m.SustainedLatency.Observe(latency.Seconds())
}

func (m *Metrics) ObserveCache(avgMs, rps float64) {
	m.CacheAvgResponseTime.Set(avgMs)
	m.CacheRequestsPerSec.Set(rps)
}

func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.StageDuration.WithLabelValues(stage).Set(d.Seconds())
}

// WriteTextfile writes the registry in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
