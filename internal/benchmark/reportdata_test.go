package benchmark

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportData(t *testing.T) {
	now := time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)
	run := Run{
		Target: "http://localhost",
		Loads: []LoadResult{
			{Concurrency: 100, RequestsPerSecond: 1953.12, AvgResponseMs: 51.2, Failed: 50, Total: 1000, SuccessRate: 95},
		},
		Sustained: &SustainedResult{Elapsed: 61 * time.Second},
		Cache:     &CacheResult{Requests: 100, Elapsed: time.Second},
	}

	d := ReportData(run, now)
	assert.Equal(t, now, d.GeneratedAt)
	assert.Equal(t, "http://localhost", d.Target)
	require.Len(t, d.Rows, 1)
	assert.Equal(t, 50, d.Rows[0].Errors)
	assert.Equal(t, "good", d.Rows[0].Severity())
	assert.Equal(t, 61, d.Sustained.DurationSeconds)
	assert.False(t, d.Sustained.ErrorRateDefined)
	assert.Equal(t, 10.0, d.Cache.AvgMs)
}

func TestReportData_Empty(t *testing.T) {
	d := ReportData(Run{Target: "http://localhost"}, time.Now())
	assert.Empty(t, d.Rows)
	assert.Nil(t, d.Sustained)
	assert.Nil(t, d.Cache)
}

func TestLoadRun(t *testing.T) {
	a := NewArtifacts(t.TempDir())
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local)
	require.NoError(t, a.AppendSummaryRow(LoadResult{Timestamp: ts, Concurrency: 10, SuccessRate: 100}))
	require.NoError(t, a.WriteSustained(SustainedResult{Elapsed: 61 * time.Second, Requests: 10, Errors: 1}))

	run, err := LoadRun(a, "http://node")
	require.NoError(t, err)
	assert.Equal(t, "http://node", run.Target)
	assert.Len(t, run.Loads, 1)
	require.NotNil(t, run.Sustained)
	assert.Equal(t, 10, run.Sustained.Requests)
	assert.Nil(t, run.Cache)
}
