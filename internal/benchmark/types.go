package benchmark

import (
	"math"
	"time"
)

// LoadResult is one concurrency level of the sweep.
type LoadResult struct {
	Timestamp         time.Time `json:"timestamp"`
	Concurrency       int       `json:"concurrency"`
	RequestsPerSecond float64   `json:"requests_per_second"`
	AvgResponseMs     float64   `json:"avg_response_ms"`
	Failed            int       `json:"failed"`
	Total             int       `json:"total"`
	SuccessRate       float64   `json:"success_rate"`
}

// SustainedResult is the outcome of the serial availability loop.
// Requests counts responses with status 200, Errors everything else.
type SustainedResult struct {
	Target   time.Duration `json:"target"`
	Elapsed  time.Duration `json:"elapsed"`
	Requests int           `json:"requests"`
	Errors   int           `json:"errors"`
}

// ElapsedSeconds is the elapsed wall clock rounded to whole seconds.
func (s SustainedResult) ElapsedSeconds() int {
	return int(math.Round(s.Elapsed.Seconds()))
}

// RequestsPerSecond is Requests over the actual elapsed time.
func (s SustainedResult) RequestsPerSecond() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Requests) / s.Elapsed.Seconds()
}

// ErrorRate returns the error percentage over Requests+Errors.
// ok is false when nothing was sent and the rate is undefined.
func (s SustainedResult) ErrorRate() (rate float64, ok bool) {
	total := s.Requests + s.Errors
	if total == 0 {
		return 0, false
	}
	return float64(s.Errors) / float64(total) * 100, true
}

// CacheResult is the black-box timing of repeated identical requests.
type CacheResult struct {
	Requests int           `json:"requests"`
	Elapsed  time.Duration `json:"elapsed"`
	Errors   int           `json:"errors"`
}

func (c CacheResult) AvgMs() float64 {
	if c.Requests == 0 {
		return 0
	}
	return float64(c.Elapsed) / float64(time.Millisecond) / float64(c.Requests)
}

func (c CacheResult) RequestsPerSecond() float64 {
	if c.Elapsed <= 0 {
		return 0
	}
	return float64(c.Requests) / c.Elapsed.Seconds()
}

// Run is one invocation of the pipeline. Stages fill it in order and it is not
// modified after CompletedAt is set.
type Run struct {
	ID          string           `json:"id"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt time.Time        `json:"completed_at,omitempty"`
	Target      string           `json:"target"`
	Tool        string           `json:"tool,omitempty"`
	Block       string           `json:"block,omitempty"`
	Loads       []LoadResult     `json:"loads"`
	Sustained   *SustainedResult `json:"sustained,omitempty"`
	Cache       *CacheResult     `json:"cache,omitempty"`
}

// NewRun starts a run identified by its start timestamp.
func NewRun(target string, startedAt time.Time) *Run {
	return &Run{
		ID:        startedAt.UTC().Format("20060102T150405.000Z"),
		StartedAt: startedAt,
		Target:    target,
	}
}

// WorstSuccessRate returns the lowest success rate across the sweep, or 0 with ok false
// when no level completed.
func (r Run) WorstSuccessRate() (rate float64, ok bool) {
	for i, l := range r.Loads {
		if i == 0 || l.SuccessRate < rate {
			rate = l.SuccessRate
		}
	}
	return rate, len(r.Loads) > 0
}

// SuccessRate is (total-failed)/total*100, and 0 when total is 0.
func SuccessRate(total, failed int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(total-failed) / float64(total) * 100
}
