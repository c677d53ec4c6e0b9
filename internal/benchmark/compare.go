package benchmark

import "fmt"

// Comparison is the change of one concurrency level between two runs.
type Comparison struct {
	Concurrency    int
	RPSDiff        float64 // Percentage change
	AvgLatencyDiff float64 // Percentage change
	SuccessDelta   float64 // Percentage points
	Prev           LoadResult
	Curr           LoadResult
}

// Compare matches the levels present in both runs, in the order of curr.
func Compare(prev, curr Run) []Comparison {
	prevMap := make(map[int]LoadResult)
	for _, r := range prev.Loads {
		prevMap[r.Concurrency] = r
	}

	var comparisons []Comparison
	for _, c := range curr.Loads {
		p, ok := prevMap[c.Concurrency]
		if !ok {
			continue
		}
		comp := Comparison{
			Concurrency:  c.Concurrency,
			SuccessDelta: c.SuccessRate - p.SuccessRate,
			Prev:         p,
			Curr:         c,
		}
		if p.RequestsPerSecond > 0 {
			comp.RPSDiff = (c.RequestsPerSecond - p.RequestsPerSecond) / p.RequestsPerSecond * 100
		}
		if p.AvgResponseMs > 0 {
			comp.AvgLatencyDiff = (c.AvgResponseMs - p.AvgResponseMs) / p.AvgResponseMs * 100
		}
		comparisons = append(comparisons, comp)
	}
	return comparisons
}

// Regressed reports whether throughput dropped or latency grew by more than threshold percent.
func (c Comparison) Regressed(threshold float64) bool {
	return c.RPSDiff < -threshold || c.AvgLatencyDiff > threshold
}

func (c Comparison) String() string {
	return fmt.Sprintf("%d clients: %+.2f%% rps, %+.2f%% latency", c.Concurrency, c.RPSDiff, c.AvgLatencyDiff)
}
