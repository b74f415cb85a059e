package stats

import (
	"fmt"
	"math"
	"slices"
	"time"
)

// Summary describes a set of latencies. The zero Summary describes an
// empty set.
type Summary struct {
	Count  int           `json:"count"`
	Min    time.Duration `json:"min_ns"`
	Max    time.Duration `json:"max_ns"`
	Mean   time.Duration `json:"mean_ns"`
	Median time.Duration `json:"median_ns"`
	P95    time.Duration `json:"p95_ns"`
}

// Summarize computes a Summary. The input is not modified.
//
// The median of an even count is the mean of the two middle values. P95
// uses the nearest-rank method.
func Summarize(latencies []time.Duration) Summary {
	if len(latencies) == 0 {
		return Summary{}
	}

	sorted := slices.Clone(latencies)
	slices.Sort(sorted)
	n := len(sorted)

	var sum time.Duration
	for _, d := range sorted {
		sum += d
	}

	var median time.Duration
	if n%2 == 1 {
		median = sorted[n/2]
	} else {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	return Summary{
		Count:  n,
		Min:    sorted[0],
		Max:    sorted[n-1],
		Mean:   sum / time.Duration(n),
		Median: median,
		P95:    nearestRank(sorted, 95),
	}
}

// nearestRank returns the pth percentile of sorted values.
func nearestRank(sorted []time.Duration, p float64) time.Duration {
	rank := int(math.Ceil(p / 100 * float64(len(sorted))))
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}

// Text renders the summary on one line.
func (s Summary) Text() string {
	if s.Count == 0 {
		return "n=0"
	}
	return fmt.Sprintf("n=%d min=%s max=%s mean=%s median=%s p95=%s",
		s.Count, s.Min, s.Max, s.Mean, s.Median, s.P95)
}
