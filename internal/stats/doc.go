// Package stats aggregates latency samples.
//
// Log is the ordered, append-only sample store a probe records into.
// Summarize reduces a list of latencies to count, min, max, mean, median
// and 95th percentile.
package stats
