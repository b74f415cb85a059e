package stats

import (
	"sync"
	"time"

	"github.com/roach88/framewalk/internal/probe"
)

// Log is an append-only list of samples in the order they were recorded.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Log struct {
	mu      sync.Mutex
	samples []probe.Sample
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{}
}

// Append adds s to the end of the log.
func (l *Log) Append(s probe.Sample) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.samples = append(l.samples, s)
}

// Record implements probe.Recorder.
func (l *Log) Record(s probe.Sample) {
	l.Append(s)
}

// Len returns the number of samples.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.samples)
}

// Samples returns a copy of the samples in order.
func (l *Log) Samples() []probe.Sample {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]probe.Sample, len(l.samples))
	copy(out, l.samples)
	return out
}

// Latencies returns each sample's latency in order.
func (l *Log) Latencies() []time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]time.Duration, len(l.samples))
	for i, s := range l.samples {
		out[i] = s.Latency
	}
	return out
}

// Summary summarizes the latencies recorded so far.
func (l *Log) Summary() Summary {
	return Summarize(l.Latencies())
}
