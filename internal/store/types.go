package store

import (
	"time"

	"github.com/roach88/framewalk/internal/host"
	"github.com/roach88/framewalk/internal/probe"
	"github.com/roach88/framewalk/internal/walk"
)

// Run is one archived probe run.
type Run struct {
	ID string `json:"id"`

	// Scenario is the harness scenario name, empty for real-time runs.
	Scenario string `json:"scenario,omitempty"`

	Walk       walk.Config `json:"walk"`
	Host       host.Config `json:"host"`
	ConfigHash string      `json:"config_hash"`
	StartedAt  time.Time   `json:"started_at"`

	// Unresolved counts measurements still armed when the run ended.
	Unresolved int `json:"unresolved"`
}

// Sample is one archived measurement. Offsets are relative to the run's
// StartedAt.
type Sample struct {
	Seq       int64         `json:"seq"`
	Issued    time.Duration `json:"issued_ns"`
	Presented time.Duration `json:"presented_ns"`
	Latency   time.Duration `json:"latency_ns"`

	// Visible is set when the frame's visibility was observed.
	Visible    time.Duration `json:"visible_ns,omitempty"`
	HasVisible bool          `json:"has_visible"`
}

// FromProbe converts a probe sample to its archived form, relative to start.
func FromProbe(start time.Time, s probe.Sample) Sample {
	return Sample{
		Seq:       s.Seq,
		Issued:    s.IssuedAt.Sub(start),
		Presented: s.PresentedAt.Sub(start),
		Latency:   s.Latency,
	}
}

// WithVisible returns s with the time its frame became visible.
func (s Sample) WithVisible(start, visibleAt time.Time) Sample {
	s.Visible = visibleAt.Sub(start)
	s.HasVisible = true
	return s
}

// Latencies returns each sample's probe latency in order.
func Latencies(samples []Sample) []time.Duration {
	out := make([]time.Duration, len(samples))
	for i, s := range samples {
		out[i] = s.Latency
	}
	return out
}

// EndToEnd returns the update-to-visible time of every sample whose
// visibility was observed, in order.
func EndToEnd(samples []Sample) []time.Duration {
	var out []time.Duration
	for _, s := range samples {
		if s.HasVisible {
			out = append(out, s.Visible-s.Issued)
		}
	}
	return out
}
