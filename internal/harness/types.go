package harness

import (
	"time"

	"github.com/roach88/framewalk/internal/stats"
)

// StepEvent is one position of the walk.
type StepEvent struct {
	Index int `json:"index"`
	Row   int `json:"row"`
	Col   int `json:"col"`
}

// SampleEvent is one probe measurement together with the time the frame
// really became visible. Times are microseconds since the run started.
type SampleEvent struct {
	Seq         int64 `json:"seq"`
	IssuedUs    int64 `json:"issued_us"`
	PresentedUs int64 `json:"presented_us"`
	LatencyUs   int64 `json:"latency_us"`
	VisibleUs   int64 `json:"visible_us"`
}

// EndToEndUs is the time from the update to visibility.
func (e SampleEvent) EndToEndUs() int64 {
	return e.VisibleUs - e.IssuedUs
}

// GapUs is the part of the end-to-end time the probe did not see.
func (e SampleEvent) GapUs() int64 {
	return e.VisibleUs - e.PresentedUs
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every assertion held.
	Pass bool `json:"pass"`

	// ConfigHash is the content address of the walk configuration.
	ConfigHash string `json:"config_hash"`

	Steps   []StepEvent   `json:"steps"`
	Samples []SampleEvent `json:"samples"`

	// Probe summarizes what the probe reported. EndToEnd summarizes the
	// time from each update until its frame was visible.
	Probe    stats.Summary `json:"probe"`
	EndToEnd stats.Summary `json:"end_to_end"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Steps:   []StepEvent{},
		Samples: []SampleEvent{},
		Errors:  []string{},
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// ProbeLatencies returns each sample's probe latency.
func (r *Result) ProbeLatencies() []time.Duration {
	out := make([]time.Duration, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = time.Duration(s.LatencyUs) * time.Microsecond
	}
	return out
}

// EndToEndLatencies returns each sample's time from update to visibility.
func (r *Result) EndToEndLatencies() []time.Duration {
	out := make([]time.Duration, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = time.Duration(s.EndToEndUs()) * time.Microsecond
	}
	return out
}
