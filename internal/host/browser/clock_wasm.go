//go:build js && wasm

package browser

import (
	"syscall/js"
	"time"
)

// PerformanceClock is a probe.Clock reading performance.now, which is
// monotonic and has sub-millisecond resolution.
type PerformanceClock struct {
	performance js.Value
	origin      time.Time
	base        float64
}

// NewPerformanceClock anchors performance.now readings to the current
// wall-clock time.
func NewPerformanceClock() *PerformanceClock {
	perf := js.Global().Get("performance")
	return &PerformanceClock{
		performance: perf,
		origin:      time.Now(),
		base:        perf.Call("now").Float(),
	}
}

// Now returns the current time.
func (c *PerformanceClock) Now() time.Time {
	ms := c.performance.Call("now").Float() - c.base
	return c.origin.Add(time.Duration(ms * float64(time.Millisecond)))
}
