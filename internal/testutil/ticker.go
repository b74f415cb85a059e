package testutil

import (
	"sync"
	"time"
)

// ManualTicker is a ticker whose ticks are sent by the test.
//
// It satisfies walk.Ticker. Tick blocks until the receiving loop takes the
// tick, so each Tick call corresponds to exactly one step.
type ManualTicker struct {
	ch chan time.Time

	mu       sync.Mutex
	stopped  chan struct{}
	once     sync.Once
	interval time.Duration
}

// NewManualTicker creates a ticker with no pending ticks.
func NewManualTicker() *ManualTicker {
	return &ManualTicker{
		ch:      make(chan time.Time),
		stopped: make(chan struct{}),
	}
}

// Bind records the interval the ticker was created for and returns the
// ticker. It has the shape of a ticker factory's body.
func (t *ManualTicker) Bind(d time.Duration) *ManualTicker {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.interval = d
	return t
}

// Interval returns the interval passed to Bind.
func (t *ManualTicker) Interval() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.interval
}

// C returns the tick channel.
func (t *ManualTicker) C() <-chan time.Time {
	return t.ch
}

// Stop marks the ticker stopped. Pending and future Tick calls return false.
func (t *ManualTicker) Stop() {
	t.once.Do(func() { close(t.stopped) })
}

// Stopped is closed once Stop has been called.
func (t *ManualTicker) Stopped() <-chan struct{} {
	return t.stopped
}

// Tick delivers one tick. It returns false if the ticker was stopped
// before the tick was taken.
func (t *ManualTicker) Tick() bool {
	select {
	case <-t.stopped:
		return false
	default:
	}
	select {
	case t.ch <- Epoch:
		return true
	case <-t.stopped:
		return false
	}
}
