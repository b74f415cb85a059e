package host

import (
	"context"
	"sync"
	"time"
)

// Stage is the downstream pipeline a committed frame passes through
// before it is visible: compositing, GPU execution and scanout, reduced
// to a fixed serial cost per frame.
//
// Frames are processed in order. A frame submitted while the previous one
// is still in flight waits for it, so
//
//	VisibleAt = max(previous VisibleAt, CommittedAt) + Delay
//
// The main context never observes this stage.
type Stage struct {
	delay time.Duration
	clock Clock

	mu          sync.Mutex
	lastVisible time.Time
	submitted   int64
	async       *queue[delivery]
}

type delivery struct {
	frame   Frame
	waiters []func(Frame)
}

// NewStage creates a stage with the given per-frame cost.
func NewStage(delay time.Duration, clock Clock) *Stage {
	return &Stage{delay: delay, clock: clock}
}

// Delay returns the per-frame cost.
func (s *Stage) Delay() time.Duration {
	return s.delay
}

// Submitted returns the number of frames submitted.
func (s *Stage) Submitted() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitted
}

// Submit schedules f and returns it with VisibleAt set. Each waiter is
// called once with the frame when it becomes visible: immediately when
// the stage is synchronous, at VisibleAt on the delivery goroutine while
// the stage runs asynchronously.
func (s *Stage) Submit(f Frame, waiters []func(Frame)) Frame {
	s.mu.Lock()
	start := f.CommittedAt
	if s.lastVisible.After(start) {
		start = s.lastVisible
	}
	f.VisibleAt = start.Add(s.delay)
	s.lastVisible = f.VisibleAt
	s.submitted++
	q := s.async
	s.mu.Unlock()

	if q != nil && q.Enqueue(delivery{frame: f, waiters: waiters}) {
		return f
	}
	for _, fn := range waiters {
		fn(f)
	}
	return f
}

// startAsync switches the stage to real-time delivery. The returned
// function switches it back and waits for queued deliveries to finish.
func (s *Stage) startAsync(ctx context.Context) (stop func()) {
	q := newQueue[delivery]()
	s.mu.Lock()
	s.async = q
	s.mu.Unlock()

	done := make(chan struct{})
	go s.deliver(ctx, q, done)

	return func() {
		s.mu.Lock()
		s.async = nil
		s.mu.Unlock()
		q.Close()
		<-done
	}
}

func (s *Stage) deliver(ctx context.Context, q *queue[delivery], done chan<- struct{}) {
	defer close(done)
	for {
		if d, ok := q.TryDequeue(); ok {
			if !s.sleepUntil(ctx, d.frame.VisibleAt) {
				return
			}
			for _, fn := range d.waiters {
				fn(d.frame)
			}
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-q.Wait():
			if q.Closed() && q.Len() == 0 {
				return
			}
		}
	}
}

// sleepUntil blocks until t or until ctx ends. It reports whether t was
// reached.
func (s *Stage) sleepUntil(ctx context.Context, t time.Time) bool {
	wait := t.Sub(s.clock.Now())
	if wait <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
