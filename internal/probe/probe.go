package probe

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Presenter is the host's presentation signal. RequestPresent calls fn
// once, the next time the display has been repainted.
type Presenter interface {
	RequestPresent(fn func())
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(fn func())

// RequestPresent calls f(fn).
func (f PresenterFunc) RequestPresent(fn func()) {
	f(fn)
}

// Recorder receives every resolved sample.
type Recorder interface {
	Record(Sample)
}

// Sample is one measurement. Latency is PresentedAt minus IssuedAt, and is
// never negative.
type Sample struct {
	Seq         int64         `json:"seq"`
	IssuedAt    time.Time     `json:"issued_at"`
	PresentedAt time.Time     `json:"presented_at"`
	Latency     time.Duration `json:"latency_ns"`
}

// Option configures a Probe.
type Option func(*Probe)

// WithClock sets the time source. The default is SystemClock.
func WithClock(c Clock) Option {
	return func(p *Probe) {
		p.clock = c
	}
}

// WithRecorder sets where resolved samples go.
func WithRecorder(r Recorder) Option {
	return func(p *Probe) {
		p.recorder = r
	}
}

// WithLogger sets the logger for per-sample debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Probe) {
		p.logger = logger
	}
}

// Probe arms measurements against a Presenter.
//
// Arm may be called from any goroutine. Arming again before the previous
// measurement resolves is allowed and yields overlapping measurements;
// both usually resolve on the same repaint.
type Probe struct {
	presenter Presenter
	clock     Clock
	recorder  Recorder
	logger    *slog.Logger

	seq         seqCounter
	outstanding atomic.Int64
}

// New creates a probe that waits on presenter.
func New(presenter Presenter, opts ...Option) *Probe {
	p := &Probe{
		presenter: presenter,
		clock:     SystemClock{},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Arm starts one measurement and returns its handle.
func (p *Probe) Arm() *Pending {
	pending := &Pending{
		seq:      p.seq.next(),
		issuedAt: p.clock.Now(),
		done:     make(chan struct{}),
	}
	p.outstanding.Add(1)
	p.presenter.RequestPresent(func() {
		p.resolve(pending)
	})
	return pending
}

// Outstanding returns the number of armed, unresolved measurements.
func (p *Probe) Outstanding() int {
	return int(p.outstanding.Load())
}

// Armed returns the number of measurements armed so far.
func (p *Probe) Armed() int64 {
	return p.seq.current()
}

func (p *Probe) resolve(pending *Pending) {
	pending.once.Do(func() {
		presentedAt := p.clock.Now()
		latency := presentedAt.Sub(pending.issuedAt)
		if latency < 0 {
			// The clock ran backwards between arm and presentation.
			latency = 0
		}
		sample := Sample{
			Seq:         pending.seq,
			IssuedAt:    pending.issuedAt,
			PresentedAt: presentedAt,
			Latency:     latency,
		}

		pending.mu.Lock()
		pending.sample = sample
		pending.resolved = true
		pending.mu.Unlock()

		p.outstanding.Add(-1)
		if p.recorder != nil {
			p.recorder.Record(sample)
		}
		p.logger.Debug("sample", "seq", sample.Seq, "latency", sample.Latency)
		close(pending.done)
	})
}

// Pending is an armed measurement.
type Pending struct {
	seq      int64
	issuedAt time.Time
	done     chan struct{}
	once     sync.Once

	mu       sync.Mutex
	sample   Sample
	resolved bool
}

// Seq returns the measurement's arm order, starting at 1.
func (p *Pending) Seq() int64 {
	return p.seq
}

// IssuedAt returns the time Arm was called.
func (p *Pending) IssuedAt() time.Time {
	return p.issuedAt
}

// Done is closed when the measurement resolves.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Sample returns the sample and true once resolved.
func (p *Pending) Sample() (Sample, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sample, p.resolved
}

// Wait blocks until the measurement resolves or ctx ends. When ctx ends
// first it returns an UnresolvedError wrapping the context error.
func (p *Pending) Wait(ctx context.Context) (Sample, error) {
	select {
	case <-p.done:
		s, _ := p.Sample()
		return s, nil
	case <-ctx.Done():
		// Resolution and cancellation may race; prefer the sample.
		if s, ok := p.Sample(); ok {
			return s, nil
		}
		return Sample{}, &UnresolvedError{
			Code:     ErrCodeUnresolved,
			Seq:      p.seq,
			IssuedAt: p.issuedAt,
			Cause:    ctx.Err(),
		}
	}
}
