package walk

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Ticker delivers ticks on C until Stop is called.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct {
	t *time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

func newTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithTicker replaces the wall-clock ticker. Tests use this to drive ticks
// by hand.
func WithTicker(fn func(time.Duration) Ticker) Option {
	return func(s *Sequencer) {
		s.newTicker = fn
	}
}

// WithLogger sets the logger for walk lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sequencer) {
		s.logger = logger
	}
}

// Sequencer delivers the steps of a walk on a timer.
//
// The origin is delivered as soon as Start runs, then one step per
// Interval until MaxSteps steps have been delivered. Callbacks run on the
// sequencer's goroutine, one at a time; a callback finishes before the
// next tick is taken.
type Sequencer struct {
	cfg       Config
	newTicker func(time.Duration) Ticker
	logger    *slog.Logger

	mu        sync.Mutex
	walker    *Walker
	onStep    func(Step)
	started   bool
	stopped   bool
	delivered int

	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

// New validates cfg and returns a sequencer that has not started yet.
func New(cfg Config, opts ...Option) (*Sequencer, error) {
	w, err := NewWalker(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Interval <= 0 {
		return nil, newConfigError("interval must be positive, got %s", cfg.Interval)
	}

	s := &Sequencer{
		cfg:       cfg,
		newTicker: newTimeTicker,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		walker:    w,
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start is shorthand for New, OnStep and Start.
func Start(ctx context.Context, cfg Config, onStep func(Step), opts ...Option) (*Sequencer, error) {
	s, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	s.OnStep(onStep)
	if err := s.Start(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// OnStep sets the callback that receives each step. It may be changed
// while the walk runs; the next step uses the new callback.
func (s *Sequencer) OnStep(fn func(Step)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onStep = fn
}

// Start begins step production. Cancelling ctx stops the walk.
// A sequencer can be started once.
func (s *Sequencer) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return &ConfigError{
			Code:    ErrCodeAlreadyStarted,
			Message: "sequencer already started",
		}
	}
	s.started = true
	s.mu.Unlock()

	s.logger.Debug("walk started",
		"seed", string(s.cfg.Seed),
		"height", s.cfg.Bounds.Height,
		"width", s.cfg.Bounds.Width,
		"max_steps", s.cfg.MaxSteps,
		"interval", s.cfg.Interval)

	ticker := s.newTicker(s.cfg.Interval)
	go s.loop(ctx, ticker)
	return nil
}

func (s *Sequencer) loop(ctx context.Context, ticker Ticker) {
	defer close(s.done)
	defer ticker.Stop()
	defer func() {
		s.mu.Lock()
		s.stopped = true
		delivered := s.delivered
		s.mu.Unlock()
		s.logger.Debug("walk finished", "delivered", delivered)
	}()

	if !s.emit(ctx) {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C():
			if !s.emit(ctx) {
				return
			}
		}
	}
}

// emit delivers one step and reports whether more steps remain.
// A tick and a cancellation can be ready together and select picks
// either, so emit checks ctx itself.
// The mutex is released before the callback runs so that the callback
// may call Stop or OnStep.
func (s *Sequencer) emit(ctx context.Context) bool {
	s.mu.Lock()
	if s.stopped || ctx.Err() != nil {
		s.mu.Unlock()
		return false
	}
	step, ok := s.walker.Next()
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.delivered++
	remaining := s.walker.Remaining()
	fn := s.onStep
	s.mu.Unlock()

	if fn != nil {
		fn(step)
	}
	return remaining > 0
}

// Stop ends the walk. No step is taken from the walk after Stop returns.
// Stop does not wait for a step already handed off for delivery; that
// callback may still run. Wait on Done for the walk to go quiet. Stop is
// idempotent and may be called from inside the callback or after the
// walk ended on its own.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// Done is closed once the walk has terminated and its goroutine has exited.
// It never closes for a sequencer that was not started.
func (s *Sequencer) Done() <-chan struct{} {
	return s.done
}

// Delivered returns the number of steps delivered so far, origin included.
func (s *Sequencer) Delivered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delivered
}
