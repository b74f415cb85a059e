package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"
)

// ErrRunning is returned by Run when the host is already being driven.
var ErrRunning = errors.New("host is already running")

// Frame describes one committed frame.
type Frame struct {
	Number      int64     `json:"number"`
	Tasks       int       `json:"tasks"`
	CommittedAt time.Time `json:"committed_at"`

	// VisibleAt is zero for frames with no work, which are never handed
	// to the downstream stage.
	VisibleAt time.Time `json:"visible_at"`
}

// Config sets the host's timing model.
type Config struct {
	// FrameInterval is the time between frames when Run drives the host.
	FrameInterval time.Duration `json:"frame_interval"`

	// MainWork is the main-context render cost of a frame with work.
	MainWork time.Duration `json:"main_work"`

	// DownstreamDelay is the per-frame cost of the downstream stage.
	DownstreamDelay time.Duration `json:"downstream_delay"`
}

// DefaultConfig returns a 60 Hz host with a small render cost and no
// downstream delay.
func DefaultConfig() Config {
	return Config{
		FrameInterval: 16 * time.Millisecond,
		MainWork:      2 * time.Millisecond,
	}
}

// Validate rejects negative costs and a non-positive frame interval.
func (c Config) Validate() error {
	if c.FrameInterval <= 0 {
		return fmt.Errorf("frame interval must be positive, got %s", c.FrameInterval)
	}
	if c.MainWork < 0 {
		return fmt.Errorf("main work must not be negative, got %s", c.MainWork)
	}
	if c.DownstreamDelay < 0 {
		return fmt.Errorf("downstream delay must not be negative, got %s", c.DownstreamDelay)
	}
	return nil
}

// Option configures a Host.
type Option func(*Host)

// WithClock sets the host clock. The default is SystemClock.
func WithClock(c Clock) Option {
	return func(h *Host) {
		h.clock = c
	}
}

// WithLogger sets the logger for per-frame debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Host) {
		h.logger = logger
	}
}

// Host simulates a display host: a main context that runs queued tasks
// and commits frames, and a downstream stage that makes them visible.
//
// Post, RequestPresent and RequestVisible may be called from any
// goroutine. Frame must be called from one goroutine at a time; Run does
// that on a ticker.
type Host struct {
	cfg    Config
	clock  Clock
	logger *slog.Logger
	stage  *Stage

	tasks    *queue[func()]
	presents *queue[func()]
	visible  *queue[func(Frame)]

	frames  atomic.Int64
	running atomic.Bool
}

// New creates a host.
func New(cfg Config, opts ...Option) (*Host, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid host config: %w", err)
	}
	h := &Host{
		cfg:      cfg,
		clock:    SystemClock{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		tasks:    newQueue[func()](),
		presents: newQueue[func()](),
		visible:  newQueue[func(Frame)](),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.stage = NewStage(cfg.DownstreamDelay, h.clock)
	return h, nil
}

// Config returns the host's timing model.
func (h *Host) Config() Config {
	return h.cfg
}

// Stage returns the downstream stage.
func (h *Host) Stage() *Stage {
	return h.stage
}

// Post queues task to run on the main context during the next frame.
func (h *Host) Post(task func()) {
	h.tasks.Enqueue(task)
}

// RequestPresent calls fn once, on the main context, after the next frame
// is committed. It implements probe.Presenter.
func (h *Host) RequestPresent(fn func()) {
	h.presents.Enqueue(fn)
}

// RequestVisible calls fn once, when the next committed frame leaves the
// downstream stage.
func (h *Host) RequestVisible(fn func(Frame)) {
	h.visible.Enqueue(fn)
}

// Frames returns the number of frames processed.
func (h *Host) Frames() int64 {
	return h.frames.Load()
}

// Frame processes one frame and returns it.
//
// Queued tasks run first. If there was any work or any pending request,
// the main-context render cost is spent and the frame is committed,
// presentation callbacks fire, and the frame is handed downstream.
// Callbacks registered while a frame is processed wait for the next frame.
func (h *Host) Frame() Frame {
	f := Frame{Number: h.frames.Add(1)}

	tasks := h.tasks.Drain()
	for _, task := range tasks {
		task()
	}
	f.Tasks = len(tasks)

	presents := h.presents.Drain()
	visible := h.visible.Drain()
	dirty := len(tasks) > 0 || len(presents) > 0 || len(visible) > 0

	if dirty && h.cfg.MainWork > 0 {
		h.clock.Sleep(h.cfg.MainWork)
	}
	f.CommittedAt = h.clock.Now()

	for _, fn := range presents {
		fn()
	}
	if dirty {
		f = h.stage.Submit(f, visible)
		h.logger.Debug("frame committed",
			"frame", f.Number,
			"tasks", f.Tasks,
			"presents", len(presents),
			"downstream", f.VisibleAt.Sub(f.CommittedAt))
	}
	return f
}

// Run drives frames every FrameInterval until ctx ends, with the
// downstream stage delivering in real time. It returns ctx.Err().
func (h *Host) Run(ctx context.Context) error {
	if !h.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer h.running.Store(false)

	h.logger.Debug("host starting",
		"frame_interval", h.cfg.FrameInterval,
		"main_work", h.cfg.MainWork,
		"downstream", h.cfg.DownstreamDelay)

	stop := h.stage.startAsync(ctx)
	defer stop()

	ticker := time.NewTicker(h.cfg.FrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("host stopping", "frames", h.Frames())
			return ctx.Err()
		case <-ticker.C:
			h.Frame()
		}
	}
}
