package harness

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/framewalk/internal/host"
	"github.com/roach88/framewalk/internal/probe"
	"github.com/roach88/framewalk/internal/stats"
	"github.com/roach88/framewalk/internal/testutil"
	"github.com/roach88/framewalk/internal/walk"
)

// maxIdleFrames bounds the frames run after the last step while waiting
// for outstanding measurements. Every armed measurement resolves on the
// next frame, so more than this means the host lost a request.
const maxIdleFrames = 4

// Option configures a scenario run.
type Option func(*harness)

// WithLogger sets the logger. Runs are silent by default.
func WithLogger(logger *slog.Logger) Option {
	return func(h *harness) {
		h.logger = logger
	}
}

// harness runs one scenario in virtual time.
type harness struct {
	clock  *testutil.ManualClock
	walker *walk.Walker
	host   *host.Host
	probe  *probe.Probe
	log    *stats.Log
	logger *slog.Logger

	visible map[int64]time.Time
}

// Run executes a scenario and returns the result.
//
// The run uses a manual clock, so it is deterministic: the same scenario
// always yields the same steps, samples and summaries.
//
// Execution flow:
//  1. The walk delivers the origin at t=0 and one step every interval.
//  2. Each step posts an update to the host and immediately arms the probe
//     and a visibility request.
//  3. The host commits a frame every frame interval (first at t=frame).
//     When a step and a frame fall on the same instant the step goes first.
//  4. After the last step, frames continue until every measurement resolved.
//  5. Assertions are evaluated against the trace.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := scenario.WalkConfig()
	walker, err := walk.NewWalker(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid walk: %w", err)
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("invalid walk: interval must be positive")
	}

	h := &harness{
		clock:   testutil.NewManualClock(),
		walker:  walker,
		log:     stats.NewLog(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
		visible: make(map[int64]time.Time),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.host, err = host.New(scenario.Host.Config(), host.WithClock(h.clock), host.WithLogger(h.logger))
	if err != nil {
		return nil, err
	}
	h.probe = probe.New(h.host,
		probe.WithClock(h.clock),
		probe.WithRecorder(h.log),
		probe.WithLogger(h.logger))

	result := NewResult()
	result.ConfigHash = cfg.Hash()

	if err := h.simulate(cfg.Interval, scenario.Host.Config().FrameInterval, result); err != nil {
		return nil, err
	}
	h.collect(result)

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, scenario.Board) {
		result.AddError(errMsg)
	}

	h.logger.Info("scenario completed",
		"scenario", scenario.Name,
		"steps", len(result.Steps),
		"samples", len(result.Samples),
		"pass", result.Pass)
	return result, nil
}

// simulate interleaves steps and frames in virtual time.
func (h *harness) simulate(interval, frame time.Duration, result *Result) error {
	nextStep := time.Duration(0)
	nextFrame := frame
	idle := 0

	for {
		if h.walker.Remaining() > 0 && nextStep <= nextFrame {
			h.advanceTo(nextStep)
			step, _ := h.walker.Next()
			h.apply(step, result)
			nextStep += interval
			continue
		}

		if h.walker.Remaining() == 0 {
			if h.probe.Outstanding() == 0 {
				return nil
			}
			idle++
			if idle > maxIdleFrames {
				return fmt.Errorf("%d measurements still unresolved after %d idle frames",
					h.probe.Outstanding(), maxIdleFrames)
			}
		}

		h.advanceTo(nextFrame)
		h.host.Frame()
		nextFrame += frame
	}
}

// apply posts the step's update, then arms the probe and a visibility
// request for the frame that will carry it.
func (h *harness) apply(step walk.Step, result *Result) {
	result.Steps = append(result.Steps, StepEvent{
		Index: step.Index,
		Row:   step.Row,
		Col:   step.Col,
	})

	h.host.Post(func() {})
	pending := h.probe.Arm()
	seq := pending.Seq()
	h.host.RequestVisible(func(f host.Frame) {
		h.visible[seq] = f.VisibleAt
	})

	h.logger.Debug("step applied", "index", step.Index, "position", step.Position.String(), "seq", seq)
}

// advanceTo moves the clock to offset d from the start unless render work
// already carried it further.
func (h *harness) advanceTo(d time.Duration) {
	if h.clock.Elapsed() < d {
		h.clock.Set(testutil.Epoch.Add(d))
	}
}

// collect converts the recorded samples to trace events.
func (h *harness) collect(result *Result) {
	for _, s := range h.log.Samples() {
		result.Samples = append(result.Samples, SampleEvent{
			Seq:         s.Seq,
			IssuedUs:    sinceStart(s.IssuedAt),
			PresentedUs: sinceStart(s.PresentedAt),
			LatencyUs:   s.Latency.Microseconds(),
			VisibleUs:   sinceStart(h.visible[s.Seq]),
		})
	}
	result.Probe = stats.Summarize(result.ProbeLatencies())
	result.EndToEnd = stats.Summarize(result.EndToEndLatencies())
}

func sinceStart(t time.Time) int64 {
	return t.Sub(testutil.Epoch).Microseconds()
}
