package host

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/framewalk/internal/probe"
	"github.com/roach88/framewalk/internal/testutil"
)

func newManualHost(t *testing.T, cfg Config) (*Host, *testutil.ManualClock) {
	t.Helper()
	clock := testutil.NewManualClock()
	h, err := New(cfg, WithClock(clock))
	require.NoError(t, err)
	return h, clock
}

func TestHost_FrameRunsTasksThenPresents(t *testing.T) {
	h, clock := newManualHost(t, Config{FrameInterval: 16 * time.Millisecond, MainWork: 2 * time.Millisecond})

	var order []string
	h.Post(func() { order = append(order, "task") })
	var presentedAt time.Time
	h.RequestPresent(func() {
		order = append(order, "present")
		presentedAt = clock.Now()
	})

	f := h.Frame()
	assert.Equal(t, []string{"task", "present"}, order)
	assert.Equal(t, int64(1), f.Number)
	assert.Equal(t, 1, f.Tasks)
	assert.Equal(t, testutil.Epoch.Add(2*time.Millisecond), f.CommittedAt)
	assert.Equal(t, f.CommittedAt, presentedAt)
	assert.Equal(t, f.CommittedAt, f.VisibleAt)
}

func TestHost_IdleFrameSkipsWorkAndStage(t *testing.T) {
	h, clock := newManualHost(t, Config{FrameInterval: 16 * time.Millisecond, MainWork: 2 * time.Millisecond})

	f := h.Frame()
	assert.Equal(t, testutil.Epoch, clock.Now())
	assert.True(t, f.VisibleAt.IsZero())
	assert.Equal(t, int64(0), h.Stage().Submitted())
	assert.Equal(t, int64(1), h.Frames())
}

func TestHost_CallbacksRegisteredDuringFrameWaitForNext(t *testing.T) {
	h, _ := newManualHost(t, Config{FrameInterval: 16 * time.Millisecond})

	fired := 0
	h.RequestPresent(func() {
		fired++
		h.RequestPresent(func() { fired++ })
	})

	h.Frame()
	assert.Equal(t, 1, fired)
	h.Frame()
	assert.Equal(t, 2, fired)
	h.Frame()
	assert.Equal(t, 2, fired)
}

func TestHost_PresentRequestedInsideTaskFiresSameFrame(t *testing.T) {
	h, _ := newManualHost(t, Config{FrameInterval: 16 * time.Millisecond})

	fired := false
	h.Post(func() {
		h.RequestPresent(func() { fired = true })
	})

	h.Frame()
	assert.True(t, fired)
}

func TestHost_RequestVisibleAfterDownstream(t *testing.T) {
	h, clock := newManualHost(t, Config{
		FrameInterval:   16 * time.Millisecond,
		MainWork:        time.Millisecond,
		DownstreamDelay: 30 * time.Millisecond,
	})

	var visible []Frame
	h.Post(func() {})
	h.RequestVisible(func(f Frame) { visible = append(visible, f) })

	f := h.Frame()
	require.Len(t, visible, 1)
	assert.Equal(t, f, visible[0])
	assert.Equal(t, clock.Now().Add(30*time.Millisecond), f.VisibleAt)

	// One-shot: a later frame does not call it again.
	h.Post(func() {})
	h.Frame()
	assert.Len(t, visible, 1)
}

// measure applies one update per frame and returns the probe latencies
// and the end-to-end times from arm to visibility.
func measure(t *testing.T, downstream time.Duration, n int) (probeLatency, endToEnd []time.Duration) {
	t.Helper()
	cfg := Config{
		FrameInterval:   16 * time.Millisecond,
		MainWork:        3 * time.Millisecond,
		DownstreamDelay: downstream,
	}
	h, clock := newManualHost(t, cfg)

	var samples []probe.Sample
	recorder := recorderFunc(func(s probe.Sample) { samples = append(samples, s) })
	p := probe.New(h, probe.WithClock(clock), probe.WithRecorder(recorder))

	for i := 0; i < n; i++ {
		clock.Advance(cfg.FrameInterval)
		h.Post(func() {})
		issued := p.Arm().IssuedAt()
		h.RequestVisible(func(f Frame) {
			endToEnd = append(endToEnd, f.VisibleAt.Sub(issued))
		})
		h.Frame()
	}

	for _, s := range samples {
		probeLatency = append(probeLatency, s.Latency)
	}
	return probeLatency, endToEnd
}

type recorderFunc func(probe.Sample)

func (f recorderFunc) Record(s probe.Sample) { f(s) }

func TestHost_DownstreamDelayIsInvisibleToProbe(t *testing.T) {
	const n = 10
	delay := 12 * time.Millisecond

	baseProbe, baseE2E := measure(t, 0, n)
	slowProbe, slowE2E := measure(t, delay, n)

	require.Len(t, baseProbe, n)
	require.Len(t, slowProbe, n)

	// The probe reports the same latency either way...
	assert.Equal(t, baseProbe, slowProbe)

	// ...while the display actually shows each frame later.
	for i := 0; i < n; i++ {
		assert.Equal(t, delay, slowE2E[i]-baseE2E[i], "frame %d", i)
		assert.Equal(t, baseProbe[i], baseE2E[i], "frame %d", i)
	}
}

func TestHost_RunRealTimeShowsGap(t *testing.T) {
	delay := 15 * time.Millisecond
	h, err := New(Config{FrameInterval: 2 * time.Millisecond, DownstreamDelay: delay})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- h.Run(ctx) }()

	p := probe.New(h)
	type seen struct {
		frame Frame
		at    time.Time
	}
	visible := make(chan seen, 1)

	// Arm inside the task so the update, the probe and the visibility
	// request all land in the same frame.
	armed := make(chan *probe.Pending, 1)
	h.Post(func() {
		armed <- p.Arm()
		h.RequestVisible(func(f Frame) { visible <- seen{frame: f, at: time.Now()} })
	})
	pending := <-armed

	waitCtx, waitCancel := context.WithTimeout(ctx, 5*time.Second)
	defer waitCancel()
	sample, err := pending.Wait(waitCtx)
	require.NoError(t, err)

	var v seen
	select {
	case v = <-visible:
	case <-time.After(5 * time.Second):
		t.Fatal("frame never became visible")
	}

	cancel()
	assert.True(t, errors.Is(<-runErr, context.Canceled))

	assert.Equal(t, delay, v.frame.VisibleAt.Sub(v.frame.CommittedAt))
	assert.False(t, v.at.Before(v.frame.VisibleAt))
	// Scheduling jitter only ever widens the gap.
	assert.GreaterOrEqual(t, v.at.Sub(sample.PresentedAt), delay-time.Millisecond)
}

func TestHost_RunTwice(t *testing.T) {
	h, err := New(Config{FrameInterval: time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = h.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return h.Frames() > 0 }, 5*time.Second, time.Millisecond)
	assert.ErrorIs(t, h.Run(ctx), ErrRunning)

	cancel()
	<-done
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero frame interval", Config{}},
		{"negative main work", Config{FrameInterval: time.Millisecond, MainWork: -1}},
		{"negative downstream", Config{FrameInterval: time.Millisecond, DownstreamDelay: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			assert.Error(t, err)
		})
	}
}
