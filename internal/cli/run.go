package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/framewalk/internal/harness"
	"github.com/roach88/framewalk/internal/host"
	"github.com/roach88/framewalk/internal/probe"
	"github.com/roach88/framewalk/internal/stats"
	"github.com/roach88/framewalk/internal/store"
	"github.com/roach88/framewalk/internal/walk"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	walkFlags
	Host     harness.HostSpec
	Settle   time.Duration
	Database string

	// IDGenerator allows overriding the run ID generator (for testing).
	// If nil, defaults to store.UUIDv7Generator.
	IDGenerator store.IDGenerator
}

// RunResult is the JSON payload of the run command.
type RunResult struct {
	RunID      string `json:"run_id,omitempty"`
	ConfigHash string `json:"config_hash"`
	Steps      int    `json:"steps"`
	Unresolved int    `json:"unresolved"`
	LatencyReport
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Measure a walk against the simulated host in real time",
		Long: `Drive a walk on a wall-clock timer against the simulated host and
measure every step with the probe.

Each step posts an update to the host and arms the probe. After the last
step the command waits up to --settle for outstanding measurements; any
still unresolved are reported and the command exits with status 1.
The probe itself never times out.

Press Ctrl-C to stop early; the steps taken so far are reported.

Examples:
  framewalk run --steps 20 --interval 50
  framewalk run --steps 20 --downstream 25 --db ./runs.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrial(opts, cmd)
		},
	}

	opts.register(cmd.Flags(), 20)
	cmd.Flags().IntVar(&opts.Host.FrameMs, "frame", 16, "milliseconds between frames")
	cmd.Flags().IntVar(&opts.Host.MainWorkMs, "main-work", 2, "main-context render cost per frame in ms")
	cmd.Flags().IntVar(&opts.Host.DownstreamMs, "downstream", 0, "downstream stage cost per frame in ms")
	cmd.Flags().DurationVar(&opts.Settle, "settle", time.Second, "how long to wait for outstanding measurements")
	cmd.Flags().StringVar(&opts.Database, "db", "", "archive the run in this SQLite database")

	return cmd
}

// trial is one real-time measurement in progress.
type trial struct {
	start time.Time

	mu       sync.Mutex
	steps    []walk.Step
	pendings []*probe.Pending
	visible  map[int64]time.Time

	visibleCh chan struct{}
}

func runTrial(opts *RunOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	cfg := opts.config()
	hc := opts.Host.Config()
	if err := hc.Validate(); err != nil {
		formatter.Error(ErrCodeInvalidConfig, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid host", err)
	}
	seq, err := walk.New(cfg, walk.WithLogger(logger))
	if err != nil {
		formatter.Error(ErrCodeInvalidConfig, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid walk", err)
	}
	h, err := host.New(hc, host.WithLogger(logger))
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid host", err)
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, stopping walk", "signal", sig)
			seq.Stop()
		case <-ctx.Done():
		}
	}()

	log := stats.NewLog()
	p := probe.New(h, probe.WithRecorder(log), probe.WithLogger(logger))
	tr := &trial{
		visible:   make(map[int64]time.Time),
		visibleCh: make(chan struct{}, cfg.MaxSteps+1),
	}
	seq.OnStep(func(s walk.Step) {
		tr.apply(h, p, s)
	})

	hostDone := make(chan error, 1)
	go func() { hostDone <- h.Run(ctx) }()

	logger.Info("walk starting", "config", cfg.Hash(), "steps", cfg.MaxSteps, "interval", cfg.Interval)
	tr.start = time.Now()
	if err := seq.Start(ctx); err != nil {
		return WrapExitError(ExitCommandError, "failed to start walk", err)
	}
	<-seq.Done()

	unresolved := tr.settle(ctx, opts.Settle)
	cancel()
	<-hostDone

	samples := tr.archiveSamples(log.Samples())
	out := RunResult{
		ConfigHash: cfg.Hash(),
		Steps:      len(tr.steps),
		Unresolved: unresolved,
		LatencyReport: LatencyReport{
			Probe:    log.Summary(),
			EndToEnd: stats.Summarize(store.EndToEnd(samples)),
		},
	}
	logger.Debug("walk finished", "steps", out.Steps, "samples", len(samples), "unresolved", unresolved)

	if opts.Database != "" {
		id, err := archiveTrial(opts, cfg, hc, tr, samples, unresolved)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to archive run", err)
		}
		out.RunID = id
		logger.Info("run archived", "db", opts.Database, "run", id)
	}

	if unresolved > 0 {
		msg := fmt.Sprintf("%d measurement(s) unresolved after %s", unresolved, opts.Settle)
		if formatter.JSON() {
			formatter.Failure(out, ErrCodeUnresolved, msg)
		} else {
			writeRunText(cmd, out)
		}
		return NewExitError(ExitFailure, msg)
	}

	if formatter.JSON() {
		return formatter.Success(out)
	}
	writeRunText(cmd, out)
	return nil
}

// apply posts the step's update, then arms the probe and a visibility
// request. It runs on the sequencer's goroutine.
func (tr *trial) apply(h *host.Host, p *probe.Probe, s walk.Step) {
	h.Post(func() {})
	pending := p.Arm()
	seq := pending.Seq()
	h.RequestVisible(func(f host.Frame) {
		tr.mu.Lock()
		tr.visible[seq] = f.VisibleAt
		tr.mu.Unlock()
		select {
		case tr.visibleCh <- struct{}{}:
		default:
		}
	})

	tr.mu.Lock()
	tr.steps = append(tr.steps, s)
	tr.pendings = append(tr.pendings, pending)
	tr.mu.Unlock()
}

// settle waits up to d for every measurement to resolve and every frame
// to become visible. It returns the number of unresolved measurements.
func (tr *trial) settle(ctx context.Context, d time.Duration) int {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	tr.mu.Lock()
	pendings := append([]*probe.Pending(nil), tr.pendings...)
	tr.mu.Unlock()

	unresolved := 0
	for _, pd := range pendings {
		if _, err := pd.Wait(ctx); probe.IsUnresolved(err) {
			unresolved++
		}
	}

	for seen := 0; seen < len(pendings); seen++ {
		select {
		case <-tr.visibleCh:
		case <-ctx.Done():
			return unresolved
		}
	}
	return unresolved
}

// archiveSamples converts probe samples to offsets from the trial start.
func (tr *trial) archiveSamples(samples []probe.Sample) []store.Sample {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	out := make([]store.Sample, len(samples))
	for i, s := range samples {
		out[i] = store.FromProbe(tr.start, s)
		if at, ok := tr.visible[s.Seq]; ok {
			out[i] = out[i].WithVisible(tr.start, at)
		}
	}
	return out
}

func archiveTrial(opts *RunOptions, cfg walk.Config, hc host.Config, tr *trial, samples []store.Sample, unresolved int) (string, error) {
	ctx := context.Background()
	st, err := store.Open(opts.Database)
	if err != nil {
		return "", err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	gen := opts.IDGenerator
	if gen == nil {
		gen = store.UUIDv7Generator{}
	}
	run := store.Run{
		ID:         gen.Generate(),
		Walk:       cfg,
		Host:       hc,
		ConfigHash: cfg.Hash(),
		StartedAt:  tr.start.UTC(),
		Unresolved: unresolved,
	}
	if err := st.WriteRun(ctx, run); err != nil {
		return "", err
	}
	if err := st.WriteSteps(ctx, run.ID, tr.steps); err != nil {
		return "", err
	}
	if err := st.WriteSamples(ctx, run.ID, samples); err != nil {
		return "", err
	}
	return run.ID, nil
}

func writeRunText(cmd *cobra.Command, out RunResult) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "config %s\n", out.ConfigHash)
	if out.RunID != "" {
		fmt.Fprintf(w, "run    %s\n", out.RunID)
	}
	fmt.Fprintf(w, "steps  %d\n", out.Steps)
	writeReport(w, out.LatencyReport)
	if out.Unresolved > 0 {
		fmt.Fprintf(w, "unresolved %d\n", out.Unresolved)
	}
}
