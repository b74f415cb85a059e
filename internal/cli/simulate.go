package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/framewalk/internal/harness"
	"github.com/roach88/framewalk/internal/host"
	"github.com/roach88/framewalk/internal/store"
	"github.com/roach88/framewalk/internal/walk"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	walkFlags
	Host     harness.HostSpec
	Database string

	// IDGenerator allows overriding the run ID generator (for testing).
	// If nil, defaults to store.UUIDv7Generator.
	IDGenerator store.IDGenerator

	// Now allows overriding the archived start time (for testing).
	Now func() time.Time
}

// SimulateResult is the JSON payload of the simulate command.
type SimulateResult struct {
	RunID      string `json:"run_id,omitempty"`
	ConfigHash string `json:"config_hash"`
	Steps      int    `json:"steps"`
	LatencyReport
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Measure a walk against a simulated host in virtual time",
		Long: `Replay a walk against a simulated host and report what the probe
measured next to the true time until each frame was visible.

The host commits a frame every --frame ms, spending --main-work ms of
main-context render cost on frames with work. Committed frames then pass
through a downstream stage costing --downstream ms each. The probe
resolves when the frame is committed, so the downstream cost shows up
only in the end-to-end numbers.

Simulation runs in virtual time: it is instant and deterministic.

Examples:
  framewalk simulate --steps 30
  framewalk simulate --steps 30 --downstream 25
  framewalk simulate --downstream 25 --db ./runs.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(opts, cmd)
		},
	}

	opts.register(cmd.Flags(), 30)
	cmd.Flags().IntVar(&opts.Host.FrameMs, "frame", 16, "milliseconds between frames")
	cmd.Flags().IntVar(&opts.Host.MainWorkMs, "main-work", 2, "main-context render cost per frame in ms")
	cmd.Flags().IntVar(&opts.Host.DownstreamMs, "downstream", 0, "downstream stage cost per frame in ms")
	cmd.Flags().StringVar(&opts.Database, "db", "", "archive the run in this SQLite database")

	return cmd
}

func runSimulate(opts *SimulateOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	cfg := opts.config()
	scenario := &harness.Scenario{
		Name:        "simulate",
		Description: "command line simulation",
		Seed:        string(cfg.Seed),
		Board:       cfg.Bounds,
		Origin:      &cfg.Origin,
		MaxSteps:    cfg.MaxSteps,
		IntervalMs:  opts.IntervalMs,
		Host:        opts.Host,
	}
	if err := checkSimulation(cfg, opts.Host.Config()); err != nil {
		formatter.Error(ErrCodeInvalidConfig, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid simulation", err)
	}

	result, err := harness.Run(scenario, harness.WithLogger(logger))
	if err != nil {
		return WrapExitError(ExitFailure, "simulation failed", err)
	}

	out := SimulateResult{
		ConfigHash: result.ConfigHash,
		Steps:      len(result.Steps),
		LatencyReport: LatencyReport{
			Probe:    result.Probe,
			EndToEnd: result.EndToEnd,
		},
	}

	if opts.Database != "" {
		id, err := archiveSimulation(cmd.Context(), opts, scenario, result)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to archive run", err)
		}
		out.RunID = id
		logger.Info("run archived", "db", opts.Database, "run", id)
	}

	if formatter.JSON() {
		return formatter.Success(out)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "config %s\n", out.ConfigHash)
	if out.RunID != "" {
		fmt.Fprintf(w, "run    %s\n", out.RunID)
	}
	fmt.Fprintf(w, "steps  %d\n", out.Steps)
	writeReport(w, out.LatencyReport)
	return nil
}

// checkSimulation reports configuration errors before anything runs.
func checkSimulation(cfg walk.Config, hc host.Config) error {
	if _, err := walk.NewWalker(cfg); err != nil {
		return err
	}
	if cfg.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", cfg.Interval)
	}
	return hc.Validate()
}

// archiveSimulation writes a simulated run. Simulated times are offsets
// from the virtual epoch, so they archive unchanged.
func archiveSimulation(ctx context.Context, opts *SimulateOptions, scenario *harness.Scenario, result *harness.Result) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return "", err
	}
	defer st.Close()

	gen := opts.IDGenerator
	if gen == nil {
		gen = store.UUIDv7Generator{}
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	run := store.Run{
		ID:         gen.Generate(),
		Scenario:   scenario.Name,
		Walk:       scenario.WalkConfig(),
		Host:       scenario.Host.Config(),
		ConfigHash: result.ConfigHash,
		StartedAt:  now().UTC(),
	}
	if err := st.WriteRun(ctx, run); err != nil {
		return "", err
	}

	steps := make([]walk.Step, len(result.Steps))
	for i, s := range result.Steps {
		steps[i] = walk.Step{Index: s.Index, Position: walk.Position{Row: s.Row, Col: s.Col}}
	}
	if err := st.WriteSteps(ctx, run.ID, steps); err != nil {
		return "", err
	}

	samples := make([]store.Sample, len(result.Samples))
	for i, s := range result.Samples {
		samples[i] = store.Sample{
			Seq:        s.Seq,
			Issued:     us(s.IssuedUs),
			Presented:  us(s.PresentedUs),
			Latency:    us(s.LatencyUs),
			Visible:    us(s.VisibleUs),
			HasVisible: true,
		}
	}
	if err := st.WriteSamples(ctx, run.ID, samples); err != nil {
		return "", err
	}
	return run.ID, nil
}

func us(n int64) time.Duration {
	return time.Duration(n) * time.Microsecond
}
