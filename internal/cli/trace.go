package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/framewalk/internal/store"
	"github.com/roach88/framewalk/internal/walk"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string
}

// TraceEvent lines up one step with the measurement it caused.
type TraceEvent struct {
	walk.Step
	Sample *store.Sample `json:"sample,omitempty"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	RunID    string       `json:"run_id"`
	Timeline []TraceEvent `json:"timeline"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the step-by-step timeline of an archived run",
		Long: `Show every step of an archived run next to the measurement it caused.

The n-th step armed the n-th measurement, so step index i pairs with
sample seq i+1. Times are offsets from the start of the run.

Examples:
  framewalk trace --db ./runs.db --run 01890a5d-ac96-774b-bcce-b302099a8057
  framewalk trace --db ./runs.db --run 01890a5d-... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run ID to trace (required)")
	_ = cmd.MarkFlagRequired("run")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := commandContext(cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if _, err := st.ReadRun(ctx, opts.RunID); err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}
	steps, err := st.ReadSteps(ctx, opts.RunID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read steps", err)
	}
	samples, err := st.ReadSamples(ctx, opts.RunID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read samples", err)
	}

	result := TraceResult{RunID: opts.RunID, Timeline: buildTimeline(steps, samples)}

	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%5s  %-9s  %10s  %10s  %10s  %10s\n", "step", "pos", "issued", "presented", "latency", "visible")
	for _, ev := range result.Timeline {
		if ev.Sample == nil {
			fmt.Fprintf(w, "%5d  %-9s  %10s\n", ev.Index, ev.Position, "unresolved")
			continue
		}
		visible := "-"
		if ev.Sample.HasVisible {
			visible = ev.Sample.Visible.String()
		}
		fmt.Fprintf(w, "%5d  %-9s  %10s  %10s  %10s  %10s\n",
			ev.Index, ev.Position, ev.Sample.Issued, ev.Sample.Presented, ev.Sample.Latency, visible)
	}
	return nil
}

// buildTimeline pairs step i with sample seq i+1.
func buildTimeline(steps []walk.Step, samples []store.Sample) []TraceEvent {
	bySeq := make(map[int64]store.Sample, len(samples))
	for _, s := range samples {
		bySeq[s.Seq] = s
	}
	timeline := make([]TraceEvent, len(steps))
	for i, st := range steps {
		timeline[i] = TraceEvent{Step: st}
		if s, ok := bySeq[int64(st.Index)+1]; ok {
			timeline[i].Sample = &s
		}
	}
	return timeline
}
