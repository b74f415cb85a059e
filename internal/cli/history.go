package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/framewalk/internal/stats"
	"github.com/roach88/framewalk/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database   string
	ConfigHash string
}

// RunSummary is one archived run with its latency summaries.
type RunSummary struct {
	store.Run
	LatencyReport
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List archived runs or summarize one",
		Long: `List the runs archived with --db, newest first, or summarize a
single run when its ID is given.

Runs with the same config hash replayed the same walk, so their
latencies are directly comparable. Use --config to list only those.

Examples:
  framewalk history --db ./runs.db
  framewalk history --db ./runs.db --config 3f2a...
  framewalk history --db ./runs.db 01890a5d-ac96-774b-bcce-b302099a8057`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runHistoryShow(opts, args[0], cmd)
			}
			return runHistoryList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.ConfigHash, "config", "", "only runs with this config hash")

	return cmd
}

func runHistoryList(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := commandContext(cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	runs, err := st.ListRuns(ctx, opts.ConfigHash)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	summaries := make([]RunSummary, 0, len(runs))
	for _, run := range runs {
		s, err := summarizeRun(ctx, st, run)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read run", err)
		}
		summaries = append(summaries, s)
	}

	if formatter.JSON() {
		return formatter.Success(summaries)
	}

	w := cmd.OutOrStdout()
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No runs archived.")
		return nil
	}
	for _, s := range summaries {
		label := s.Scenario
		if label == "" {
			label = "run"
		}
		fmt.Fprintf(w, "%s  %s  %-10s  seed=%s  probe median=%s  end-to-end median=%s\n",
			s.ID, s.StartedAt.Format("2006-01-02T15:04:05Z"), label, s.Walk.Seed,
			s.Probe.Median, s.EndToEnd.Median)
	}
	return nil
}

func runHistoryShow(opts *HistoryOptions, id string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := commandContext(cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	run, err := st.ReadRun(ctx, id)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}
	s, err := summarizeRun(ctx, st, run)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	if formatter.JSON() {
		return formatter.Success(s)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "run      %s\n", s.ID)
	if s.Scenario != "" {
		fmt.Fprintf(w, "scenario %s\n", s.Scenario)
	}
	fmt.Fprintf(w, "config   %s\n", s.ConfigHash)
	fmt.Fprintf(w, "walk     seed=%s board=%dx%d origin=%s steps=%d interval=%s\n",
		s.Walk.Seed, s.Walk.Bounds.Height, s.Walk.Bounds.Width, s.Walk.Origin,
		s.Walk.MaxSteps, s.Walk.Interval)
	fmt.Fprintf(w, "host     frame=%s main-work=%s downstream=%s\n",
		s.Host.FrameInterval, s.Host.MainWork, s.Host.DownstreamDelay)
	writeReport(w, s.LatencyReport)
	if s.Unresolved > 0 {
		fmt.Fprintf(w, "unresolved %d\n", s.Unresolved)
	}
	return nil
}

func summarizeRun(ctx context.Context, st *store.Store, run store.Run) (RunSummary, error) {
	samples, err := st.ReadSamples(ctx, run.ID)
	if err != nil {
		return RunSummary{}, err
	}
	return RunSummary{
		Run: run,
		LatencyReport: LatencyReport{
			Probe:    stats.Summarize(store.Latencies(samples)),
			EndToEnd: stats.Summarize(store.EndToEnd(samples)),
		},
	}, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
