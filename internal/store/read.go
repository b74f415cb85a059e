package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/framewalk/internal/walk"
)

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

const runColumns = `id, scenario, seed, height, width, origin_row, origin_col, max_steps,
	interval_us, host, config_hash, started_at, unresolved`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run        Run
		seed       string
		intervalUs int64
		hostText   string
		startedAt  int64
	)
	err := row.Scan(
		&run.ID,
		&run.Scenario,
		&seed,
		&run.Walk.Bounds.Height,
		&run.Walk.Bounds.Width,
		&run.Walk.Origin.Row,
		&run.Walk.Origin.Col,
		&run.Walk.MaxSteps,
		&intervalUs,
		&hostText,
		&run.ConfigHash,
		&startedAt,
		&run.Unresolved,
	)
	if err != nil {
		return Run{}, err
	}

	run.Walk.Seed = walk.Seed(seed)
	run.Walk.Interval = time.Duration(intervalUs) * time.Microsecond
	run.StartedAt = time.Unix(0, startedAt).UTC()
	run.Host, err = unmarshalHost(hostText)
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

// ReadRun returns the run with the given ID, or ErrRunNotFound.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns archived runs, newest first. A non-empty configHash
// restricts the list to runs of that walk configuration.
//
// Returns an empty slice (not nil) if there are no runs.
func (s *Store) ListRuns(ctx context.Context, configHash string) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	var args []any
	if configHash != "" {
		query += ` WHERE config_hash = ?`
		args = append(args, configHash)
	}
	query += ` ORDER BY started_at DESC, id COLLATE BINARY DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadSteps returns a run's steps ordered by index.
func (s *Store) ReadSteps(ctx context.Context, runID string) ([]walk.Step, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT idx, pos_row, pos_col
		FROM steps
		WHERE run_id = ?
		ORDER BY idx ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	steps := []walk.Step{}
	for rows.Next() {
		var st walk.Step
		if err := rows.Scan(&st.Index, &st.Row, &st.Col); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		steps = append(steps, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate steps: %w", err)
	}
	return steps, nil
}

// ReadSamples returns a run's samples ordered by seq.
func (s *Store) ReadSamples(ctx context.Context, runID string) ([]Sample, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, issued_ns, presented_ns, latency_ns, visible_ns
		FROM samples
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	samples := []Sample{}
	for rows.Next() {
		var (
			sm                          Sample
			issued, presented, latency int64
			visible                     sql.NullInt64
		)
		if err := rows.Scan(&sm.Seq, &issued, &presented, &latency, &visible); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		sm.Issued = time.Duration(issued)
		sm.Presented = time.Duration(presented)
		sm.Latency = time.Duration(latency)
		if visible.Valid {
			sm.Visible = time.Duration(visible.Int64)
			sm.HasVisible = true
		}
		samples = append(samples, sm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate samples: %w", err)
	}
	return samples, nil
}
