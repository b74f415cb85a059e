package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/framewalk/internal/walk"
)

// WriteRun inserts a run record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	hostText, err := marshalHost(run.Host)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, scenario, seed, height, width, origin_row, origin_col, max_steps, interval_us,
		 host, config_hash, started_at, unresolved)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Scenario,
		string(run.Walk.Seed),
		run.Walk.Bounds.Height,
		run.Walk.Bounds.Width,
		run.Walk.Origin.Row,
		run.Walk.Origin.Col,
		run.Walk.MaxSteps,
		run.Walk.Interval.Microseconds(),
		hostText,
		run.ConfigHash,
		run.StartedAt.UnixNano(),
		run.Unresolved,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// WriteSteps inserts a run's steps in one transaction.
// The run must exist (foreign key constraint).
func (s *Store) WriteSteps(ctx context.Context, runID string, steps []walk.Step) error {
	return s.inTx(ctx, "write steps", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO steps (run_id, idx, pos_row, pos_col)
			VALUES (?, ?, ?, ?)
			ON CONFLICT DO NOTHING
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, st := range steps {
			if _, err := stmt.ExecContext(ctx, runID, st.Index, st.Row, st.Col); err != nil {
				return fmt.Errorf("step %d: %w", st.Index, err)
			}
		}
		return nil
	})
}

// WriteSamples inserts a run's samples in one transaction.
// The run must exist (foreign key constraint).
func (s *Store) WriteSamples(ctx context.Context, runID string, samples []Sample) error {
	return s.inTx(ctx, "write samples", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO samples (run_id, seq, issued_ns, presented_ns, latency_ns, visible_ns)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT DO NOTHING
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, sm := range samples {
			visible := sql.NullInt64{Int64: int64(sm.Visible), Valid: sm.HasVisible}
			if _, err := stmt.ExecContext(ctx, runID, sm.Seq,
				int64(sm.Issued), int64(sm.Presented), int64(sm.Latency), visible); err != nil {
				return fmt.Errorf("sample %d: %w", sm.Seq, err)
			}
		}
		return nil
	})
}

// inTx runs fn in a transaction, committing if it returns nil.
func (s *Store) inTx(ctx context.Context, op string, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}
	return nil
}
