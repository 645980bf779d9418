package store

import (
	"context"
	"database/sql"
	"fmt"
)

// WriteRun records a run and its decisions atomically.
// The run's Seq is assigned here and returned; run.Seq is ignored.
// Writing a run ID that already exists is an error.
func (s *Store) WriteRun(ctx context.Context, run Run, decisions []Decision) (seq int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("write run: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, canonical_path, secondary_path, out_path, dry_run,
		 total, already_linked, unmatched, ambiguous, linked, fields_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		seq,
		run.CanonicalPath,
		run.SecondaryPath,
		run.OutPath,
		run.DryRun,
		run.Stats.Total,
		run.Stats.AlreadyLinked,
		run.Stats.Unmatched,
		run.Stats.Ambiguous,
		run.Stats.Linked,
		run.Stats.FieldsUpdated,
	)
	if err != nil {
		return 0, fmt.Errorf("write run: insert run %s: %w", run.ID, err)
	}

	if err := writeDecisions(ctx, tx, run.ID, decisions); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("write run: commit: %w", err)
	}

	return seq, nil
}

func writeDecisions(ctx context.Context, tx *sql.Tx, runID string, decisions []Decision) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO decisions
		(run_id, line, outcome, name_key, candidates, canonical_id, changed)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("write run: prepare decisions: %w", err)
	}
	defer stmt.Close()

	for _, d := range decisions {
		changed, err := marshalChanged(d.Changed)
		if err != nil {
			return fmt.Errorf("write run: line %d: %w", d.Line, err)
		}

		var canonicalID sql.NullInt64
		if d.CanonicalID != nil {
			canonicalID = sql.NullInt64{Int64: *d.CanonicalID, Valid: true}
		}

		if _, err := stmt.ExecContext(ctx, runID, d.Line, d.Outcome, d.NameKey, d.Candidates, canonicalID, changed); err != nil {
			return fmt.Errorf("write run: insert decision line %d: %w", d.Line, err)
		}
	}
	return nil
}
