package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const runColumns = `id, seq, canonical_path, secondary_path, out_path, dry_run,
	total, already_linked, unmatched, ambiguous, linked, fields_updated`

// Runs returns every recorded run ordered by seq.
// Returns an empty slice (not nil) when no runs exist.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadRun returns one run. Returns ErrNotFound if id is unknown.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

// Decisions returns the decisions of a run ordered by line.
// When outcome is non-empty only decisions with that outcome are returned.
func (s *Store) Decisions(ctx context.Context, runID, outcome string) ([]Decision, error) {
	query := `
		SELECT line, outcome, name_key, candidates, canonical_id, changed
		FROM decisions
		WHERE run_id = ?`
	args := []any{runID}
	if outcome != "" {
		query += ` AND outcome = ?`
		args = append(args, outcome)
	}
	query += ` ORDER BY line ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	decisions := []Decision{}
	for rows.Next() {
		var (
			d           Decision
			canonicalID sql.NullInt64
			changed     string
		)
		if err := rows.Scan(&d.Line, &d.Outcome, &d.NameKey, &d.Candidates, &canonicalID, &changed); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		if canonicalID.Valid {
			id := canonicalID.Int64
			d.CanonicalID = &id
		}
		if d.Changed, err = unmarshalChanged(changed); err != nil {
			return nil, fmt.Errorf("decision line %d: %w", d.Line, err)
		}
		decisions = append(decisions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate decisions: %w", err)
	}
	return decisions, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	err := row.Scan(
		&run.ID,
		&run.Seq,
		&run.CanonicalPath,
		&run.SecondaryPath,
		&run.OutPath,
		&run.DryRun,
		&run.Stats.Total,
		&run.Stats.AlreadyLinked,
		&run.Stats.Unmatched,
		&run.Stats.Ambiguous,
		&run.Stats.Linked,
		&run.Stats.FieldsUpdated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	return run, nil
}
