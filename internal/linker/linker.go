package linker

import (
	"context"
	"log/slog"

	"github.com/roach88/bdblink/internal/cell"
	"github.com/roach88/bdblink/internal/nameindex"
	"github.com/roach88/bdblink/internal/registry"
)

// Result is the linker's verdict on one secondary record.
type Result struct {
	// Line is the source line of the record.
	Line int

	// Cells is the output row; the record's Linked flag is not part of it.
	Cells []cell.Cell

	// Outcome classifies the decision.
	Outcome Outcome

	// Key is the name key that was looked up (empty for already linked records).
	Key nameindex.Key

	// Candidates is the number of canonical entries sharing Key.
	Candidates int

	// CanonicalID is the matched identifier when Outcome is OutcomeLinked.
	CanonicalID int64

	// Changed lists the secondary positions Update filled in, in field order.
	Changed []int
}

// Linker matches secondary records against a loaded canonical registry.
type Linker struct {
	canonical *registry.Canonical
	schema    registry.Schema
}

// New creates a linker over canonical using schema positions.
func New(canonical *registry.Canonical, schema registry.Schema) *Linker {
	return &Linker{canonical: canonical, schema: schema}
}

// Link decides one record. rec is not modified.
func (l *Linker) Link(rec *registry.SecondaryRecord) Result {
	res := Result{Line: rec.Line, Cells: cell.CloneRow(rec.Cells)}
	if rec.Linked {
		res.Outcome = OutcomeAlreadyLinked
		return res
	}

	res.Key = nameindex.KeyOf(cellAt(rec.Cells, l.schema.SecondaryFirst), cellAt(rec.Cells, l.schema.SecondaryLast))
	candidates := l.canonical.Names().Lookup(res.Key)
	res.Candidates = candidates.Len()

	id, ok := nameindex.ExactlyOne(candidates)
	if !ok {
		if res.Candidates == 0 {
			res.Outcome = OutcomeUnmatched
		} else {
			res.Outcome = OutcomeAmbiguous
		}
		return res
	}

	canon, ok := l.canonical.Get(id)
	if !ok {
		// Index and records are built together; a miss means a corrupt registry.
		slog.Warn("indexed canonical identifier has no record", "id", id, "key", string(res.Key))
		res.Outcome = OutcomeUnmatched
		return res
	}

	res.Outcome = OutcomeLinked
	res.CanonicalID = id
	for _, f := range l.schema.Fields {
		if f.Secondary >= len(res.Cells) {
			continue
		}
		current := res.Cells[f.Secondary]
		next := Update(current, canon.Cell(f.Canonical))
		if !cell.Equal(current, next) {
			res.Cells[f.Secondary] = next
			res.Changed = append(res.Changed, f.Secondary)
		}
	}

	slog.Debug("linked record",
		"line", rec.Line,
		"key", string(res.Key),
		"canonical_id", id,
		"changed", res.Changed,
	)
	return res
}

// LinkAll decides every record in order. It stops with ctx's error when ctx
// is done before the last record.
func (l *Linker) LinkAll(ctx context.Context, records []*registry.SecondaryRecord) ([]Result, Stats, error) {
	results := make([]Result, 0, len(records))
	var stats Stats
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, Stats{}, err
		}
		r := l.Link(rec)
		stats.Add(r)
		results = append(results, r)
	}
	return results, stats, nil
}

func cellAt(cells []cell.Cell, pos int) cell.Cell {
	if pos < 0 || pos >= len(cells) {
		return cell.Null{}
	}
	return cells[pos]
}
