package registry

import (
	"fmt"
	"iter"
	"log/slog"

	"github.com/roach88/bdblink/internal/cell"
	"github.com/roach88/bdblink/internal/nameindex"
	"github.com/roach88/bdblink/internal/tabular"
)

// CanonicalRecord is one row of the canonical registry. Immutable once loaded.
type CanonicalRecord struct {
	ID    int64
	Line  int
	Cells []cell.Cell
}

// Cell returns the cell at pos, or Null when pos is out of range.
func (r *CanonicalRecord) Cell(pos int) cell.Cell {
	if pos < 0 || pos >= len(r.Cells) {
		return cell.Null{}
	}
	return r.Cells[pos]
}

// Canonical is the loaded canonical registry restricted to unclaimed identities.
type Canonical struct {
	records map[int64]*CanonicalRecord
	names   *nameindex.Index

	// Skipped counts rows whose identifier was already claimed.
	Skipped int
}

// Get returns the record for id.
func (c *Canonical) Get(id int64) (*CanonicalRecord, bool) {
	r, ok := c.records[id]
	return r, ok
}

// Names returns the name index over unclaimed identities.
func (c *Canonical) Names() *nameindex.Index {
	return c.names
}

// Len returns the number of stored records.
func (c *Canonical) Len() int {
	return len(c.records)
}

// LoadCanonical reads the canonical registry. The file has no header.
//
// Rows whose identifier is in linked are skipped entirely: they are neither
// stored nor indexed. Every other row is stored by identifier and indexed
// under its first|last name key. A repeated identifier replaces the stored
// row; the index keeps set semantics.
func LoadCanonical(rows iter.Seq2[tabular.Row, error], linked *nameindex.IDSet, schema Schema) (*Canonical, error) {
	c := &Canonical{
		records: make(map[int64]*CanonicalRecord),
		names:   nameindex.New(),
	}
	width := schema.CanonicalWidth()

	for row, err := range rows {
		if err != nil {
			return nil, fmt.Errorf("load canonical: %w", err)
		}
		if len(row.Fields) == 0 {
			continue
		}
		if len(row.Fields) < width {
			return nil, widthError(SourceCanonical, row.Line, len(row.Fields), width)
		}

		cells := cell.ParseCanonicalRow(row.Fields)
		id, err := cell.AsID(cells[schema.CanonicalID])
		if err != nil {
			return nil, &SchemaError{Source: SourceCanonical, Line: row.Line, Message: err.Error()}
		}

		if linked.Contains(id) {
			c.Skipped++
			continue
		}

		c.records[id] = &CanonicalRecord{ID: id, Line: row.Line, Cells: cells}
		c.names.Add(nameindex.KeyOf(cells[schema.CanonicalFirst], cells[schema.CanonicalLast]), id)
	}

	slog.Debug("canonical registry loaded",
		"records", len(c.records),
		"names", c.names.Len(),
		"skipped", c.Skipped,
	)
	return c, nil
}
