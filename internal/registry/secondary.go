package registry

import (
	"fmt"
	"iter"
	"log/slog"

	"github.com/roach88/bdblink/internal/cell"
	"github.com/roach88/bdblink/internal/nameindex"
	"github.com/roach88/bdblink/internal/tabular"
)

// SecondaryRecord is one normalized row of the secondary registry.
type SecondaryRecord struct {
	// Line is the 1-based source line.
	Line int

	// Cells holds the normalized values (Null, Int or String).
	Cells []cell.Cell

	// Linked is true when the link cell already held an integer identifier.
	// It is bookkeeping only and is never written out.
	Linked bool
}

// Secondary is the loaded secondary registry.
type Secondary struct {
	// Header is the first row, kept verbatim for output.
	Header []string

	// Records are in source order, blank rows excluded.
	Records []*SecondaryRecord

	// Linked holds every canonical identifier already claimed by a record.
	Linked *nameindex.IDSet
}

// LoadSecondary reads the secondary registry. The first row is the header.
//
// For each remaining non-blank row the link cell is inspected before
// normalization: any value other than the exact literal NULL that parses as
// an integer marks the record as linked and claims that identifier. Every
// cell is then normalized with cell.ParseSecondary.
func LoadSecondary(rows iter.Seq2[tabular.Row, error], schema Schema) (*Secondary, error) {
	sec := &Secondary{Linked: nameindex.NewIDSet()}
	width := schema.SecondaryWidth()
	haveHeader := false

	for row, err := range rows {
		if err != nil {
			return nil, fmt.Errorf("load secondary: %w", err)
		}
		if !haveHeader {
			sec.Header = row.Fields
			haveHeader = true
			continue
		}
		if len(row.Fields) == 0 {
			continue
		}
		if len(row.Fields) < width {
			return nil, widthError(SourceSecondary, row.Line, len(row.Fields), width)
		}

		rec := &SecondaryRecord{Line: row.Line}
		if id, ok := cell.LinkID(row.Fields[schema.SecondaryLink]); ok {
			sec.Linked.Add(id)
			rec.Linked = true
		}
		rec.Cells = cell.ParseSecondaryRow(row.Fields)
		sec.Records = append(sec.Records, rec)
	}

	if !haveHeader {
		return nil, &SchemaError{Source: SourceSecondary, Message: "missing header row"}
	}

	slog.Debug("secondary registry loaded",
		"records", len(sec.Records),
		"linked_ids", sec.Linked.Len(),
	)
	return sec, nil
}
