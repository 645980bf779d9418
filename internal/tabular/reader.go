package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
)

// Row is one record of a delimited file.
type Row struct {
	// Line is the 1-based line on which the record starts.
	Line int

	// Fields holds the raw cell strings.
	Fields []string
}

// Rows lazily yields the records of r. Rows may have varying widths and
// unquoted fields may contain bare quotes. Iteration stops after the first
// error.
func Rows(r io.Reader) iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		cr.ReuseRecord = false
		cr.LazyQuotes = true

		for {
			fields, err := cr.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(Row{}, fmt.Errorf("read row: %w", err))
				return
			}
			line, _ := cr.FieldPos(0)
			if !yield(Row{Line: line, Fields: fields}, nil) {
				return
			}
		}
	}
}

// ReadFile opens path and passes its rows to fn, closing the file afterwards
// even when fn fails.
func ReadFile(path string, fn func(iter.Seq2[Row, error]) error) (err error) {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()

	return fn(Rows(f))
}

// FromRecords adapts in-memory records to a row sequence, numbering them
// from line 1. Intended for tests and callers that already hold rows.
func FromRecords(records [][]string) iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		for i, fields := range records {
			if !yield(Row{Line: i + 1, Fields: fields}, nil) {
				return
			}
		}
	}
}
