package registry

import (
	"errors"
	"fmt"
)

// FieldMap copies one canonical cell into one secondary cell.
type FieldMap struct {
	Secondary int `json:"secondary"`
	Canonical int `json:"canonical"`
}

// Schema holds the fixed cell positions of both registries.
type Schema struct {
	CanonicalID    int `json:"canonical_id"`
	CanonicalFirst int `json:"canonical_first"`
	CanonicalLast  int `json:"canonical_last"`

	SecondaryFirst int `json:"secondary_first"`
	SecondaryLast  int `json:"secondary_last"`
	SecondaryLink  int `json:"secondary_link"`

	// Fields are applied in order when a link is found.
	Fields []FieldMap `json:"fields"`
}

// DefaultSchema returns the Baseball Databank Master / MLB Rosetta layout.
func DefaultSchema() Schema {
	return Schema{
		CanonicalID:    0,
		CanonicalFirst: 16,
		CanonicalLast:  17,
		SecondaryFirst: 1,
		SecondaryLast:  2,
		SecondaryLink:  6,
		Fields: []FieldMap{
			{Secondary: 8, Canonical: 0},   // baseball_db_id <- playerID
			{Secondary: 10, Canonical: 1},  // lahman_id <- lahmanID
			{Secondary: 14, Canonical: 32}, // baseball_reference_id <- bbrefID
			{Secondary: 6, Canonical: 30},  // retrosheet_id <- retroID
		},
	}
}

// Validate checks that every position is usable.
func (s Schema) Validate() error {
	var errs []error
	check := func(name string, pos int) {
		if pos < 0 {
			errs = append(errs, fmt.Errorf("%s: position %d is negative", name, pos))
		}
	}

	check("canonical_id", s.CanonicalID)
	check("canonical_first", s.CanonicalFirst)
	check("canonical_last", s.CanonicalLast)
	check("secondary_first", s.SecondaryFirst)
	check("secondary_last", s.SecondaryLast)
	check("secondary_link", s.SecondaryLink)

	if len(s.Fields) == 0 {
		errs = append(errs, errors.New("fields: at least one field mapping is required"))
	}
	seen := make(map[int]bool, len(s.Fields))
	for i, f := range s.Fields {
		check(fmt.Sprintf("fields[%d].secondary", i), f.Secondary)
		check(fmt.Sprintf("fields[%d].canonical", i), f.Canonical)
		if seen[f.Secondary] {
			errs = append(errs, fmt.Errorf("fields[%d]: secondary position %d mapped twice", i, f.Secondary))
		}
		seen[f.Secondary] = true
	}

	return errors.Join(errs...)
}

// CanonicalWidth is the minimum number of cells a canonical row must have.
func (s Schema) CanonicalWidth() int {
	w := max(s.CanonicalID, s.CanonicalFirst, s.CanonicalLast)
	for _, f := range s.Fields {
		w = max(w, f.Canonical)
	}
	return w + 1
}

// SecondaryWidth is the minimum number of cells a secondary row must have.
func (s Schema) SecondaryWidth() int {
	w := max(s.SecondaryFirst, s.SecondaryLast, s.SecondaryLink)
	for _, f := range s.Fields {
		w = max(w, f.Secondary)
	}
	return w + 1
}
