package nameindex

import (
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/bdblink/internal/cell"
)

// Separator joins first and last names in a Key. It never appears in names.
const Separator = "|"

// Key is the composite first|last lookup key.
//
// Two names match exactly when they are canonically equivalent: keys hold the
// NFC form, so composed and decomposed accents agree. Case, whitespace and
// compatibility forms such as ligatures still distinguish keys.
type Key string

// NewKey builds a key from first and last names.
// Strings are NFC normalized so composed and decomposed accents compare equal.
func NewKey(first, last string) Key {
	return Key(norm.NFC.String(first) + Separator + norm.NFC.String(last))
}

// KeyOf builds a key from name cells. Null cells contribute the empty string.
func KeyOf(first, last cell.Cell) Key {
	return NewKey(cell.Text(first), cell.Text(last))
}

// Index maps name keys to the canonical identifiers sharing that name.
// Several identifiers per key is expected; callers decide what ambiguity means.
// There are no deletions.
type Index struct {
	names map[Key]*IDSet
}

// New creates an empty index.
func New() *Index {
	return &Index{names: make(map[Key]*IDSet)}
}

// Add inserts id into the set for key, creating the set if absent.
func (x *Index) Add(key Key, id int64) {
	s, ok := x.names[key]
	if !ok {
		s = NewIDSet()
		x.names[key] = s
	}
	s.Add(id)
}

// Lookup returns a copy of the set for key, or an empty set for unknown keys.
func (x *Index) Lookup(key Key) *IDSet {
	s, ok := x.names[key]
	if !ok {
		return NewIDSet()
	}
	return s.Clone()
}

// Len returns the number of distinct keys.
func (x *Index) Len() int {
	return len(x.names)
}
