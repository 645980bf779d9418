package nameindex

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// IDSet is a set of canonical identifiers backed by a 64-bit Roaring bitmap.
// Identifiers are stored as their two's-complement uint64 image, so negative
// identifiers round-trip unchanged.
type IDSet struct {
	rb *roaring64.Bitmap
}

// NewIDSet creates a set holding ids.
func NewIDSet(ids ...int64) *IDSet {
	s := &IDSet{rb: roaring64.NewBitmap()}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id.
func (s *IDSet) Add(id int64) {
	s.rb.Add(uint64(id))
}

// Contains reports whether id is in the set. A nil set is empty.
func (s *IDSet) Contains(id int64) bool {
	if s == nil {
		return false
	}
	return s.rb.Contains(uint64(id))
}

// Len returns the number of identifiers in the set.
func (s *IDSet) Len() int {
	if s == nil {
		return 0
	}
	return int(s.rb.GetCardinality())
}

// Clone returns an independent copy of the set.
func (s *IDSet) Clone() *IDSet {
	if s == nil {
		return NewIDSet()
	}
	return &IDSet{rb: s.rb.Clone()}
}

// IDs returns the identifiers in ascending bitmap order.
func (s *IDSet) IDs() []int64 {
	if s == nil {
		return nil
	}
	raw := s.rb.ToArray()
	out := make([]int64, len(raw))
	for i, v := range raw {
		out[i] = int64(v)
	}
	return out
}

// All iterates the identifiers in ascending bitmap order.
func (s *IDSet) All() iter.Seq[int64] {
	return func(yield func(int64) bool) {
		if s == nil {
			return
		}
		it := s.rb.Iterator()
		for it.HasNext() {
			if !yield(int64(it.Next())) {
				return
			}
		}
	}
}

// ExactlyOne returns the single member of s.
// ok is false when s is empty or holds more than one identifier.
func ExactlyOne(s *IDSet) (id int64, ok bool) {
	if s.Len() != 1 {
		return 0, false
	}
	return int64(s.rb.Minimum()), true
}
