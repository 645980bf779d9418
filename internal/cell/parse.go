package cell

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseSecondary types a raw secondary-registry cell.
//
//   - NULL in any case becomes Null
//   - ASCII digits become Int (values overflowing int64 stay String)
//   - anything else stays String
func ParseSecondary(raw string) Cell {
	if IsNullText(raw) {
		return Null{}
	}
	if IsDigits(raw) {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err == nil {
			return Int(n)
		}
	}
	return String(raw)
}

// ParseSecondaryRow applies ParseSecondary to every cell of a row.
func ParseSecondaryRow(raw []string) []Cell {
	out := make([]Cell, len(raw))
	for i, s := range raw {
		out[i] = ParseSecondary(s)
	}
	return out
}

// ParseCanonical types a raw canonical-registry cell.
// The canonical file carries numbers unquoted, so any numeric literal is a
// Float; an empty cell is Null; everything else is a String.
func ParseCanonical(raw string) Cell {
	if raw == "" {
		return Null{}
	}
	if looksNumeric(raw) {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return Float(f)
		}
	}
	return String(raw)
}

// ParseCanonicalRow applies ParseCanonical to every cell of a row.
func ParseCanonicalRow(raw []string) []Cell {
	out := make([]Cell, len(raw))
	for i, s := range raw {
		out[i] = ParseCanonical(s)
	}
	return out
}

// looksNumeric rejects words ParseFloat would accept ("NaN", "Inf", "infinity"),
// which are legitimate name cells.
func looksNumeric(s string) bool {
	return strings.Trim(s, "0123456789+-.eE") == "" && strings.ContainsAny(s, "0123456789")
}

// LinkID parses the identifier held by a secondary link cell.
// Surrounding whitespace and a leading sign are accepted. The literal NULL
// (exact case) and anything that is not an integer report ok=false.
func LinkID(raw string) (id int64, ok bool) {
	if raw == NullLiteral {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// AsID converts a canonical identifier cell to an integer.
// Floats must be integral; strings must parse as integers.
func AsID(c Cell) (int64, error) {
	switch v := c.(type) {
	case Int:
		return int64(v), nil
	case Float:
		f := float64(v)
		if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
			return 0, fmt.Errorf("identifier %v is not an integer", f)
		}
		if f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, fmt.Errorf("identifier %v out of range", f)
		}
		return int64(f), nil
	case String:
		n, err := strconv.ParseInt(strings.TrimSpace(string(v)), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("identifier %q is not an integer", string(v))
		}
		return n, nil
	case nil, Null:
		return 0, fmt.Errorf("identifier is missing")
	default:
		return 0, fmt.Errorf("unknown cell type: %T", c)
	}
}
