package cell

import (
	"strconv"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NullLiteral is the textual marker for an absent value in registry files.
const NullLiteral = "NULL"

// Cell is a sealed interface representing a single typed cell value.
// Only Null, Int, Float and String implement it.
type Cell interface {
	cell() // Sealed
}

// Null represents an absent value.
type Null struct{}

func (Null) cell() {}

// Int represents an integer cell.
type Int int64

func (Int) cell() {}

// Float represents a numeric cell read from a pre-typed source.
type Float float64

func (Float) cell() {}

// String represents any other textual cell.
type String string

func (String) cell() {}

// IsNull reports whether c is absent. A nil Cell counts as absent.
func IsNull(c Cell) bool {
	switch c.(type) {
	case nil, Null:
		return true
	default:
		return false
	}
}

// Text renders c the way it appears in a delimited file.
// Null renders as the empty string; callers choose their own null literal.
func Text(c Cell) string {
	switch v := c.(type) {
	case nil, Null:
		return ""
	case Int:
		return strconv.FormatInt(int64(v), 10)
	case Float:
		return strconv.FormatFloat(float64(v), 'f', -1, 64)
	case String:
		return string(v)
	default:
		panic("cell: unknown cell type")
	}
}

// Render is Text with null cells replaced by nullText.
func Render(c Cell, nullText string) string {
	if IsNull(c) {
		return nullText
	}
	return Text(c)
}

// RenderRow renders a whole row with Render.
func RenderRow(cells []Cell, nullText string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = Render(c, nullText)
	}
	return out
}

// upper uses full Unicode case mapping (e.g. "ß" -> "SS"), unlike strings.ToUpper.
var upper = cases.Upper(language.Und)

// IsNullText reports whether s is the NULL literal in any letter case.
func IsNullText(s string) bool {
	return upper.String(s) == NullLiteral
}

// IsDigits reports whether s is non-empty and made only of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// IsAlnum reports whether s is non-empty and every rune is a letter or a
// number. Numbers include letterlike and other numerics such as Ⅻ and ½.
func IsAlnum(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}

// Equal reports whether a and b hold the same variant and value.
func Equal(a, b Cell) bool {
	if IsNull(a) || IsNull(b) {
		return IsNull(a) && IsNull(b)
	}
	return a == b
}

// CloneRow returns a copy of cells that can be modified independently.
func CloneRow(cells []Cell) []Cell {
	out := make([]Cell, len(cells))
	copy(out, cells)
	return out
}
