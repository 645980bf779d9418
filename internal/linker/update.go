package linker

import (
	"github.com/roach88/bdblink/internal/cell"
)

// Update merges one canonical candidate value into a secondary value.
//
// A current value that is non-null and whose text is not NULL (any case) is
// kept. Otherwise the candidate is adopted when it is numeric (floats are
// truncated to integers) or a non-empty alphanumeric string. Any other
// candidate leaves current unchanged.
func Update(current, candidate cell.Cell) cell.Cell {
	if !cell.IsNull(current) && !cell.IsNullText(cell.Text(current)) {
		return current
	}

	switch v := candidate.(type) {
	case cell.Float:
		return cell.Int(int64(v))
	case cell.Int:
		return v
	case cell.String:
		if cell.IsAlnum(string(v)) {
			return v
		}
		return current
	case cell.Null, nil:
		return current
	default:
		return current
	}
}
