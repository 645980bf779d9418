package testutil

import (
	"bytes"
	"slices"
	"strconv"

	"github.com/roach88/bdblink/internal/tabular"
)

// Registry widths of the default schema fixtures.
const (
	CanonicalWidth = 33
	SecondaryWidth = 19
)

// SecondaryHeader is the MLB Rosetta header row.
var SecondaryHeader = []string{
	"id", "first", "last", "current", "bis_id", "bis_milb_id", "retrosheet_id",
	"stats_inc_id", "baseball_db_id", "baseball_prospectus_id", "lahman_id",
	"westbay_id", "korea_kbo_id", "japan_npb_id", "baseball_reference_id",
	"uuid", "duplicate", "created_at", "updated_at",
}

// Player describes the canonical cells the linker reads.
type Player struct {
	ID     int64
	Lahman string
	First  string
	Last   string
	Retro  string
	BBRef  string
}

// CanonicalRow renders p as a Master row. Unused cells are empty.
func CanonicalRow(p Player) []string {
	row := make([]string, CanonicalWidth)
	row[0] = strconv.FormatInt(p.ID, 10)
	row[1] = p.Lahman
	row[16] = p.First
	row[17] = p.Last
	row[30] = p.Retro
	row[32] = p.BBRef
	return row
}

// SecondaryRow renders a Rosetta row with every identifier NULL.
// set overrides individual cells by position.
func SecondaryRow(id int, first, last string, set map[int]string) []string {
	row := make([]string, SecondaryWidth)
	for i := range row {
		row[i] = "NULL"
	}
	row[0] = strconv.Itoa(id)
	row[1] = first
	row[2] = last
	row[3] = "1"
	row[16] = "0"
	row[17] = "2010-01-01 00:00:00"
	row[18] = "2010-01-01 00:00:00"
	for pos, v := range set {
		row[pos] = v
	}
	return row
}

// CSV renders rows as delimited text. It panics on failure, which only
// happens for invalid rows in test code.
func CSV(header []string, rows ...[]string) string {
	var buf bytes.Buffer
	if err := tabular.Write(&buf, header, slices.Values(rows)); err != nil {
		panic(err)
	}
	return buf.String()
}

// CanonicalCSV renders players as a headerless Master file.
func CanonicalCSV(players ...Player) string {
	if len(players) == 0 {
		return ""
	}
	rows := make([][]string, len(players))
	for i, p := range players {
		rows[i] = CanonicalRow(p)
	}
	return CSV(rows[0], rows[1:]...)
}
