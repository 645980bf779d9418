package registry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bdblink/internal/cell"
	"github.com/roach88/bdblink/internal/nameindex"
	"github.com/roach88/bdblink/internal/tabular"
	"github.com/roach88/bdblink/internal/testutil"
)

func loadSecondary(t *testing.T, rows ...[]string) *Secondary {
	t.Helper()
	input := testutil.CSV(testutil.SecondaryHeader, rows...)
	sec, err := LoadSecondary(tabular.Rows(strings.NewReader(input)), DefaultSchema())
	require.NoError(t, err)
	return sec
}

func TestLoadSecondary_Header(t *testing.T) {
	sec := loadSecondary(t)
	assert.Equal(t, testutil.SecondaryHeader, sec.Header)
	assert.Empty(t, sec.Records)
	assert.Equal(t, 0, sec.Linked.Len())
}

func TestLoadSecondary_LinkDetection(t *testing.T) {
	sec := loadSecondary(t,
		testutil.SecondaryRow(1, "Jane", "Doe", nil),
		testutil.SecondaryRow(2, "John", "Smith", map[int]string{6: "1500"}),
		testutil.SecondaryRow(3, "Ann", "Lee", map[int]string{6: "leea001"}),
		testutil.SecondaryRow(4, "Bo", "Fox", map[int]string{6: "null"}),
	)

	require.Len(t, sec.Records, 4)
	assert.False(t, sec.Records[0].Linked)
	assert.True(t, sec.Records[1].Linked)
	assert.False(t, sec.Records[2].Linked, "malformed link is treated as absent")
	assert.False(t, sec.Records[3].Linked)

	assert.Equal(t, []int64{1500}, sec.Linked.IDs())
}

func TestLoadSecondary_Normalization(t *testing.T) {
	sec := loadSecondary(t, testutil.SecondaryRow(7, "Jane", "Doe", map[int]string{
		4:  "123",
		5:  "null",
		6:  "doej001",
		10: "doeja01",
	}))

	rec := sec.Records[0]
	assert.Equal(t, cell.Int(7), rec.Cells[0])
	assert.Equal(t, cell.String("Jane"), rec.Cells[1])
	assert.Equal(t, cell.Int(123), rec.Cells[4])
	assert.Equal(t, cell.Null{}, rec.Cells[5])
	assert.Equal(t, cell.String("doej001"), rec.Cells[6])
	assert.Equal(t, cell.Null{}, rec.Cells[8])
	assert.Equal(t, cell.String("2010-01-01 00:00:00"), rec.Cells[17])
	assert.Equal(t, 2, rec.Line)
}

func TestLoadSecondary_SkipsBlankRows(t *testing.T) {
	rows := [][]string{
		testutil.SecondaryHeader,
		{},
		testutil.SecondaryRow(1, "Jane", "Doe", nil),
	}
	sec, err := LoadSecondary(tabular.FromRecords(rows), DefaultSchema())
	require.NoError(t, err)
	require.Len(t, sec.Records, 1)
	assert.Equal(t, 3, sec.Records[0].Line)
}

func TestLoadSecondary_Errors(t *testing.T) {
	_, err := LoadSecondary(tabular.FromRecords(nil), DefaultSchema())
	require.Error(t, err)
	assert.True(t, IsSchemaError(err))

	rows := [][]string{testutil.SecondaryHeader, {"1", "Jane", "Doe"}}
	_, err = LoadSecondary(tabular.FromRecords(rows), DefaultSchema())
	require.Error(t, err)

	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, SourceSecondary, se.Source)
	assert.Equal(t, 2, se.Line)
	assert.Contains(t, se.Error(), "line 2")
}

func TestLoadCanonical(t *testing.T) {
	input := testutil.CanonicalCSV(
		testutil.Player{ID: 1001, Lahman: "doeja01", First: "Jane", Last: "Doe", Retro: "doej001", BBRef: "doeja01"},
		testutil.Player{ID: 1002, Lahman: "smitjo01", First: "John", Last: "Smith"},
		testutil.Player{ID: 1003, Lahman: "smitjo02", First: "John", Last: "Smith"},
	)

	can, err := LoadCanonical(tabular.Rows(strings.NewReader(input)), nameindex.NewIDSet(), DefaultSchema())
	require.NoError(t, err)

	assert.Equal(t, 3, can.Len())
	assert.Equal(t, 0, can.Skipped)

	rec, ok := can.Get(1001)
	require.True(t, ok)
	assert.Equal(t, cell.Float(1001), rec.Cell(0))
	assert.Equal(t, cell.String("doeja01"), rec.Cell(1))
	assert.Equal(t, cell.Null{}, rec.Cell(2))
	assert.Equal(t, cell.Null{}, rec.Cell(99))

	assert.Equal(t, 1, can.Names().Lookup(nameindex.NewKey("Jane", "Doe")).Len())
	assert.Equal(t, 2, can.Names().Lookup(nameindex.NewKey("John", "Smith")).Len())
}

func TestLoadCanonical_SkipsLinked(t *testing.T) {
	input := testutil.CanonicalCSV(
		testutil.Player{ID: 1002, First: "John", Last: "Smith"},
		testutil.Player{ID: 1003, First: "John", Last: "Smith"},
	)

	can, err := LoadCanonical(tabular.Rows(strings.NewReader(input)), nameindex.NewIDSet(1002), DefaultSchema())
	require.NoError(t, err)

	_, ok := can.Get(1002)
	assert.False(t, ok)
	assert.Equal(t, 1, can.Skipped)

	id, ok := nameindex.ExactlyOne(can.Names().Lookup(nameindex.NewKey("John", "Smith")))
	require.True(t, ok)
	assert.Equal(t, int64(1003), id)
}

func TestLoadCanonical_Errors(t *testing.T) {
	row := testutil.CanonicalRow(testutil.Player{ID: 1})
	row[0] = "abc"
	_, err := LoadCanonical(tabular.FromRecords([][]string{row}), nameindex.NewIDSet(), DefaultSchema())
	require.Error(t, err)

	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, SourceCanonical, se.Source)
	assert.Equal(t, 1, se.Line)

	short := [][]string{testutil.CanonicalRow(testutil.Player{ID: 1}), {"2", "x"}}
	_, err = LoadCanonical(tabular.FromRecords(short), nameindex.NewIDSet(), DefaultSchema())
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 2, se.Line)
	assert.Contains(t, se.Message, "need at least 33")

	row[0] = "10.5"
	_, err = LoadCanonical(tabular.FromRecords([][]string{row}), nameindex.NewIDSet(), DefaultSchema())
	assert.True(t, IsSchemaError(err))
}

func TestSchema(t *testing.T) {
	s := DefaultSchema()
	require.NoError(t, s.Validate())
	assert.Equal(t, 33, s.CanonicalWidth())
	assert.Equal(t, 15, s.SecondaryWidth())

	bad := DefaultSchema()
	bad.SecondaryLink = -1
	bad.Fields = append(bad.Fields, FieldMap{Secondary: 8, Canonical: 2})
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "secondary_link")
	assert.Contains(t, err.Error(), "mapped twice")

	empty := DefaultSchema()
	empty.Fields = nil
	assert.Error(t, empty.Validate())
}

func TestLoad_BareQuotesInNames(t *testing.T) {
	bare := func(csv string) string {
		return strings.ReplaceAll(csv, `"Jim ""Catfish"""`, `Jim "Catfish"`)
	}
	secInput := bare(testutil.CSV(testutil.SecondaryHeader,
		testutil.SecondaryRow(5, `Jim "Catfish"`, "Hunter", nil)))
	canInput := bare(testutil.CanonicalCSV(
		testutil.Player{ID: 4001, Lahman: "huntca01", First: `Jim "Catfish"`, Last: "Hunter"}))
	require.Contains(t, secInput, "5,Jim \"Catfish\",Hunter,")

	sec, err := LoadSecondary(tabular.Rows(strings.NewReader(secInput)), DefaultSchema())
	require.NoError(t, err)
	require.Len(t, sec.Records, 1)
	rec := sec.Records[0]
	assert.Equal(t, cell.String(`Jim "Catfish"`), rec.Cells[1])

	can, err := LoadCanonical(tabular.Rows(strings.NewReader(canInput)), sec.Linked, DefaultSchema())
	require.NoError(t, err)

	id, ok := nameindex.ExactlyOne(can.Names().Lookup(nameindex.KeyOf(rec.Cells[1], rec.Cells[2])))
	require.True(t, ok)
	assert.Equal(t, int64(4001), id)
}
