package tabular

import (
	"bytes"
	"errors"
	"io"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, seq iter.Seq2[Row, error]) []Row {
	t.Helper()
	var rows []Row
	for row, err := range seq {
		require.NoError(t, err)
		rows = append(rows, row)
	}
	return rows
}

func TestRows(t *testing.T) {
	input := "id,first,last\n1,Jane,Doe\n\n2,\"O,Neil\",Smith,extra\n"
	rows := collect(t, Rows(strings.NewReader(input)))

	require.Len(t, rows, 3)
	assert.Equal(t, Row{Line: 1, Fields: []string{"id", "first", "last"}}, rows[0])
	assert.Equal(t, Row{Line: 2, Fields: []string{"1", "Jane", "Doe"}}, rows[1])
	assert.Equal(t, Row{Line: 4, Fields: []string{"2", "O,Neil", "Smith", "extra"}}, rows[2])
}

func TestRows_BareQuotes(t *testing.T) {
	input := "id,first,last\n5,Jim \"Catfish\",Hunter\n6,\"Al \"\"Red\"\"\",Schoendienst\n"
	rows := collect(t, Rows(strings.NewReader(input)))

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"5", `Jim "Catfish"`, "Hunter"}, rows[1].Fields)
	assert.Equal(t, []string{"6", `Al "Red"`, "Schoendienst"}, rows[2].Fields)
}

func TestRows_StopsOnError(t *testing.T) {
	errDisk := errors.New("disk gone")
	r := io.MultiReader(strings.NewReader("a,b\n"), iotest.ErrReader(errDisk))

	var rows []Row
	var errs []error
	for row, err := range Rows(r) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rows = append(rows, row)
	}
	require.Len(t, rows, 1)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], errDisk)
}

func TestRows_EarlyBreak(t *testing.T) {
	input := "a\nb\nc\n"
	n := 0
	for range Rows(strings.NewReader(input)) {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	rows := [][]string{{"1", "Jane", "Doe"}, {"2", "a,b", "NULL"}}
	err := Write(&buf, []string{"id", "first", "last"}, slices.Values(rows))
	require.NoError(t, err)

	assert.Equal(t, "id,first,last\n1,Jane,Doe\n2,\"a,b\",NULL\n", buf.String())
}

func TestWrite_MinimalQuoting(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		rows   [][]string
		want   string
	}{
		{
			name:   "leading space kept bare",
			header: []string{"id", " first"},
			rows:   [][]string{{"1", " Jane"}},
			want:   "id, first\n1, Jane\n",
		},
		{
			name:   "quotes doubled",
			header: []string{"first"},
			rows:   [][]string{{`Jim "Catfish"`}},
			want:   "first\n\"Jim \"\"Catfish\"\"\"\n",
		},
		{
			name:   "line break quoted",
			header: []string{"a", "b"},
			rows:   [][]string{{"x\ny", ""}},
			want:   "a,b\n\"x\ny\",\n",
		},
		{
			name:   "lone empty field quoted",
			header: []string{"a"},
			rows:   [][]string{{""}},
			want:   "a\n\"\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, tt.header, slices.Values(tt.rows)))
			assert.Equal(t, tt.want, buf.String())

			back := collect(t, Rows(strings.NewReader(buf.String())))
			require.Len(t, back, 1+len(tt.rows))
			assert.Equal(t, tt.header, back[0].Fields)
			for i, row := range tt.rows {
				assert.Equal(t, row, back[i+1].Fields)
			}
		})
	}
}

func TestWrite_PropagatesWriterError(t *testing.T) {
	errFull := errors.New("disk full")
	err := Write(failWriter{errFull}, []string{"a"}, slices.Values([][]string{{"1"}}))
	require.ErrorIs(t, err, errFull)
}

type failWriter struct{ err error }

func (w failWriter) Write([]byte) (int, error) { return 0, w.err }

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	err := WriteFile(path, []string{"h"}, slices.Values([][]string{{"x"}}), 0)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "h\nx\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should be renamed away")
}

func TestWriteFile_ReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o600))

	require.NoError(t, WriteFile(path, []string{"new"}, slices.Values([][]string{}), 0))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestWriteFile_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.csv")
	err := WriteFile(path, []string{"h"}, slices.Values([][]string{}), 0)
	require.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\nc,d\n"), 0o644))

	var got []Row
	err := ReadFile(path, func(rows iter.Seq2[Row, error]) error {
		got = collect(t, rows)
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	sentinel := errors.New("boom")
	err = ReadFile(path, func(iter.Seq2[Row, error]) error { return sentinel })
	assert.ErrorIs(t, err, sentinel)

	err = ReadFile(filepath.Join(t.TempDir(), "nope.csv"), func(iter.Seq2[Row, error]) error { return nil })
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFromRecords(t *testing.T) {
	rows := collect(t, FromRecords([][]string{{"a"}, {"b"}}))
	assert.Equal(t, []Row{{Line: 1, Fields: []string{"a"}}, {Line: 2, Fields: []string{"b"}}}, rows)
}
