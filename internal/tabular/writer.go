package tabular

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"
)

// Write serializes header followed by rows to w with "\n" line endings.
//
// Quoting is minimal: a field is quoted only when it holds a comma, a quote
// or a line break, so leading spaces survive untouched.
func Write(w io.Writer, header []string, rows iter.Seq[[]string]) error {
	bw := bufio.NewWriter(w)

	if err := writeRecord(bw, header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	n := 0
	for row := range rows {
		n++
		if err := writeRecord(bw, row); err != nil {
			return fmt.Errorf("write row %d: %w", n, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// writeRecord relies on bufio's sticky error: the last write reports any
// earlier failure.
func writeRecord(bw *bufio.Writer, fields []string) error {
	for i, field := range fields {
		if i > 0 {
			_ = bw.WriteByte(',')
		}
		if !fieldNeedsQuotes(field, len(fields)) {
			_, _ = bw.WriteString(field)
			continue
		}
		_ = bw.WriteByte('"')
		_, _ = bw.WriteString(strings.ReplaceAll(field, `"`, `""`))
		_ = bw.WriteByte('"')
	}
	return bw.WriteByte('\n')
}

// A lone empty field is quoted so the record does not read back as a blank
// line.
func fieldNeedsQuotes(field string, width int) bool {
	if field == "" {
		return width == 1
	}
	return strings.ContainsAny(field, ",\"\r\n")
}

// WriteFile writes header and rows to path atomically.
//
// Data goes to a temporary file in the same directory which is synced and
// renamed over path. On any failure the temporary file is removed and path is
// left untouched. perm applies to the new file; 0 preserves the mode of an
// existing file and otherwise falls back to 0644.
func WriteFile(path string, header []string, rows iter.Seq[[]string], perm os.FileMode) error {
	if perm == 0 {
		if st, err := os.Stat(path); err == nil {
			perm = st.Mode().Perm()
		} else {
			perm = 0o644
		}
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)

	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	tmpPath := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	// Some filesystems reject chmod on temp files; the rename still succeeds.
	_ = tmp.Chmod(perm)

	if err := Write(tmp, header, rows); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	// Renaming over an existing file fails on Windows.
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(path)
		if err2 := os.Rename(tmpPath, path); err2 != nil {
			return fmt.Errorf("rename temp file: %w", err)
		}
	}

	committed = true
	return nil
}
