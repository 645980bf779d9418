package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/bdblink/internal/linker"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a run with minimal required fields.
func createTestRun(id string) Run {
	return Run{
		ID:            id,
		CanonicalPath: "Master.txt",
		SecondaryPath: "mlb_rosetta.csv",
		OutPath:       "new_mlb_rosetta.csv",
		Stats:         linker.Stats{Total: 3, AlreadyLinked: 1, Unmatched: 1, Linked: 1, FieldsUpdated: 4},
	}
}

func int64Ptr(v int64) *int64 { return &v }
