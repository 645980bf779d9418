package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bdblink/internal/linker"
	"github.com/roach88/bdblink/internal/nameindex"
)

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	require.NoError(t, s.verifyPragma("journal_mode", "wal"))
	require.NoError(t, s.verifyPragma("foreign_keys", "1"))
	require.NoError(t, s.verifyPragma("user_version", "1"))
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")

	s1, err := Open(path)
	require.NoError(t, err)
	_, err = s1.WriteRun(context.Background(), createTestRun("run-1"), nil)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	runs, err := s2.Runs(context.Background())
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestWriteRun_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	decisions := []Decision{
		{Line: 2, Outcome: "already_linked", Changed: []int{}},
		{Line: 3, Outcome: "linked", NameKey: "Jane|Doe", Candidates: 1, CanonicalID: int64Ptr(1001), Changed: []int{8, 10, 14, 6}},
		{Line: 4, Outcome: "unmatched", NameKey: "No|Body", Changed: []int{}},
	}

	seq, err := s.WriteRun(ctx, createTestRun("run-1"), decisions)
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)

	run, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), run.Seq)
	assert.Equal(t, "Master.txt", run.CanonicalPath)
	assert.False(t, run.DryRun)
	assert.Equal(t, createTestRun("run-1").Stats, run.Stats)

	got, err := s.Decisions(ctx, "run-1", "")
	require.NoError(t, err)
	assert.Equal(t, decisions, got)

	linked, err := s.Decisions(ctx, "run-1", "linked")
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.Equal(t, int64(1001), *linked[0].CanonicalID)
}

func TestWriteRun_SeqIncreases(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for i, id := range []string{"run-b", "run-a", "run-c"} {
		seq, err := s.WriteRun(ctx, createTestRun(id), nil)
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), seq)
	}

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "run-b", runs[0].ID)
	assert.Equal(t, "run-a", runs[1].ID)
	assert.Equal(t, "run-c", runs[2].ID)
}

func TestWriteRun_DuplicateIDRollsBack(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.WriteRun(ctx, createTestRun("run-1"), nil)
	require.NoError(t, err)

	_, err = s.WriteRun(ctx, createTestRun("run-1"), []Decision{{Line: 9, Outcome: "unmatched"}})
	require.Error(t, err)

	got, err := s.Decisions(ctx, "run-1", "")
	require.NoError(t, err)
	assert.Empty(t, got, "failed write must not leave decisions behind")
}

func TestWriteRun_DuplicateLineRollsBack(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.WriteRun(ctx, createTestRun("run-1"), []Decision{
		{Line: 2, Outcome: "unmatched"},
		{Line: 2, Outcome: "unmatched"},
	})
	require.Error(t, err)

	_, err = s.ReadRun(ctx, "run-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRuns_Empty(t *testing.T) {
	s := createTestStore(t)
	runs, err := s.Runs(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.ReadRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDecisionFromResult(t *testing.T) {
	linked := DecisionFromResult(linker.Result{
		Line:        3,
		Outcome:     linker.OutcomeLinked,
		Key:         nameindex.NewKey("Jane", "Doe"),
		Candidates:  1,
		CanonicalID: 1001,
		Changed:     []int{8},
	})
	assert.Equal(t, "linked", linked.Outcome)
	assert.Equal(t, "Jane|Doe", linked.NameKey)
	require.NotNil(t, linked.CanonicalID)
	assert.Equal(t, int64(1001), *linked.CanonicalID)

	ambiguous := DecisionFromResult(linker.Result{Line: 4, Outcome: linker.OutcomeAmbiguous, Candidates: 2})
	assert.Nil(t, ambiguous.CanonicalID)
	assert.Equal(t, []int{}, ambiguous.Changed)
}

func TestDecisionsFromResults(t *testing.T) {
	got := DecisionsFromResults([]linker.Result{
		{Line: 2, Outcome: linker.OutcomeUnmatched, Key: "No|One"},
		{Line: 3, Outcome: linker.OutcomeLinked, Key: "Jane|Doe", Candidates: 1, CanonicalID: 1001, Changed: []int{8}},
	})

	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].Line)
	assert.Equal(t, "unmatched", got[0].Outcome)
	assert.Nil(t, got[0].CanonicalID)
	assert.Equal(t, 3, got[1].Line)
	require.NotNil(t, got[1].CanonicalID)
	assert.Equal(t, int64(1001), *got[1].CanonicalID)

	assert.Empty(t, DecisionsFromResults(nil))
}
