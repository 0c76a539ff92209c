package index_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DataHenHQ/farm-engine-sub001/internal/fsx"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/index"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/primitive"
)

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

// TestIndexInput_E1NewIndexLifecycle mirrors spec.md scenario E1: three
// rows indexed from scratch should produce a 73 + 3*103 = 382-byte file
// (the 73-byte header includes the 32-byte input hash; the flat bulk path
// never creates the AVL sentinel).
func TestIndexInput_E1NewIndexLifecycle(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	inputPath := writeInput(t, dir, "input.csv",
		"gid,size,price,color\n"+
			"fork,1 inch,12.34,red\n"+
			"keyboard,medium,23.45,black\n"+
			"mouse,12 cm,98.76,white\n")

	fsi := fsx.NewReal()
	idxPath := filepath.Join(dir, "i.fmbindex")
	idx := index.New(fsi, idxPath)

	require.NoError(t, idx.IndexInput(inputPath, 0))
	require.EqualValues(t, 3, idx.Header().IndexedCount)
	require.True(t, idx.Header().Indexed)

	info, err := os.Stat(idxPath)
	require.NoError(t, err)
	require.EqualValues(t, index.HeaderBytes+3*index.ValueBytes, info.Size())
}

func TestIndexInput_IsIdempotentOnceIndexed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	inputPath := writeInput(t, dir, "input.csv", "gid,v\na,1\nb,2\n")

	fsi := fsx.NewReal()
	idxPath := filepath.Join(dir, "i.fmbindex")
	idx := index.New(fsi, idxPath)

	require.NoError(t, idx.IndexInput(inputPath, 0))
	require.NoError(t, idx.IndexInput(inputPath, 0))
	require.EqualValues(t, 2, idx.Header().IndexedCount)
}

func TestInsertAndSearch_SimpleRotations(t *testing.T) {
	t.Parallel()

	fsi := fsx.NewReal()
	idxPath := filepath.Join(t.TempDir(), "i.fmbindex")
	idx := index.New(fsi, idxPath)

	// Ascending inserts force a right-heavy imbalance chain requiring RR
	// rotations to keep the tree balanced.
	gids := []string{"a", "b", "c", "d", "e", "f", "g"}
	for _, g := range gids {
		_, inserted, err := idx.Insert(g)
		require.NoError(t, err)
		require.True(t, inserted)
	}

	for _, g := range gids {
		slot, ok, err := idx.Search(g)
		require.NoError(t, err)
		require.True(t, ok, "expected to find %q", g)

		v, ok, err := idx.Value(slot, true)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, g, v.GID)
	}

	_, ok, err := idx.Search("zzz")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestInsert_RejectsDuplicateAsNoOp(t *testing.T) {
	t.Parallel()

	fsi := fsx.NewReal()
	idxPath := filepath.Join(t.TempDir(), "i.fmbindex")
	idx := index.New(fsi, idxPath)

	slot, inserted, err := idx.Insert("dup")
	require.NoError(t, err)
	require.True(t, inserted)

	again, inserted, err := idx.Insert("dup")
	require.NoError(t, err)
	require.False(t, inserted)
	require.Equal(t, slot, again)
}

// TestInsert_HeightInvariant checks data model invariant 4: for every
// node, |height(left) - height(right)| <= 1.
func TestInsert_HeightInvariant(t *testing.T) {
	t.Parallel()

	fsi := fsx.NewReal()
	idxPath := filepath.Join(t.TempDir(), "i.fmbindex")
	idx := index.New(fsi, idxPath)

	gids := []string{"m", "b", "x", "a", "c", "z", "y", "q", "d", "e", "f"}
	for _, g := range gids {
		_, _, err := idx.Insert(g)
		require.NoError(t, err)
	}

	sentinel, ok, err := idx.Value(0, true)
	require.NoError(t, err)
	require.True(t, ok)

	var walk func(slot uint64) (int64, error)
	walk = func(slot uint64) (int64, error) {
		if slot == 0 {
			return 0, nil
		}
		v, ok, err := idx.Value(slot, true)
		require.NoError(t, err)
		require.True(t, ok)

		lh, err := walk(v.Left)
		if err != nil {
			return 0, err
		}
		rh, err := walk(v.Right)
		if err != nil {
			return 0, err
		}

		diff := lh - rh
		if diff < 0 {
			diff = -diff
		}
		require.LessOrEqual(t, diff, int64(1), "slot %d unbalanced", slot)

		return 1 + max(lh, rh), nil
	}

	_, err = walk(sentinel.Left)
	require.NoError(t, err)
}

func TestFindPending_RequiresIndexed(t *testing.T) {
	t.Parallel()

	fsi := fsx.NewReal()
	idxPath := filepath.Join(t.TempDir(), "i.fmbindex")
	idx := index.New(fsi, idxPath)

	_, _, err := idx.FindPending(0)
	require.Error(t, err)
}

func TestFindPending_ScansForFirstNoneStatus(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	inputPath := writeInput(t, dir, "input.csv", "gid,v\na,1\nb,2\nc,3\n")

	fsi := fsx.NewReal()
	idxPath := filepath.Join(dir, "i.fmbindex")
	idx := index.New(fsi, idxPath)
	require.NoError(t, idx.IndexInput(inputPath, 0))

	require.NoError(t, idx.UpdateStatus(0, func(v *index.Value) { v.Status = primitive.StatusYes }))

	slot, ok, err := idx.FindPending(0)
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, 1, slot)
}

func TestHealthcheck_CorruptedOnTruncation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	inputPath := writeInput(t, dir, "input.csv", "gid,v\na,1\nb,2\nc,3\n")

	fsi := fsx.NewReal()
	idxPath := filepath.Join(dir, "i.fmbindex")
	idx := index.New(fsi, idxPath)
	require.NoError(t, idx.IndexInput(inputPath, 0))

	// E5: truncate mid-value.
	require.NoError(t, os.Truncate(idxPath, int64(index.HeaderBytes+2*index.ValueBytes+50)))

	verdict, err := idx.Healthcheck()
	require.NoError(t, err)
	require.Equal(t, index.VerdictCorrupted, verdict)
}
