package source_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/DataHenHQ/farm-engine-sub001/internal/fsx"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/field"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/source"
)

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func sampleSchema(t *testing.T) *field.Header {
	t.Helper()
	f1, err := field.New("notes", field.Str(10))
	require.NoError(t, err)
	h, err := field.NewHeader([]field.Field{f1})
	require.NoError(t, err)
	return h
}

func newSource(t *testing.T, dir, suffix, inputPath string) *source.Source {
	t.Helper()
	fsi := fsx.NewReal()
	return source.New(fsi,
		filepath.Join(dir, "i"+suffix+".fmbindex"),
		filepath.Join(dir, "t"+suffix+".fmtable"),
		inputPath,
	)
}

// TestInit_E1NewSourceLifecycle mirrors spec.md scenario E1: indexing
// three rows from scratch should leave the table's record_count in sync
// with the index's indexed_count, and Data should re-materialise the
// original input row.
func TestInit_E1NewSourceLifecycle(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	inputPath := writeCSV(t, dir, "input.csv",
		"gid,size,price,color\n"+
			"fork,1 inch,12.34,red\n"+
			"keyboard,medium,23.45,black\n"+
			"mouse,12 cm,98.76,white\n")

	src := newSource(t, dir, "", inputPath)
	schema := sampleSchema(t)

	require.NoError(t, src.Init("widgets", uuid.New(), schema, false, false))
	require.EqualValues(t, 3, src.Index.Header().IndexedCount)
	require.EqualValues(t, 3, src.Table.Header().RecordCount)

	slot, err := src.Data(0)
	require.NoError(t, err)
	require.Equal(t, "fork", slot.InputRow["gid"])
	require.Equal(t, "red", slot.InputRow["color"])
}

func TestIsJoinCompatible_TrueForIdenticalSources(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	inputPath := writeCSV(t, dir, "input.csv", "gid,v\na,1\nb,2\n")
	schema := sampleSchema(t)

	s1 := newSource(t, dir, "1", inputPath)
	require.NoError(t, s1.Init("t", uuid.New(), schema, false, false))

	s2 := newSource(t, dir, "2", inputPath)
	require.NoError(t, s2.Init("t", uuid.New(), schema, false, false))

	ok, err := s1.IsJoinCompatible(s2)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestIsJoinCompatible_FalseOnIndexedCountMismatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	schema := sampleSchema(t)

	input1 := writeCSV(t, dir, "a.csv", "gid,v\na,1\nb,2\n")
	input2 := writeCSV(t, dir, "b.csv", "gid,v\na,1\nb,2\nc,3\n")

	s1 := newSource(t, dir, "1", input1)
	require.NoError(t, s1.Init("t", uuid.New(), schema, false, false))

	s2 := newSource(t, dir, "2", input2)
	require.NoError(t, s2.Init("t", uuid.New(), schema, false, false))

	ok, err := s1.IsJoinCompatible(s2)
	require.NoError(t, err)
	require.False(t, ok)
}

// TestIsJoinCompatible_FalseOnHashMismatch is testable property 13
// (SPEC_FULL.md §8): same indexed_count and schema, different bytes, so
// the tracked InputHash values differ and compatibility fails.
func TestIsJoinCompatible_FalseOnHashMismatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	schema := sampleSchema(t)

	input1 := writeCSV(t, dir, "a.csv", "gid,v\na,1\nb,2\n")
	input2 := writeCSV(t, dir, "b.csv", "gid,v\na,9\nb,9\n")

	s1 := newSource(t, dir, "1", input1)
	require.NoError(t, s1.Init("t", uuid.New(), schema, false, false))

	s2 := newSource(t, dir, "2", input2)
	require.NoError(t, s2.Init("t", uuid.New(), schema, false, false))

	ok, err := s1.IsJoinCompatible(s2)
	require.NoError(t, err)
	require.False(t, ok)
}
