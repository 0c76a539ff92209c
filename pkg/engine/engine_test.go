package engine_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DataHenHQ/farm-engine-sub001/internal/fsx"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/engine"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/field"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/record"
)

func sampleSchema(t *testing.T) *field.Header {
	t.Helper()
	f1, err := field.New("color", field.Str(10))
	require.NoError(t, err)
	h, err := field.NewHeader([]field.Field{f1})
	require.NoError(t, err)
	return h
}

func TestOpen_QueryAndInsert(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	inputPath := filepath.Join(dir, "input.csv")
	require.NoError(t, os.WriteFile(inputPath, []byte("gid,v\nfork,1\n"), 0o644))

	schema := sampleSchema(t)
	e, err := engine.Open(zap.NewNop(), fsx.NewReal(),
		filepath.Join(dir, "i.fmbindex"), filepath.Join(dir, "t.fmtable"), inputPath,
		"t", uuid.New(), schema, false, false)
	require.NoError(t, err)

	newSlot, inserted, err := e.Insert("widget", map[string]record.Value{
		"color": record.NewStr("green"),
	})
	require.NoError(t, err)
	require.True(t, inserted)

	// Bulk-indexed rows are not part of the AVL tree; only inserted gids
	// are searchable.
	slot, ok, err := e.Query("widget")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "widget", slot.Index.GID)

	_, ok, err = e.Query("missing")
	require.NoError(t, err)
	require.False(t, ok)

	rec, ok, err := e.Source.Table.Record(newSlot)
	require.NoError(t, err)
	require.True(t, ok)
	v, ok := rec.Get("color")
	require.True(t, ok)
	s, _ := v.Str()
	require.Equal(t, "green", s)
}

func TestJoin_MergesTwoEngines(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	inputPath := filepath.Join(dir, "input.csv")
	require.NoError(t, os.WriteFile(inputPath, []byte("gid,v\na,1\nb,2\n"), 0o644))
	schema := sampleSchema(t)

	open := func(suffix string) *engine.Engine {
		e, err := engine.Open(zap.NewNop(), fsx.NewReal(),
			filepath.Join(dir, "i"+suffix+".fmbindex"), filepath.Join(dir, "t"+suffix+".fmtable"), inputPath,
			"t", uuid.New(), schema, false, false)
		require.NoError(t, err)
		return e
	}

	e1 := open("1")
	e2 := open("2")

	joined, err := engine.Join(zap.NewNop(), fsx.NewReal(),
		filepath.Join(dir, "joined.fmbindex"), filepath.Join(dir, "joined.fmtable"),
		"joined", uuid.New(), schema, e1, e2)
	require.NoError(t, err)
	require.EqualValues(t, 2, joined.Source.Index.Header().IndexedCount)
}
