package source_test

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/DataHenHQ/farm-engine-sub001/internal/fsx"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/index"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/primitive"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/source"
)

// TestJoin_E6Consensus mirrors spec.md scenario E6 and testable
// properties 10/11: three sources, two slots each. Slot 0 statuses
// [Y,Y,N] merge to Y; slot 1 statuses [N,Y,S] merge to None (no >50%
// winner after Skip->None coercion). Slot 0's spent times [100,200,300]
// average to 200.
func TestJoin_E6Consensus(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	inputPath := writeCSV(t, dir, "input.csv", "gid,v\na,1\nb,2\n")
	schema := sampleSchema(t)

	build := func(suffix string, slot0, slot1 primitive.Status, spent0 uint64) *source.Source {
		s := newSource(t, dir, suffix, inputPath)
		require.NoError(t, s.Init("t", uuid.New(), schema, false, false))
		require.NoError(t, s.Index.UpdateStatus(0, func(v *index.Value) {
			v.Status = slot0
			v.SpentTime = spent0
		}))
		require.NoError(t, s.Index.UpdateStatus(1, func(v *index.Value) {
			v.Status = slot1
		}))
		return s
	}

	s1 := build("1", primitive.StatusYes, primitive.StatusNo, 100)
	s2 := build("2", primitive.StatusYes, primitive.StatusYes, 200)
	s3 := build("3", primitive.StatusNo, primitive.StatusSkip, 300)

	destPath := filepath.Join(dir, "joined")
	merged := source.New(fsx.NewReal(), destPath+".fmbindex", destPath+".fmtable", "")

	require.NoError(t, source.Join(merged, "joined", uuid.New(), s1, s2, s3))

	v0, ok, err := merged.Index.Value(0, false)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, primitive.StatusYes, v0.Status)
	require.EqualValues(t, 200, v0.SpentTime)

	v1, ok, err := merged.Index.Value(1, false)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, primitive.StatusNone, v1.Status)
}
