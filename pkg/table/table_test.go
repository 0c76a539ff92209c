package table_test

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/DataHenHQ/farm-engine-sub001/internal/fsx"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/field"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/record"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/table"
)

func sampleSchema(t *testing.T) *field.Header {
	t.Helper()
	color, err := field.New("color", field.Str(16))
	require.NoError(t, err)
	weight, err := field.New("weight", field.F64)
	require.NoError(t, err)
	h, err := field.NewHeader([]field.Field{color, weight})
	require.NoError(t, err)
	return h
}

func TestLoadOrCreate_New(t *testing.T) {
	t.Parallel()

	fsi := fsx.NewReal()
	path := filepath.Join(t.TempDir(), "t.fmtable")
	schema := sampleSchema(t)

	tb, err := table.LoadOrCreate(fsi, path, "widgets", uuid.New(), schema, false, false)
	require.NoError(t, err)
	require.EqualValues(t, 0, tb.Header().RecordCount)

	verdict, err := tb.Healthcheck()
	require.NoError(t, err)
	require.Equal(t, table.VerdictGood, verdict)
}

func TestSaveRecord_AppendThenRead(t *testing.T) {
	t.Parallel()

	fsi := fsx.NewReal()
	path := filepath.Join(t.TempDir(), "t.fmtable")
	schema := sampleSchema(t)

	tb, err := table.LoadOrCreate(fsi, path, "widgets", uuid.New(), schema, false, false)
	require.NoError(t, err)

	r := record.New(schema)
	require.NoError(t, r.Set("color", record.NewStr("red")))
	require.NoError(t, r.Set("weight", record.NewF64(12.34)))

	require.NoError(t, tb.SaveRecord(0, r, true))
	require.EqualValues(t, 1, tb.Header().RecordCount)

	got, ok, err := tb.Record(0)
	require.NoError(t, err)
	require.True(t, ok)
	v, _ := got.Get("color")
	s, _ := v.Str()
	require.Equal(t, "red", s)

	_, ok, err = tb.Record(1)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSaveRecord_RejectsGap(t *testing.T) {
	t.Parallel()

	fsi := fsx.NewReal()
	path := filepath.Join(t.TempDir(), "t.fmtable")
	schema := sampleSchema(t)

	tb, err := table.LoadOrCreate(fsi, path, "widgets", uuid.New(), schema, false, false)
	require.NoError(t, err)

	r := record.New(schema)
	err = tb.SaveRecord(5, r, true)
	require.Error(t, err)
}

func TestFromFile_RoundTripsAcrossReopen(t *testing.T) {
	t.Parallel()

	fsi := fsx.NewReal()
	path := filepath.Join(t.TempDir(), "t.fmtable")
	schema := sampleSchema(t)

	tb, err := table.LoadOrCreate(fsi, path, "widgets", uuid.New(), schema, false, false)
	require.NoError(t, err)

	r := record.New(schema)
	require.NoError(t, r.Set("color", record.NewStr("blue")))
	require.NoError(t, tb.SaveRecord(0, r, true))

	reopened, err := table.FromFile(fsi, path)
	require.NoError(t, err)
	require.EqualValues(t, 1, reopened.Header().RecordCount)

	got, ok, err := reopened.Record(0)
	require.NoError(t, err)
	require.True(t, ok)
	v, _ := got.Get("color")
	s, _ := v.Str()
	require.Equal(t, "blue", s)
}

func TestHealthcheck_NoFields(t *testing.T) {
	t.Parallel()

	fsi := fsx.NewReal()
	path := filepath.Join(t.TempDir(), "t.fmtable")

	empty, err := field.NewHeader(nil)
	require.NoError(t, err)

	_, err = table.LoadOrCreate(fsi, path, "widgets", uuid.New(), empty, false, false)
	require.NoError(t, err)

	_, err = table.FromFile(fsi, path)
	require.Error(t, err)
}
