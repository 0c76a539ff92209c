package export_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/DataHenHQ/farm-engine-sub001/internal/fsx"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/export"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/field"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/index"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/primitive"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/record"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/source"
)

func newTestSource(t *testing.T) *source.Source {
	t.Helper()
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "input.csv")
	require.NoError(t, os.WriteFile(inputPath, []byte(
		"gid,color\nfork,red\nmouse,white\n"), 0o644))

	f1, err := field.New("color_copy", field.Str(10))
	require.NoError(t, err)
	schema, err := field.NewHeader([]field.Field{f1})
	require.NoError(t, err)

	fsi := fsx.NewReal()
	src := source.New(fsi,
		filepath.Join(dir, "i.fmbindex"),
		filepath.Join(dir, "t.fmtable"),
		inputPath,
	)
	require.NoError(t, src.Init("t", uuid.New(), schema, false, false))

	rec, ok, err := src.Table.Record(0)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, rec.Set("color_copy", record.NewStr("red")))
	require.NoError(t, src.Table.SaveRecord(0, rec, true))

	require.NoError(t, src.Index.UpdateStatus(0, func(v *index.Value) {
		v.Status = primitive.StatusYes
		v.SpentTime = 42
	}))

	return src
}

func TestToCSV_WritesHeaderAndRows(t *testing.T) {
	t.Parallel()
	src := newTestSource(t)

	var buf bytes.Buffer
	fields := []export.Field{
		export.InputField("gid"),
		export.InputField("color"),
		export.RecordField("color_copy"),
		export.SpentTimeField,
		export.MatchFlagField,
	}
	require.NoError(t, export.ToCSV(&buf, src, fields))

	lines := buf.String()
	require.Contains(t, lines, "gid,color,color_copy,spent_time,matched")
	require.Contains(t, lines, "fork,red,red,42,Yes")
	require.Contains(t, lines, "mouse,white,,0,None")
}

func TestToJSON_MissingFieldsAreNull(t *testing.T) {
	t.Parallel()
	src := newTestSource(t)

	var buf bytes.Buffer
	fields := []export.Field{
		export.InputField("gid"),
		export.RecordField("does_not_exist"),
		export.SpentTimeField,
	}
	require.NoError(t, export.ToJSON(&buf, src, fields))

	dec := json.NewDecoder(&buf)
	var row map[string]any
	require.NoError(t, dec.Decode(&row))
	require.Equal(t, "fork", row["gid"])
	require.Nil(t, row["does_not_exist"])
}
