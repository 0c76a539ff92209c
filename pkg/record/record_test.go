package record_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DataHenHQ/farm-engine-sub001/pkg/field"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/record"
)

func sampleHeader(t *testing.T) *field.Header {
	t.Helper()

	name, err := field.New("name", field.Str(20))
	require.NoError(t, err)
	age, err := field.New("age", field.U8)
	require.NoError(t, err)
	active, err := field.New("active", field.Bool)
	require.NoError(t, err)

	h, err := field.NewHeader([]field.Field{name, age, active})
	require.NoError(t, err)
	return h
}

func TestRecord_SetGet(t *testing.T) {
	t.Parallel()

	r := record.New(sampleHeader(t))

	require.NoError(t, r.Set("name", record.NewStr("alice")))
	require.NoError(t, r.Set("age", record.NewU8(30)))

	v, ok := r.Get("name")
	require.True(t, ok)
	s, _ := v.Str()
	require.Equal(t, "alice", s)

	_, ok = r.Get("active")
	require.False(t, ok, "unset field must report not-present")

	_, ok = r.Get("missing")
	require.False(t, ok)
}

func TestRecord_Set_RejectsTypeMismatch(t *testing.T) {
	t.Parallel()

	r := record.New(sampleHeader(t))
	err := r.Set("age", record.NewStr("thirty"))
	require.Error(t, err)
}

func TestRecord_Set_RejectsOverCapString(t *testing.T) {
	t.Parallel()

	r := record.New(sampleHeader(t))
	err := r.Set("name", record.NewStr("this name is definitely far too long for the cap"))
	require.Error(t, err)
}

func TestRecord_RoundTrip(t *testing.T) {
	t.Parallel()

	h := sampleHeader(t)
	r := record.New(h)
	require.NoError(t, r.Set("name", record.NewStr("bob")))
	require.NoError(t, r.Set("age", record.NewU8(42)))
	require.NoError(t, r.Set("active", record.NewBool(true)))

	buf := make([]byte, h.RecordBytes())
	require.NoError(t, r.WriteTo(buf))

	got, err := record.ReadFrom(h, buf)
	require.NoError(t, err)

	v, ok := got.Get("name")
	require.True(t, ok)
	s, _ := v.Str()
	require.Equal(t, "bob", s)

	v, ok = got.Get("age")
	require.True(t, ok)
	n, _ := v.Uint()
	require.EqualValues(t, 42, n)

	v, ok = got.Get("active")
	require.True(t, ok)
	b, _ := v.Bool()
	require.True(t, b)
}

func TestRecord_WriteTo_UnsetFieldsSerialiseAsZero(t *testing.T) {
	t.Parallel()

	h := sampleHeader(t)
	r := record.New(h)

	buf := make([]byte, h.RecordBytes())
	require.NoError(t, r.WriteTo(buf))

	got, err := record.ReadFrom(h, buf)
	require.NoError(t, err)

	v, ok := got.Get("age")
	require.True(t, ok)
	n, _ := v.Uint()
	require.EqualValues(t, 0, n)
}

func TestReadFrom_RejectsEmptySchema(t *testing.T) {
	t.Parallel()

	h, err := field.NewHeader(nil)
	require.NoError(t, err)

	_, err = record.ReadFrom(h, nil)
	require.Error(t, err)
}
