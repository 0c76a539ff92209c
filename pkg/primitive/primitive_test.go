package primitive_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/DataHenHQ/farm-engine-sub001/pkg/primitive"
)

func TestRoundTrip_Integers(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 8)

	require.NoError(t, primitive.WriteI8(buf, -7))
	got8, err := primitive.ReadI8(buf[:1])
	require.NoError(t, err)
	require.Equal(t, int8(-7), got8)

	require.NoError(t, primitive.WriteU16(buf, 50000))
	gotU16, err := primitive.ReadU16(buf[:2])
	require.NoError(t, err)
	require.Equal(t, uint16(50000), gotU16)

	require.NoError(t, primitive.WriteI32(buf, -123456))
	gotI32, err := primitive.ReadI32(buf[:4])
	require.NoError(t, err)
	require.Equal(t, int32(-123456), gotI32)

	require.NoError(t, primitive.WriteU64(buf, 1<<63))
	gotU64, err := primitive.ReadU64(buf[:8])
	require.NoError(t, err)
	require.Equal(t, uint64(1<<63), gotU64)
}

func TestRoundTrip_Floats(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 8)

	require.NoError(t, primitive.WriteF32(buf, 3.5))
	gotF32, err := primitive.ReadF32(buf[:4])
	require.NoError(t, err)
	require.Equal(t, float32(3.5), gotF32)

	require.NoError(t, primitive.WriteF64(buf, -98.765))
	gotF64, err := primitive.ReadF64(buf[:8])
	require.NoError(t, err)
	require.Equal(t, -98.765, gotF64)
}

func TestRoundTrip_Bool(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 1)
	require.NoError(t, primitive.Bool(true).WriteAsBytes(buf))
	got, err := primitive.BoolFromByteSlice(buf)
	require.NoError(t, err)
	require.True(t, bool(got))
}

func TestBoolFromByteSlice_RejectsBadDiscriminant(t *testing.T) {
	t.Parallel()

	_, err := primitive.BoolFromByteSlice([]byte{0x02})
	require.Error(t, err)
}

func TestRoundTrip_Str(t *testing.T) {
	t.Parallel()

	buf := make([]byte, primitive.StrBytes(10))
	require.NoError(t, primitive.WriteStr(buf, 10, "hello"))
	got, err := primitive.ReadStr(buf, 10)
	require.NoError(t, err)
	require.Equal(t, "hello", got)
}

func TestWriteStr_RejectsOverCap(t *testing.T) {
	t.Parallel()

	buf := make([]byte, primitive.StrBytes(4))
	err := primitive.WriteStr(buf, 4, "toolong")
	require.Error(t, err)
}

func TestRoundTrip_GID(t *testing.T) {
	t.Parallel()

	buf := make([]byte, primitive.GIDBytes)
	require.NoError(t, primitive.WriteGID(buf, "abc-123"))
	got, err := primitive.ReadGID(buf)
	require.NoError(t, err)
	require.Equal(t, "abc-123", got)
}

func TestRoundTrip_Status(t *testing.T) {
	t.Parallel()

	for _, s := range []primitive.Status{primitive.StatusNone, primitive.StatusYes, primitive.StatusNo, primitive.StatusSkip} {
		buf := make([]byte, 1)
		require.NoError(t, s.WriteAsBytes(buf))
		got, err := primitive.StatusFromByteSlice(buf)
		require.NoError(t, err)
		require.Equal(t, s, got)
	}
}

func TestStatusFromByteSlice_RejectsBadDiscriminant(t *testing.T) {
	t.Parallel()

	_, err := primitive.StatusFromByteSlice([]byte{'X'})
	require.Error(t, err)
}

func TestRoundTrip_UUID(t *testing.T) {
	t.Parallel()

	u := uuid.New()
	buf := make([]byte, primitive.UUIDBytes)
	require.NoError(t, primitive.WriteUUID(buf, u))
	got, err := primitive.ReadUUID(buf)
	require.NoError(t, err)
	require.Equal(t, u, got)
}
