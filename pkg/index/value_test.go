package index_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DataHenHQ/farm-engine-sub001/pkg/index"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/primitive"
)

func TestValue_RoundTrip(t *testing.T) {
	t.Parallel()

	v := index.Value{
		InputStart: 10,
		InputEnd:   42,
		SpentTime:  99,
		Status:     primitive.StatusYes,
		Parent:     3,
		Left:       4,
		Right:      5,
		Height:     2,
		GID:        "widget-001",
	}

	buf := make([]byte, index.ValueBytes)
	require.NoError(t, v.WriteTo(buf))

	got, err := index.ReadValueFrom(buf)
	require.NoError(t, err)
	require.Equal(t, v, got)
}

func TestHeader_RoundTrip(t *testing.T) {
	t.Parallel()

	h := index.Header{
		Indexed:      true,
		IndexedCount: 7,
		HasTableUUID: true,
	}
	h.InputHash[0] = 0xAB

	buf := make([]byte, index.HeaderBytes)
	require.NoError(t, h.WriteTo(buf))
	require.EqualValues(t, 73, index.HeaderBytes, "SPEC_FULL.md widens the 41-byte header by 32 bytes")

	got, err := index.ReadHeaderFrom(buf)
	require.NoError(t, err)
	require.Equal(t, h.Indexed, got.Indexed)
	require.Equal(t, h.IndexedCount, got.IndexedCount)
	require.Equal(t, h.HasTableUUID, got.HasTableUUID)
	require.Equal(t, h.InputHash, got.InputHash)
	require.True(t, got.HasInputHash())
}
