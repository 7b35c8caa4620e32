package pqwriter

import (
	"testing"

	"github.com/parquet-go/pqwriter/internal/format"
	"github.com/stretchr/testify/require"
)

func TestPageIndexBuilderSinglePageReturnsNil(t *testing.T) {
	b := &pageIndexBuilder{}
	b.addPage(false, []byte{0}, []byte{9}, int64(0), int64(9), 0, 0, 10, 0)
	ci, oi := b.build()
	require.Nil(t, ci)
	require.Nil(t, oi)
}

func TestPageIndexBuilderAscending(t *testing.T) {
	b := &pageIndexBuilder{}
	b.addPage(false, []byte{0}, []byte{23}, int64(0), int64(23), 0, 0, 100, 0)
	b.addPage(false, []byte{24}, []byte{47}, int64(24), int64(47), 0, 100, 100, 24)
	b.addPage(false, []byte{48}, []byte{71}, int64(48), int64(71), 0, 200, 100, 48)
	ci, oi := b.build()
	require.Equal(t, format.Ascending, ci.BoundaryOrder)
	require.Equal(t, [][]byte{{0}, {24}, {48}}, ci.MinValues)
	require.Equal(t, [][]byte{{23}, {47}, {71}}, ci.MaxValues)
	require.Len(t, oi.PageLocations, 3)
	require.Equal(t, int64(24), oi.PageLocations[1].FirstRowIndex)
}

func TestPageIndexBuilderDescending(t *testing.T) {
	b := &pageIndexBuilder{}
	b.addPage(false, []byte{71}, []byte{99}, int64(71), int64(99), 0, 0, 100, 0)
	b.addPage(false, []byte{24}, []byte{47}, int64(24), int64(47), 0, 100, 100, 24)
	ci, _ := b.build()
	require.Equal(t, format.Descending, ci.BoundaryOrder)
}

func TestPageIndexBuilderUnorderedWithNullPage(t *testing.T) {
	b := &pageIndexBuilder{}
	b.addPage(true, nil, nil, nil, nil, 10, 0, 5, 0)
	b.addPage(false, []byte{5}, []byte{5}, int64(5), int64(5), 0, 5, 5, 10)
	ci, _ := b.build()
	// Only one comparable (non-null) page, so UNORDERED.
	require.Equal(t, format.Unordered, ci.BoundaryOrder)
	require.True(t, ci.NullPages[0])
	require.Equal(t, int64(10), ci.NullCounts[0])
}

func TestPageIndexBuilderOrdersNumericallyNotByBytes(t *testing.T) {
	// Little-endian encodings of 0, 256 and 1 happen to sort
	// lexicographically ascending even though 0, 256, 1 is not
	// monotonic; ordering must follow the numeric values.
	enc := func(v int32) []byte { return plainInt32(v) }
	b := &pageIndexBuilder{}
	b.addPage(false, enc(0), enc(0), int64(0), int64(0), 0, 0, 10, 0)
	b.addPage(false, enc(256), enc(256), int64(256), int64(256), 0, 10, 10, 1)
	b.addPage(false, enc(1), enc(1), int64(1), int64(1), 0, 20, 10, 2)
	ci, _ := b.build()
	require.Equal(t, format.Unordered, ci.BoundaryOrder)
}

func TestPageIndexBuilderMultiByteAscending(t *testing.T) {
	enc := func(v int32) []byte { return plainInt32(v) }
	b := &pageIndexBuilder{}
	b.addPage(false, enc(1), enc(200), int64(1), int64(200), 0, 0, 10, 0)
	b.addPage(false, enc(256), enc(1000), int64(256), int64(1000), 0, 10, 10, 1)
	ci, _ := b.build()
	require.Equal(t, format.Ascending, ci.BoundaryOrder)
}

func TestPageIndexBuilderNegativeFloatDescending(t *testing.T) {
	b := &pageIndexBuilder{}
	b.addPage(false, nil, nil, float64(2.5), float64(9), 0, 0, 10, 0)
	b.addPage(false, nil, nil, float64(-3), float64(1.5), 0, 10, 10, 1)
	ci, _ := b.build()
	require.Equal(t, format.Descending, ci.BoundaryOrder)
}

func TestPageIndexBuilderUnorderableValues(t *testing.T) {
	b := &pageIndexBuilder{}
	b.addPage(false, nil, nil, struct{}{}, struct{}{}, 0, 0, 10, 0)
	b.addPage(false, nil, nil, struct{}{}, struct{}{}, 0, 10, 10, 1)
	ci, _ := b.build()
	require.Equal(t, format.Unordered, ci.BoundaryOrder)
}
