package pqwriter

import (
	"testing"

	"github.com/parquet-go/pqwriter/internal/format"
	"github.com/stretchr/testify/require"
)

func TestColumnStatsObserveMinMax(t *testing.T) {
	s := newColumnStats()
	s.observe(int32(5))
	s.observe(int32(1))
	s.observe(int32(9))
	s.observeNull()
	require.Equal(t, int64(1), s.nullCount)
	require.Equal(t, int64(1), s.min)
	require.Equal(t, int64(9), s.max)
}

func TestColumnStatsWidensFloat32ToFloat64(t *testing.T) {
	s := newColumnStats()
	s.observe(float32(1.5))
	s.observe(float64(2.5))
	require.Equal(t, float64(1.5), s.min)
	require.Equal(t, float64(2.5), s.max)
}

func TestColumnStatsWidensIntKindsToInt64(t *testing.T) {
	s := newColumnStats()
	s.observe(int32(5))
	s.observe(int64(3))
	require.Equal(t, int64(3), s.min)
	require.Equal(t, int64(5), s.max)
}

func TestBuildStatisticsNilWhenDisabled(t *testing.T) {
	stats, err := buildStatistics(leafNode("x", format.Int32, nil, format.Required), nil)
	require.NoError(t, err)
	require.Nil(t, stats)
}

func TestBuildStatisticsAllNull(t *testing.T) {
	s := newColumnStats()
	s.observeNull()
	s.observeNull()
	leaf := leafNode("x", format.Int32, nil, format.Optional)
	stats, err := buildStatistics(leaf, s)
	require.NoError(t, err)
	require.Nil(t, stats.Min)
	require.Nil(t, stats.Max)
	require.Equal(t, int64(2), *stats.NullCount)
}

func TestStatBytesInt32(t *testing.T) {
	leaf := leafNode("x", format.Int32, nil, format.Required)
	b, err := statBytes(leaf, int32(300))
	require.NoError(t, err)
	require.Equal(t, []byte{44, 1, 0, 0}, b)
}

func TestStatBytesByteArrayTruncatesTo16(t *testing.T) {
	leaf := leafNode("x", format.ByteArray, nil, format.Required)
	longStr := "0123456789abcdefXXXX"
	b, err := statBytes(leaf, longStr)
	require.NoError(t, err)
	require.Len(t, b, 16)
	require.Equal(t, []byte("0123456789abcdef"), b)
}

func TestCompareLogicalBool(t *testing.T) {
	require.Equal(t, 0, compareLogical(true, true))
	require.Equal(t, -1, compareLogical(false, true))
	require.Equal(t, 1, compareLogical(true, false))
}
