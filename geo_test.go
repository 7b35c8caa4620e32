package pqwriter

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func wkbPoint(x, y float64) []byte {
	b := make([]byte, 21)
	b[0] = 1 // little-endian
	binary.LittleEndian.PutUint32(b[1:], 1)
	binary.LittleEndian.PutUint64(b[5:], math.Float64bits(x))
	binary.LittleEndian.PutUint64(b[13:], math.Float64bits(y))
	return b
}

func TestGeometryColumnShape(t *testing.T) {
	col := GeometryColumn("geom", [][]byte{wkbPoint(1, 2), nil}, "EPSG:4326", true)
	require.Equal(t, "geom", col.Name)
	require.NotNil(t, col.Hint.Node)
	require.NotNil(t, col.Hint.Node.LogicalType.GEOMETRY)
}

func TestComputeGeometryStatsPoint(t *testing.T) {
	stats, err := ComputeGeometryStats("geom", [][]byte{wkbPoint(1, 2), wkbPoint(-3, 4)})
	require.NoError(t, err)
	require.Equal(t, -3.0, stats.MinX)
	require.Equal(t, 2.0, stats.MinY)
	require.Equal(t, 1.0, stats.MaxX)
	require.Equal(t, 4.0, stats.MaxY)
	require.Contains(t, stats.TypeCodes, uint32(1))
}

func TestComputeGeometryStatsAllNullReturnsNil(t *testing.T) {
	stats, err := ComputeGeometryStats("geom", [][]byte{nil, nil})
	require.NoError(t, err)
	require.Nil(t, stats)
}

func TestComputeGeometryStatsRejectsBigEndian(t *testing.T) {
	b := wkbPoint(1, 2)
	b[0] = 0
	_, err := ComputeGeometryStats("geom", [][]byte{b})
	require.Error(t, err)
	var pe *Error
	require.ErrorAs(t, err, &pe)
	require.Equal(t, UnsupportedGeometryDims, pe.Kind)
}

func TestComputeGeometryStatsRejectsZDimension(t *testing.T) {
	b := wkbPoint(1, 2)
	binary.LittleEndian.PutUint32(b[1:], 1001) // PointZ
	_, err := ComputeGeometryStats("geom", [][]byte{b})
	require.Error(t, err)
}

func TestWKBPointMatchesHandBuilt(t *testing.T) {
	require.Equal(t, wkbPoint(1, 2), WKBPoint(1, 2))
}

func TestComputeGeometryStatsLineString(t *testing.T) {
	ls := WKBLineString([]float64{0, 0, 10, 5, -2, 7})
	stats, err := ComputeGeometryStats("geom", [][]byte{ls})
	require.NoError(t, err)
	require.Equal(t, -2.0, stats.MinX)
	require.Equal(t, 0.0, stats.MinY)
	require.Equal(t, 10.0, stats.MaxX)
	require.Equal(t, 7.0, stats.MaxY)
	require.Contains(t, stats.TypeCodes, uint32(2))
}

func TestComputeGeometryStatsPolygonWithHole(t *testing.T) {
	poly := WKBPolygon([][]float64{
		{0, 0, 10, 0, 10, 10, 0, 10, 0, 0},
		{2, 2, 4, 2, 4, 4, 2, 4, 2, 2},
	})
	stats, err := ComputeGeometryStats("geom", [][]byte{poly})
	require.NoError(t, err)
	require.Equal(t, 0.0, stats.MinX)
	require.Equal(t, 10.0, stats.MaxX)
	require.Equal(t, 0.0, stats.MinY)
	require.Equal(t, 10.0, stats.MaxY)
	require.Contains(t, stats.TypeCodes, uint32(3))
}

func TestComputeGeometryStatsTruncatedPolygonFails(t *testing.T) {
	poly := WKBPolygon([][]float64{{0, 0, 1, 1, 0, 0}})
	_, err := ComputeGeometryStats("geom", [][]byte{poly[:len(poly)-8]})
	require.Error(t, err)
}
