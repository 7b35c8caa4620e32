package pqwriter

import (
	"encoding/binary"
	"math"

	"github.com/parquet-go/pqwriter/internal/format"
)

// GeometryColumn builds a GEOMETRY-typed column from one raw WKB
// (Well-Known Binary) payload per row (nil for a null row). Geometry
// columns are never auto-detected (no Go input shape identifies a
// geometry unambiguously), so callers always opt in through this
// constructor or GeographyColumn.
func GeometryColumn(name string, wkb [][]byte, crs string, nullable bool) Column {
	return geoColumn(name, wkb, crs, nullable, false, nil)
}

// GeographyColumn is GeometryColumn's GEOGRAPHY counterpart, carrying
// an edge-interpolation algorithm annotation.
func GeographyColumn(name string, wkb [][]byte, crs string, algorithm format.EdgeInterpolationAlgorithm, nullable bool) Column {
	alg := algorithm
	return geoColumn(name, wkb, crs, nullable, true, &alg)
}

func geoColumn(name string, wkb [][]byte, crs string, nullable, geography bool, algorithm *format.EdgeInterpolationAlgorithm) Column {
	values := make([]any, len(wkb))
	for i, b := range wkb {
		if b != nil {
			values[i] = b
		}
	}
	rep := format.Required
	if nullable {
		rep = format.Optional
	}
	var crsPtr *string
	if crs != "" {
		crsPtr = &crs
	}
	lt := &format.LogicalType{}
	if geography {
		lt.GEOGRAPHY = &format.GeographyType{CRS: crsPtr, Algorithm: algorithm}
	} else {
		lt.GEOMETRY = &format.GeometryType{CRS: crsPtr}
	}
	typ := format.ByteArray
	node := &SchemaNode{Name: name, Type: &typ, Repetition: rep, LogicalType: lt}
	return Column{Name: name, Values: values, Hint: ColumnHint{Node: node}}
}

// WKBPoint serializes an XY point as little-endian WKB.
func WKBPoint(x, y float64) []byte {
	b := make([]byte, 0, 21)
	b = append(b, 1)
	b = binary.LittleEndian.AppendUint32(b, 1)
	b = binary.LittleEndian.AppendUint64(b, math.Float64bits(x))
	b = binary.LittleEndian.AppendUint64(b, math.Float64bits(y))
	return b
}

// WKBLineString serializes a sequence of XY points, given as flat
// [x0,y0,x1,y1,...] pairs, as a little-endian WKB linestring.
func WKBLineString(coords []float64) []byte {
	n := len(coords) / 2
	b := make([]byte, 0, 9+16*n)
	b = append(b, 1)
	b = binary.LittleEndian.AppendUint32(b, 2)
	b = binary.LittleEndian.AppendUint32(b, uint32(n))
	for i := 0; i < n*2; i++ {
		b = binary.LittleEndian.AppendUint64(b, math.Float64bits(coords[i]))
	}
	return b
}

// WKBPolygon serializes a polygon as little-endian WKB; each ring is a
// flat [x0,y0,x1,y1,...] pair slice, outer ring first.
func WKBPolygon(rings [][]float64) []byte {
	size := 9
	for _, ring := range rings {
		size += 4 + 8*len(ring)
	}
	b := make([]byte, 0, size)
	b = append(b, 1)
	b = binary.LittleEndian.AppendUint32(b, 3)
	b = binary.LittleEndian.AppendUint32(b, uint32(len(rings)))
	for _, ring := range rings {
		b = binary.LittleEndian.AppendUint32(b, uint32(len(ring)/2))
		for _, c := range ring {
			b = binary.LittleEndian.AppendUint64(b, math.Float64bits(c))
		}
	}
	return b
}

// GeometryStats summarizes a GEOMETRY/GEOGRAPHY column chunk: its
// bounding box and the set of distinct geometry type codes observed.
// Standard scalar min/max statistics do not apply to geometries, so
// this is the column family's own statistics shape.
type GeometryStats struct {
	MinX, MinY, MaxX, MaxY float64
	TypeCodes              map[uint32]struct{}
}

// ComputeGeometryStats scans every non-nil WKB payload in values,
// accumulating a bounding box and the set of distinct geometry type
// codes. It returns (nil, nil) if every value is null.
func ComputeGeometryStats(column string, values [][]byte) (*GeometryStats, error) {
	stats := &GeometryStats{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
		TypeCodes: map[uint32]struct{}{},
	}
	seen := false
	for _, v := range values {
		if v == nil {
			continue
		}
		minX, minY, maxX, maxY, typeCode, err := wkbBoundingBox(column, v)
		if err != nil {
			return nil, err
		}
		seen = true
		stats.MinX = math.Min(stats.MinX, minX)
		stats.MinY = math.Min(stats.MinY, minY)
		stats.MaxX = math.Max(stats.MaxX, maxX)
		stats.MaxY = math.Max(stats.MaxY, maxY)
		stats.TypeCodes[typeCode] = struct{}{}
	}
	if !seen {
		return nil, nil
	}
	return stats, nil
}

// wkbBoundingBox parses a little-endian, XY-only WKB payload
// (Point/LineString/Polygon exactly, and a best-effort coordinate scan
// for other geometry kinds) into its axis-aligned bounding box and
// type code. Any other byte order, or a Z/M/ZM dimensionality code, fails
// with UnsupportedGeometryDims: this module does not carry a general
// WKB parser, only enough of one to produce bbox statistics.
func wkbBoundingBox(column string, b []byte) (minX, minY, maxX, maxY float64, typeCode uint32, err error) {
	if len(b) < 5 {
		return 0, 0, 0, 0, 0, newError(UnsupportedGeometryDims, column, "WKB payload too short")
	}
	if b[0] != 1 {
		return 0, 0, 0, 0, 0, newError(UnsupportedGeometryDims, column, "only little-endian WKB is supported")
	}
	typeCode = binary.LittleEndian.Uint32(b[1:5])
	if typeCode >= 1000 {
		return 0, 0, 0, 0, 0, newError(UnsupportedGeometryDims, column, "Z/M/ZM geometry variants are not supported")
	}

	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	offset := 5
	readPoint := func() bool {
		if offset+16 > len(b) {
			return false
		}
		x := math.Float64frombits(binary.LittleEndian.Uint64(b[offset:]))
		y := math.Float64frombits(binary.LittleEndian.Uint64(b[offset+8:]))
		offset += 16
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
		return true
	}

	readCount := func() (uint32, bool) {
		if offset+4 > len(b) {
			return 0, false
		}
		n := binary.LittleEndian.Uint32(b[offset:])
		offset += 4
		return n, true
	}

	switch typeCode {
	case 1: // Point
		if !readPoint() {
			return 0, 0, 0, 0, 0, newError(UnsupportedGeometryDims, column, "truncated WKB point")
		}
	case 2: // LineString
		n, ok := readCount()
		if !ok {
			return 0, 0, 0, 0, 0, newError(UnsupportedGeometryDims, column, "truncated WKB payload")
		}
		for i := uint32(0); i < n; i++ {
			if !readPoint() {
				return 0, 0, 0, 0, 0, newError(UnsupportedGeometryDims, column, "truncated WKB payload")
			}
		}
	case 3: // Polygon: ring count, then per-ring point counts
		rings, ok := readCount()
		if !ok {
			return 0, 0, 0, 0, 0, newError(UnsupportedGeometryDims, column, "truncated WKB payload")
		}
		for r := uint32(0); r < rings; r++ {
			n, ok := readCount()
			if !ok {
				return 0, 0, 0, 0, 0, newError(UnsupportedGeometryDims, column, "truncated WKB payload")
			}
			for i := uint32(0); i < n; i++ {
				if !readPoint() {
					return 0, 0, 0, 0, 0, newError(UnsupportedGeometryDims, column, "truncated WKB payload")
				}
			}
		}
	default:
		// MultiPoint and collections: scan every remaining
		// 16-byte-aligned coordinate pair. Good enough for a bounding
		// box; an element header interleaved with the coordinates only
		// widens it.
		for offset+16 <= len(b) {
			readPoint()
		}
	}
	return minX, minY, maxX, maxY, typeCode, nil
}
