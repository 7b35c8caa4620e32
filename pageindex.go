package pqwriter

import (
	"time"

	"github.com/parquet-go/pqwriter/internal/format"
)

// pageIndexBuilder accumulates per-page ColumnIndex/OffsetIndex
// entries as a column chunk's pages are written. Min/max are carried
// twice: the rendered physical bytes the ColumnIndex stores, and the
// normalized logical values boundary ordering compares (raw
// little-endian bytes do not sort numerically, so ordering on the
// byte form would misreport ASCENDING once values cross a byte
// boundary).
type pageIndexBuilder struct {
	nullPages  []bool
	minValues  [][]byte
	maxValues  [][]byte
	minLogical []any
	maxLogical []any
	nullCounts []int64
	locations  []format.PageLocation
}

func (b *pageIndexBuilder) addPage(nullPage bool, minBytes, maxBytes []byte, minLogical, maxLogical any, nullCount int64, offset int64, compressedSize int32, firstRowIndex int64) {
	b.nullPages = append(b.nullPages, nullPage)
	b.minValues = append(b.minValues, minBytes)
	b.maxValues = append(b.maxValues, maxBytes)
	b.minLogical = append(b.minLogical, minLogical)
	b.maxLogical = append(b.maxLogical, maxLogical)
	b.nullCounts = append(b.nullCounts, nullCount)
	b.locations = append(b.locations, format.PageLocation{
		Offset:             offset,
		CompressedPageSize: compressedSize,
		FirstRowIndex:      firstRowIndex,
	})
}

// build finalizes the page index pair, or returns (nil, nil) when
// fewer than two pages were recorded: a single-page chunk gains
// nothing from an index.
func (b *pageIndexBuilder) build() (*format.ColumnIndex, *format.OffsetIndex) {
	if len(b.nullPages) <= 1 {
		return nil, nil
	}
	ci := &format.ColumnIndex{
		NullPages:     b.nullPages,
		MinValues:     b.minValues,
		MaxValues:     b.maxValues,
		BoundaryOrder: boundaryOrder(b.nullPages, b.minLogical, b.maxLogical),
		NullCounts:    b.nullCounts,
	}
	oi := &format.OffsetIndex{PageLocations: b.locations}
	return ci, oi
}

// orderable reports whether v is one of the normalized logical kinds
// compareLogical knows how to order.
func orderable(v any) bool {
	switch v.(type) {
	case bool, int64, float64, string, []byte, time.Time:
		return true
	default:
		return false
	}
}

// boundaryOrder reports whether the non-null pages' min/max sequences
// are monotonically non-decreasing, non-increasing, or neither,
// comparing the normalized logical values in their type's own order.
// Fewer than two comparable pages, or a value compareLogical cannot
// order, is UNORDERED.
func boundaryOrder(nullPages []bool, mins, maxs []any) format.BoundaryOrder {
	var ms, xs []any
	for i, isNull := range nullPages {
		if isNull {
			continue
		}
		if !orderable(mins[i]) || !orderable(maxs[i]) {
			return format.Unordered
		}
		ms = append(ms, mins[i])
		xs = append(xs, maxs[i])
	}
	if len(ms) < 2 {
		return format.Unordered
	}
	ascending, descending := true, true
	for i := 1; i < len(ms); i++ {
		if compareLogical(ms[i], ms[i-1]) < 0 || compareLogical(xs[i], xs[i-1]) < 0 {
			ascending = false
		}
		if compareLogical(ms[i], ms[i-1]) > 0 || compareLogical(xs[i], xs[i-1]) > 0 {
			descending = false
		}
	}
	switch {
	case ascending:
		return format.Ascending
	case descending:
		return format.Descending
	default:
		return format.Unordered
	}
}
