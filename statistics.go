package pqwriter

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/pqwriter/encoding/plain"
	"github.com/parquet-go/pqwriter/internal/format"
)

// columnStats accumulates min/max/null-count over a column's logical
// (pre-conversion) non-null values. Values are normalized to a small
// comparable set
// (bool, int64, float64, string, []byte, time.Time) before ordering,
// so a typed []int32 column and an []any column mixing int/float
// values compare consistently.
type columnStats struct {
	hasValue  bool
	min, max  any
	nullCount int64
}

func newColumnStats() *columnStats { return &columnStats{} }

func (s *columnStats) observeNull() { s.nullCount++ }

func (s *columnStats) observe(v any) {
	nv := normalizeForStats(v)
	if !s.hasValue {
		s.hasValue = true
		s.min, s.max = nv, nv
		return
	}
	if compareLogical(nv, s.min) < 0 {
		s.min = nv
	}
	if compareLogical(nv, s.max) > 0 {
		s.max = nv
	}
}

func normalizeForStats(v any) any {
	switch x := v.(type) {
	case float32:
		return float64(x)
	case uuid.UUID:
		return append([]byte(nil), x[:]...)
	case bool, float64, string, []byte, time.Time:
		return v
	default:
		if i, ok := asInt64(v); ok {
			return i
		}
		return v
	}
}

// compareLogical orders two normalized logical values of the same
// underlying kind, returning <0, 0 or >0. int64 and float64 compare
// across kinds, since a column mixing integers and floats widens to
// DOUBLE but its normalized values keep their original kind.
func compareLogical(a, b any) int {
	switch x := a.(type) {
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	case int64:
		if f, ok := b.(float64); ok {
			return compareFloat64(float64(x), f)
		}
		y := b.(int64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		default:
			return 0
		}
	case float64:
		if i, ok := b.(int64); ok {
			return compareFloat64(x, float64(i))
		}
		return compareFloat64(x, b.(float64))
	case string:
		return strings.Compare(x, b.(string))
	case []byte:
		return bytes.Compare(x, b.([]byte))
	case time.Time:
		y := b.(time.Time)
		switch {
		case x.Before(y):
			return -1
		case x.After(y):
			return 1
		default:
			return 0
		}
	default:
		return 0
	}
}

func compareFloat64(x, y float64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

// statBytes unconverts v to the leaf's primitive physical form and
// renders it as the raw (non-length-prefixed) byte encoding
// Statistics.min_value/max_value store, truncating BYTE_ARRAY to 16
// bytes.
func statBytes(leaf *SchemaNode, v any) ([]byte, error) {
	conv, err := unconvert(leaf, v)
	if err != nil {
		return nil, err
	}
	switch x := conv.(type) {
	case bool:
		if x {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case int32:
		return plain.AppendInt32(nil, x), nil
	case int64:
		return plain.AppendInt64(nil, x), nil
	case float32:
		return plain.AppendFloat32(nil, x), nil
	case float64:
		return plain.AppendFloat64(nil, x), nil
	case []byte:
		b := x
		if *leaf.Type == format.ByteArray && len(b) > 16 {
			b = b[:16]
		}
		return append([]byte(nil), b...), nil
	default:
		return nil, fmt.Errorf("pqwriter: unsupported statistics value type %T", conv)
	}
}

// buildStatistics renders accumulated stats into a format.Statistics,
// or nil if no non-null value was ever observed.
func buildStatistics(leaf *SchemaNode, s *columnStats) (*format.Statistics, error) {
	if s == nil {
		return nil, nil
	}
	nc := s.nullCount
	if !s.hasValue {
		return &format.Statistics{NullCount: &nc}, nil
	}
	minB, err := statBytes(leaf, s.min)
	if err != nil {
		return nil, err
	}
	maxB, err := statBytes(leaf, s.max)
	if err != nil {
		return nil, err
	}
	return &format.Statistics{
		MinValue: minB, MaxValue: maxB,
		NullCount: &nc,
	}, nil
}
