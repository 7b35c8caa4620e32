package pqwriter

import (
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/pqwriter/internal/format"
)

const epochDaySeconds = 86400

// unconvert maps one non-null logical value (as produced by Shred)
// onto the Go primitive the leaf's physical type requires: bool,
// int32, int64, float32, float64 or []byte. It applies the
// DATE/TIMESTAMP/DECIMAL/UUID/FLOAT16/JSON/UTF8 conversions.
func unconvert(leaf *SchemaNode, v any) (any, error) {
	switch *leaf.Type {
	case format.Boolean:
		return unconvertBool(leaf, v)
	case format.Int32:
		return unconvertInt32(leaf, v)
	case format.Int64:
		return unconvertInt64(leaf, v)
	case format.Float:
		return unconvertFloat32(leaf, v)
	case format.Double:
		return unconvertFloat64(leaf, v)
	case format.ByteArray:
		return unconvertByteArray(leaf, v)
	case format.FixedLenByteArray:
		return unconvertFixedLenByteArray(leaf, v)
	default:
		return nil, newError(UnknownType, leaf.Name, "unsupported physical type %v", *leaf.Type)
	}
}

func unconvertBool(leaf *SchemaNode, v any) (any, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, newError(TypeMismatch, leaf.Name, "expected bool, got %T", v)
	}
	return b, nil
}

func isDecimal(leaf *SchemaNode) bool {
	if leaf.ConvertedType != nil && *leaf.ConvertedType == format.ConvertedTypeDecimal {
		return true
	}
	return leaf.LogicalType != nil && leaf.LogicalType.DECIMAL != nil
}

// unconvertDecimal scales f by 10^scale and truncates toward zero.
// Truncation is deliberate: a caller handing in an already-lossy
// float64 instead of a pre-scaled integer gets a predictable cut, not
// banker's rounding.
func unconvertDecimal(leaf *SchemaNode, f float64) int64 {
	scale := int32(0)
	if leaf.Scale != nil {
		scale = *leaf.Scale
	} else if leaf.LogicalType != nil && leaf.LogicalType.DECIMAL != nil {
		scale = leaf.LogicalType.DECIMAL.Scale
	}
	scaled := f * math.Pow(10, float64(scale))
	return int64(math.Trunc(scaled))
}

func unconvertInt32(leaf *SchemaNode, v any) (any, error) {
	if t, ok := v.(time.Time); ok {
		return int32(t.UTC().Unix() / epochDaySeconds), nil
	}
	if f, ok := v.(float64); ok && isDecimal(leaf) {
		return int32(unconvertDecimal(leaf, f)), nil
	}
	if i, ok := asInt64(v); ok {
		return int32(i), nil
	}
	return nil, newError(TypeMismatch, leaf.Name, "expected an integer or date for INT32 column, got %T", v)
}

func unconvertInt64(leaf *SchemaNode, v any) (any, error) {
	if t, ok := v.(time.Time); ok {
		if usesMicros(leaf) {
			return t.UnixMicro(), nil
		}
		return t.UnixMilli(), nil
	}
	if f, ok := v.(float64); ok && isDecimal(leaf) {
		return unconvertDecimal(leaf, f), nil
	}
	if i, ok := asInt64(v); ok {
		return i, nil
	}
	return nil, newError(TypeMismatch, leaf.Name, "expected an integer or date for INT64 column, got %T", v)
}

func usesMicros(leaf *SchemaNode) bool {
	return leaf.LogicalType != nil && leaf.LogicalType.TIMESTAMP != nil &&
		leaf.LogicalType.TIMESTAMP.Unit != nil && leaf.LogicalType.TIMESTAMP.Unit.Micros != nil
}

func unconvertFloat32(leaf *SchemaNode, v any) (any, error) {
	switch x := v.(type) {
	case float32:
		return x, nil
	case float64:
		return float32(x), nil
	default:
		if i, ok := asInt64(v); ok {
			return float32(i), nil
		}
		return nil, newError(TypeMismatch, leaf.Name, "expected a float for FLOAT column, got %T", v)
	}
}

func unconvertFloat64(leaf *SchemaNode, v any) (any, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	default:
		if i, ok := asInt64(v); ok {
			return float64(i), nil
		}
		return nil, newError(TypeMismatch, leaf.Name, "expected a float for DOUBLE column, got %T", v)
	}
}

func unconvertByteArray(leaf *SchemaNode, v any) (any, error) {
	switch x := v.(type) {
	case string:
		return []byte(x), nil
	case []byte:
		return x, nil
	default:
		if leaf.ConvertedType != nil && *leaf.ConvertedType == format.ConvertedTypeJSON {
			b, err := json.Marshal(x)
			if err != nil {
				return nil, wrapError(TypeMismatch, leaf.Name, err, "failed to marshal JSON value")
			}
			return b, nil
		}
		return nil, newError(TypeMismatch, leaf.Name, "expected a string or []byte for BYTE_ARRAY column, got %T", v)
	}
}

func unconvertFixedLenByteArray(leaf *SchemaNode, v any) (any, error) {
	typeLength := 0
	if leaf.TypeLength != nil {
		typeLength = int(*leaf.TypeLength)
	}
	switch x := v.(type) {
	case uuid.UUID:
		return append([]byte(nil), x[:]...), nil
	case [16]byte:
		return append([]byte(nil), x[:]...), nil
	case []byte:
		if len(x) != typeLength {
			return nil, newError(TypeMismatch, leaf.Name, "fixed_len_byte_array expected %d bytes, got %d", typeLength, len(x))
		}
		return x, nil
	case float32:
		if leaf.LogicalType == nil || leaf.LogicalType.FLOAT16 == nil {
			return nil, newError(TypeMismatch, leaf.Name, "float32 value requires a FLOAT16 logical type")
		}
		return float16Bytes(x), nil
	default:
		return nil, newError(TypeMismatch, leaf.Name, "expected a %d-byte value for FIXED_LEN_BYTE_ARRAY column, got %T", typeLength, v)
	}
}

// float16Bytes rounds v to the nearest representable IEEE-754 binary16
// value, round-to-nearest-even, and returns its 2-byte little-endian
// encoding. Note the asymmetry with unconvertDecimal, which truncates.
func float16Bytes(v float32) []byte {
	bits := math.Float32bits(v)
	sign := uint16((bits >> 16) & 0x8000)
	exp := int32((bits>>23)&0xff) - 127 + 15
	mant := bits & 0x7fffff

	switch {
	case math.IsNaN(float64(v)):
		return packU16(sign | 0x7e00)
	case math.IsInf(float64(v), 0):
		return packU16(sign | 0x7c00)
	case exp <= 0:
		if exp < -10 {
			return packU16(sign)
		}
		mant |= 0x800000
		shift := uint(14 - exp)
		half := uint16(mant >> shift)
		halfBit := uint32(1) << (shift - 1)
		if mant&halfBit != 0 && (mant&(halfBit-1) != 0 || half&1 != 0) {
			half++
		}
		return packU16(sign | half)
	case exp >= 0x1f:
		return packU16(sign | 0x7c00)
	default:
		half := uint16(exp)<<10 | uint16(mant>>13)
		if mant&0x1000 != 0 && (mant&0x0fff != 0 || half&1 != 0) {
			half++
		}
		return packU16(sign | half)
	}
}

func packU16(v uint16) []byte {
	return []byte{byte(v), byte(v >> 8)}
}
