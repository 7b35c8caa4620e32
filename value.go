package pqwriter

import (
	"fmt"
	"sort"
	"time"
)

// valueKind tags the runtime shape a column value was classified as:
// callers pass ordinary Go values (bool, int64, float64, string,
// []byte, time.Time, nested slices/maps), and classify discriminates
// them into this fixed set without reflection beyond a single type
// switch.
type valueKind int

const (
	kindNull valueKind = iota
	kindBool
	kindI32
	kindI64
	kindF32
	kindF64
	kindBytes
	kindStr
	kindDate
	kindList
	kindMap
	kindStruct
)

func (k valueKind) String() string {
	switch k {
	case kindNull:
		return "null"
	case kindBool:
		return "bool"
	case kindI32:
		return "int32"
	case kindI64:
		return "int64"
	case kindF32:
		return "float32"
	case kindF64:
		return "float64"
	case kindBytes:
		return "bytes"
	case kindStr:
		return "string"
	case kindDate:
		return "date"
	case kindList:
		return "list"
	case kindMap:
		return "map"
	case kindStruct:
		return "struct"
	default:
		return "unknown"
	}
}

// classify inspects v's runtime type and returns the valueKind it
// maps to. A nil v classifies as kindNull; a typed nil inside an
// interface (e.g. a nil []byte) classifies by its type.
func classify(v any) valueKind {
	if v == nil {
		return kindNull
	}
	switch v.(type) {
	case bool:
		return kindBool
	case int32, uint32, int16, uint16, int8, uint8, int:
		return kindI32
	case int64, uint64, uint:
		return kindI64
	case float32:
		return kindF32
	case float64:
		return kindF64
	case []byte:
		return kindBytes
	case string:
		return kindStr
	case time.Time:
		return kindDate
	case []any:
		return kindList
	case map[string]any:
		return kindMap
	default:
		return kindStruct
	}
}

// asInt64 widens any integer-classified value to int64.
func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return int64(x), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		return int64(x), true
	default:
		return 0, false
	}
}

// mapEntry is one key/value pair of a normalized MAP input.
type mapEntry struct {
	Key   any
	Value any
}

// normalizeMapInput accepts any of the four concrete shapes a MAP
// value may arrive in and returns an ordered slice of entries:
//
//   - a Go map (ordered by key, for deterministic output),
//   - a slice of {key,value}-shaped structs (as map[string]any with
//     "key"/"value" fields),
//   - a slice of two-element [any,any] pairs,
//   - or a plain map[string]any, which is the same Go type as the
//     first point and is handled the same way.
//
// Anything else is reported as a MapEntryMalformed error.
func normalizeMapInput(column string, v any) ([]mapEntry, error) {
	if v == nil {
		return nil, nil
	}
	switch m := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]mapEntry, len(keys))
		for i, k := range keys {
			entries[i] = mapEntry{Key: k, Value: m[k]}
		}
		return entries, nil
	case []any:
		entries := make([]mapEntry, 0, len(m))
		for i, item := range m {
			entry, err := normalizeMapEntryItem(column, i, item)
			if err != nil {
				return nil, err
			}
			entries = append(entries, entry)
		}
		return entries, nil
	default:
		return nil, newError(MapEntryMalformed, column, "value of type %T cannot be normalized as a map", v)
	}
}

func normalizeMapEntryItem(column string, index int, item any) (mapEntry, error) {
	switch x := item.(type) {
	case map[string]any:
		key, hasKey := x["key"]
		value, hasValue := x["value"]
		if !hasKey || !hasValue {
			return mapEntry{}, newError(MapEntryMalformed, column, "entry %d missing key or value field", index)
		}
		return mapEntry{Key: key, Value: value}, nil
	case []any:
		if len(x) != 2 {
			return mapEntry{}, newError(MapEntryMalformed, column, "entry %d is a %d-element pair, want 2", index, len(x))
		}
		return mapEntry{Key: x[0], Value: x[1]}, nil
	default:
		return mapEntry{}, newError(MapEntryMalformed, column, "entry %d has unrecognized shape %T", index, item)
	}
}

// asString renders a map key as its canonical BYTE_ARRAY-compatible
// string form.
func asString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	default:
		if i64, ok := asInt64(v); ok {
			return fmt.Sprintf("%d", i64), nil
		}
		return "", fmt.Errorf("cannot use value of type %T as a map key", v)
	}
}
