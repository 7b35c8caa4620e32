package pqwriter

import "github.com/parquet-go/pqwriter/internal/format"

// dictionaryResult is the outcome of deduplicating one column's
// non-null converted values: the distinct values in first-seen order,
// and the index into that list for every original value. Nulls are
// skipped entirely; they carry no dictionary index.
type dictionaryResult struct {
	values  []any
	indices []int32
}

// buildDictionary deduplicates values (which must contain no nils) by
// their physical-form identity: []byte keys compare by content via a
// string conversion, everything else (bool/int32/int64/float32/
// float64) compares by Go equality.
func buildDictionary(values []any) *dictionaryResult {
	idxOf := make(map[any]int32, len(values))
	distinct := make([]any, 0, len(values))
	indices := make([]int32, len(values))
	for i, v := range values {
		key := dictKey(v)
		idx, ok := idxOf[key]
		if !ok {
			idx = int32(len(distinct))
			idxOf[key] = idx
			distinct = append(distinct, v)
		}
		indices[i] = idx
	}
	return &dictionaryResult{values: distinct, indices: indices}
}

// dictKey normalizes v to a hashable, type-widened form so that e.g.
// an int32 5 and an int64 5 contributed by a mixed []any column (or a
// []byte and an equal-content []byte) collide to the same dictionary
// entry, matching normalizeForStats' widening in statistics.go. An
// integer and a float of equal value keep distinct keys.
func dictKey(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case float32:
		return float64(x)
	default:
		if i, ok := asInt64(v); ok {
			return i
		}
		return v
	}
}

// shouldUseDictionary decides the RLE_DICTIONARY question for a
// column chunk: never for BOOLEAN, never when the caller forced a
// different encoding, and otherwise only once values repeat more than
// twice per distinct value.
func shouldUseDictionary(physType format.Type, forced *format.Encoding, numValues, numDistinct int) bool {
	if physType == format.Boolean {
		return false
	}
	if forced != nil && *forced != format.EncodingRLEDictionary {
		return false
	}
	if numDistinct == 0 {
		return false
	}
	return float64(numValues)/float64(numDistinct) > 2
}
