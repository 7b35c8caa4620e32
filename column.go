package pqwriter

import (
	"sort"

	"github.com/parquet-go/pqwriter/encoding/alp"
	"github.com/parquet-go/pqwriter/encoding/bytestreamsplit"
	"github.com/parquet-go/pqwriter/encoding/delta"
	"github.com/parquet-go/pqwriter/encoding/plain"
	"github.com/parquet-go/pqwriter/encoding/rle"
	"github.com/parquet-go/pqwriter/internal/format"
	"github.com/parquet-go/pqwriter/internal/snappy"
	"github.com/parquet-go/pqwriter/internal/thrift"
)

// ColumnWriteOptions configures WriteColumn for one leaf column; it is
// the per-column slice of WriterOptions.
type ColumnWriteOptions struct {
	Compressed     bool
	Statistics     bool
	PageSize       int // 0 disables multi-page slicing: one page total
	ForcedEncoding *format.Encoding
	ColumnIndex    bool
	OffsetIndex    bool
}

// ColumnChunkResult is one leaf column's encoded chunk. It carries no
// file offset; the caller (the row-group writer) sets ColumnChunk's
// FileOffset from the sink offset recorded before WriteColumn was
// called.
type ColumnChunkResult struct {
	PathInSchema []string
	MetaData     format.ColumnMetaData
	ColumnIndex  *format.ColumnIndex
	OffsetIndex  *format.OffsetIndex
}

// pageSlice is a half-open [start,end) range into a PageData's
// parallel arrays.
type pageSlice struct{ start, end int }

// WriteColumn shreds, pages and writes one leaf column's values to
// sink, returning its chunk metadata.
func WriteColumn(sink *ByteSink, path []*SchemaNode, values []any, opts ColumnWriteOptions) (*ColumnChunkResult, error) {
	leaf := path[len(path)-1]
	column := leaf.Name
	physType := *leaf.Type
	typeLength := 0
	if leaf.TypeLength != nil {
		typeLength = int(*leaf.TypeLength)
	}

	pageData, err := Shred(column, path, values)
	if err != nil {
		return nil, err
	}
	maxDef, maxRep := maxLevels(path)
	defBitWidth := rle.BitWidth(int(maxDef))
	repBitWidth := rle.BitWidth(int(maxRep))

	var stats *columnStats
	if opts.Statistics {
		stats = newColumnStats()
	}
	nonNull := make([]any, 0, len(pageData.Values))
	for _, v := range pageData.Values {
		if v == nil {
			if stats != nil {
				stats.observeNull()
			}
			continue
		}
		if stats != nil {
			stats.observe(v)
		}
		nonNull = append(nonNull, v)
	}

	useDict := shouldUseDictionary(physType, opts.ForcedEncoding, len(nonNull), countDistinct(nonNull))

	var dict *dictionaryResult
	var physicalAll []any
	if useDict {
		converted, err := convertAll(leaf, nonNull)
		if err != nil {
			return nil, err
		}
		dict = buildDictionary(converted)
	} else {
		physicalAll, err = convertAll(leaf, nonNull)
		if err != nil {
			return nil, err
		}
	}

	encoding := format.EncodingPlain
	switch {
	case useDict:
		encoding = format.EncodingRLEDictionary
	case opts.ForcedEncoding != nil:
		encoding = *opts.ForcedEncoding
	case physType == format.Boolean && len(nonNull) > 16:
		encoding = format.EncodingRLE
	}

	chunkStatistics, err := buildStatistics(leaf, stats)
	if err != nil {
		return nil, err
	}

	pages := splitPages(pageData, physType, typeLength, opts.PageSize)

	var pageIdx *pageIndexBuilder
	if opts.ColumnIndex || opts.OffsetIndex {
		pageIdx = &pageIndexBuilder{}
	}

	var dictionaryPageOffset *int64
	if dict != nil {
		off := sink.Offset()
		dictionaryPageOffset = &off
		if err := writeDictionaryPage(sink, leaf, dict.values, opts.Compressed); err != nil {
			return nil, err
		}
	}

	dataPageOffset := sink.Offset()
	var totalUncompressed, totalCompressed int64
	var encodingStats []format.PageEncodingStats
	rowsSeen := int64(0)
	cursor := 0 // index into nonNull / dict.indices / physicalAll

	for _, pg := range pages {
		defLevels := pageData.DefinitionLevels[pg.start:pg.end]
		repLevels := pageData.RepetitionLevels[pg.start:pg.end]

		numNulls := 0
		for _, d := range defLevels {
			if d < maxDef {
				numNulls++
			}
		}
		numRows := 0
		for _, r := range repLevels {
			if r == 0 {
				numRows++
			}
		}
		firstRowIndex := rowsSeen
		if numRows > 0 {
			rowsSeen += int64(numRows)
		}

		pageNonNullCount := len(defLevels) - numNulls
		pageLogical := nonNull[cursor : cursor+pageNonNullCount]

		var body []byte
		if useDict {
			idxs := dict.indices[cursor : cursor+pageNonNullCount]
			body = encodeDictionaryIndices(idxs, len(dict.values))
		} else {
			body, err = encodePhysicalValues(leaf, physType, typeLength, encoding, physicalAll[cursor:cursor+pageNonNullCount])
			if err != nil {
				return nil, err
			}
		}
		cursor += pageNonNullCount

		var repBytes, defBytes []byte
		if maxRep > 0 {
			repBytes = rle.Encode(int32sToUint64(repLevels), repBitWidth)
		}
		if maxDef > 0 {
			defBytes = rle.Encode(int32sToUint64(defLevels), defBitWidth)
		}

		finalBody := body
		if opts.Compressed {
			dst := make([]byte, snappy.MaxEncodedLen(len(body)))
			finalBody = snappy.Encode(dst, body)
		}

		levels := make([]byte, 0, len(repBytes)+len(defBytes))
		levels = append(levels, repBytes...)
		levels = append(levels, defBytes...)
		uncompressedPageSize := len(levels) + len(body)
		compressedPageSize := len(levels) + len(finalBody)

		var pageStats *format.Statistics
		var pageMin, pageMax any
		if opts.Statistics || pageIdx != nil {
			pageStats, pageMin, pageMax, err = pageStatistics(leaf, pageLogical, numNulls)
			if err != nil {
				return nil, err
			}
		}
		var headerStats *format.Statistics
		if opts.Statistics {
			headerStats = pageStats
		}

		isCompressed := opts.Compressed
		hdr := format.PageHeader{
			Type:                 format.DataPageV2,
			UncompressedPageSize: int32(uncompressedPageSize),
			CompressedPageSize:   int32(compressedPageSize),
			DataPageHeaderV2: &format.DataPageHeaderV2{
				NumValues:                  int32(len(defLevels)),
				NumNulls:                   int32(numNulls),
				NumRows:                    int32(numRows),
				Encoding:                   encoding,
				DefinitionLevelsByteLength: int32(len(defBytes)),
				RepetitionLevelsByteLength: int32(len(repBytes)),
				IsCompressed:               &isCompressed,
				Statistics:                 headerStats,
			},
		}

		pageOffset := sink.Offset()
		if err := thrift.Marshal(sink, &hdr); err != nil {
			return nil, err
		}
		sink.AppendBytes(levels)
		sink.AppendBytes(finalBody)

		totalUncompressed += int64(uncompressedPageSize)
		totalCompressed += int64(compressedPageSize)
		encodingStats = appendEncodingStat(encodingStats, format.DataPageV2, encoding)

		if pageIdx != nil {
			nullPage := pageStats.MinValue == nil
			pageIdx.addPage(nullPage, pageStats.MinValue, pageStats.MaxValue, pageMin, pageMax, int64(numNulls), pageOffset, int32(compressedPageSize), firstRowIndex)
		}
	}

	pathInSchema := make([]string, len(path)-1)
	for i, n := range path[1:] {
		pathInSchema[i] = n.Name
	}

	encSet := map[format.Encoding]bool{format.EncodingRLE: true, encoding: true}
	if dict != nil {
		encSet[format.EncodingPlain] = true
	}
	encodings := make([]format.Encoding, 0, len(encSet))
	for e := range encSet {
		encodings = append(encodings, e)
	}
	sort.Slice(encodings, func(i, j int) bool { return encodings[i] < encodings[j] })

	meta := format.ColumnMetaData{
		Type:                  physType,
		Encodings:             encodings,
		PathInSchema:          pathInSchema,
		Codec:                 codecFor(opts.Compressed),
		NumValues:             int64(len(pageData.Values)),
		TotalUncompressedSize: totalUncompressed,
		TotalCompressedSize:   totalCompressed,
		DataPageOffset:        dataPageOffset,
		DictionaryPageOffset:  dictionaryPageOffset,
		Statistics:            chunkStatistics,
		EncodingStats:         encodingStats,
	}

	var ci *format.ColumnIndex
	var oi *format.OffsetIndex
	if pageIdx != nil {
		ci, oi = pageIdx.build()
	}

	return &ColumnChunkResult{PathInSchema: pathInSchema, MetaData: meta, ColumnIndex: ci, OffsetIndex: oi}, nil
}

func codecFor(compressed bool) format.CompressionCodec {
	if compressed {
		return format.Snappy
	}
	return format.Uncompressed
}

func countDistinct(values []any) int {
	seen := make(map[any]struct{}, len(values))
	for _, v := range values {
		seen[dictKey(v)] = struct{}{}
	}
	return len(seen)
}

func convertAll(leaf *SchemaNode, values []any) ([]any, error) {
	out := make([]any, len(values))
	for i, v := range values {
		cv, err := unconvert(leaf, v)
		if err != nil {
			return nil, err
		}
		out[i] = cv
	}
	return out, nil
}

func int32sToUint64(levels []int32) []uint64 {
	out := make([]uint64, len(levels))
	for i, v := range levels {
		out[i] = uint64(v)
	}
	return out
}

func encodeDictionaryIndices(idxs []int32, dictSize int) []byte {
	bitWidth := rle.BitWidth(dictSize - 1)
	vals := make([]uint64, len(idxs))
	for i, x := range idxs {
		vals[i] = uint64(x)
	}
	out := make([]byte, 1, 1+len(idxs))
	out[0] = byte(bitWidth)
	return append(out, rle.Encode(vals, bitWidth)...)
}

func appendEncodingStat(stats []format.PageEncodingStats, pageType format.PageType, encoding format.Encoding) []format.PageEncodingStats {
	for i := range stats {
		if stats[i].PageType == pageType && stats[i].Encoding == encoding {
			stats[i].Count++
			return stats
		}
	}
	return append(stats, format.PageEncodingStats{PageType: pageType, Encoding: encoding, Count: 1})
}

// pageStatistics renders one page's Statistics plus the normalized
// logical min/max the page-index boundary ordering compares (nil for
// an all-null page).
func pageStatistics(leaf *SchemaNode, pageLogical []any, numNulls int) (*format.Statistics, any, any, error) {
	ps := newColumnStats()
	for i := 0; i < numNulls; i++ {
		ps.observeNull()
	}
	for _, v := range pageLogical {
		ps.observe(v)
	}
	stats, err := buildStatistics(leaf, ps)
	if err != nil {
		return nil, nil, nil, err
	}
	if !ps.hasValue {
		return stats, nil, nil, nil
	}
	return stats, ps.min, ps.max, nil
}

func writeDictionaryPage(sink *ByteSink, leaf *SchemaNode, dictValues []any, compressed bool) error {
	body, err := encodePlainValues(leaf, dictValues)
	if err != nil {
		return err
	}
	final := body
	if compressed {
		dst := make([]byte, snappy.MaxEncodedLen(len(body)))
		final = snappy.Encode(dst, body)
	}
	hdr := format.PageHeader{
		Type:                 format.DictionaryPage,
		UncompressedPageSize: int32(len(body)),
		CompressedPageSize:   int32(len(final)),
		DictionaryPageHeader: &format.DictionaryPageHeader{
			NumValues: int32(len(dictValues)),
			Encoding:  format.EncodingPlain,
		},
	}
	if err := thrift.Marshal(sink, &hdr); err != nil {
		return err
	}
	sink.AppendBytes(final)
	return nil
}

// splitPages slices a column's shredded entries into pages by an
// estimated-byte policy: a page closes, before the incoming entry,
// once the accumulated non-null value bytes plus that entry's cost
// would meet pageSize and the page already holds at least one entry.
// The entry that crossed the boundary opens the next page. pageSize
// <= 0 disables slicing entirely.
func splitPages(pageData *PageData, physType format.Type, typeLength, pageSize int) []pageSlice {
	n := len(pageData.Values)
	if n == 0 {
		return nil
	}
	if pageSize <= 0 {
		return []pageSlice{{0, n}}
	}
	var pages []pageSlice
	start := 0
	acc := 0
	for i := 0; i < n; i++ {
		cost := 0
		if pageData.Values[i] != nil {
			cost = valueByteCost(physType, typeLength, pageData.Values[i])
		}
		if i > start && acc+cost >= pageSize {
			pages = append(pages, pageSlice{start, i})
			start = i
			acc = 0
		}
		acc += cost
	}
	pages = append(pages, pageSlice{start, n})
	return pages
}

func valueByteCost(physType format.Type, typeLength int, v any) int {
	switch physType {
	case format.Boolean:
		return 1
	case format.Int32, format.Float:
		return 4
	case format.Int64, format.Double:
		return 8
	case format.Int96:
		return 12
	case format.FixedLenByteArray:
		return typeLength
	case format.ByteArray:
		switch x := v.(type) {
		case []byte:
			return len(x)
		case string:
			return len(x)
		}
	}
	return 0
}

// encodePhysicalValues dispatches already-unconverted physical values
// to the codec named by encoding.
func encodePhysicalValues(leaf *SchemaNode, physType format.Type, typeLength int, encoding format.Encoding, values []any) ([]byte, error) {
	switch encoding {
	case format.EncodingPlain:
		return encodePlainValues(leaf, values)
	case format.EncodingRLE:
		// RLE-encoded boolean data pages carry a 4-byte little-endian
		// length prefix, unlike dictionary index streams (1-byte bit
		// width) and DataPageV2 level streams (no prefix at all).
		u64 := make([]uint64, len(values))
		for i, v := range values {
			if v.(bool) {
				u64[i] = 1
			}
		}
		encoded := rle.Encode(u64, 1)
		n := uint32(len(encoded))
		out := append(make([]byte, 0, 4+len(encoded)), byte(n), byte(n>>8), byte(n>>16), byte(n>>24))
		return append(out, encoded...), nil
	case format.EncodingDeltaBinaryPacked:
		switch physType {
		case format.Int32:
			return delta.EncodeInt32s(toInt32s(values)), nil
		case format.Int64:
			return delta.EncodeInt64s(toInt64s(values)), nil
		default:
			return nil, newError(UnsupportedEncodingForType, leaf.Name, "DELTA_BINARY_PACKED requires INT32 or INT64")
		}
	case format.EncodingDeltaLengthByteArray:
		bs, err := toByteSlices(leaf, values)
		if err != nil {
			return nil, err
		}
		return delta.EncodeDeltaLengthByteArray(bs), nil
	case format.EncodingDeltaByteArray:
		bs, err := toByteSlices(leaf, values)
		if err != nil {
			return nil, err
		}
		return delta.EncodeDeltaByteArray(bs), nil
	case format.EncodingByteStreamSplit:
		switch physType {
		case format.Float:
			return bytestreamsplit.EncodeFloat32s(toFloat32s(values)), nil
		case format.Double:
			return bytestreamsplit.EncodeFloat64s(toFloat64s(values)), nil
		case format.Int32:
			return bytestreamsplit.EncodeInt32s(toInt32s(values)), nil
		case format.Int64:
			return bytestreamsplit.EncodeInt64s(toInt64s(values)), nil
		case format.FixedLenByteArray:
			bs, err := toByteSlices(leaf, values)
			if err != nil {
				return nil, err
			}
			return bytestreamsplit.EncodeFixedLenByteArrays(bs, typeLength)
		default:
			return nil, newError(UnsupportedEncodingForType, leaf.Name, "BYTE_STREAM_SPLIT does not support this physical type")
		}
	case format.EncodingALP:
		switch physType {
		case format.Float:
			return alp.EncodeFloat32s(toFloat32s(values)), nil
		case format.Double:
			return alp.EncodeFloat64s(toFloat64s(values)), nil
		default:
			return nil, newError(UnsupportedEncodingForType, leaf.Name, "ALP requires FLOAT or DOUBLE")
		}
	default:
		return nil, newError(UnsupportedEncodingForType, leaf.Name, "unsupported encoding")
	}
}

func encodePlainValues(leaf *SchemaNode, values []any) ([]byte, error) {
	physType := *leaf.Type
	typeLength := 0
	if leaf.TypeLength != nil {
		typeLength = int(*leaf.TypeLength)
	}
	switch physType {
	case format.Boolean:
		bools := make([]bool, len(values))
		for i, v := range values {
			bools[i] = v.(bool)
		}
		return plain.EncodeBooleans(bools), nil
	case format.Int32:
		return plain.EncodeInt32s(toInt32s(values)), nil
	case format.Int64:
		return plain.EncodeInt64s(toInt64s(values)), nil
	case format.Float:
		return plain.EncodeFloat32s(toFloat32s(values)), nil
	case format.Double:
		return plain.EncodeFloat64s(toFloat64s(values)), nil
	case format.ByteArray:
		bs, err := toByteSlices(leaf, values)
		if err != nil {
			return nil, err
		}
		return plain.EncodeByteArrays(bs), nil
	case format.FixedLenByteArray:
		bs, err := toByteSlices(leaf, values)
		if err != nil {
			return nil, err
		}
		return plain.EncodeFixedLenByteArrays(bs, typeLength)
	default:
		return nil, newError(UnknownType, leaf.Name, "unsupported physical type %v", physType)
	}
}

func toInt32s(values []any) []int32 {
	out := make([]int32, len(values))
	for i, v := range values {
		out[i] = v.(int32)
	}
	return out
}

func toInt64s(values []any) []int64 {
	out := make([]int64, len(values))
	for i, v := range values {
		out[i] = v.(int64)
	}
	return out
}

func toFloat32s(values []any) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = v.(float32)
	}
	return out
}

func toFloat64s(values []any) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v.(float64)
	}
	return out
}

func toByteSlices(leaf *SchemaNode, values []any) ([][]byte, error) {
	out := make([][]byte, len(values))
	for i, v := range values {
		b, ok := v.([]byte)
		if !ok {
			return nil, newError(TypeMismatch, leaf.Name, "expected []byte physical value, got %T", v)
		}
		out[i] = b
	}
	return out, nil
}
