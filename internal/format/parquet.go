// Package format defines the Apache Parquet Thrift metadata structures
// used by the footer and page headers, hand-transcribed from the
// published parquet.thrift IDL. Every exported struct carries
// `thrift:"<field-id>[,optional]"` tags consumed by
// [github.com/parquet-go/pqwriter/internal/thrift].
package format

// Type is the Parquet primitive physical type of a schema leaf.
type Type int32

const (
	Boolean              Type = 0
	Int32                Type = 1
	Int64                Type = 2
	Int96                Type = 3
	Float                Type = 4
	Double               Type = 5
	ByteArray            Type = 6
	FixedLenByteArray    Type = 7
)

// ConvertedType is the legacy logical-type annotation.
type ConvertedType int32

const (
	ConvertedTypeUTF8            ConvertedType = 0
	ConvertedTypeMap             ConvertedType = 1
	ConvertedTypeMapKeyValue     ConvertedType = 2
	ConvertedTypeList            ConvertedType = 3
	ConvertedTypeEnum            ConvertedType = 4
	ConvertedTypeDecimal         ConvertedType = 5
	ConvertedTypeDate            ConvertedType = 6
	ConvertedTypeTimeMillis      ConvertedType = 7
	ConvertedTypeTimeMicros      ConvertedType = 8
	ConvertedTypeTimestampMillis ConvertedType = 9
	ConvertedTypeTimestampMicros ConvertedType = 10
	ConvertedTypeUint8           ConvertedType = 11
	ConvertedTypeUint16          ConvertedType = 12
	ConvertedTypeUint32          ConvertedType = 13
	ConvertedTypeUint64          ConvertedType = 14
	ConvertedTypeInt8            ConvertedType = 15
	ConvertedTypeInt16           ConvertedType = 16
	ConvertedTypeInt32           ConvertedType = 17
	ConvertedTypeInt64           ConvertedType = 18
	ConvertedTypeJSON            ConvertedType = 19
	ConvertedTypeBSON            ConvertedType = 20
	ConvertedTypeInterval        ConvertedType = 21
)

// FieldRepetitionType is REQUIRED, OPTIONAL or REPEATED.
type FieldRepetitionType int32

const (
	Required FieldRepetitionType = 0
	Optional FieldRepetitionType = 1
	Repeated FieldRepetitionType = 2
)

// Encoding identifies a page's value encoding.
type Encoding int32

const (
	EncodingPlain                Encoding = 0
	EncodingPlainDictionary      Encoding = 2
	EncodingRLE                  Encoding = 3
	EncodingDeltaBinaryPacked    Encoding = 5
	EncodingDeltaLengthByteArray Encoding = 6
	EncodingDeltaByteArray       Encoding = 7
	EncodingRLEDictionary        Encoding = 8
	EncodingByteStreamSplit      Encoding = 9

	// EncodingALP is this module's own extension for Adaptive
	// Lossless floating-Point encoding (encoding/alp): it has no
	// assigned id in the published parquet.thrift Encoding enum, so it
	// is numbered well outside that range. A file using it is only
	// readable by a decoder that also knows this extension.
	EncodingALP Encoding = 100
)

// CompressionCodec identifies the page-body compression codec.
type CompressionCodec int32

const (
	Uncompressed CompressionCodec = 0
	Snappy       CompressionCodec = 1
)

// PageType distinguishes data, index and dictionary pages.
type PageType int32

const (
	DataPage       PageType = 0
	IndexPage      PageType = 1
	DictionaryPage PageType = 2
	DataPageV2     PageType = 3
)

// BoundaryOrder reports whether a ColumnIndex's min/max arrays are sorted.
type BoundaryOrder int32

const (
	Unordered  BoundaryOrder = 0
	Ascending  BoundaryOrder = 1
	Descending BoundaryOrder = 2
)

// EdgeInterpolationAlgorithm annotates GEOGRAPHY logical types.
type EdgeInterpolationAlgorithm int32

const (
	Spherical       EdgeInterpolationAlgorithm = 0
	Vincenty        EdgeInterpolationAlgorithm = 1
	Thomas          EdgeInterpolationAlgorithm = 2
	Andoyer         EdgeInterpolationAlgorithm = 3
	Karney          EdgeInterpolationAlgorithm = 4
)

type StringType struct{}

type UUIDType struct{}

type MapType struct{}

type ListType struct{}

type EnumType struct{}

type NullType struct{}

type JsonType struct{}

type BsonType struct{}

type Float16Type struct{}

type DecimalType struct {
	Scale     int32 `thrift:"1"`
	Precision int32 `thrift:"2"`
}

type MilliSeconds struct{}
type MicroSeconds struct{}
type NanoSeconds struct{}

// TimeUnit is a Thrift union modeled as a struct of mutually exclusive
// optional variants; exactly one is set.
type TimeUnit struct {
	Millis *MilliSeconds `thrift:"1,optional"`
	Micros *MicroSeconds `thrift:"2,optional"`
	Nanos  *NanoSeconds  `thrift:"3,optional"`
}

type DateType struct{}

type TimeType struct {
	IsAdjustedToUTC bool      `thrift:"1"`
	Unit            *TimeUnit `thrift:"2"`
}

type TimestampType struct {
	IsAdjustedToUTC bool      `thrift:"1"`
	Unit            *TimeUnit `thrift:"2"`
}

type IntType struct {
	BitWidth int8 `thrift:"1"`
	IsSigned bool `thrift:"2"`
}

type GeometryType struct {
	CRS *string `thrift:"1,optional"`
}

type GeographyType struct {
	CRS       *string                     `thrift:"1,optional"`
	Algorithm *EdgeInterpolationAlgorithm `thrift:"2,optional"`
}

// LogicalType is a Thrift union modeled as a struct of mutually
// exclusive optional variants; exactly one is set by callers.
type LogicalType struct {
	STRING    *StringType    `thrift:"1,optional"`
	MAP       *MapType       `thrift:"2,optional"`
	LIST      *ListType      `thrift:"3,optional"`
	ENUM      *EnumType      `thrift:"4,optional"`
	DECIMAL   *DecimalType   `thrift:"5,optional"`
	DATE      *DateType      `thrift:"6,optional"`
	TIME      *TimeType      `thrift:"7,optional"`
	TIMESTAMP *TimestampType `thrift:"8,optional"`
	INTEGER   *IntType       `thrift:"10,optional"`
	UNKNOWN   *NullType      `thrift:"11,optional"`
	JSON      *JsonType      `thrift:"12,optional"`
	BSON      *BsonType      `thrift:"13,optional"`
	UUID      *UUIDType      `thrift:"14,optional"`
	FLOAT16   *Float16Type   `thrift:"15,optional"`
	GEOMETRY  *GeometryType  `thrift:"17,optional"`
	GEOGRAPHY *GeographyType `thrift:"18,optional"`
}

// SchemaElement is one node of the preorder-linearized schema tree.
type SchemaElement struct {
	Type           *Type                `thrift:"1,optional"`
	TypeLength     *int32               `thrift:"2,optional"`
	RepetitionType *FieldRepetitionType `thrift:"3,optional"`
	Name           string               `thrift:"4"`
	NumChildren    *int32               `thrift:"5,optional"`
	ConvertedType  *ConvertedType       `thrift:"6,optional"`
	Scale          *int32               `thrift:"7,optional"`
	Precision      *int32               `thrift:"8,optional"`
	FieldID        *int32               `thrift:"9,optional"`
	LogicalType    *LogicalType         `thrift:"10,optional"`
}

// Statistics holds the logical min/max/null-count summary for a column
// chunk or a single page.
type Statistics struct {
	Max             []byte `thrift:"1,optional"`
	Min             []byte `thrift:"2,optional"`
	NullCount       *int64 `thrift:"3,optional"`
	DistinctCount   *int64 `thrift:"4,optional"`
	MaxValue        []byte `thrift:"5,optional"`
	MinValue        []byte `thrift:"6,optional"`
	IsMaxValueExact *bool  `thrift:"7,optional"`
	IsMinValueExact *bool  `thrift:"8,optional"`
}

type DataPageHeader struct {
	NumValues               int32    `thrift:"1"`
	Encoding                Encoding `thrift:"2"`
	DefinitionLevelEncoding Encoding `thrift:"3"`
	RepetitionLevelEncoding Encoding `thrift:"4"`
	Statistics              *Statistics `thrift:"5,optional"`
}

type DataPageHeaderV2 struct {
	NumValues                  int32       `thrift:"1"`
	NumNulls                   int32       `thrift:"2"`
	NumRows                    int32       `thrift:"3"`
	Encoding                   Encoding    `thrift:"4"`
	DefinitionLevelsByteLength int32       `thrift:"5"`
	RepetitionLevelsByteLength int32       `thrift:"6"`
	IsCompressed               *bool       `thrift:"7,optional"`
	Statistics                 *Statistics `thrift:"8,optional"`
}

type DictionaryPageHeader struct {
	NumValues int32    `thrift:"1"`
	Encoding  Encoding `thrift:"2"`
	IsSorted  *bool    `thrift:"3,optional"`
}

type IndexPageHeader struct{}

// PageHeader prefixes every page (dictionary, data or data-v2) in the file.
type PageHeader struct {
	Type                 PageType              `thrift:"1"`
	UncompressedPageSize int32                 `thrift:"2"`
	CompressedPageSize   int32                 `thrift:"3"`
	CRC                  *int32                `thrift:"4,optional"`
	DataPageHeader       *DataPageHeader       `thrift:"5,optional"`
	IndexPageHeader      *IndexPageHeader      `thrift:"6,optional"`
	DictionaryPageHeader *DictionaryPageHeader `thrift:"7,optional"`
	DataPageHeaderV2     *DataPageHeaderV2     `thrift:"8,optional"`
}

type KeyValue struct {
	Key   string  `thrift:"1"`
	Value *string `thrift:"2,optional"`
}

type SortingColumn struct {
	ColumnIdx  int32 `thrift:"1"`
	Descending bool  `thrift:"2"`
	NullsFirst bool  `thrift:"3"`
}

type PageEncodingStats struct {
	PageType PageType `thrift:"1"`
	Encoding Encoding `thrift:"2"`
	Count    int32    `thrift:"3"`
}

// ColumnMetaData describes one column chunk's encoding, compression and
// byte-offset bookkeeping.
type ColumnMetaData struct {
	Type                  Type                `thrift:"1"`
	Encodings             []Encoding          `thrift:"2"`
	PathInSchema          []string            `thrift:"3"`
	Codec                 CompressionCodec    `thrift:"4"`
	NumValues             int64               `thrift:"5"`
	TotalUncompressedSize int64               `thrift:"6"`
	TotalCompressedSize   int64               `thrift:"7"`
	KeyValueMetadata      []KeyValue          `thrift:"8,optional"`
	DataPageOffset        int64               `thrift:"9"`
	IndexPageOffset       *int64              `thrift:"10,optional"`
	DictionaryPageOffset  *int64              `thrift:"11,optional"`
	Statistics            *Statistics         `thrift:"12,optional"`
	EncodingStats         []PageEncodingStats `thrift:"13,optional"`
	BloomFilterOffset     *int64              `thrift:"14,optional"`
	BloomFilterLength     *int32              `thrift:"15,optional"`
}

// ColumnChunk locates one column chunk's metadata and, if present, its
// column/offset page-index regions.
type ColumnChunk struct {
	FilePath          *string         `thrift:"1,optional"`
	FileOffset        int64           `thrift:"2"`
	MetaData          *ColumnMetaData `thrift:"3,optional"`
	OffsetIndexOffset *int64          `thrift:"4,optional"`
	OffsetIndexLength *int32          `thrift:"5,optional"`
	ColumnIndexOffset *int64          `thrift:"6,optional"`
	ColumnIndexLength *int32          `thrift:"7,optional"`
}

type RowGroup struct {
	Columns             []ColumnChunk   `thrift:"1"`
	TotalByteSize       int64           `thrift:"2"`
	NumRows             int64           `thrift:"3"`
	SortingColumns      []SortingColumn `thrift:"4,optional"`
	FileOffset          *int64          `thrift:"5,optional"`
	TotalCompressedSize *int64          `thrift:"6,optional"`
	Ordinal             *int32          `thrift:"7,optional"`
}

// TypeDefinedOrder marks a column as ordered by its type's default
// comparison; it carries no fields of its own.
type TypeDefinedOrder struct{}

// ColumnOrder is a Thrift union; only the TYPE_ORDER variant exists in
// the published IDL.
type ColumnOrder struct {
	TypeOrder *TypeDefinedOrder `thrift:"1,optional"`
}

// FileMetaData is the root Thrift structure serialized into the footer.
type FileMetaData struct {
	Version          int32           `thrift:"1"`
	Schema           []SchemaElement `thrift:"2"`
	NumRows          int64           `thrift:"3"`
	RowGroups        []RowGroup      `thrift:"4"`
	KeyValueMetadata []KeyValue      `thrift:"5,optional"`
	CreatedBy        *string         `thrift:"6,optional"`
	ColumnOrders     []ColumnOrder   `thrift:"7,optional"`
}

// ColumnIndex carries per-page null/min/max summaries for one column chunk.
type ColumnIndex struct {
	NullPages     []bool        `thrift:"1"`
	MinValues     [][]byte      `thrift:"2"`
	MaxValues     [][]byte      `thrift:"3"`
	BoundaryOrder BoundaryOrder `thrift:"4"`
	NullCounts    []int64       `thrift:"5,optional"`
}

type PageLocation struct {
	Offset             int64 `thrift:"1"`
	CompressedPageSize int32 `thrift:"2"`
	FirstRowIndex      int64 `thrift:"3"`
}

// OffsetIndex carries per-page byte offsets for one column chunk.
type OffsetIndex struct {
	PageLocations []PageLocation `thrift:"1"`
}
