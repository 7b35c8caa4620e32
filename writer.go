package pqwriter

import (
	"errors"
	"os"
	"reflect"
	"sort"

	"github.com/parquet-go/pqwriter/internal/format"
	"github.com/parquet-go/pqwriter/internal/thrift"
)

// magic is the 4-byte marker Parquet files open and close with.
var magic = []byte("PAR1")

// ErrWriterFinished is returned by Write and Finish once Finish has
// already run once.
var ErrWriterFinished = errors.New("pqwriter: writer is already finished")

// RowGroupSize is a row-group sizing policy for one Write call: either
// a fixed row count per group (Fixed, the common case), or an explicit
// sequence of per-group row counts (Sizes) whose last entry repeats
// for any remaining rows.
type RowGroupSize struct {
	Fixed int
	Sizes []int
}

// DefaultRowGroupSize is the row-group size used when the caller does
// not choose one.
var DefaultRowGroupSize = RowGroupSize{Fixed: 100000}

func (rgs RowGroupSize) ranges(total int) [][2]int {
	if total <= 0 {
		return nil
	}
	if len(rgs.Sizes) > 0 {
		var out [][2]int
		pos := 0
		for _, n := range rgs.Sizes {
			if pos >= total {
				return out
			}
			end := pos + n
			if end > total {
				end = total
			}
			out = append(out, [2]int{pos, end})
			pos = end
		}
		last := rgs.Sizes[len(rgs.Sizes)-1]
		if last <= 0 {
			last = total
		}
		for pos < total {
			end := pos + last
			if end > total {
				end = total
			}
			out = append(out, [2]int{pos, end})
			pos = end
		}
		return out
	}
	size := rgs.Fixed
	if size <= 0 {
		size = total
	}
	var out [][2]int
	for pos := 0; pos < total; pos += size {
		end := pos + size
		if end > total {
			end = total
		}
		out = append(out, [2]int{pos, end})
	}
	return out
}

// ColumnInput is one named column's values and schema hint, the entry
// type of the columnData map Write consumes.
type ColumnInput struct {
	Values any
	Hint   ColumnHint
}

// ColumnOptions overrides writer-level defaults for one top-level
// column: a forced encoding and the page-index opt-ins.
type ColumnOptions struct {
	Encoding    *format.Encoding
	ColumnIndex bool
	OffsetIndex bool
}

// SchemaOverrides controls SchemaFromColumnData's auto-detection: Order
// fixes the column order (defaulting to sorted map keys), and Hints
// overrides individual columns' detected schema.
type SchemaOverrides struct {
	Order []string
	Hints map[string]ColumnHint
}

// SchemaFromColumnData auto-detects a schema tree from a columnData
// map the way BuildSchema does from an ordered slice, letting callers
// that already think in maps skip assembling []Column by hand.
func SchemaFromColumnData(columnData map[string]ColumnInput, overrides *SchemaOverrides) (*SchemaNode, error) {
	var names []string
	if overrides != nil && len(overrides.Order) > 0 {
		names = overrides.Order
	} else {
		names = make([]string, 0, len(columnData))
		for name := range columnData {
			names = append(names, name)
		}
		sort.Strings(names)
	}

	columns := make([]Column, 0, len(names))
	for _, name := range names {
		ci, ok := columnData[name]
		if !ok {
			return nil, newError(UnknownType, name, "column named in schema overrides has no data")
		}
		hint := ci.Hint
		if overrides != nil {
			if h, ok := overrides.Hints[name]; ok {
				hint = h
			}
		}
		columns = append(columns, Column{Name: name, Values: ci.Values, Hint: hint})
	}
	return BuildSchema(columns)
}

// writerState is ParquetWriter's two-state lifecycle: Write and
// Finish are legal until Finish runs, then both fail.
type writerState int

const (
	writerActive writerState = iota
	writerFinished
)

type pendingIndex struct {
	columnIndex *format.ColumnIndex
	offsetIndex *format.OffsetIndex
}

// writerConfig holds NewParquetWriter's functional-option state.
type writerConfig struct {
	compressed    bool
	statistics    bool
	pageSize      int
	kvMetadata    []format.KeyValue
	columnOptions map[string]ColumnOptions
}

func defaultWriterConfig() writerConfig {
	return writerConfig{compressed: true, statistics: true}
}

// WriterOption configures a ParquetWriter at construction time.
type WriterOption func(*writerConfig)

func WithCompression(enabled bool) WriterOption {
	return func(c *writerConfig) { c.compressed = enabled }
}

func WithStatistics(enabled bool) WriterOption {
	return func(c *writerConfig) { c.statistics = enabled }
}

func WithPageSize(n int) WriterOption {
	return func(c *writerConfig) { c.pageSize = n }
}

func WithKVMetadata(kv []format.KeyValue) WriterOption {
	return func(c *writerConfig) { c.kvMetadata = kv }
}

func WithColumnOptions(name string, opts ColumnOptions) WriterOption {
	return func(c *writerConfig) {
		if c.columnOptions == nil {
			c.columnOptions = make(map[string]ColumnOptions)
		}
		c.columnOptions[name] = opts
	}
}

// ParquetWriter orchestrates row groups and the file header/footer
// around repeated WriteColumn calls.
type ParquetWriter struct {
	sink      *ByteSink
	schema    *SchemaNode
	cfg       writerConfig
	state     writerState
	numRows   int64
	rowGroups []format.RowGroup
	pending   [][]pendingIndex
}

// NewParquetWriter writes the PAR1 header and returns a writer ready
// to accept Write calls.
func NewParquetWriter(sink *ByteSink, schema *SchemaNode, opts ...WriterOption) *ParquetWriter {
	cfg := defaultWriterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	sink.AppendBytes(magic)
	return &ParquetWriter{sink: sink, schema: schema, cfg: cfg}
}

func (w *ParquetWriter) columnOptsFor(name string) ColumnWriteOptions {
	opts := ColumnWriteOptions{
		Compressed: w.cfg.compressed,
		Statistics: w.cfg.statistics,
		PageSize:   w.cfg.pageSize,
	}
	if co, ok := w.cfg.columnOptions[name]; ok {
		opts.ForcedEncoding = co.Encoding
		opts.ColumnIndex = co.ColumnIndex
		opts.OffsetIndex = co.OffsetIndex
	}
	return opts
}

// Write shreds and pages columnData across one or more row groups
// sized by rowGroupSize, appending pages directly to the sink.
func (w *ParquetWriter) Write(columnData map[string]ColumnInput, rowGroupSize RowGroupSize) error {
	if w.state == writerFinished {
		return ErrWriterFinished
	}

	names := make([]string, 0, len(w.schema.Children))
	for _, child := range w.schema.Children {
		names = append(names, child.Name)
	}

	slices := make(map[string][]any, len(names))
	total := -1
	for _, name := range names {
		ci, ok := columnData[name]
		if !ok {
			return newError(ColumnLengthMismatch, name, "column is named in the schema but missing from columnData")
		}
		vals, err := toAnySlice(ci.Values)
		if err != nil {
			return wrapError(TypeMismatch, name, err, "invalid column values")
		}
		if total == -1 {
			total = len(vals)
		} else if len(vals) != total {
			return newError(ColumnLengthMismatch, name, "column has %d rows, want %d", len(vals), total)
		}
		slices[name] = vals
	}
	if total <= 0 {
		return nil
	}

	for _, rng := range rowGroupSize.ranges(total) {
		if err := w.writeRowGroup(names, slices, rng[0], rng[1]); err != nil {
			return err
		}
	}
	return nil
}

func (w *ParquetWriter) writeRowGroup(names []string, slices map[string][]any, start, end int) error {
	rowGroupOffset := w.sink.Offset()
	var chunks []format.ColumnChunk
	var pendingIdx []pendingIndex
	var totalBytes int64

	for _, name := range names {
		vals := slices[name]
		paths, err := LeafPaths(w.schema, name)
		if err != nil {
			return err
		}
		rows := vals[start:end]
		copts := w.columnOptsFor(name)
		for _, path := range paths {
			chunkOffset := w.sink.Offset()
			res, err := WriteColumn(w.sink, path, rows, copts)
			if err != nil {
				return err
			}
			meta := res.MetaData
			chunks = append(chunks, format.ColumnChunk{FileOffset: chunkOffset, MetaData: &meta})
			pendingIdx = append(pendingIdx, pendingIndex{columnIndex: res.ColumnIndex, offsetIndex: res.OffsetIndex})
			totalBytes += meta.TotalCompressedSize
		}
	}

	fileOffset := rowGroupOffset
	compressedSize := totalBytes
	w.rowGroups = append(w.rowGroups, format.RowGroup{
		Columns:             chunks,
		TotalByteSize:       totalBytes,
		NumRows:             int64(end - start),
		FileOffset:          &fileOffset,
		TotalCompressedSize: &compressedSize,
	})
	w.pending = append(w.pending, pendingIdx)
	w.numRows += int64(end - start)
	return nil
}

// Finish writes each column's page index (if any), serializes the
// Thrift footer, and flushes the sink.
func (w *ParquetWriter) Finish() error {
	if w.state == writerFinished {
		return ErrWriterFinished
	}
	w.state = writerFinished

	for i := range w.rowGroups {
		for j := range w.pending[i] {
			ci := w.pending[i][j].columnIndex
			if ci == nil {
				continue
			}
			off := w.sink.Offset()
			if err := thrift.Marshal(w.sink, ci); err != nil {
				return err
			}
			length := int32(w.sink.Offset() - off)
			w.rowGroups[i].Columns[j].ColumnIndexOffset = &off
			w.rowGroups[i].Columns[j].ColumnIndexLength = &length
		}
	}
	for i := range w.rowGroups {
		for j := range w.pending[i] {
			oi := w.pending[i][j].offsetIndex
			if oi == nil {
				continue
			}
			off := w.sink.Offset()
			if err := thrift.Marshal(w.sink, oi); err != nil {
				return err
			}
			length := int32(w.sink.Offset() - off)
			w.rowGroups[i].Columns[j].OffsetIndexOffset = &off
			w.rowGroups[i].Columns[j].OffsetIndexLength = &length
		}
	}

	schema := Linearize(w.schema)
	var columnOrders []format.ColumnOrder
	for _, el := range schema {
		if el.Type != nil {
			columnOrders = append(columnOrders, format.ColumnOrder{TypeOrder: &format.TypeDefinedOrder{}})
		}
	}

	createdBy := "pqwriter version 1.0"
	meta := format.FileMetaData{
		Version:          2,
		Schema:           schema,
		NumRows:          w.numRows,
		RowGroups:        w.rowGroups,
		KeyValueMetadata: w.cfg.kvMetadata,
		CreatedBy:        &createdBy,
		ColumnOrders:     columnOrders,
	}
	metaOffset := w.sink.Offset()
	if err := thrift.Marshal(w.sink, &meta); err != nil {
		return err
	}
	metaLen := uint32(w.sink.Offset() - metaOffset)
	w.sink.AppendU32(metaLen)
	w.sink.AppendBytes(magic)
	return w.sink.Finish()
}

// toAnySlice normalizes a column's typed slice (or []any) into []any,
// one entry per row, the shape Shred requires.
func toAnySlice(v any) ([]any, error) {
	if a, ok := v.([]any); ok {
		return a, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil, errors.New("column value must be a slice")
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

// WriterOptions is the one-shot option bag WriteBuffer/Write/WriteFile
// translate into NewParquetWriter's functional options.
type WriterOptions struct {
	Schema          *SchemaNode
	SchemaOverrides *SchemaOverrides
	ColumnData      map[string]ColumnInput
	RowGroupSize    RowGroupSize
	Compressed      bool
	Statistics      bool
	PageSize        int
	KVMetadata      []format.KeyValue
	ColumnOptions   map[string]ColumnOptions
}

// DefaultWriterOptions returns a WriterOptions with every option at
// its default: Snappy compression and statistics on, 100k-row groups.
func DefaultWriterOptions() WriterOptions {
	return WriterOptions{Compressed: true, Statistics: true, RowGroupSize: DefaultRowGroupSize}
}

func (o WriterOptions) asWriterOptions() []WriterOption {
	opts := []WriterOption{
		WithCompression(o.Compressed),
		WithStatistics(o.Statistics),
		WithPageSize(o.PageSize),
	}
	if o.KVMetadata != nil {
		opts = append(opts, WithKVMetadata(o.KVMetadata))
	}
	for name, co := range o.ColumnOptions {
		opts = append(opts, WithColumnOptions(name, co))
	}
	return opts
}

func resolveSchema(o WriterOptions) (*SchemaNode, error) {
	if o.Schema != nil {
		return o.Schema, nil
	}
	return SchemaFromColumnData(o.ColumnData, o.SchemaOverrides)
}

func runWrite(sink *ByteSink, o WriterOptions) error {
	schema, err := resolveSchema(o)
	if err != nil {
		return err
	}
	w := NewParquetWriter(sink, schema, o.asWriterOptions()...)
	rgs := o.RowGroupSize
	if rgs.Fixed == 0 && len(rgs.Sizes) == 0 {
		rgs = DefaultRowGroupSize
	}
	if err := w.Write(o.ColumnData, rgs); err != nil {
		return err
	}
	return w.Finish()
}

// WriteBuffer builds a complete Parquet file in memory.
func WriteBuffer(opts WriterOptions) ([]byte, error) {
	sink := NewByteSink()
	if err := runWrite(sink, opts); err != nil {
		return nil, err
	}
	return sink.Bytes()
}

// Write builds a complete Parquet file into a caller-supplied sink.
func Write(sink *ByteSink, opts WriterOptions) error {
	return runWrite(sink, opts)
}

// WriteFile builds a complete Parquet file and streams it to filename
// through a chunked file-backed sink.
func WriteFile(filename string, opts WriterOptions) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return runWrite(NewFileByteSink(f), opts)
}
