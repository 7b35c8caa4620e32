package thrift

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeSink is a minimal Sink implementation local to this package (it
// cannot import pqwriter.ByteSink without an import cycle), using the
// same varint/zigzag algorithms so the recorded bytes can be decoded
// with a small reference reader below.
type fakeSink struct{ buf []byte }

func (s *fakeSink) AppendU8(b byte)         { s.buf = append(s.buf, b) }
func (s *fakeSink) AppendBytes(b []byte)    { s.buf = append(s.buf, b...) }
func (s *fakeSink) AppendU64(v uint64) {
	s.buf = append(s.buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24),
		byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56))
}
func (s *fakeSink) AppendVarUint64(v uint64) {
	for v >= 0x80 {
		s.buf = append(s.buf, byte(v)|0x80)
		v >>= 7
	}
	s.buf = append(s.buf, byte(v))
}
func (s *fakeSink) AppendZigZagVarInt32(v int32) {
	s.AppendVarUint64(uint64(uint32((v << 1) ^ (v >> 31))))
}
func (s *fakeSink) AppendZigZagVarInt64(v int64) {
	s.AppendVarUint64(uint64((v << 1) ^ (v >> 63)))
}

func readVarUint(b []byte) (uint64, int) {
	var x uint64
	var s uint
	for i, c := range b {
		x |= uint64(c&0x7f) << s
		if c < 0x80 {
			return x, i + 1
		}
		s += 7
	}
	return 0, len(b)
}

type innerStruct struct {
	A int32 `thrift:"1"`
}

type testStruct struct {
	ID       int32        `thrift:"1"`
	Name     string       `thrift:"2"`
	Flag     bool         `thrift:"3"`
	Skipped  *int32       `thrift:"4,optional"`
	Kept     *int32       `thrift:"5,optional"`
	Nested   *innerStruct `thrift:"6,optional"`
	Nums     []int32      `thrift:"7,optional"`
}

func TestMarshalBasicFields(t *testing.T) {
	kept := int32(42)
	v := &testStruct{ID: 7, Name: "ab", Flag: true, Kept: &kept}
	sink := &fakeSink{}
	require.NoError(t, Marshal(sink, v))

	buf := sink.buf
	require.NotEmpty(t, buf)

	// Field 1 (ID, i32): short form header = delta(1)<<4 | typeI32.
	require.Equal(t, byte(1)<<4|typeI32, buf[0])
	got, n := func() (int32, int) {
		u, n := readVarUint(buf[1:])
		return int32(int32(u>>1) ^ -int32(u&1)), n
	}()
	require.Equal(t, int32(7), got)
	buf = buf[1+n:]

	// Field 2 (Name, binary): delta(1)<<4 | typeBinary.
	require.Equal(t, byte(1)<<4|typeBinary, buf[0])
	strLen, n := readVarUint(buf[1:])
	require.Equal(t, uint64(2), strLen)
	require.Equal(t, "ab", string(buf[1+n:1+n+int(strLen)]))
	buf = buf[1+n+int(strLen):]

	// Field 3 (Flag, bool=true): delta(1)<<4 | typeTrue, no separate value byte.
	require.Equal(t, byte(1)<<4|typeTrue, buf[0])
	buf = buf[1:]

	// Field 4 is nil+optional, skipped entirely: next field is 5, delta=2.
	require.Equal(t, byte(2)<<4|typeI32, buf[0])
}

func TestMarshalSkipsNilOptional(t *testing.T) {
	v := &testStruct{ID: 1, Name: "x"}
	sink := &fakeSink{}
	require.NoError(t, Marshal(sink, v))
	// No field ids 4-7 should appear; the struct stop byte (0) terminates.
	require.Equal(t, byte(0), sink.buf[len(sink.buf)-1])
}

type missingTagStruct struct {
	A int32
}

func TestMarshalRequiresTag(t *testing.T) {
	sink := &fakeSink{}
	err := Marshal(sink, &missingTagStruct{A: 1})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrFieldOrder)
}

type outOfOrderStruct struct {
	A int32 `thrift:"2"`
	B int32 `thrift:"1"`
}

func TestMarshalRejectsOutOfOrderIDs(t *testing.T) {
	sink := &fakeSink{}
	err := Marshal(sink, &outOfOrderStruct{A: 1, B: 2})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrFieldOrder)
}

type requiredMissingStruct struct {
	A *int32 `thrift:"1"`
}

func TestMarshalRequiredFieldMustBeSet(t *testing.T) {
	sink := &fakeSink{}
	err := Marshal(sink, &requiredMissingStruct{})
	require.Error(t, err)
}

func TestMarshalNilPointerTarget(t *testing.T) {
	var v *testStruct
	err := Marshal(&fakeSink{}, v)
	require.Error(t, err)
}

func TestMarshalNonStructTarget(t *testing.T) {
	err := Marshal(&fakeSink{}, 5)
	require.Error(t, err)
}

type listStruct struct {
	Nums []int32 `thrift:"1"`
}

func TestMarshalListHeaderShortForm(t *testing.T) {
	sink := &fakeSink{}
	require.NoError(t, Marshal(sink, &listStruct{Nums: []int32{1, 2, 3}}))
	// field header, then list header byte = len(3)<<4 | typeI32.
	require.Equal(t, byte(1)<<4|typeList, sink.buf[0])
	require.Equal(t, byte(3)<<4|typeI32, sink.buf[1])
}

func TestMarshalLongListHeader(t *testing.T) {
	nums := make([]int32, 20)
	sink := &fakeSink{}
	require.NoError(t, Marshal(sink, &listStruct{Nums: nums}))
	require.Equal(t, byte(0xF0|typeI32), sink.buf[1])
}

type nestedStructField struct {
	Inner innerStruct `thrift:"1"`
}

func TestMarshalNestedStruct(t *testing.T) {
	sink := &fakeSink{}
	require.NoError(t, Marshal(sink, &nestedStructField{Inner: innerStruct{A: 9}}))
	require.Equal(t, byte(1)<<4|typeStruct, sink.buf[0])
}
