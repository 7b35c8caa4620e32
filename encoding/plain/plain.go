// Package plain implements the Parquet PLAIN encoding: the
// fixed-width, no-compression byte layout used for data pages without
// a more specific encoding and for every dictionary page (dictionary
// pages are always PLAIN).
package plain

import (
	"errors"
	"fmt"
	"math"
)

// ErrTypeMismatch is wrapped into every error this package returns
// when a value does not match the column's declared physical type.
var ErrTypeMismatch = errors.New("plain: type mismatch")

// AppendBoolean packs value as bit i of dst, LSB-first 8-to-a-byte,
// growing dst as needed. Bits beyond the last written index within a
// partially-filled final byte stay zero.
func AppendBoolean(dst []byte, i int, value bool) []byte {
	byteIndex := i / 8
	for len(dst) <= byteIndex {
		dst = append(dst, 0)
	}
	if value {
		dst[byteIndex] |= 1 << uint(i%8)
	}
	return dst
}

// AppendInt32 appends v as a little-endian 4-byte word.
func AppendInt32(dst []byte, v int32) []byte {
	return append(dst, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

// AppendInt64 appends v as a little-endian 8-byte word.
func AppendInt64(dst []byte, v int64) []byte {
	u := uint64(v)
	return append(dst, byte(u), byte(u>>8), byte(u>>16), byte(u>>24),
		byte(u>>32), byte(u>>40), byte(u>>48), byte(u>>56))
}

// AppendFloat32 appends v as an IEEE-754 little-endian 4-byte word.
func AppendFloat32(dst []byte, v float32) []byte {
	return AppendInt32(dst, int32(math.Float32bits(v)))
}

// AppendFloat64 appends v as an IEEE-754 little-endian 8-byte word.
func AppendFloat64(dst []byte, v float64) []byte {
	return AppendInt64(dst, int64(math.Float64bits(v)))
}

// AppendByteArray appends a BYTE_ARRAY value: a little-endian u32
// length prefix followed by the raw bytes.
func AppendByteArray(dst []byte, v []byte) []byte {
	n := uint32(len(v))
	dst = append(dst, byte(n), byte(n>>8), byte(n>>16), byte(n>>24))
	return append(dst, v...)
}

// AppendFixedLenByteArray appends v verbatim, after checking its
// length matches typeLength.
func AppendFixedLenByteArray(dst []byte, v []byte, typeLength int) ([]byte, error) {
	if len(v) != typeLength {
		return dst, fmt.Errorf("%w: fixed_len_byte_array expected %d bytes, got %d", ErrTypeMismatch, typeLength, len(v))
	}
	return append(dst, v...), nil
}

// EncodeBooleans encodes every value in values as a packed boolean
// plane.
func EncodeBooleans(values []bool) []byte {
	dst := make([]byte, 0, (len(values)+7)/8)
	for i, v := range values {
		dst = AppendBoolean(dst, i, v)
	}
	return dst
}

// EncodeInt32s encodes every value in values as consecutive
// little-endian 4-byte words.
func EncodeInt32s(values []int32) []byte {
	dst := make([]byte, 0, len(values)*4)
	for _, v := range values {
		dst = AppendInt32(dst, v)
	}
	return dst
}

// EncodeInt64s encodes every value in values as consecutive
// little-endian 8-byte words.
func EncodeInt64s(values []int64) []byte {
	dst := make([]byte, 0, len(values)*8)
	for _, v := range values {
		dst = AppendInt64(dst, v)
	}
	return dst
}

// EncodeFloat32s encodes every value in values as consecutive
// little-endian 4-byte words.
func EncodeFloat32s(values []float32) []byte {
	dst := make([]byte, 0, len(values)*4)
	for _, v := range values {
		dst = AppendFloat32(dst, v)
	}
	return dst
}

// EncodeFloat64s encodes every value in values as consecutive
// little-endian 8-byte words.
func EncodeFloat64s(values []float64) []byte {
	dst := make([]byte, 0, len(values)*8)
	for _, v := range values {
		dst = AppendFloat64(dst, v)
	}
	return dst
}

// EncodeByteArrays encodes every value in values as a length-prefixed
// BYTE_ARRAY.
func EncodeByteArrays(values [][]byte) []byte {
	n := 0
	for _, v := range values {
		n += 4 + len(v)
	}
	dst := make([]byte, 0, n)
	for _, v := range values {
		dst = AppendByteArray(dst, v)
	}
	return dst
}

// EncodeFixedLenByteArrays encodes every value in values verbatim,
// after checking each has length typeLength.
func EncodeFixedLenByteArrays(values [][]byte, typeLength int) ([]byte, error) {
	dst := make([]byte, 0, len(values)*typeLength)
	var err error
	for i, v := range values {
		dst, err = AppendFixedLenByteArray(dst, v, typeLength)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
	}
	return dst, nil
}
