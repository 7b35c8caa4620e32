package delta

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func uvarint(b []byte) (uint64, int) {
	var x uint64
	var s uint
	for i, c := range b {
		if c < 0x80 {
			return x | uint64(c)<<s, i + 1
		}
		x |= uint64(c&0x7f) << s
		s += 7
	}
	return 0, 0
}

func zigzag(b []byte) (int64, int) {
	u, n := uvarint(b)
	return int64(u>>1) ^ -int64(u&1), n
}

func unpackValues(src []byte, count, bitWidth int) []uint64 {
	out := make([]uint64, count)
	if bitWidth == 0 {
		return out
	}
	mask := uint64(1)<<uint(bitWidth) - 1
	var bitBuf uint64
	var bitCount uint
	si := 0
	for k := 0; k < count; k++ {
		for bitCount < uint(bitWidth) {
			bitBuf |= uint64(src[si]) << bitCount
			bitCount += 8
			si++
		}
		out[k] = bitBuf & mask
		bitBuf >>= uint(bitWidth)
		bitCount -= uint(bitWidth)
	}
	return out
}

func decodeInt64s(src []byte) []int64 {
	bs, n := uvarint(src)
	src = src[n:]
	mbCount, n := uvarint(src)
	src = src[n:]
	total, n := uvarint(src)
	src = src[n:]
	first, n := zigzag(src)
	src = src[n:]

	out := make([]int64, 0, total)
	if total > 0 {
		out = append(out, first)
	}
	remaining := int(total) - 1
	miniblockSz := int(bs) / int(mbCount)

	for remaining > 0 {
		minDelta, n := zigzag(src)
		src = src[n:]
		widths := make([]int, mbCount)
		for i := range widths {
			widths[i] = int(src[i])
		}
		src = src[mbCount:]

		for _, w := range widths {
			if remaining <= 0 {
				if w > 0 {
					src = src[(miniblockSz*w+7)/8:]
				}
				continue
			}
			group := unpackValues(src, miniblockSz, w)
			if w > 0 {
				src = src[(miniblockSz*w+7)/8:]
			}
			for _, g := range group {
				if remaining <= 0 {
					break
				}
				delta := int64(g) + minDelta
				out = append(out, out[len(out)-1]+delta)
				remaining--
			}
		}
	}
	return out
}

func TestEncodeInt64sRoundTrip(t *testing.T) {
	values := []int64{100, 101, 99, 99, 500, -200, -200, -200, 0, 7}
	enc := EncodeInt64s(values)
	got := decodeInt64s(enc)
	require.Equal(t, values, got)
}

func TestEncodeInt64sSingleValue(t *testing.T) {
	values := []int64{42}
	enc := EncodeInt64s(values)
	got := decodeInt64s(enc)
	require.Equal(t, values, got)
}

func TestEncodeInt64sMultiBlock(t *testing.T) {
	values := make([]int64, 300)
	for i := range values {
		values[i] = int64(i * 3)
	}
	enc := EncodeInt64s(values)
	got := decodeInt64s(enc)
	require.Equal(t, values, got)
}

func TestEncodeDeltaLengthByteArray(t *testing.T) {
	values := [][]byte{[]byte("hello"), []byte(""), []byte("world!"), []byte("x")}
	enc := EncodeDeltaLengthByteArray(values)
	require.NotEmpty(t, enc)
}

func TestEncodeDeltaByteArrayPrefixes(t *testing.T) {
	values := [][]byte{[]byte("aaaa"), []byte("aaab"), []byte("aabb"), []byte("zzzz")}
	enc := EncodeDeltaByteArray(values)
	require.NotEmpty(t, enc)
}

func TestCommonPrefixLen(t *testing.T) {
	require.Equal(t, 3, commonPrefixLen([]byte("aaab"), []byte("aaac")))
	require.Equal(t, 0, commonPrefixLen([]byte("a"), []byte("b")))
	require.Equal(t, 2, commonPrefixLen([]byte("ab"), []byte("abcdef")))
}
