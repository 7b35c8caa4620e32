package snappy

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// decode is a minimal block-Snappy decoder used only to check that
// Encode's output round-trips; it is not part of the package's public
// surface (the module never needs to decode Snappy).
func decode(src []byte) ([]byte, error) {
	ulen, n := uvarint(src)
	dst := make([]byte, 0, ulen)
	src = src[n:]
	for len(src) > 0 {
		tag := src[0]
		switch tag & 0x03 {
		case tagLiteral:
			x := uint32(tag >> 2)
			switch {
			case x < 60:
				src = src[1:]
			case x == 60:
				x = uint32(src[1])
				src = src[2:]
			default: // x == 61
				x = uint32(src[1]) | uint32(src[2])<<8
				src = src[3:]
			}
			length := int(x) + 1
			dst = append(dst, src[:length]...)
			src = src[length:]
		case tagCopy1:
			length := 4 + int((tag>>2)&0x7)
			offset := (int(tag>>5) << 8) | int(src[1])
			src = src[2:]
			copyMatch(&dst, offset, length)
		case tagCopy2:
			length := int(tag>>2) + 1
			offset := int(src[1]) | int(src[2])<<8
			src = src[3:]
			copyMatch(&dst, offset, length)
		}
	}
	return dst, nil
}

func copyMatch(dst *[]byte, offset, length int) {
	start := len(*dst) - offset
	for i := 0; i < length; i++ {
		*dst = append(*dst, (*dst)[start+i])
	}
}

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

func roundTrip(t *testing.T, src []byte) {
	t.Helper()
	enc := Encode(nil, src)
	got, err := decode(enc)
	require.NoError(t, err)
	require.True(t, bytes.Equal(got, src), "round-trip mismatch, len src=%d len got=%d", len(src), len(got))
}

func TestEncodeEmpty(t *testing.T) {
	roundTrip(t, nil)
}

func TestEncodeShortLiteral(t *testing.T) {
	roundTrip(t, []byte("hello, parquet"))
}

func TestEncodeRepeatingPattern(t *testing.T) {
	src := bytes.Repeat([]byte("abcdefgh"), 10000)
	roundTrip(t, src)
}

func TestEncodeRandomIncompressible(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	src := make([]byte, 200000)
	r.Read(src)
	roundTrip(t, src)
}

func TestEncodeAcrossFragmentBoundary(t *testing.T) {
	src := make([]byte, maxBlockSize*3+17)
	for i := range src {
		src[i] = byte(i % 251)
	}
	roundTrip(t, src)
}

func TestEncodeLongLiteralRun(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	src := make([]byte, 1<<17)
	r.Read(src)
	roundTrip(t, src)
}

func TestMaxEncodedLenMonotonic(t *testing.T) {
	prev := 0
	for _, n := range []int{0, 1, 100, 10000, 1 << 20} {
		got := MaxEncodedLen(n)
		require.GreaterOrEqual(t, got, prev)
		prev = got
	}
}
