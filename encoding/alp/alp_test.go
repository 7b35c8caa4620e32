package alp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTryEncodeFloat64ExactDecimal(t *testing.T) {
	iv, ok := tryEncodeFloat64(123.45, 2, 0)
	require.True(t, ok)
	require.Equal(t, int64(12345), iv)
}

func TestTryEncodeFloat64RejectsNaN(t *testing.T) {
	_, ok := tryEncodeFloat64(math.NaN(), 2, 0)
	require.False(t, ok)
}

func TestTryEncodeFloat64RejectsInf(t *testing.T) {
	_, ok := tryEncodeFloat64(math.Inf(1), 2, 0)
	require.False(t, ok)
}

func TestTryEncodeFloat64RejectsNegativeZero(t *testing.T) {
	_, ok := tryEncodeFloat64(math.Copysign(0, -1), 2, 0)
	require.False(t, ok)
}

func TestTryEncodeFloat64RejectsIrrational(t *testing.T) {
	_, ok := tryEncodeFloat64(math.Pi, 2, 0)
	require.False(t, ok)
}

func TestChooseParamsFloat64PicksExactScale(t *testing.T) {
	sample := []float64{1.5, 2.25, 3.125, 4.0625}
	e, f := chooseParamsFloat64(sample, maxExpFloat64)
	for _, v := range sample {
		_, ok := tryEncodeFloat64(v, e, f)
		require.True(t, ok, "value %v should encode under chosen (e=%d,f=%d)", v, e, f)
	}
}

func TestEncodeFloat64sHeader(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	enc := EncodeFloat64s(values)
	require.GreaterOrEqual(t, len(enc), 8)
	require.Equal(t, byte(versionByte), enc[0])
	require.Equal(t, byte(intEncodingInt64), enc[2])
	n := int32(enc[4]) | int32(enc[5])<<8 | int32(enc[6])<<16 | int32(enc[7])<<24
	require.Equal(t, int32(len(values)), n)
}

func TestEncodeFloat32sHeader(t *testing.T) {
	values := []float32{1, 2, 3}
	enc := EncodeFloat32s(values)
	require.Equal(t, byte(intEncodingInt32), enc[2])
}

func TestEncodeFloat64sHandlesExceptions(t *testing.T) {
	values := []float64{1.5, 2.5, math.NaN(), math.Inf(1), 3.5}
	enc := EncodeFloat64s(values)
	require.NotEmpty(t, enc)
}

func TestEncodeFloat64sAcrossVectorBoundary(t *testing.T) {
	values := make([]float64, vectorSize*2+17)
	for i := range values {
		values[i] = float64(i) * 0.5
	}
	enc := EncodeFloat64s(values)
	require.NotEmpty(t, enc)
}

func TestBitLen64(t *testing.T) {
	require.Equal(t, 0, bitLen64(0))
	require.Equal(t, 1, bitLen64(1))
	require.Equal(t, 8, bitLen64(255))
	require.Equal(t, 9, bitLen64(256))
}
