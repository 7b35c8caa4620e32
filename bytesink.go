package pqwriter

import (
	"errors"
	"io"
	"math"
)

// ErrUnsupportedOnStream is returned by Bytes on a sink that flushes to
// an underlying writer rather than retaining its bytes in memory.
var ErrUnsupportedOnStream = errors.New("pqwriter: Bytes is unsupported on a streaming sink")

// ByteSink is an auto-growing little-endian byte buffer: the sole
// abstraction every encoder in this module writes through, with two
// concrete backends selected by NewByteSink/NewFileByteSink.
type ByteSink struct {
	buf    []byte
	offset int64

	// Set only for a file-backed sink: flush writes buf to dst once it
	// crosses highWater bytes, and Bytes() is unsupported.
	dst       io.Writer
	highWater int
	streaming bool
	flushErr  error
}

// defaultHighWater is the chunk size a file-backed sink flushes at.
const defaultHighWater = 1 << 20

// NewByteSink creates an in-memory sink. Bytes() returns the full
// accumulated buffer.
func NewByteSink() *ByteSink {
	return &ByteSink{buf: make([]byte, 0, 4096)}
}

// NewFileByteSink creates a sink that flushes completed high-water
// chunks to dst as they accumulate, and the remainder on Finish. Bytes
// is not supported on this backend.
func NewFileByteSink(dst io.Writer) *ByteSink {
	return &ByteSink{
		buf:       make([]byte, 0, defaultHighWater),
		dst:       dst,
		highWater: defaultHighWater,
		streaming: true,
	}
}

// Offset returns the number of bytes written so far, counting bytes
// already flushed to a streaming backend.
func (s *ByteSink) Offset() int64 { return s.offset }

// Bytes returns a view of the accumulated buffer. It is an error to
// call this on a streaming (file-backed) sink: only the unflushed tail
// would be visible, which is never what a caller wants.
func (s *ByteSink) Bytes() ([]byte, error) {
	if s.streaming {
		return nil, ErrUnsupportedOnStream
	}
	return s.buf, nil
}

// grow ensures n more bytes can be appended without reallocating on
// every write; capacity at least doubles when it must grow.
func (s *ByteSink) grow(n int) {
	if cap(s.buf)-len(s.buf) >= n {
		return
	}
	need := len(s.buf) + n
	newCap := cap(s.buf) * 2
	if newCap < need {
		newCap = need
	}
	grown := make([]byte, len(s.buf), newCap)
	copy(grown, s.buf)
	s.buf = grown
}

func (s *ByteSink) maybeFlush() {
	if !s.streaming || len(s.buf) < s.highWater {
		return
	}
	// Best-effort: errors surface on the next write via panic recovery
	// paths upstream is overkill for this single-threaded, synchronous
	// writer; instead we record the error and every subsequent flush
	// becomes a no-op, matching "all errors are fatal" (the caller
	// learns about it from Finish's return value).
	if s.flushErr != nil {
		return
	}
	if _, err := s.dst.Write(s.buf); err != nil {
		s.flushErr = err
		return
	}
	s.buf = s.buf[:0]
}

// AppendU8 appends a single byte.
func (s *ByteSink) AppendU8(b byte) {
	s.grow(1)
	s.buf = append(s.buf, b)
	s.offset++
	s.maybeFlush()
}

// AppendBytes appends a raw byte slice verbatim.
func (s *ByteSink) AppendBytes(b []byte) {
	s.grow(len(b))
	s.buf = append(s.buf, b...)
	s.offset += int64(len(b))
	s.maybeFlush()
}

// AppendU32 appends a little-endian uint32.
func (s *ByteSink) AppendU32(v uint32) {
	s.AppendBytes([]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)})
}

// AppendI32 appends a little-endian int32.
func (s *ByteSink) AppendI32(v int32) { s.AppendU32(uint32(v)) }

// AppendU64 appends a little-endian uint64.
func (s *ByteSink) AppendU64(v uint64) {
	s.AppendBytes([]byte{
		byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24),
		byte(v >> 32), byte(v >> 40), byte(v >> 48), byte(v >> 56),
	})
}

// AppendI64 appends a little-endian int64.
func (s *ByteSink) AppendI64(v int64) { s.AppendU64(uint64(v)) }

// AppendF32 appends an IEEE-754 little-endian float32.
func (s *ByteSink) AppendF32(v float32) { s.AppendU32(math.Float32bits(v)) }

// AppendF64 appends an IEEE-754 little-endian float64.
func (s *ByteSink) AppendF64(v float64) { s.AppendU64(math.Float64bits(v)) }

// AppendVarUint32 appends v as a base-128 varint, 1-5 bytes, low-order
// 7-bit groups first with the continuation bit set on all but the
// last byte.
func (s *ByteSink) AppendVarUint32(v uint32) {
	for v >= 0x80 {
		s.AppendU8(byte(v) | 0x80)
		v >>= 7
	}
	s.AppendU8(byte(v))
}

// AppendVarUint64 appends v as a base-128 varint, 1-10 bytes.
func (s *ByteSink) AppendVarUint64(v uint64) {
	for v >= 0x80 {
		s.AppendU8(byte(v) | 0x80)
		v >>= 7
	}
	s.AppendU8(byte(v))
}

// AppendZigZagVarInt32 zig-zag encodes a signed 32-bit value on 32
// bits, then writes it as a varint.
func (s *ByteSink) AppendZigZagVarInt32(v int32) {
	s.AppendVarUint32(uint32((v << 1) ^ (v >> 31)))
}

// AppendZigZagVarInt64 zig-zag encodes a signed 64-bit value on 64
// bits, then writes it as a varint.
func (s *ByteSink) AppendZigZagVarInt64(v int64) {
	s.AppendVarUint64(uint64((v << 1) ^ (v >> 63)))
}

// Finish flushes any residual buffered bytes to a streaming backend.
// It is a no-op, always returning nil, for an in-memory sink.
func (s *ByteSink) Finish() error {
	if !s.streaming {
		return nil
	}
	if len(s.buf) > 0 && s.flushErr == nil {
		if _, err := s.dst.Write(s.buf); err != nil {
			s.flushErr = err
		}
		s.buf = s.buf[:0]
	}
	return s.flushErr
}
