// Package snappy implements the pure block-Snappy compression format: a
// varint-prefixed uncompressed length followed by one or more 64 KiB
// fragments, each independently hash-matched and tag-encoded. It does
// not implement the separate framing format (stream magic, per-chunk
// CRC-32C) since Parquet page compression embeds raw Snappy blocks
// directly in PAGE data, with no framing layer above them.
package snappy

const (
	tagLiteral = 0x00
	tagCopy1   = 0x01
	tagCopy2   = 0x02

	// maxBlockSize is the fragment size a block is split into before
	// each fragment gets its own hash table and match search.
	maxBlockSize = 65536

	// inputMargin is the number of trailing bytes of a fragment left
	// unsearched by the match loop, so a 4-byte load at the search
	// cursor never reads past the end of the fragment.
	inputMargin = 16 - 1

	minNonLiteralBlockSize = 1 + 1 + inputMargin

	maxTableSize = 1 << 14
	tableMask    = maxTableSize - 1
)

// MaxEncodedLen returns an upper bound on the encoded size of srcLen
// uncompressed bytes, including the leading varint length prefix.
func MaxEncodedLen(srcLen int) int {
	n := uint64(srcLen)
	n = 32 + n + n/6
	return int(n)
}

func putUvarint(dst []byte, v uint64) int {
	i := 0
	for v >= 0x80 {
		dst[i] = byte(v) | 0x80
		v >>= 7
		i++
	}
	dst[i] = byte(v)
	return i + 1
}

// Encode returns the block-Snappy encoding of src, writing into dst if
// it is large enough and allocating a fresh buffer otherwise.
func Encode(dst, src []byte) []byte {
	if n := MaxEncodedLen(len(src)); len(dst) < n {
		dst = make([]byte, n)
	}

	d := putUvarint(dst, uint64(len(src)))

	for len(src) > 0 {
		p := src
		src = nil
		if len(p) > maxBlockSize {
			p, src = p[:maxBlockSize], p[maxBlockSize:]
		}
		if len(p) < minNonLiteralBlockSize {
			d += emitLiteral(dst[d:], p)
		} else {
			d += encodeFragment(dst[d:], p)
		}
	}
	return dst[:d]
}

func load32(b []byte, i int) uint32 {
	b = b[i : i+4]
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func load64(b []byte, i int) uint64 {
	b = b[i : i+8]
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}

func hash(u, shift uint32) uint32 {
	return (u * 0x1e35a7bd) >> shift
}

// emitLiteral writes a literal run using the 1/2/3-byte tag encoding:
// run lengths under 60 fit in the tag byte itself, up to 1<<8 take one
// extra length byte, and anything larger takes two.
func emitLiteral(dst, lit []byte) int {
	i, n := 0, uint(len(lit)-1)
	switch {
	case n < 60:
		dst[0] = uint8(n)<<2 | tagLiteral
		i = 1
	case n < 1<<8:
		dst[0] = 60<<2 | tagLiteral
		dst[1] = uint8(n)
		i = 2
	default:
		dst[0] = 61<<2 | tagLiteral
		dst[1] = uint8(n)
		dst[2] = uint8(n >> 8)
		i = 3
	}
	return i + copy(dst[i:], lit)
}

// emitCopy writes a copy tag for a match of length bytes at the given
// offset, chunking any run over 64 bytes into repeated 60/64-byte
// copies the way the reference encoder does, and picking the 2-byte
// short form only when length and offset both fit it.
func emitCopy(dst []byte, offset, length int) int {
	i := 0
	for length >= 68 {
		dst[i+0] = 63<<2 | tagCopy2
		dst[i+1] = uint8(offset)
		dst[i+2] = uint8(offset >> 8)
		i += 3
		length -= 64
	}
	if length > 64 {
		dst[i+0] = 59<<2 | tagCopy2
		dst[i+1] = uint8(offset)
		dst[i+2] = uint8(offset >> 8)
		i += 3
		length -= 60
	}
	if length >= 12 || offset >= 2048 {
		dst[i+0] = uint8(length-1)<<2 | tagCopy2
		dst[i+1] = uint8(offset)
		dst[i+2] = uint8(offset >> 8)
		return i + 3
	}
	dst[i+0] = uint8(offset>>8)<<5 | uint8(length-4)<<2 | tagCopy1
	dst[i+1] = uint8(offset)
	return i + 2
}

// encodeFragment runs the hash-table match search over one fragment
// (at most maxBlockSize bytes) of src, appending literal and copy tags
// to dst. The table size scales with the fragment size, from 1<<8 up
// to the 14-bit cap.
func encodeFragment(dst, src []byte) (d int) {
	shift, tableSize := uint32(32-8), 1<<8
	for tableSize < maxTableSize && tableSize < len(src) {
		shift--
		tableSize *= 2
	}
	var table [maxTableSize]uint16

	sLimit := len(src) - inputMargin
	nextEmit := 0

	s := 1
	nextHash := hash(load32(src, s), shift)

	for {
		// Fast-path skip heuristic: the longer a stretch goes without a
		// match, the further apart the next few hash probes are spaced,
		// so incompressible input doesn't pay full per-byte search cost.
		skip := 32

		nextS := s
		candidate := 0
		for {
			s = nextS
			skip++
			bytesBetween := skip >> 5
			nextS = s + bytesBetween
			if nextS > sLimit {
				goto emitRemainder
			}
			candidate = int(table[nextHash&tableMask])
			table[nextHash&tableMask] = uint16(s)
			nextHash = hash(load32(src, nextS), shift)
			if load32(src, s) == load32(src, candidate) {
				break
			}
		}

		d += emitLiteral(dst[d:], src[nextEmit:s])

		for {
			base := s
			s += 4
			for i := candidate + 4; s < len(src) && src[i] == src[s]; i, s = i+1, s+1 {
			}
			d += emitCopy(dst[d:], base-candidate, s-base)
			nextEmit = s
			if s >= sLimit {
				goto emitRemainder
			}

			x := load64(src, s-1)
			prevHash := hash(uint32(x>>0), shift)
			table[prevHash&tableMask] = uint16(s - 1)
			currHash := hash(uint32(x>>8), shift)
			candidate = int(table[currHash&tableMask])
			table[currHash&tableMask] = uint16(s)
			if uint32(x>>8) != load32(src, candidate) {
				nextHash = hash(uint32(x>>16), shift)
				s++
				break
			}
		}
	}

emitRemainder:
	if nextEmit < len(src) {
		d += emitLiteral(dst[d:], src[nextEmit:])
	}
	return d
}
