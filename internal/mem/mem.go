/*
Copyright 2011-2025 Frederic Langlet
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
you may obtain a copy of the License at

                http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package mem provides unaligned typed loads/stores and the small set of
// byte-buffer primitives the match finder and LZ drivers need: a fast
// longest-common-prefix search, a 4-byte-tail-verified equality check and
// a sentinel-safe overlapping forward copy.
package mem

import (
	"encoding/binary"
	"math/bits"

	"golang.org/x/exp/constraints"
)

// Unsigned is the set of unsigned integer widths read/written unaligned
// from/to a byte buffer by this package.
type Unsigned interface {
	~uint16 | ~uint32 | ~uint64
}

// ReadLE performs an unaligned little-endian typed load from buf at off.
// The caller must guarantee off+sizeof(T) <= len(buf); this is always true
// in the encoder/decoder because of the sentinel padding described in
// SPEC_FULL.md §3.
func ReadLE[T Unsigned](buf []byte, off int) T {
	switch any(T(0)).(type) {
	case uint16:
		return T(binary.LittleEndian.Uint16(buf[off:]))
	case uint32:
		return T(binary.LittleEndian.Uint32(buf[off:]))
	default:
		return T(binary.LittleEndian.Uint64(buf[off:]))
	}
}

// WriteLE performs an unaligned little-endian typed store into buf at off.
func WriteLE[T Unsigned](buf []byte, off int, v T) {
	switch x := any(v).(type) {
	case uint16:
		binary.LittleEndian.PutUint16(buf[off:], x)
	case uint32:
		binary.LittleEndian.PutUint32(buf[off:], x)
	default:
		binary.LittleEndian.PutUint64(buf[off:], uint64(v))
	}
}

// ReadU16BE reads a big-endian uint16 (used for the two-byte "word" the
// word-match predictor deals in; the wire encodes it big-endian so that
// the high byte, used as the symrank "unlikely" hint, is the first byte
// read).
func ReadU16BE(buf []byte, off int) uint16 {
	return binary.BigEndian.Uint16(buf[off:])
}

// WriteU16BE writes a big-endian uint16.
func WriteU16BE(buf []byte, off int, v uint16) {
	binary.BigEndian.PutUint16(buf[off:], v)
}

// LCP returns the longest common prefix length between buf[a:] and buf[b:],
// bounded by max. It compares 8 bytes at a time using a XOR + trailing-zero
// count, matching llcp_fast in the reference matcher.
func LCP(buf []byte, a, b, max int) int {
	l := 0

	for l+8 <= max {
		x := binary.LittleEndian.Uint64(buf[a+l:]) ^ binary.LittleEndian.Uint64(buf[b+l:])

		if x != 0 {
			return l + bits.TrailingZeros64(x)/8
		}

		l += 8
	}

	for l < max && buf[a+l] == buf[b+l] {
		l++
	}

	if l > max {
		return max
	}

	return l
}

// EqBeyond4 reports whether buf[a:a+length] == buf[b:b+length], checked 4
// bytes at a time. The caller already knows (from a separate tail-dword
// comparison) that the 4 bytes starting at a+length/b+length match, so
// the final stride here, which may read up to 3 bytes past a+length, only
// re-checks bytes inside that verified dword.
func EqBeyond4(buf []byte, a, b, length int) bool {
	for i := 0; i < length; i += 4 {
		if binary.LittleEndian.Uint32(buf[a+i:]) != binary.LittleEndian.Uint32(buf[b+i:]) {
			return false
		}
	}

	return true
}

// CopyOverlap forward-copies length bytes from buf[src:] to buf[dst:] where
// dst > src (an LZ back-reference with overlap allowed). It widens the gap
// by self-overwriting 4-byte chunks until dst-src >= 4, then copies in
// 4-byte strides; the sentinel region beyond the live window guarantees
// reading up to 3 bytes past dst+length-1 is always defined.
func CopyOverlap(buf []byte, src, dst, length int) {
	d := dst

	for d-src < 4 {
		WriteLE[uint32](buf, d, ReadLE[uint32](buf, src))
		d += d - src
	}

	for i := 0; i < length; i += 4 {
		WriteLE[uint32](buf, d+i, ReadLE[uint32](buf, src+i))
	}
}

// IsAsciiAlnum reports whether b is an ASCII letter or digit, used to fold
// one bit of context into the byte-context hash shc.
func IsAsciiAlnum(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// Min returns the smaller of a and b. Shared across the matchfinder and lz
// packages so clipping arithmetic (match length clamps, lenid clamps)
// reads the same way everywhere.
func Min[T constraints.Integer](a, b T) T {
	if a < b {
		return a
	}

	return b
}

// Max returns the larger of a and b.
func Max[T constraints.Integer](a, b T) T {
	if a > b {
		return a
	}

	return b
}

// SatSub returns a-b clipped at zero for unsigned subtraction that must
// never wrap, matching saturating_sub on the bucket's forward() slide.
func SatSub[T constraints.Unsigned](a, b T) T {
	if b > a {
		return 0
	}

	return a - b
}
