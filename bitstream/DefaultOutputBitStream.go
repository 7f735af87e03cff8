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

// Package bitstream implements the bit-level codec that carries the
// per-chunk item stream: a 64-bit accumulator fed/drained in 32-bit units,
// plus the varint and raw-bit windows built on top of it.
package bitstream

import (
	"encoding/binary"
)

// DefaultOutputBitStream accumulates up to 64 bits at a time and spills
// 32-bit big-endian words into dst as soon as it has a full word available.
// It never allocates: dst is supplied by the caller (the per-chunk scratch
// buffer) and grown implicitly by appending.
type DefaultOutputBitStream struct {
	value uint64
	len   uint8
	dst   []byte
}

// NewDefaultOutputBitStream creates a writer appending into dst starting
// empty; the caller retrieves the final slice with Bytes after Finish.
func NewDefaultOutputBitStream(dst []byte) *DefaultOutputBitStream {
	return &DefaultOutputBitStream{dst: dst}
}

// Put shifts the accumulator left by n and ORs in the low n bits of v.
// The caller must call Reserve32 first if len could exceed 64 afterwards;
// n must be in [0,32] to make that guarantee easy to keep.
func (this *DefaultOutputBitStream) Put(n uint8, v uint64) {
	if n == 64 {
		this.value = v
	} else {
		this.value = (this.value << n) | (v & ((1 << n) - 1))
	}

	this.len += n
}

// Reserve32 flushes the top 32 bits to dst as a byte-swapped (big-endian on
// the wire) word whenever at least 32 bits are queued. Call this after every
// item emission so len never exceeds 64 before the next Put.
func (this *DefaultOutputBitStream) Reserve32() {
	if this.len >= 32 {
		this.len -= 32
		word := uint32(this.value >> this.len)
		this.dst = binary.BigEndian.AppendUint32(this.dst, word)
	}
}

// PutVarint emits v as a sequence of (databit, continuation) pairs, least
// significant bit first; 0 and 1 take one pair, every further pair adds one
// more data bit.
func (this *DefaultOutputBitStream) PutVarint(v uint32) {
	for {
		this.Reserve32()
		hasNext := v > 1
		bit := v & 1
		cont := uint64(0)

		if hasNext {
			cont = 1
		}

		this.Put(2, bit|(cont<<1))
		v >>= 1

		if !hasNext {
			return
		}
	}
}

// Finish pads the accumulator to a 32-bit boundary with zeros, flushes the
// remainder byte by byte, and returns the final byte slice.
func (this *DefaultOutputBitStream) Finish() []byte {
	this.Reserve32()

	if this.len > 0 {
		pad := 32 - this.len
		this.Put(pad, 0)
		word := uint32(this.value)
		this.dst = binary.BigEndian.AppendUint32(this.dst, word)
		this.len = 0
		this.value = 0
	}

	return this.dst
}

// Bytes returns the bytes written so far without finishing the stream.
func (this *DefaultOutputBitStream) Bytes() []byte {
	return this.dst
}
