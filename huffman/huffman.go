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

// Package huffman builds and applies length-limited canonical Huffman
// codes over a per-chunk symbol alphabet.
package huffman

import (
	"container/heap"

	"github.com/gorolz/rolz/bitstream"
)

// node is a Huffman tree node: either a leaf (sym < maxUint16) or an
// internal node (sym == leafNone) with two children. seq breaks ties
// between equal-weight nodes in FIFO order, keeping tree construction
// deterministic without needing the exact recursive tie-break the
// original heap ordering used on whole subtrees.
type node struct {
	weight int64
	sym    uint16
	seq    int
	c1, c2 *node
}

const leafNone = 0xFFFF

type nodeHeap []*node

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].weight != h[j].weight {
		return h[i].weight < h[j].weight
	}

	return h[i].seq < h[j].seq
}
func (h nodeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x any)        { *h = append(*h, x.(*node)) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// CodeLens computes one code length per symbol from its weight, retrying
// with progressively shrunk weights (each retry halves them once more) whenever the
// unconstrained tree would exceed maxLen, matching the reference
// heap-based length-limited construction.
func CodeLens(weights []uint32, maxLen uint8) []uint8 {
	n := len(weights)
	if n%2 != 0 {
		n++
	}

	for shrink := uint(0); ; shrink++ {
		lens := make([]uint8, n)

		h := &nodeHeap{}
		seq := 0
		for sym, w := range weights {
			if w == 0 {
				continue
			}

			scaled := int64(w) >> shrink
			if scaled < 1 {
				scaled = 1
			}

			heap.Push(h, &node{weight: scaled, sym: uint16(sym), seq: seq})
			seq++
		}

		if h.Len() < 2 {
			if h.Len() == 1 {
				lens[(*h)[0].sym] = 1
			}

			return lens
		}

		for h.Len() > 1 {
			n1 := heap.Pop(h).(*node)
			n2 := heap.Pop(h).(*node)
			heap.Push(h, &node{weight: n1.weight + n2.weight, sym: leafNone, seq: seq, c1: n1, c2: n2})
			seq++
		}

		root := heap.Pop(h).(*node)

		type frame struct {
			depth uint8
			n     *node
		}

		stack := []frame{{0, root}}
		exceeded := false

		for len(stack) > 0 && !exceeded {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if f.n.sym == leafNone {
				if f.depth == maxLen {
					exceeded = true
					break
				}

				stack = append(stack, frame{f.depth + 1, f.n.c1}, frame{f.depth + 1, f.n.c2})
			} else {
				lens[f.n.sym] = f.depth
			}
		}

		if !exceeded {
			return lens
		}
	}
}

// EncodingTable maps each symbol with a non-zero length to its canonical
// code word, assigned in (length, symbol) order.
func EncodingTable(lens []uint8) []uint16 {
	enc := make([]uint16, len(lens))

	type pair struct {
		length uint8
		sym    uint16
	}

	var ordered []pair
	for sym, l := range lens {
		if l > 0 {
			ordered = append(ordered, pair{l, uint16(sym)})
		}
	}

	// Sort by (length, symbol) ascending — insertion sort is fine, the
	// alphabet here never exceeds a few hundred live symbols per chunk.
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0; j-- {
			a, b := ordered[j-1], ordered[j]
			if a.length < b.length || (a.length == b.length && a.sym < b.sym) {
				break
			}

			ordered[j-1], ordered[j] = ordered[j], ordered[j-1]
		}
	}

	var bits uint16
	var curLen uint8 = 1

	for _, p := range ordered {
		for curLen < p.length {
			bits <<= 1
			curLen++
		}

		enc[p.sym] = bits
		bits++
	}

	return enc
}

// DecodingTable builds the flat peek(maxLen)->symbol lookup table used by
// Decoder.Decode.
func DecodingTable(lens []uint8, enc []uint16, maxLen uint8) []uint16 {
	dec := make([]uint16, 1<<maxLen)

	for sym, l := range lens {
		if l == 0 {
			continue
		}

		rest := maxLen - l
		lo := (enc[sym] + 0) << rest
		hi := (enc[sym] + 1) << rest

		for b := lo; b < hi; b++ {
			dec[b] = uint16(sym)
		}
	}

	return dec
}

// Coder packages the three derived tables plus maxLen, ready to encode or
// decode symbols against a bitstream.
type Coder struct {
	Lens   []uint8
	Enc    []uint16
	Dec    []uint16
	MaxLen uint8
}

// NewCoderFromWeights builds a Coder from a symbol weight histogram.
func NewCoderFromWeights(weights []uint32, maxLen uint8) *Coder {
	lens := CodeLens(weights, maxLen)
	return NewCoderFromLens(lens)
}

// NewCoderFromLens builds a Coder directly from per-symbol code lengths,
// used on the decode side after the lengths have been read off the wire.
func NewCoderFromLens(lens []uint8) *Coder {
	var maxLen uint8
	for _, l := range lens {
		if l > maxLen {
			maxLen = l
		}
	}

	enc := EncodingTable(lens)
	dec := DecodingTable(lens, enc, maxLen)

	return &Coder{Lens: lens, Enc: enc, Dec: dec, MaxLen: maxLen}
}

// Encode pushes sym's canonical code word onto w.
func (this *Coder) Encode(w *bitstream.DefaultOutputBitStream, sym uint16) {
	l := this.Lens[sym]
	w.Reserve32()
	w.Put(l, uint64(this.Enc[sym]))
}

// Decode peeks MaxLen bits from r, resolves the symbol via the flat
// lookup table and skips exactly its code length.
func (this *Coder) Decode(r *bitstream.DefaultInputBitStream) uint16 {
	r.Refill32()
	peeked := r.Peek(this.MaxLen)
	sym := this.Dec[peeked]
	r.Skip(this.Lens[sym])
	return sym
}

// WriteTable serializes Lens onto w as (maxLen, then (symDelta, maxLen-len)
// pairs terminated by a zero delta), the wire format shared with the chunk
// header.
func (this *Coder) WriteTable(w *bitstream.DefaultOutputBitStream) {
	w.PutVarint(uint32(this.MaxLen))

	lastSym := -1
	for sym, l := range this.Lens {
		if l == 0 {
			continue
		}

		w.PutVarint(uint32(sym - lastSym))
		w.PutVarint(uint32(this.MaxLen - l))
		lastSym = sym
	}

	w.PutVarint(0)
}

// ReadTable decodes a table written by WriteTable and returns a Coder
// ready for Decode calls. numSyms bounds the length of the reconstructed
// Lens slice (alphabet size is known from context, not carried on the
// wire).
func ReadTable(r *bitstream.DefaultInputBitStream, numSyms int) *Coder {
	maxLen := uint8(r.GetVarint())
	lens := make([]uint8, numSyms)

	lastSym := -1
	for {
		symDelta := int(r.GetVarint())
		if symDelta == 0 {
			break
		}

		lastSym += symDelta
		lens[lastSym] = maxLen - uint8(r.GetVarint())
	}

	enc := EncodingTable(lens)
	dec := DecodingTable(lens, enc, maxLen)

	return &Coder{Lens: lens, Enc: enc, Dec: dec, MaxLen: maxLen}
}
