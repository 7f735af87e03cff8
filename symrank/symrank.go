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

// Package symrank implements the adaptive symbol-rank permutation coder:
// a move-to-front generalization that promotes a touched symbol toward
// the front of a ranking by a variable stride instead of all the way, so
// recently-seen-but-not-hot symbols settle at a stable mid-rank instead of
// being shuffled on every unrelated touch.
package symrank

import "math"

// N is the size of the symbol-rank alphabet: 256 literal byte values plus
// one (roid, lenid) pair per match-length class, plus the one reserved
// word-match symbol.
const N = 256 + RoidSize*LenidSize + 1

// RoidSize and LenidSize size the match-length/offset-class grid folded
// into the alphabet above the 256 literal symbols.
const (
	RoidSize  = 21
	LenidSize = 6
)

// WordSymbol is the single alphabet slot reserved for a word-predicted
// match, always the last symbol.
const WordSymbol = uint16(N - 1)

// promoteThreshold is the rank below which update takes the direct swap
// path instead of the two-step rotation; ranks this close to the front
// are cheap to keep exactly fresh.
const promoteThreshold = 40

// next[i] is the target rank a touch at rank i promotes towards. It is
// derived once at package init from the same shrinking-power-curve used
// by the move-to-front table it generalizes: ranks near the front move up
// by about one place per touch, ranks further back jump proportionally
// further toward the front.
var next [N]uint16

func init() {
	for i := 0; i < N; i++ {
		v := math.Pow(float64(i)*0.9999, 1.0-0.08*float64(i)/float64(N))
		next[i] = uint16(v)
	}
}

// Coder holds one permutation (value/index) pair. Callers keep one Coder
// per symrank context (after-literal flag plus byte context) so the
// adaptive ranking is context-conditioned.
type Coder struct {
	value [N]uint16
	index [N]uint16
}

// New returns a Coder with the identity permutation; call Init before
// first use once the first-block frequency order is known.
func New() *Coder {
	c := &Coder{}
	for i := range c.value {
		c.value[i] = uint16(i)
		c.index[i] = uint16(i)
	}
	return c
}

// Init resets the permutation to the given order, e.g. the
// decreasing-frequency symbol order computed from the first chunk's
// histogram. All Coder instances sharing a stream must be initialized
// with the same order.
func (this *Coder) Init(order []uint16) {
	for i, v := range order {
		this.value[i] = v
		this.index[v] = uint16(i)
	}
}

// Encode ranks v against the coder's current permutation, emitting an
// index into [0,N) with the rank of vunlikely (the "expected" symbol,
// e.g. the first byte of the predicted next word) excluded so the common
// case of "this symbol is not the expected one" never wastes the gap.
func (this *Coder) Encode(v, vunlikely uint16) uint16 {
	i := this.index[v]
	u := this.index[vunlikely]
	this.update(v, i)

	if i == u {
		return uint16(N - 1)
	}

	if i < u {
		return i
	}

	return i - 1
}

// Decode is the exact inverse of Encode.
func (this *Coder) Decode(r, vunlikely uint16) uint16 {
	u := this.index[vunlikely]

	var i uint16
	if r == uint16(N-1) {
		i = u
	} else if r < u {
		i = r
	} else {
		i = r + 1
	}

	v := this.value[i]
	this.update(v, i)
	return v
}

// update promotes the symbol at rank i (whose value is v) toward next[i],
// the only state transition encode and decode must agree on bit for bit.
func (this *Coder) update(v, i uint16) {
	if i < promoteThreshold {
		ni1 := next[i]
		nv1 := this.value[ni1]
		this.index[v] = ni1
		this.value[i] = nv1
		this.index[nv1] = i
		this.value[ni1] = v
	} else {
		ni2 := next[i]
		ni1 := (i + ni2) / 2
		nv1 := this.value[ni1]
		nv2 := this.value[ni2]
		this.value[i] = nv1
		this.index[nv1] = i
		this.value[ni1] = nv2
		this.index[nv2] = ni1
		this.value[ni2] = v
		this.index[v] = ni2
	}
}
