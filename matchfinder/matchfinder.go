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

// Package matchfinder implements the reduced-offset match finder: one
// Bucket per byte-context holds a ring of recently-seen positions, and one
// Matcher per byte-context hashes the next 4 bytes at each position
// into a singly-linked chain over that ring so Find can walk only the
// candidates that plausibly match.
package matchfinder

import (
	"github.com/gorolz/rolz/internal/mem"
)

const (
	// BucketSize is the number of position slots retained per byte
	// context, addressed as a ring by Bucket.head.
	BucketSize = 3070

	// BucketHashSize is the open-addressing table size backing each
	// Matcher's hash chains, chosen close to BucketSize*1.13 and
	// forced odd to spread hashes evenly over the ring's natural cycle.
	BucketHashSize = 3469

	// MatchMinLen and MatchMaxLen bound every reported match length.
	MatchMinLen = 4
	MatchMaxLen = 240

	sentinel = 0xFFFF
)

// Result is the outcome of a Find search.
type Result struct {
	Matched          bool
	ReducedOffset    uint16
	MatchLen         int
	MatchLenExpected int
	MatchLenMin      int
}

// Bucket is a fixed-size ring of position records for one byte context.
// Each record remembers, in addition to its position, the match length
// that was found when the position was inserted (match_len_expected) and
// one more than the longest match any newer position has since found
// against it (match_len_min) — both are hints Find uses to cut its search short.
type Bucket struct {
	head             uint16
	pos              [BucketSize]uint32
	matchLenExpected [BucketSize]uint8
	matchLenMin      [BucketSize]uint8
}

// NewBucket returns an empty bucket.
func NewBucket() *Bucket {
	return &Bucket{}
}

func boundedAdd(v1, v2 uint16) uint16 {
	return (v1 + v2) % BucketSize
}

func boundedSub(v1, v2 uint16) uint16 {
	return (v1 + BucketSize - v2) % BucketSize
}

// Update records a freshly-matched (or unmatched, reducedOffset/matchLen
// both zero) position as the new head of the ring, and refreshes the
// match_len_min hint of the position it matched against.
func (this *Bucket) Update(pos int, reducedOffset uint16, matchLen int) {
	newHead := boundedAdd(this.head, 1)

	if matchLen >= MatchMinLen {
		nodeIndex := boundedSub(this.head, reducedOffset)
		if int(this.matchLenMin[nodeIndex]) <= matchLen {
			this.matchLenMin[nodeIndex] = uint8(mem.Min(matchLen+1, 255))
		}
	}

	matchLenExpected := 0
	if matchLen <= 127 {
		matchLenExpected = matchLen
	}

	this.pos[newHead] = uint32(pos)
	this.matchLenExpected[newHead] = uint8(matchLenExpected)
	this.matchLenMin[newHead] = 0

	this.head = newHead
}

// Forward slides every stored position back by forwardLen, clamped at
// zero, keeping the ring valid across a block boundary once the live
// window itself has been slid by the same amount.
func (this *Bucket) Forward(forwardLen int) {
	for i := range this.pos {
		this.pos[i] = mem.SatSub(this.pos[i], uint32(forwardLen))
	}
}

// PosAndLens returns the position, match_len_expected and match_len_min
// recorded at reducedOffset back from the current head, with the two
// length hints floored at MatchMinLen.
func (this *Bucket) PosAndLens(reducedOffset uint16) (pos, matchLenExpected, matchLenMin int) {
	i := boundedSub(this.head, reducedOffset)
	return int(this.pos[i]), mem.Max(int(this.matchLenExpected[i]), MatchMinLen), mem.Max(int(this.matchLenMin[i]), MatchMinLen)
}

// Matcher hashes the 4 bytes following each bucket position into a chain
// so Find only walks positions sharing that 4-byte prefix.
type Matcher struct {
	heads [BucketHashSize]uint16
	nexts [BucketSize]uint16
}

// NewMatcher returns an empty matcher with every chain slot set to the
// sentinel (no entry).
func NewMatcher() *Matcher {
	m := &Matcher{}
	for i := range m.heads {
		m.heads[i] = sentinel
	}
	for i := range m.nexts {
		m.nexts[i] = sentinel
	}
	return m
}

func hashDword(buf []byte, pos int) int {
	ctx := int(mem.ReadLE[uint32](buf, pos))
	return ctx*13131 + ctx/13131
}

// Update chains bucket's current head position onto the hash entry for
// the 4 bytes at pos (normally pos == the position bucket.head just
// recorded).
func (this *Matcher) Update(bucket *Bucket, buf []byte, pos int) {
	entry := hashDword(buf, pos) % BucketHashSize
	this.nexts[bucket.head] = this.heads[entry]
	this.heads[entry] = bucket.head
}

// Forward drops chain entries pointing at ring slots that Bucket.Forward
// has just slid back to position zero — those positions fell off the live
// window and can no longer be legitimate match candidates.
func (this *Matcher) Forward(bucket *Bucket) {
	for i, h := range this.heads {
		if h != sentinel && bucket.pos[h] == 0 {
			this.heads[i] = sentinel
		}
	}

	for i, n := range this.nexts {
		if n != sentinel && bucket.pos[n] == 0 {
			this.nexts[i] = sentinel
		}
	}
}

// Find walks up to matchDepth chain entries at pos looking for the
// longest candidate match, applying the two early-exit hints (hitting
// MatchMaxLen, or beating a position's own match_len_expected hint which
// proves no older position could possibly do better).
func (this *Matcher) Find(bucket *Bucket, buf []byte, pos int, matchDepth int) Result {
	entry := hashDword(buf, pos) % BucketHashSize
	nodeIndex := this.heads[entry]
	if nodeIndex == sentinel {
		return Result{}
	}

	maxLen := MatchMinLen - 1
	var maxNodeIndex uint16
	maxLenDword := mem.ReadLE[uint32](buf, pos+maxLen-3)
	maxMatchLenMin := 0
	maxMatchLenExpected := 0

	for step := 0; step < matchDepth; step++ {
		nodePos := int(bucket.pos[nodeIndex])

		if mem.ReadLE[uint32](buf, nodePos+maxLen-3) == maxLenDword {
			lcp := mem.LCP(buf, nodePos, pos, MatchMaxLen)

			if lcp > maxLen {
				maxMatchLenMin = int(bucket.matchLenMin[nodeIndex])
				maxMatchLenExpected = int(bucket.matchLenExpected[nodeIndex])
				maxLen = lcp
				maxNodeIndex = nodeIndex
				maxLenDword = mem.ReadLE[uint32](buf, pos+maxLen-3)
			}

			if lcp == MatchMaxLen || (maxMatchLenExpected > 0 && lcp > maxMatchLenExpected) {
				break
			}
		}

		nodeNext := this.nexts[nodeIndex]
		if nodeNext == sentinel || nodePos <= int(bucket.pos[nodeNext]) {
			break
		}

		nodeIndex = nodeNext
	}

	if maxLen >= MatchMinLen && pos+maxLen < len(buf) {
		return Result{
			Matched:          true,
			ReducedOffset:    boundedSub(bucket.head, maxNodeIndex),
			MatchLen:         maxLen,
			MatchLenExpected: mem.Max(maxMatchLenExpected, MatchMinLen),
			MatchLenMin:      mem.Max(maxMatchLenMin, MatchMinLen),
		}
	}

	return Result{}
}

// HasLazyMatch reports whether any chained candidate at pos equals the
// minMatchLen bytes starting there, used to decide whether emitting the
// current position as a literal and deferring to the next position's
// match (lazy matching) looks more promising.
func (this *Matcher) HasLazyMatch(bucket *Bucket, buf []byte, pos int, minMatchLen int, depth int) bool {
	entry := hashDword(buf, pos) % BucketHashSize
	nodeIndex := this.heads[entry]
	if nodeIndex == sentinel {
		return false
	}

	maxLenDword := mem.ReadLE[uint32](buf, pos+minMatchLen-4)

	for step := 0; step < depth; step++ {
		nodePos := int(bucket.pos[nodeIndex])

		if mem.ReadLE[uint32](buf, nodePos+minMatchLen-4) == maxLenDword {
			if mem.EqBeyond4(buf, nodePos, pos, minMatchLen-4) {
				return true
			}
		}

		nodeNext := this.nexts[nodeIndex]
		if nodeNext == sentinel || nodePos <= int(bucket.pos[nodeNext]) {
			break
		}

		nodeIndex = nodeNext
	}

	return false
}
