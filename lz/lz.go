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

// Package lz drives the per-chunk pipeline: classify each source position
// as a literal, a word-predicted match or a ROLZ match, rank every
// emitted symbol through its byte-context symrank coder, and pack the
// result behind a pair of canonical Huffman tables.
package lz

import (
	"fmt"

	"github.com/gorolz/rolz/bitstream"
	"github.com/gorolz/rolz/huffman"
	"github.com/gorolz/rolz/internal/mem"
	"github.com/gorolz/rolz/matchfinder"
	"github.com/gorolz/rolz/symrank"
)

// ChunkSize bounds how many items (literals, word matches or ROLZ
// matches) a single call to Encoder.Encode/Decoder.Decode packs into one
// Huffman-coded unit.
const ChunkSize = 1 << 20

// wordSymbol is the reserved alphabet slot meaning "the predicted next
// word matched", always the last symrank symbol.
const wordSymbol = symrank.WordSymbol

const (
	numBuckets  = 256
	numSymranks = 512
	wordsSize   = 1 << 15
	huffMaxLen  = 15
)

// Config selects how hard the match finder searches.
type Config struct {
	MatchDepth      int
	LazyMatchDepth1 int
	LazyMatchDepth2 int
}

// context holds the adaptive state shared by the encoder and decoder:
// one match-position bucket and one symrank coder per byte context, the
// word-prediction table, and the two sticky flags that make later items
// depend on earlier ones (first_block, after_literal).
type context struct {
	buckets      [numBuckets]*matchfinder.Bucket
	symranks     [numSymranks]*symrank.Coder
	words        [wordsSize]uint16
	firstBlock   bool
	afterLiteral bool
}

func newContext() *context {
	c := &context{firstBlock: true, afterLiteral: true}
	for i := range c.buckets {
		c.buckets[i] = matchfinder.NewBucket()
	}
	for i := range c.symranks {
		c.symranks[i] = symrank.New()
	}
	return c
}

// shc folds the previous byte's value and an ASCII-alnum flag for the
// byte before that into an 8-bit byte-context hash, addressing buckets,
// the low byte of a symrank context, and (recursively) shw.
func shc(buf []byte, pos int) int {
	alnum := 0
	if mem.IsAsciiAlnum(buf[pos-1]) {
		alnum = 1
	}
	return int(buf[pos])&0x7f | alnum<<7
}

// shw folds the previous byte together with shc one position further
// back into a 15-bit context addressing the word-prediction table.
func shw(buf []byte, pos int) int {
	return int(buf[pos])&0x7f | shc(buf, pos-1)<<7
}

func getWord(buf []byte, pos int) uint16 {
	return mem.ReadU16BE(buf, pos)
}

func symrankContext(afterLiteral bool, c int) uint16 {
	a := 0
	if afterLiteral {
		a = 1
	}
	return uint16(a)<<8 | uint16(c)
}

// Encoder holds one context plus one match chain table per byte context;
// reused across chunks and blocks within a stream.
type Encoder struct {
	ctx      *context
	matchers [numBuckets]*matchfinder.Matcher
}

// NewEncoder returns an encoder with empty match/symrank state.
func NewEncoder() *Encoder {
	e := &Encoder{ctx: newContext()}
	for i := range e.matchers {
		e.matchers[i] = matchfinder.NewMatcher()
	}
	return e
}

// Forward slides every bucket/matcher back by forwardLen, called once per
// block after the live window itself has been slid.
func (this *Encoder) Forward(forwardLen int) {
	for i := range this.ctx.buckets {
		this.ctx.buckets[i].Forward(forwardLen)
		this.matchers[i].Forward(this.ctx.buckets[i])
	}
}

type matchItem struct {
	isMatch         bool
	symbol          uint16
	symrankCtx      uint16
	symrankUnlikely uint8
	robitLen        uint8
	robits          uint16
	encodedMatchLen uint8
}

// Encode consumes source bytes from sbuf starting at spos until either
// end is reached or ChunkSize items have been produced, and appends the
// chunk's encoded bytes to tbuf. It returns the new source position and
// the appended byte slice.
//
// sbuf must extend at least MatchMaxLen*2 bytes past end, zero-filled:
// the match finder and word predictor look ahead of the last position
// they commit to, so sbuf's length and end are deliberately not the
// same thing. The caller owns that distinction (see Stream.go, which
// passes the whole sentinel-padded block buffer and the live-window
// boundary separately) — Encode must never use len(sbuf) where it means
// the end of real data.
func (this *Encoder) Encode(cfg Config, sbuf []byte, end int, spos int, tbuf []byte) (int, []byte) {
	items := make([]matchItem, 0, ChunkSize)

	for spos < end && len(items) < ChunkSize {
		c := shc(sbuf, spos-1)
		lastWordExpected := this.ctx.words[shw(sbuf, spos-1)]
		lastWordMatched := getWord(sbuf, spos) == lastWordExpected
		srCtx := symrankContext(this.ctx.afterLiteral, c)
		srUnlikely := uint8(lastWordExpected >> 8)

		lazyMatchID := 0
		res := this.matchers[c].Find(this.ctx.buckets[c], sbuf, spos, cfg.MatchDepth)

		if res.Matched {
			enc := roidEncoding[res.ReducedOffset]

			if res.MatchLen < matchfinder.MatchMaxLen/2 {
				lazyLen1 := res.MatchLen + 1
				if enc.bitLen < 8 {
					lazyLen1++
				}
				lazyLen2 := lazyLen1
				if lastWordMatched {
					lazyLen2--
				}

				hasLazy := func(pos, lazyLen, depth int) bool {
					cc := shc(sbuf, pos)
					return this.matchers[cc].HasLazyMatch(this.ctx.buckets[cc], sbuf, pos+1, lazyLen, depth)
				}

				switch {
				case hasLazy(spos+0, lazyLen1, cfg.LazyMatchDepth1):
					lazyMatchID = 1
				case hasLazy(spos+1, lazyLen2, cfg.LazyMatchDepth2):
					lazyMatchID = 2
				}
			}

			if lazyMatchID == 0 {
				var encodedMatchLen uint8
				switch {
				case res.MatchLen > res.MatchLenExpected:
					encodedMatchLen = uint8(res.MatchLen - res.MatchLenMin)
				case res.MatchLen < res.MatchLenExpected:
					encodedMatchLen = uint8(res.MatchLen - res.MatchLenMin + 1)
				default:
					encodedMatchLen = 0
				}

				lenid := mem.Min(uint8(symrank.LenidSize-1), encodedMatchLen)
				encodedRoidLenid := uint16(256) + uint16(enc.class)*uint16(symrank.LenidSize) + uint16(lenid)

				items = append(items, matchItem{
					isMatch:         true,
					symbol:          encodedRoidLenid,
					symrankCtx:      srCtx,
					symrankUnlikely: srUnlikely,
					robitLen:        enc.bitLen,
					robits:          enc.restBits,
					encodedMatchLen: encodedMatchLen,
				})

				this.ctx.buckets[c].Update(spos, res.ReducedOffset, res.MatchLen)
				this.matchers[c].Update(this.ctx.buckets[c], sbuf, spos)
				spos += res.MatchLen
				this.ctx.afterLiteral = false
				this.ctx.words[shw(sbuf, spos-3)] = getWord(sbuf, spos-2)
				continue
			}
		}

		this.ctx.buckets[c].Update(spos, 0, 0)
		this.matchers[c].Update(this.ctx.buckets[c], sbuf, spos)

		if spos+1 < end && lazyMatchID != 1 && lastWordMatched {
			items = append(items, matchItem{symbol: wordSymbol, symrankCtx: srCtx, symrankUnlikely: srUnlikely})
			spos += 2
			this.ctx.afterLiteral = false
		} else {
			items = append(items, matchItem{symbol: uint16(sbuf[spos]), symrankCtx: srCtx, symrankUnlikely: srUnlikely})
			spos++
			this.ctx.afterLiteral = true
			this.ctx.words[shw(sbuf, spos-3)] = getWord(sbuf, spos-2)
		}
	}

	w := bitstream.NewDefaultOutputBitStream(tbuf)

	if this.ctx.firstBlock {
		counts := make([]uint32, symrank.N)
		for _, it := range items {
			counts[it.symbol]++
		}

		order := decreasingFrequencyOrder(counts)
		for _, sym := range order {
			w.Reserve32()
			w.Put(16, uint64(sym))
		}

		for i := range this.ctx.symranks {
			this.ctx.symranks[i].Init(order)
		}
		this.ctx.firstBlock = false
	}

	w.Reserve32()
	w.Put(32, uint64(mem.Min(spos, end)))
	w.Reserve32()
	w.Put(32, uint64(len(items)))

	huffWeights1 := make([]uint32, symrank.N)
	huffWeights2 := make([]uint32, matchfinder.MatchMaxLen)

	for i := range items {
		it := &items[i]
		it.symbol = this.ctx.symranks[it.symrankCtx].Encode(it.symbol, uint16(it.symrankUnlikely))
		huffWeights1[it.symbol]++

		if it.isMatch && int(it.encodedMatchLen) >= symrank.LenidSize-1 {
			huffWeights2[it.encodedMatchLen]++
		}
	}

	huffCoder1 := huffman.NewCoderFromWeights(huffWeights1, huffMaxLen)
	huffCoder2 := huffman.NewCoderFromWeights(huffWeights2, huffMaxLen)
	huffCoder1.WriteTable(w)
	huffCoder2.WriteTable(w)

	for _, it := range items {
		huffCoder1.Encode(w, it.symbol)

		if it.isMatch {
			w.Reserve32()
			w.Put(it.robitLen, uint64(it.robits))

			if int(it.encodedMatchLen) >= symrank.LenidSize-1 {
				huffCoder2.Encode(w, uint16(it.encodedMatchLen))
			}
		}
	}

	return spos, w.Finish()
}

// decreasingFrequencyOrder returns the symbol alphabet sorted by count
// descending, ties broken by symbol ascending (the BTreeSet<(-count,
// symbol)> ordering of the reference implementation).
func decreasingFrequencyOrder(counts []uint32) []uint16 {
	order := make([]uint16, len(counts))
	for i := range order {
		order[i] = uint16(i)
	}

	for i := 1; i < len(order); i++ {
		for j := i; j > 0; j-- {
			a, b := order[j-1], order[j]
			if counts[a] > counts[b] || (counts[a] == counts[b] && a < b) {
				break
			}
			order[j-1], order[j] = order[j], order[j-1]
		}
	}

	return order
}

// Decoder is the mirror image of Encoder, driven by the chunk bytes an
// Encoder produced.
type Decoder struct {
	ctx *context
}

// NewDecoder returns a decoder with empty match/symrank state.
func NewDecoder() *Decoder {
	return &Decoder{ctx: newContext()}
}

// Forward slides every bucket back by forwardLen.
func (this *Decoder) Forward(forwardLen int) {
	for i := range this.ctx.buckets {
		this.ctx.buckets[i].Forward(forwardLen)
	}
}

// Decode reconstructs source bytes into sbuf starting at spos from the
// chunk bytes in tbuf, returning the new source position and how many
// tbuf bytes were consumed.
func (this *Decoder) Decode(tbuf []byte, sbuf []byte, spos int) (int, int, error) {
	r := bitstream.NewDefaultInputBitStream(tbuf)

	if this.ctx.firstBlock {
		order := make([]uint16, symrank.N)
		for i := range order {
			r.Refill32()
			order[i] = uint16(r.Get(16))
		}

		for i := range this.ctx.symranks {
			this.ctx.symranks[i].Init(order)
		}
		this.ctx.firstBlock = false
	}

	r.Refill32()
	sbufLen := int(r.Get(32))
	r.Refill32()
	itemsLen := int(r.Get(32))
	if itemsLen > ChunkSize {
		return spos, r.BytesConsumed(), fmt.Errorf("lz: item count %d exceeds chunk size %d", itemsLen, ChunkSize)
	}

	huffCoder1 := huffman.ReadTable(r, symrank.N)
	huffCoder2 := huffman.ReadTable(r, matchfinder.MatchMaxLen)

	for n := 0; n < itemsLen; n++ {
		c := shc(sbuf, spos-1)
		lastWordExpected := this.ctx.words[shw(sbuf, spos-1)]
		srCtx := symrankContext(this.ctx.afterLiteral, c)
		srUnlikely := uint8(lastWordExpected >> 8)

		symbol := huffCoder1.Decode(r)
		if int(symbol) >= symrank.N {
			return spos, r.BytesConsumed(), fmt.Errorf("lz: huffman symbol %d out of range", symbol)
		}

		decoded := this.ctx.symranks[srCtx].Decode(symbol, uint16(srUnlikely))

		switch {
		case decoded == wordSymbol:
			this.ctx.buckets[c].Update(spos, 0, 0)
			this.ctx.afterLiteral = false
			mem.WriteU16BE(sbuf, spos, lastWordExpected)
			spos += 2

		case decoded <= 255:
			this.ctx.buckets[c].Update(spos, 0, 0)
			this.ctx.afterLiteral = true
			sbuf[spos] = byte(decoded)
			spos++
			this.ctx.words[shw(sbuf, spos-3)] = getWord(sbuf, spos-2)

		default:
			encodedRoidLenid := decoded
			roid := uint8((encodedRoidLenid - 256) / uint16(symrank.LenidSize))
			lenid := uint8((encodedRoidLenid - 256) % uint16(symrank.LenidSize))

			if int(roid) >= symrank.RoidSize {
				return spos, r.BytesConsumed(), fmt.Errorf("lz: roid %d out of range", roid)
			}

			dec := roidDecoding[roid]
			r.Refill32()
			reducedOffset := dec.base + uint16(r.Get(dec.bitLen))

			matchPos, matchLenExpected, matchLenMin := this.ctx.buckets[c].PosAndLens(reducedOffset)

			var encodedMatchLen int
			if int(lenid) == symrank.LenidSize-1 {
				encodedMatchLen = int(huffCoder2.Decode(r))
			} else {
				encodedMatchLen = int(lenid)
			}

			var matchLen int
			switch {
			case encodedMatchLen == 0:
				matchLen = matchLenExpected
			case encodedMatchLen+matchLenMin > matchLenExpected:
				matchLen = encodedMatchLen + matchLenMin
			default:
				matchLen = encodedMatchLen + matchLenMin - 1
			}

			if matchPos < 0 || matchPos >= spos || spos+matchLen > len(sbuf) {
				return spos, r.BytesConsumed(), fmt.Errorf("lz: match position out of bounds")
			}

			this.ctx.buckets[c].Update(spos, reducedOffset, matchLen)
			this.ctx.afterLiteral = false

			mem.CopyOverlap(sbuf, matchPos, spos, matchLen)
			spos += matchLen
			this.ctx.words[shw(sbuf, spos-3)] = getWord(sbuf, spos-2)
		}
	}

	return mem.Min(spos, sbufLen), r.BytesConsumed(), nil
}
