/*
Copyright 2011-2026 Frederic Langlet
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

package rolz

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/gorolz/rolz/lz"
	"github.com/gorolz/rolz/matchfinder"
)

// Version is written, zero-padded, as the first 10 bytes of every
// stream. It is informational: a decoder warns on mismatch but still
// attempts to decode, since forward/backward compatibility across
// versions that differ in any field of the stream layout is explicitly
// not guaranteed.
const Version = "1.0.0"

const (
	// BlockSize is the live-window size of one sliding block pass,
	// chosen so an absolute position within it fits the bucket's
	// 25-bit pos field.
	BlockSize = (1 << 25) - 1

	// sentinelLen is the all-zero padding appended past BlockSize so
	// every lookahead read the match finder performs near the end of
	// the window stays in bounds.
	sentinelLen = matchfinder.MatchMaxLen * 2

	// prematchLen bytes of context precede every freshly read window;
	// on the first block they are zero, afterwards they are the tail
	// of the previous block, carried forward by forward(postmatchLen).
	prematchLen = BlockSize / 2

	// postmatchLen is the most new bytes read into the window on every
	// pass, the first included, and the amount every stored position
	// is slid back by between blocks.
	postmatchLen = BlockSize - prematchLen

	bufSize = BlockSize + sentinelLen

	// maxChunkPayload bounds a single chunk's compressed byte length;
	// a decoder rejects any length prefix larger than this outright.
	maxChunkPayload = prematchLen * 3
)

// Config selects how hard the match finder searches, mapped from the
// CLI's --level flag.
type Config struct {
	Level int
}

var levelConfigs = map[int]lz.Config{
	0: {MatchDepth: 5, LazyMatchDepth1: 3, LazyMatchDepth2: 2},
	1: {MatchDepth: 15, LazyMatchDepth1: 9, LazyMatchDepth2: 6},
	2: {MatchDepth: 45, LazyMatchDepth1: 27, LazyMatchDepth2: 18},
}

func (this Config) resolve() (lz.Config, error) {
	cfg, ok := levelConfigs[this.Level]
	if !ok {
		return lz.Config{}, &ConfigError{Reason: fmt.Sprintf("level %d is not one of {0,1,2}", this.Level)}
	}

	return cfg, nil
}

func versionTag() [10]byte {
	var tag [10]byte
	copy(tag[:], Version)
	return tag
}

// Encode reads src to completion, writing the compressed stream to dst.
// It returns the number of bytes moved in both directions even when it
// fails partway, since partial output written before a failure is not
// rewound.
func Encode(cfg Config, src io.Reader, dst io.Writer, listeners ...Listener) (Stat, error) {
	var stat Stat

	lzCfg, err := cfg.resolve()
	if err != nil {
		return stat, err
	}

	notifyListeners(listeners, NewEventFromString(EVT_COMPRESSION_START, -1, "", time.Time{}))

	tag := versionTag()
	if _, err := dst.Write(tag[:]); err != nil {
		return stat, err
	}
	stat.TargetSize += int64(len(tag))

	sbuf := make([]byte, bufSize)
	tbuf := make([]byte, 0, maxChunkPayload)
	enc := lz.NewEncoder()
	blockID := 0

	for {
		n, err := fillWindow(src, sbuf)
		if err != nil {
			return stat, err
		}
		if n == 0 {
			break
		}

		spos := prematchLen
		end := prematchLen + n

		for spos < end {
			var chunk []byte
			spos, chunk = enc.Encode(lzCfg, sbuf, end, spos, tbuf[:0])

			if err := writeChunk(dst, chunk); err != nil {
				return stat, err
			}
			stat.TargetSize += 4 + int64(len(chunk))
		}

		stat.SourceSize += int64(n)
		notifyListeners(listeners, NewEvent(EVT_BLOCK_INFO, blockID, int64(n), time.Time{}))
		blockID++

		copy(sbuf[:prematchLen], sbuf[postmatchLen:BlockSize])
		clear(sbuf[prematchLen:BlockSize])
		enc.Forward(postmatchLen)
	}

	if err := writeChunk(dst, nil); err != nil {
		return stat, err
	}
	stat.TargetSize += 4

	notifyListeners(listeners, NewEventFromString(EVT_COMPRESSION_END, -1, "", time.Time{}))
	return stat, nil
}

// Decode reads the compressed stream src to its end marker, writing the
// recovered bytes to dst.
func Decode(src io.Reader, dst io.Writer, listeners ...Listener) (Stat, error) {
	var stat Stat

	notifyListeners(listeners, NewEventFromString(EVT_DECOMPRESSION_START, -1, "", time.Time{}))

	var tag [10]byte
	if _, err := io.ReadFull(src, tag[:]); err != nil {
		return stat, err
	}
	stat.TargetSize += int64(len(tag))
	checkVersion(tag, listeners)

	sbuf := make([]byte, bufSize)
	scratch := make([]byte, maxChunkPayload)
	dec := lz.NewDecoder()

	spos := prematchLen
	blockID := 0
	blockStart := spos

	for {
		n, err := readChunkLen(src)
		if err != nil {
			return stat, err
		}

		if n > maxChunkPayload {
			return stat, &InvalidDataError{Reason: fmt.Sprintf("chunk length %d exceeds scratch capacity %d", n, maxChunkPayload)}
		}

		if n != 0 {
			if _, err := io.ReadFull(src, scratch[:n]); err != nil {
				return stat, err
			}

			newSpos, _, err := dec.Decode(scratch[:n], sbuf, spos)
			if err != nil {
				return stat, &InvalidDataError{Reason: err.Error()}
			}

			if _, err := dst.Write(sbuf[spos:newSpos]); err != nil {
				return stat, err
			}

			stat.SourceSize += int64(newSpos - spos)
			stat.TargetSize += 4 + int64(n)
			spos = newSpos
		} else {
			stat.TargetSize += 4
		}

		if spos >= BlockSize || n == 0 {
			notifyListeners(listeners, NewEvent(EVT_BLOCK_INFO, blockID, int64(spos-blockStart), time.Time{}))
			blockID++

			if n == 0 {
				break
			}

			copy(sbuf[:prematchLen], sbuf[postmatchLen:BlockSize])
			dec.Forward(postmatchLen)
			spos = prematchLen
			blockStart = spos
		}
	}

	notifyListeners(listeners, NewEventFromString(EVT_DECOMPRESSION_END, -1, "", time.Time{}))
	return stat, nil
}

// fillWindow reads as many bytes as are available, up to capacity, into
// sbuf[prematchLen:BlockSize), stopping early on EOF. It never returns
// io.EOF: a short or empty read is reported as (n, nil).
func fillWindow(src io.Reader, sbuf []byte) (int, error) {
	total := 0

	for prematchLen+total < BlockSize {
		n, err := src.Read(sbuf[prematchLen+total : BlockSize])
		if n > 0 {
			total += n
		}

		if err != nil {
			if err == io.EOF {
				break
			}
			return total, err
		}

		if n == 0 {
			break
		}
	}

	return total, nil
}

func writeChunk(dst io.Writer, payload []byte) error {
	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(payload)))

	if _, err := dst.Write(hdr[:]); err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}

	_, err := dst.Write(payload)
	return err
}

func readChunkLen(src io.Reader) (int, error) {
	var hdr [4]byte

	nread, err := io.ReadFull(src, hdr[:])
	if err != nil {
		if nread == 0 && err == io.EOF {
			return 0, &InvalidDataError{Reason: "stream truncated before end marker"}
		}
		if err == io.ErrUnexpectedEOF {
			return 0, &InvalidDataError{Reason: "stream truncated inside chunk-length field"}
		}
		return 0, err
	}

	return int(binary.LittleEndian.Uint32(hdr[:])), nil
}

func checkVersion(tag [10]byte, listeners []Listener) {
	got := tag[:]
	if i := bytes.IndexByte(got, 0); i >= 0 {
		got = got[:i]
	}

	if !utf8.Valid(got) {
		notifyListeners(listeners, NewEventFromString(EVT_VERSION_MISMATCH, -1,
			"stream version tag is not valid UTF-8; decoding may not work correctly", time.Time{}))
		return
	}

	if s := string(got); s != Version {
		notifyListeners(listeners, NewEventFromString(EVT_VERSION_MISMATCH, -1,
			fmt.Sprintf("stream version %q does not match this decoder (%q); decoding may not work correctly", s, Version),
			time.Time{}))
	}
}
