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
	"crypto/md5"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

type recordingListener struct {
	events []*Event
}

func (this *recordingListener) ProcessEvent(evt *Event) {
	this.events = append(this.events, evt)
}

func roundTrip(t *testing.T, level int, payload []byte) []byte {
	t.Helper()

	var compressed bytes.Buffer
	_, err := Encode(Config{Level: level}, bytes.NewReader(payload), &compressed)
	require.NoError(t, err)

	var decoded bytes.Buffer
	_, err = Decode(bytes.NewReader(compressed.Bytes()), &decoded)
	require.NoError(t, err)

	require.Equal(t, payload, decoded.Bytes())
	return compressed.Bytes()
}

func TestRoundTripEmptyInput(t *testing.T) {
	compressed := roundTrip(t, 2, nil)
	// version tag (10 bytes) + end marker (4 zero bytes), nothing else.
	require.Equal(t, 14, len(compressed))
	require.Equal(t, []byte{0, 0, 0, 0}, compressed[10:])
}

func TestRoundTripSingleByte(t *testing.T) {
	compressed := roundTrip(t, 2, []byte{0x41})
	require.Greater(t, len(compressed), 1)
}

func TestRoundTripRepeatingAlphabet(t *testing.T) {
	var buf bytes.Buffer
	for buf.Len() < 10*1024 {
		buf.WriteString("abcdefghijklmnopqrstuvwxyz")
	}
	roundTrip(t, 2, buf.Bytes()[:10*1024])
}

func TestRoundTripQuickBrownFoxMD5(t *testing.T) {
	payload := []byte(strings.Repeat("the quick brown fox jumps over the lazy dog. ", 4096))
	compressed := roundTrip(t, 1, payload)
	require.NotZero(t, len(compressed))

	var decoded bytes.Buffer
	_, err := Decode(bytes.NewReader(compressed), &decoded)
	require.NoError(t, err)
	require.Equal(t, md5.Sum(payload), md5.Sum(decoded.Bytes()))
}

func TestRoundTripAllLevels(t *testing.T) {
	payload := []byte("some moderately repetitive moderately repetitive text text text")
	for level := 0; level <= 2; level++ {
		roundTrip(t, level, payload)
	}
}

func TestEncodeRejectsBadLevel(t *testing.T) {
	_, err := Encode(Config{Level: 7}, bytes.NewReader(nil), &bytes.Buffer{})
	require.Error(t, err)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestDecodeNotifiesOnVersionMismatch(t *testing.T) {
	var compressed bytes.Buffer
	_, err := Encode(Config{Level: 0}, bytes.NewReader([]byte("hello")), &compressed)
	require.NoError(t, err)

	tampered := compressed.Bytes()
	copy(tampered[:10], "9.9.9\x00\x00\x00\x00\x00")

	listener := &recordingListener{}
	var decoded bytes.Buffer
	_, err = Decode(bytes.NewReader(tampered), &decoded, listener)
	require.NoError(t, err)
	require.Equal(t, "hello", decoded.String())

	found := false
	for _, evt := range listener.events {
		if evt.Type() == EVT_VERSION_MISMATCH {
			found = true
		}
	}
	require.True(t, found, "expected a version mismatch event")
}

func TestDecodeRejectsOversizedChunkLength(t *testing.T) {
	var stream bytes.Buffer
	tag := versionTag()
	stream.Write(tag[:])

	hdr := make([]byte, 4)
	hdr[0], hdr[1], hdr[2], hdr[3] = 0xff, 0xff, 0xff, 0x7f
	stream.Write(hdr)

	_, err := Decode(&stream, &bytes.Buffer{})
	require.Error(t, err)

	var dataErr *InvalidDataError
	require.ErrorAs(t, err, &dataErr)
}

func TestDecodeRejectsTruncatedStream(t *testing.T) {
	var stream bytes.Buffer
	tag := versionTag()
	stream.Write(tag[:])
	stream.Write([]byte{1, 0}) // chunk length prefix cut short

	_, err := Decode(&stream, &bytes.Buffer{})
	require.Error(t, err)

	var dataErr *InvalidDataError
	require.ErrorAs(t, err, &dataErr)
}

type blockEvent struct {
	Type    int
	BlockID int
}

func collectBlockEvents(events []*Event) []blockEvent {
	var out []blockEvent
	for _, evt := range events {
		if evt.Type() == EVT_BLOCK_INFO {
			out = append(out, blockEvent{Type: evt.Type(), BlockID: evt.BlockID()})
		}
	}
	return out
}

func TestRoundTripForcesSecondBlock(t *testing.T) {
	if testing.Short() {
		t.Skip("exercises a full block slide; skipped with -short")
	}

	rng := rand.New(rand.NewSource(1))
	payload := make([]byte, BlockSize+1024)
	rng.Read(payload)

	encListener := &recordingListener{}
	var compressed bytes.Buffer
	_, err := Encode(Config{Level: 0}, bytes.NewReader(payload), &compressed, encListener)
	require.NoError(t, err)
	require.NotZero(t, compressed.Len())

	decListener := &recordingListener{}
	var decoded bytes.Buffer
	_, err = Decode(bytes.NewReader(compressed.Bytes()), &decoded, decListener)
	require.NoError(t, err)
	require.Equal(t, payload, decoded.Bytes())

	// Each pass reads at most postmatchLen bytes, so BlockSize+1024 bytes
	// take two full passes plus a short third one: exactly three blocks,
	// numbered 0 to 2, on both sides of the round trip.
	want := []blockEvent{{Type: EVT_BLOCK_INFO, BlockID: 0}, {Type: EVT_BLOCK_INFO, BlockID: 1}, {Type: EVT_BLOCK_INFO, BlockID: 2}}

	if diff := cmp.Diff(want, collectBlockEvents(encListener.events), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("encode block events mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, collectBlockEvents(decListener.events), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("decode block events mismatch (-want +got):\n%s", diff)
	}
}
