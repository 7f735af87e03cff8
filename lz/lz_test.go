package lz

import (
	"math/rand"
	"testing"

	"github.com/gorolz/rolz/matchfinder"
	"github.com/stretchr/testify/require"
)

const prematchLen = 8

func buildSource(payload []byte) []byte {
	buf := make([]byte, 0, prematchLen+len(payload)+matchfinder.MatchMaxLen*2)
	buf = append(buf, make([]byte, prematchLen)...)
	buf = append(buf, payload...)
	buf = append(buf, make([]byte, matchfinder.MatchMaxLen*2)...)
	return buf
}

func roundTrip(t *testing.T, payload []byte) {
	t.Helper()

	cfg := Config{MatchDepth: 32, LazyMatchDepth1: 16, LazyMatchDepth2: 8}
	sbuf := buildSource(payload)
	wantLen := prematchLen + len(payload)

	enc := NewEncoder()
	spos := prematchLen
	var tbuf []byte
	for spos < wantLen {
		spos, tbuf = enc.Encode(cfg, sbuf, wantLen, spos, tbuf)
	}

	dec := NewDecoder()
	out := make([]byte, len(sbuf))
	copy(out[:prematchLen], sbuf[:prematchLen])

	dpos := prematchLen
	consumed := 0
	for dpos < wantLen {
		var err error
		var n int
		dpos, n, err = dec.Decode(tbuf[consumed:], out, dpos)
		require.NoError(t, err)
		consumed += n
	}

	require.Equal(t, payload, out[prematchLen:wantLen])
}

func TestRoundTripRepeatedPattern(t *testing.T) {
	payload := make([]byte, 0, 5000)
	for i := 0; i < 500; i++ {
		payload = append(payload, []byte("the quick brown fox jumps ")...)
	}
	roundTrip(t, payload)
}

func TestRoundTripRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	payload := make([]byte, 4096)
	rng.Read(payload)
	roundTrip(t, payload)
}

func TestRoundTripAllZeros(t *testing.T) {
	roundTrip(t, make([]byte, 10000))
}
