package symrank

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	enc := New()
	dec := New()

	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 5000; i++ {
		v := uint16(rng.Intn(N))
		vu := uint16(rng.Intn(N))

		r := enc.Encode(v, vu)
		require.Less(t, r, uint16(N))

		got := dec.Decode(r, vu)
		require.Equal(t, v, got, "iteration %d", i)
	}
}

func TestEncodeIsBijectiveGivenUnlikely(t *testing.T) {
	c := New()
	vu := uint16(17)

	seen := map[uint16]bool{}
	for v := uint16(0); v < N; v++ {
		snapshot := *c
		r := snapshot.Encode(v, vu)
		require.False(t, seen[r], "rank %d reused", r)
		seen[r] = true
	}

	require.Len(t, seen, N)
}

func TestInitOrderIsRespected(t *testing.T) {
	c := New()
	order := make([]uint16, N)
	for i := range order {
		order[i] = uint16(N - 1 - i)
	}
	c.Init(order)

	require.EqualValues(t, N-1, c.value[0])
	require.EqualValues(t, 0, c.index[N-1])
}
