package matchfinder

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func buildBuf(pattern string, repeat int) []byte {
	buf := make([]byte, 0, len(pattern)*repeat+MatchMaxLen*2)
	for i := 0; i < repeat; i++ {
		buf = append(buf, pattern...)
	}
	// sentinel padding so the last position's tail-dword reads stay in bounds.
	buf = append(buf, make([]byte, MatchMaxLen*2)...)
	return buf
}

func TestFindMatchFindsRepeatedPattern(t *testing.T) {
	buf := buildBuf("abcdefgh", 50)

	bucket := NewBucket()
	matcher := NewMatcher()

	patLen := 8
	for pos := 0; pos+MatchMaxLen < len(buf)-MatchMaxLen*2; pos += patLen {
		res := matcher.Find(bucket, buf, pos, 32)
		if res.Matched {
			require.GreaterOrEqual(t, res.MatchLen, MatchMinLen)
			require.True(t, res.ReducedOffset < BucketSize)
		}

		matcher.Update(bucket, buf, pos)
		bucket.Update(pos, res.ReducedOffset, res.MatchLen)
	}
}

func TestHasLazyMatch(t *testing.T) {
	buf := buildBuf("xyzxyzxyzw", 20)

	bucket := NewBucket()
	matcher := NewMatcher()

	for pos := 0; pos < 40; pos += 10 {
		matcher.Update(bucket, buf, pos)
		bucket.Update(pos, 0, 0)
	}

	require.True(t, matcher.HasLazyMatch(bucket, buf, 40, MatchMinLen, 32))
}

func TestForwardSlidesPositions(t *testing.T) {
	buf := buildBuf("0123456789", 10)

	bucket := NewBucket()
	matcher := NewMatcher()

	matcher.Update(bucket, buf, 50)
	bucket.Update(50, 0, 0)

	bucket.Forward(50)
	matcher.Forward(bucket)

	pos, _, _ := bucket.PosAndLens(0)
	require.Equal(t, 0, pos)
}
