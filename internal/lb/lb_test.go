package lb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseMirrors(t *testing.T) {
	mirrors := ParseMirrors([]string{"http://a", "3", "http://b", "1", "http://c", "oops", "http://dangling"})
	require.Equal(t, []Mirror{
		{URL: "http://a", Weight: 3},
		{URL: "http://b", Weight: 1},
	}, mirrors)
}

func TestWeightedRotation(t *testing.T) {
	wrr := NewWeightedRoundRobin([]Mirror{
		{URL: "http://a", Weight: 3},
		{URL: "http://b", Weight: 1},
	})

	counts := map[string]int{}
	for i := 0; i < 400; i++ {
		counts[wrr.Next().URL]++
	}

	require.Equal(t, 300, counts["http://a"])
	require.Equal(t, 100, counts["http://b"])
}

func TestOrderedEmitsAllMirrors(t *testing.T) {
	wrr := NewWeightedRoundRobin([]Mirror{
		{URL: "http://a", Weight: 1},
		{URL: "http://b", Weight: 1},
		{URL: "http://c", Weight: 1},
	})

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		ordered := wrr.Ordered()
		require.Len(t, ordered, 3)
		seen[ordered[0].URL] = true
	}
	// equal weights rotate the lead across all mirrors
	require.Len(t, seen, 3)
}

func TestEmptyAndZeroWeights(t *testing.T) {
	require.Equal(t, Mirror{}, NewWeightedRoundRobin(nil).Next())
	require.Empty(t, NewWeightedRoundRobin(nil).Ordered())

	zero := NewWeightedRoundRobin([]Mirror{{URL: "http://a", Weight: 0}})
	require.Equal(t, Mirror{}, zero.Next())
}
