package pairing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func allPairs(n int) map[[2]int]int {
	counts := map[[2]int]int{}
	for r := 0; r < TotalRounds(n); r++ {
		for _, p := range RoundRobinPairs(n, r) {
			a, b := p[0], p[1]
			if a > b {
				a, b = b, a
			}
			counts[[2]int{a, b}]++
		}
	}
	return counts
}

func TestRoundRobinPairsEvenCoversEveryPairOnce(t *testing.T) {
	counts := allPairs(4)
	require.Len(t, counts, 6)
	for pair, c := range counts {
		require.Equalf(t, 1, c, "pair %v played %d times", pair, c)
	}
}

func TestRoundRobinPairsOddLeavesOneSeatOutPerRound(t *testing.T) {
	n := 5
	for r := 0; r < TotalRounds(n); r++ {
		pairs := RoundRobinPairs(n, r)
		require.Len(t, pairs, n/2)
		seen := map[int]bool{}
		for _, p := range pairs {
			require.False(t, seen[p[0]])
			require.False(t, seen[p[1]])
			seen[p[0]] = true
			seen[p[1]] = true
		}
	}
	counts := allPairs(n)
	require.Len(t, counts, 10)
	for _, c := range counts {
		require.Equal(t, 1, c)
	}
}

func TestRoundRobinPairsOutOfRange(t *testing.T) {
	require.Nil(t, RoundRobinPairs(1, 0))
	require.Nil(t, RoundRobinPairs(4, -1))
	require.Nil(t, RoundRobinPairs(4, 3))
}
