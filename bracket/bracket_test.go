package bracket

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildSingleElimFourPlayers(t *testing.T) {
	g, err := BuildSingleElim(4)
	require.NoError(t, err)
	require.Len(t, g.Matches, 4) // 3 elim + 1 third-place

	final := g.Matches[len(g.Matches)-1]
	require.True(t, final.ThirdPlace || final.WinnerNext == nil)
}

func TestBuildSingleElimThreePlayersNoThirdPlace(t *testing.T) {
	g, err := BuildSingleElim(3)
	require.NoError(t, err)
	// n-1 matches, no third-place match since n is not > 3
	require.Len(t, g.Matches, 2)
	require.Nil(t, g.Third)
}

func TestBuildSingleElimTwoPlayers(t *testing.T) {
	g, err := BuildSingleElim(2)
	require.NoError(t, err)
	require.Len(t, g.Matches, 1)
	require.Equal(t, 1, g.Final.WinnerRank)
	require.Equal(t, 2, g.Final.LoserRank)
}

func TestBuildSingleElimRejectsTooFew(t *testing.T) {
	_, err := BuildSingleElim(1)
	require.Error(t, err)
}

func TestBuildRanking1TenPlayersPrunesToPlayableSet(t *testing.T) {
	g, err := BuildRanking1(10)
	require.NoError(t, err)
	require.NotEmpty(t, g.Matches)
	for _, m := range g.Matches {
		require.False(t, m.FastForward)
	}
}

func TestBuildRanking1RejectsOverThirtyTwo(t *testing.T) {
	_, err := BuildRanking1(33)
	require.Error(t, err)
}

// simulateRanking1 plays a built graph deterministically (the lower
// seed number always wins) and returns the final rank awarded to every
// seed 1..actualPlayers, by walking Matches in its already-topological
// order and resolving each slot to a seed, from literal seeds or from
// an earlier match's recorded winner/loser.
func simulateRanking1(t *testing.T, g *Graph, actualPlayers int) map[int]int {
	t.Helper()
	winnerOf := make(map[*Node]int, len(g.Matches))
	loserOf := make(map[*Node]int, len(g.Matches))
	rank := make(map[int]int, actualPlayers)

	resolve := func(ref SlotRef) int {
		switch ref.Kind {
		case RefSeed:
			return ref.Seed
		case RefMatch:
			if ref.FromLoser {
				return loserOf[ref.Node]
			}
			return winnerOf[ref.Node]
		default:
			t.Fatalf("unexpected RefNone in a playable match's primary slot")
			return 0
		}
	}

	for _, n := range g.Matches {
		seed1 := resolve(n.Slot1)
		var winner, loser int
		if n.AutoWalkover {
			require.Equal(t, RefNone, n.Slot2.Kind)
			winner = seed1
		} else {
			seed2 := resolve(n.Slot2)
			if seed1 < seed2 {
				winner, loser = seed1, seed2
			} else {
				winner, loser = seed2, seed1
			}
			loserOf[n] = loser
		}
		winnerOf[n] = winner
		if n.WinnerRank > 0 {
			rank[winner] = n.WinnerRank
		}
		if !n.AutoWalkover && n.LoserRank > 0 {
			rank[loser] = n.LoserRank
		}
	}
	return rank
}

func TestRanking1TenPlayersEveryEntrantGetsAUniqueRank(t *testing.T) {
	g, err := BuildRanking1(10)
	require.NoError(t, err)
	rank := simulateRanking1(t, g, 10)

	seen := make(map[int]bool, 10)
	for seed := 1; seed <= 10; seed++ {
		r, ok := rank[seed]
		require.True(t, ok, "seed %d never received a final rank", seed)
		require.False(t, seen[r], "rank %d assigned twice", r)
		require.True(t, r >= 1 && r <= 10, "rank %d out of range", r)
		seen[r] = true
	}
}

func TestRanking1ThirtyTwoPlayersEveryEntrantGetsAUniqueRank(t *testing.T) {
	g, err := BuildRanking1(32)
	require.NoError(t, err)
	rank := simulateRanking1(t, g, 32)

	seen := make(map[int]bool, 32)
	for seed := 1; seed <= 32; seed++ {
		r, ok := rank[seed]
		require.True(t, ok, "seed %d never received a final rank", seed)
		require.False(t, seen[r], "rank %d assigned twice", r)
		seen[r] = true
	}
}

func TestRanking1ThreePlayersEveryEntrantGetsAUniqueRank(t *testing.T) {
	g, err := BuildRanking1(3)
	require.NoError(t, err)
	rank := simulateRanking1(t, g, 3)

	seen := make(map[int]bool, 3)
	for seed := 1; seed <= 3; seed++ {
		r, ok := rank[seed]
		require.True(t, ok, "seed %d never received a final rank", seed)
		require.False(t, seen[r], "rank %d assigned twice", r)
		seen[r] = true
	}
}

func TestMatchNumbersAreSequentialFromOne(t *testing.T) {
	g, err := BuildSingleElim(8)
	require.NoError(t, err)
	for i, m := range g.Matches {
		require.Equal(t, int64(i+1), m.ID)
	}
}
