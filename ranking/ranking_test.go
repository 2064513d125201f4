package ranking_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shuttlecourt/tournament-engine/domain"
	"github.com/shuttlecourt/tournament-engine/engine"
	"github.com/shuttlecourt/tournament-engine/ranking"
	"github.com/shuttlecourt/tournament-engine/storagedb"
)

func openTestStore(t *testing.T) *storagedb.Store {
	t.Helper()
	store, err := storagedb.Open(":memory:", false, nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func makeRoundRobinPairs(t *testing.T, store *storagedb.Store, n int) ([]int64, int64) {
	t.Helper()
	var pairIDs []int64
	var categoryID int64
	err := store.WithTx(context.Background(), func(tx *storagedb.Tx) error {
		cat, err := domain.CreateCategory(context.Background(), tx, "RR Category", domain.MatchTypeSingles,
			domain.SexMale, domain.MatchSystemRoundRobin, domain.CategoryParams{WinScore: 2, RoundRobinIterations: 1})
		if err != nil {
			return err
		}
		categoryID = cat.ID
		for i := 0; i < n; i++ {
			p, err := domain.CreatePlayer(context.Background(), tx, "First", "Last", domain.SexMale, nil)
			if err != nil {
				return err
			}
			if err := domain.RegisterInCategory(context.Background(), tx, p.ID, cat.ID); err != nil {
				return err
			}
			pair, err := domain.CreatePair(context.Background(), tx, cat, p.ID, nil)
			if err != nil {
				return err
			}
			pairIDs = append(pairIDs, pair.ID)
		}
		return nil
	})
	require.NoError(t, err)
	return pairIDs, categoryID
}

func TestRebuildRoundRanksByWinsThenGameDelta(t *testing.T) {
	store := openTestStore(t)
	pairIDs, categoryID := makeRoundRobinPairs(t, store, 3)

	require.NoError(t, store.WithTx(context.Background(), func(tx *storagedb.Tx) error {
		return engine.GenerateGroupMatches(context.Background(), tx, categoryID, pairIDs, 1, 1)
	}))

	groups, err := domain.ListMatchGroupsByRound(context.Background(), store.DB(), categoryID, 1)
	require.NoError(t, err)
	matches, err := domain.ListMatchesByGroup(context.Background(), store.DB(), groups[0].ID)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	m := matches[0]

	require.NoError(t, store.WithTx(context.Background(), func(tx *storagedb.Tx) error {
		if err := domain.SetMatchState(context.Background(), tx, m.ID, domain.MatchBusy); err != nil {
			return err
		}
		score := []domain.GameScore{{P1: 21, P2: 5}, {P1: 21, P2: 8}}
		return engine.SetMatchScore(context.Background(), tx, m.ID, score, false, nil, false)
	}))

	require.NoError(t, store.WithTx(context.Background(), func(tx *storagedb.Tx) error {
		return ranking.RebuildRound(context.Background(), tx, categoryID, 1)
	}))

	entries, err := domain.ListRankingEntries(context.Background(), store.DB(), categoryID, 1)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	var winnerEntry, thirdEntry *domain.RankingEntry
	for _, e := range entries {
		if e.PairID == *m.Pair1.PairID {
			winnerEntry = e
		}
		if e.PairID != *m.Pair1.PairID && e.PairID != *m.Pair2.PairID {
			thirdEntry = e
		}
	}
	require.NotNil(t, winnerEntry)
	require.NotNil(t, thirdEntry)
	require.NotNil(t, winnerEntry.Rank)
	require.Equal(t, 1, *winnerEntry.Rank)
	require.Equal(t, 1, winnerEntry.MatchesWon)
	// the pair that has not played yet this round still gets an entry (every pair stays "in")
	require.NotNil(t, thirdEntry.Rank)
}
