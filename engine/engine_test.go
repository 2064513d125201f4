package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shuttlecourt/tournament-engine/domain"
	"github.com/shuttlecourt/tournament-engine/engine"
	"github.com/shuttlecourt/tournament-engine/errs"
	"github.com/shuttlecourt/tournament-engine/storagedb"
)

func openTestStore(t *testing.T) *storagedb.Store {
	t.Helper()
	store, err := storagedb.Open(":memory:", false, nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func makePairs(t *testing.T, store *storagedb.Store, n int) ([]int64, int64) {
	t.Helper()
	var pairIDs []int64
	var categoryID int64
	err := store.WithTx(context.Background(), func(tx *storagedb.Tx) error {
		cat, err := domain.CreateCategory(context.Background(), tx, "Test Category", domain.MatchTypeSingles,
			domain.SexMale, domain.MatchSystemSingleElim, domain.CategoryParams{WinScore: 2})
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

func TestGenerateBracketMatchesFourPlayersWiresSymbolicRefs(t *testing.T) {
	store := openTestStore(t)
	pairIDs, categoryID := makePairs(t, store, 4)

	err := store.WithTx(context.Background(), func(tx *storagedb.Tx) error {
		return engine.GenerateBracketMatches(context.Background(), tx, categoryID, engine.BracketSingleElim, pairIDs, 1)
	})
	require.NoError(t, err)

	groups, err := domain.ListMatchGroupsByRound(context.Background(), store.DB(), categoryID, 1)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	matches, err := domain.ListMatchesByGroup(context.Background(), store.DB(), groups[0].ID)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	for _, m := range matches {
		require.True(t, m.Pair1.Resolved())
		require.True(t, m.Pair2.Resolved())
		require.Equal(t, domain.MatchWaiting, m.State)
		require.NotNil(t, m.WinnerNext)
	}

	finalGroups, err := domain.ListMatchGroupsByRound(context.Background(), store.DB(), categoryID, 2)
	require.NoError(t, err)
	require.Len(t, finalGroups, 2) // final + third place, same round, different tags

	var finalMatch, thirdMatch *domain.Match
	for _, fg := range finalGroups {
		ms, err := domain.ListMatchesByGroup(context.Background(), store.DB(), fg.ID)
		require.NoError(t, err)
		require.Len(t, ms, 1)
		if fg.GroupNum == domain.GroupTagFinal {
			finalMatch = ms[0]
		} else {
			thirdMatch = ms[0]
		}
	}
	require.NotNil(t, finalMatch)
	require.NotNil(t, thirdMatch)
	require.False(t, finalMatch.Pair1.Resolved()) // still symbolic, waits on semifinal winners
	require.NotNil(t, finalMatch.Pair1.Sym)
	require.False(t, thirdMatch.Pair1.Resolved())
	require.NotNil(t, thirdMatch.Pair1.Sym)
	require.Less(t, *thirdMatch.Pair1.Sym, int64(0)) // fed by a loser
}

func TestSetMatchScorePropagatesWinnerToFinal(t *testing.T) {
	store := openTestStore(t)
	pairIDs, categoryID := makePairs(t, store, 4)

	require.NoError(t, store.WithTx(context.Background(), func(tx *storagedb.Tx) error {
		return engine.GenerateBracketMatches(context.Background(), tx, categoryID, engine.BracketSingleElim, pairIDs, 1)
	}))

	groups, err := domain.ListMatchGroupsByRound(context.Background(), store.DB(), categoryID, 1)
	require.NoError(t, err)
	semis, err := domain.ListMatchesByGroup(context.Background(), store.DB(), groups[0].ID)
	require.NoError(t, err)
	require.Len(t, semis, 2)
	semi := semis[0]

	require.NoError(t, store.WithTx(context.Background(), func(tx *storagedb.Tx) error {
		if err := domain.SetMatchState(context.Background(), tx, semi.ID, domain.MatchBusy); err != nil {
			return err
		}
		score := []domain.GameScore{{P1: 21, P2: 10}, {P1: 21, P2: 15}}
		return engine.SetMatchScore(context.Background(), tx, semi.ID, score, false, nil, false)
	}))

	finished, err := domain.GetMatch(context.Background(), store.DB(), semi.ID)
	require.NoError(t, err)
	require.Equal(t, domain.MatchFinished, finished.State)

	successors, err := domain.FindMatchesBySymRef(context.Background(), store.DB(), semi.ID)
	require.NoError(t, err)
	require.Len(t, successors, 2) // final slot + third-place slot both referenced this semifinal

	var sawResolvedWinner, sawResolvedLoser bool
	for _, succ := range successors {
		for _, slot := range []domain.Slot{succ.Pair1, succ.Pair2} {
			if slot.Resolved() && *slot.PairID == *finished.Pair1.PairID {
				sawResolvedWinner = true
			}
			if slot.Resolved() && *slot.PairID == *finished.Pair2.PairID {
				sawResolvedLoser = true
			}
		}
	}
	require.True(t, sawResolvedWinner)
	require.True(t, sawResolvedLoser)
}

func TestSetMatchScoreRejectsFlipOnceSuccessorIsRunning(t *testing.T) {
	store := openTestStore(t)
	pairIDs, categoryID := makePairs(t, store, 4)

	require.NoError(t, store.WithTx(context.Background(), func(tx *storagedb.Tx) error {
		return engine.GenerateBracketMatches(context.Background(), tx, categoryID, engine.BracketSingleElim, pairIDs, 1)
	}))

	groups, err := domain.ListMatchGroupsByRound(context.Background(), store.DB(), categoryID, 1)
	require.NoError(t, err)
	semis, err := domain.ListMatchesByGroup(context.Background(), store.DB(), groups[0].ID)
	require.NoError(t, err)
	semi1, semi2 := semis[0], semis[1]

	require.NoError(t, store.WithTx(context.Background(), func(tx *storagedb.Tx) error {
		if err := domain.SetMatchState(context.Background(), tx, semi1.ID, domain.MatchBusy); err != nil {
			return err
		}
		if err := domain.SetMatchState(context.Background(), tx, semi2.ID, domain.MatchBusy); err != nil {
			return err
		}
		score := []domain.GameScore{{P1: 21, P2: 10}, {P1: 21, P2: 15}}
		if err := engine.SetMatchScore(context.Background(), tx, semi1.ID, score, false, nil, false); err != nil {
			return err
		}
		return engine.SetMatchScore(context.Background(), tx, semi2.ID, score, false, nil, false)
	}))

	finalGroups, err := domain.ListMatchGroupsByRound(context.Background(), store.DB(), categoryID, 2)
	require.NoError(t, err)
	var finalMatch *domain.Match
	for _, fg := range finalGroups {
		if fg.GroupNum != domain.GroupTagFinal {
			continue
		}
		ms, err := domain.ListMatchesByGroup(context.Background(), store.DB(), fg.ID)
		require.NoError(t, err)
		finalMatch = ms[0]
	}
	require.NotNil(t, finalMatch)

	require.NoError(t, store.WithTx(context.Background(), func(tx *storagedb.Tx) error {
		return domain.SetMatchState(context.Background(), tx, finalMatch.ID, domain.MatchBusy)
	}))

	flippedScore := []domain.GameScore{{P1: 10, P2: 21}, {P1: 15, P2: 21}}
	err = store.WithTx(context.Background(), func(tx *storagedb.Tx) error {
		return engine.SetMatchScore(context.Background(), tx, semi1.ID, flippedScore, false, nil, true)
	})
	require.ErrorIs(t, err, errs.ErrWrongState)

	unchanged, err := domain.GetMatch(context.Background(), store.DB(), semi1.ID)
	require.NoError(t, err)
	require.Equal(t, domain.MatchFinished, unchanged.State)
}

func TestGenerateGroupMatchesRoundRobinWiresBothSlots(t *testing.T) {
	store := openTestStore(t)
	pairIDs, categoryID := makePairs(t, store, 3)

	require.NoError(t, store.WithTx(context.Background(), func(tx *storagedb.Tx) error {
		return engine.GenerateGroupMatches(context.Background(), tx, categoryID, pairIDs, 1, 1)
	}))

	var totalMatches int
	for round := 1; round <= 3; round++ {
		groups, err := domain.ListMatchGroupsByRound(context.Background(), store.DB(), categoryID, round)
		require.NoError(t, err)
		require.Len(t, groups, 1)
		matches, err := domain.ListMatchesByGroup(context.Background(), store.DB(), groups[0].ID)
		require.NoError(t, err)
		for _, m := range matches {
			require.True(t, m.Pair1.Resolved())
			require.True(t, m.Pair2.Resolved())
			require.Equal(t, domain.MatchWaiting, m.State)
		}
		totalMatches += len(matches)
	}
	require.Equal(t, 3, totalMatches) // 3 pairs round robin: 3 total matches across 3 rounds
}

func TestCloseMatchGroupPromotesReadyMatches(t *testing.T) {
	store := openTestStore(t)
	pairIDs, categoryID := makePairs(t, store, 3)

	require.NoError(t, store.WithTx(context.Background(), func(tx *storagedb.Tx) error {
		return engine.GenerateGroupMatches(context.Background(), tx, categoryID, pairIDs, 1, 1)
	}))

	groups, err := domain.ListMatchGroupsByRound(context.Background(), store.DB(), categoryID, 1)
	require.NoError(t, err)
	groupID := groups[0].ID

	require.NoError(t, store.WithTx(context.Background(), func(tx *storagedb.Tx) error {
		return domain.SetMatchGroupState(context.Background(), tx, groupID, domain.GroupFrozen)
	}))
	require.NoError(t, store.WithTx(context.Background(), func(tx *storagedb.Tx) error {
		return engine.CloseMatchGroup(context.Background(), tx, groupID)
	}))

	matches, err := domain.ListMatchesByGroup(context.Background(), store.DB(), groupID)
	require.NoError(t, err)
	for _, m := range matches {
		require.Equal(t, domain.MatchReady, m.State)
		require.NotNil(t, m.MatchNumber)
	}
}

func TestSwapPlayerRejectsFinishedMatch(t *testing.T) {
	store := openTestStore(t)
	pairIDs, categoryID := makePairs(t, store, 4)

	require.NoError(t, store.WithTx(context.Background(), func(tx *storagedb.Tx) error {
		return engine.GenerateBracketMatches(context.Background(), tx, categoryID, engine.BracketSingleElim, pairIDs, 1)
	}))
	groups, err := domain.ListMatchGroupsByRound(context.Background(), store.DB(), categoryID, 1)
	require.NoError(t, err)
	semis, err := domain.ListMatchesByGroup(context.Background(), store.DB(), groups[0].ID)
	require.NoError(t, err)
	semi := semis[0]

	require.NoError(t, store.WithTx(context.Background(), func(tx *storagedb.Tx) error {
		if err := domain.SetMatchState(context.Background(), tx, semi.ID, domain.MatchBusy); err != nil {
			return err
		}
		score := []domain.GameScore{{P1: 21, P2: 10}, {P1: 21, P2: 15}}
		return engine.SetMatchScore(context.Background(), tx, semi.ID, score, false, nil, false)
	}))

	err = store.WithTx(context.Background(), func(tx *storagedb.Tx) error {
		return engine.SwapPlayer(context.Background(), tx, semi.ID, pairIDs[0], pairIDs[1])
	})
	require.Error(t, err)
}
