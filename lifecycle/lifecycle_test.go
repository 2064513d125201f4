package lifecycle_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shuttlecourt/tournament-engine/domain"
	"github.com/shuttlecourt/tournament-engine/engine"
	"github.com/shuttlecourt/tournament-engine/lifecycle"
	"github.com/shuttlecourt/tournament-engine/storagedb"
)

func openTestStore(t *testing.T) *storagedb.Store {
	t.Helper()
	store, err := storagedb.Open(":memory:", false, nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func makeCategory(t *testing.T, store *storagedb.Store, system domain.MatchSystem, n int, params domain.CategoryParams) (int64, []int64) {
	t.Helper()
	var categoryID int64
	var pairIDs []int64
	err := store.WithTx(context.Background(), func(tx *storagedb.Tx) error {
		ctx := context.Background()
		cat, err := domain.CreateCategory(ctx, tx, "Test Category", domain.MatchTypeSingles,
			domain.SexMale, system, params)
		if err != nil {
			return err
		}
		categoryID = cat.ID
		for i := 0; i < n; i++ {
			p, err := domain.CreatePlayer(ctx, tx, "First", "Last", domain.SexMale, nil)
			if err != nil {
				return err
			}
			if err := domain.RegisterInCategory(ctx, tx, p.ID, cat.ID); err != nil {
				return err
			}
			pair, err := domain.CreatePair(ctx, tx, cat, p.ID, nil)
			if err != nil {
				return err
			}
			pairIDs = append(pairIDs, pair.ID)
		}
		return nil
	})
	require.NoError(t, err)
	return categoryID, pairIDs
}

func TestFreezeRejectsTooFewPairs(t *testing.T) {
	store := openTestStore(t)
	categoryID, _ := makeCategory(t, store, domain.MatchSystemRoundRobin, 2, domain.CategoryParams{WinScore: 2})

	err := store.WithTx(context.Background(), func(tx *storagedb.Tx) error {
		return lifecycle.Freeze(context.Background(), tx, categoryID)
	})
	require.Error(t, err)
}

func TestRoundRobinFullCycleFinalizes(t *testing.T) {
	store := openTestStore(t)
	categoryID, pairIDs := makeCategory(t, store, domain.MatchSystemRoundRobin, 4, domain.CategoryParams{WinScore: 2})
	ctx := context.Background()

	err := store.WithTx(ctx, func(tx *storagedb.Tx) error {
		if err := lifecycle.Freeze(ctx, tx, categoryID); err != nil {
			return err
		}
		return lifecycle.StartFirstRound(ctx, tx, categoryID)
	})
	require.NoError(t, err)

	cat, err := domain.GetCategory(ctx, store.DB(), categoryID)
	require.NoError(t, err)
	require.Equal(t, domain.CategoryPlaying, cat.State)

	groups, err := domain.ListMatchGroupsByRound(ctx, store.DB(), categoryID, 1)
	require.NoError(t, err)
	require.NotEmpty(t, groups)

	// play every round to completion
	total := 3 // 4 pairs round-robin = 3 rounds
	for round := 1; round <= total; round++ {
		err = store.WithTx(ctx, func(tx *storagedb.Tx) error {
			groups, err := domain.ListMatchGroupsByRound(ctx, tx.SQL(), categoryID, round)
			if err != nil {
				return err
			}
			for _, g := range groups {
				matches, err := domain.ListMatchesByGroup(ctx, tx.SQL(), g.ID)
				if err != nil {
					return err
				}
				for _, m := range matches {
					score := []domain.GameScore{{P1: 21, P2: 10}, {P1: 21, P2: 12}}
					if err := engine.StageMatch(ctx, tx, m.ID); err != nil {
						return err
					}
					if err := engine.SetMatchScore(ctx, tx, m.ID, score, false, nil, false); err != nil {
						return err
					}
				}
			}
			return nil
		})
		require.NoError(t, err)

		err = store.WithTx(ctx, func(tx *storagedb.Tx) error {
			return lifecycle.CompleteRound(ctx, tx, categoryID, round)
		})
		require.NoError(t, err)
	}

	cat, err = domain.GetCategory(ctx, store.DB(), categoryID)
	require.NoError(t, err)
	require.Equal(t, domain.CategoryFinalized, cat.State)
	require.Len(t, pairIDs, 4)
}

func TestSingleElimSeedingAndStart(t *testing.T) {
	store := openTestStore(t)
	categoryID, pairIDs := makeCategory(t, store, domain.MatchSystemSingleElim, 4, domain.CategoryParams{WinScore: 2})
	ctx := context.Background()

	err := store.WithTx(ctx, func(tx *storagedb.Tx) error {
		if err := lifecycle.Freeze(ctx, tx, categoryID); err != nil {
			return err
		}
		if err := lifecycle.ApplySeeding(ctx, tx, categoryID, pairIDs); err != nil {
			return err
		}
		return lifecycle.StartFirstRound(ctx, tx, categoryID)
	})
	require.NoError(t, err)

	cat, err := domain.GetCategory(ctx, store.DB(), categoryID)
	require.NoError(t, err)
	require.Equal(t, domain.CategoryPlaying, cat.State)
}

func TestSwissLadderStartsFirstRound(t *testing.T) {
	store := openTestStore(t)
	categoryID, pairIDs := makeCategory(t, store, domain.MatchSystemSwissLadder, 5, domain.CategoryParams{WinScore: 2})
	ctx := context.Background()

	err := store.WithTx(ctx, func(tx *storagedb.Tx) error {
		if err := lifecycle.Freeze(ctx, tx, categoryID); err != nil {
			return err
		}
		if err := lifecycle.ApplySeeding(ctx, tx, categoryID, pairIDs); err != nil {
			return err
		}
		return lifecycle.StartFirstRound(ctx, tx, categoryID)
	})
	require.NoError(t, err)

	groups, err := domain.ListMatchGroupsByRound(ctx, store.DB(), categoryID, 1)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	matches, err := domain.ListMatchesByGroup(ctx, store.DB(), groups[0].ID)
	require.NoError(t, err)
	require.Len(t, matches, 2) // 5 pairs, one bye
}

func TestGroupsThenKORequiresGroupAssignment(t *testing.T) {
	store := openTestStore(t)
	params := domain.CategoryParams{WinScore: 2, GroupConfig: "L16;0;1;4;"}
	categoryID, pairIDs := makeCategory(t, store, domain.MatchSystemGroupsThenKO, 4, params)
	ctx := context.Background()

	err := store.WithTx(ctx, func(tx *storagedb.Tx) error {
		if err := lifecycle.Freeze(ctx, tx, categoryID); err != nil {
			return err
		}
		return lifecycle.ApplyGroupAssignment(ctx, tx, categoryID, [][]int64{pairIDs})
	})
	require.NoError(t, err)

	err = store.WithTx(ctx, func(tx *storagedb.Tx) error {
		return lifecycle.StartFirstRound(ctx, tx, categoryID)
	})
	require.NoError(t, err)

	cat, err := domain.GetCategory(ctx, store.DB(), categoryID)
	require.NoError(t, err)
	require.Equal(t, domain.CategoryPlaying, cat.State)

	groups, err := domain.ListMatchGroupsByRound(ctx, store.DB(), categoryID, 1)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Equal(t, 1, groups[0].GroupNum)
}

