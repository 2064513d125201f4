package facade_test

import (
	"context"
	"testing"

	"github.com/golobby/container/v3"
	"github.com/stretchr/testify/require"

	"github.com/shuttlecourt/tournament-engine/domain"
	"github.com/shuttlecourt/tournament-engine/facade"
	"github.com/shuttlecourt/tournament-engine/notify"
	"github.com/shuttlecourt/tournament-engine/storagedb"
)

func newTestFacade(t *testing.T) (*facade.Facade, *storagedb.Store) {
	t.Helper()
	store, err := storagedb.Open(":memory:", false, nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	c := container.New()
	require.NoError(t, c.Singleton(func() *storagedb.Store { return store }))
	require.NoError(t, c.Singleton(func() *notify.Hub { return notify.NewHub() }))

	f, err := facade.New(c)
	require.NoError(t, err)
	return f, store
}

func makePairsDirect(t *testing.T, store *storagedb.Store, categoryID int64, n int) []int64 {
	t.Helper()
	var pairIDs []int64
	err := store.WithTx(context.Background(), func(tx *storagedb.Tx) error {
		ctx := context.Background()
		cat, err := domain.GetCategory(ctx, tx.SQL(), categoryID)
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			p, err := domain.CreatePlayer(ctx, tx, "First", "Last", domain.SexMale, nil)
			if err != nil {
				return err
			}
			if err := domain.RegisterInCategory(ctx, tx, p.ID, categoryID); err != nil {
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
	return pairIDs
}

func TestRegisterTournamentThenCreateCategory(t *testing.T) {
	f, store := newTestFacade(t)
	ctx := context.Background()

	require.NoError(t, f.RegisterTournament(ctx, facade.RegisterTournamentRequest{
		Name: "Club Open", Organizer: "Demo Club", Date: "2026-08-01", UsesTeams: true,
	}))

	info, err := domain.GetTournamentInfo(ctx, store.DB(), 0)
	require.NoError(t, err)
	require.Equal(t, "Club Open", info.Name)
	require.True(t, info.UsesTeams)

	categoryID, err := f.CreateCategory(ctx, facade.CreateCategoryRequest{
		Name:        "Women's Singles",
		MatchType:   domain.MatchTypeSingles,
		Sex:         domain.SexFemale,
		MatchSystem: domain.MatchSystemRoundRobin,
		Params:      domain.CategoryParams{WinScore: 2},
	})
	require.NoError(t, err)
	require.NotZero(t, categoryID)
}

func TestRoundRobinThroughFacadeFinalizes(t *testing.T) {
	f, store := newTestFacade(t)
	ctx := context.Background()

	categoryID, err := f.CreateCategory(ctx, facade.CreateCategoryRequest{
		Name:        "RR Facade",
		MatchType:   domain.MatchTypeSingles,
		Sex:         domain.SexMale,
		MatchSystem: domain.MatchSystemRoundRobin,
		Params:      domain.CategoryParams{WinScore: 2},
	})
	require.NoError(t, err)
	pairIDs := makePairsDirect(t, store, categoryID, 4)
	require.Len(t, pairIDs, 4)

	require.NoError(t, f.FreezeCategory(ctx, categoryID))
	require.NoError(t, f.StartFirstRound(ctx, categoryID))

	for round := 1; round <= 3; round++ {
		groups, err := domain.ListMatchGroupsByRound(ctx, store.DB(), categoryID, round)
		require.NoError(t, err)
		for _, g := range groups {
			matches, err := domain.ListMatchesByGroup(ctx, store.DB(), g.ID)
			require.NoError(t, err)
			for _, m := range matches {
				require.NoError(t, f.RecordMatchScore(ctx, categoryID, facade.RecordMatchScoreRequest{
					MatchID: m.ID,
					Score:   []domain.GameScore{{P1: 21, P2: 10}, {P1: 21, P2: 12}},
				}))
			}
		}
	}

	cat, err := domain.GetCategory(ctx, store.DB(), categoryID)
	require.NoError(t, err)
	require.Equal(t, domain.CategoryFinalized, cat.State)
}

func TestRefereeAssignAndRelease(t *testing.T) {
	f, store := newTestFacade(t)
	ctx := context.Background()

	categoryID, err := f.CreateCategory(ctx, facade.CreateCategoryRequest{
		Name:        "Referee Facade",
		MatchType:   domain.MatchTypeSingles,
		Sex:         domain.SexMale,
		MatchSystem: domain.MatchSystemRoundRobin,
		Params:      domain.CategoryParams{WinScore: 2},
	})
	require.NoError(t, err)
	pairIDs := makePairsDirect(t, store, categoryID, 4)

	var refereeID int64
	err = store.WithTx(ctx, func(tx *storagedb.Tx) error {
		p, err := domain.CreatePlayer(ctx, tx, "Ref", "Official", domain.SexMale, nil)
		if err != nil {
			return err
		}
		refereeID = p.ID
		// an official entered in no category is still WaitForRegistration;
		// AssignReferee takes only Idle players
		return domain.SetPlayerState(ctx, tx, p.ID, domain.PlayerIdle)
	})
	require.NoError(t, err)

	require.NoError(t, f.FreezeCategory(ctx, categoryID))
	require.NoError(t, f.StartFirstRound(ctx, categoryID))

	groups, err := domain.ListMatchGroupsByRound(ctx, store.DB(), categoryID, 1)
	require.NoError(t, err)
	matches, err := domain.ListMatchesByGroup(ctx, store.DB(), groups[0].ID)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	matchID := matches[0].ID

	require.NoError(t, f.AssignReferee(ctx, matchID, refereeID))
	m, err := domain.GetMatch(ctx, store.DB(), matchID)
	require.NoError(t, err)
	require.NotNil(t, m.RefereeID)
	require.Equal(t, refereeID, *m.RefereeID)

	require.NoError(t, f.ReleaseReferee(ctx, matchID))
	m, err = domain.GetMatch(ctx, store.DB(), matchID)
	require.NoError(t, err)
	require.Nil(t, m.RefereeID)

	require.Len(t, pairIDs, 4)
}

func TestUndoLastRoundRevertsFinishedMatch(t *testing.T) {
	f, store := newTestFacade(t)
	ctx := context.Background()

	categoryID, err := f.CreateCategory(ctx, facade.CreateCategoryRequest{
		Name:        "Undo Facade",
		MatchType:   domain.MatchTypeSingles,
		Sex:         domain.SexMale,
		MatchSystem: domain.MatchSystemRoundRobin,
		Params:      domain.CategoryParams{WinScore: 2},
	})
	require.NoError(t, err)
	makePairsDirect(t, store, categoryID, 4)

	require.NoError(t, f.FreezeCategory(ctx, categoryID))
	require.NoError(t, f.StartFirstRound(ctx, categoryID))

	groups, err := domain.ListMatchGroupsByRound(ctx, store.DB(), categoryID, 1)
	require.NoError(t, err)
	matches, err := domain.ListMatchesByGroup(ctx, store.DB(), groups[0].ID)
	require.NoError(t, err)
	matchID := matches[0].ID

	require.NoError(t, f.RecordMatchScore(ctx, categoryID, facade.RecordMatchScoreRequest{
		MatchID: matchID,
		Score:   []domain.GameScore{{P1: 21, P2: 10}, {P1: 21, P2: 12}},
	}))

	m, err := domain.GetMatch(ctx, store.DB(), matchID)
	require.NoError(t, err)
	require.Equal(t, domain.MatchFinished, m.State)

	require.NoError(t, f.UndoLastRound(ctx, categoryID))
	m, err = domain.GetMatch(ctx, store.DB(), matchID)
	require.NoError(t, err)
	require.Equal(t, domain.MatchReady, m.State)
	require.Empty(t, m.Score)
}
