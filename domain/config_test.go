package domain_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shuttlecourt/tournament-engine/domain"
	"github.com/shuttlecourt/tournament-engine/storagedb"
)

func TestSetAndGetTournamentInfoRoundTrips(t *testing.T) {
	store, err := storagedb.Open(":memory:", false, nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	ctx := context.Background()

	info, err := domain.GetTournamentInfo(ctx, store.DB(), 0)
	require.NoError(t, err)
	require.Equal(t, domain.TournamentInfo{}, info)

	err = store.WithTx(ctx, func(tx *storagedb.Tx) error {
		return domain.SetTournamentInfo(ctx, tx, domain.TournamentInfo{
			Name: "Regional Open", Organizer: "City Badminton Assoc.", Date: "2026-09-12", UsesTeams: true,
		})
	})
	require.NoError(t, err)

	info, err = domain.GetTournamentInfo(ctx, store.DB(), 0)
	require.NoError(t, err)
	require.Equal(t, "Regional Open", info.Name)
	require.Equal(t, "City Badminton Assoc.", info.Organizer)
	require.Equal(t, "2026-09-12", info.Date)
	require.True(t, info.UsesTeams)

	err = store.WithTx(ctx, func(tx *storagedb.Tx) error {
		return domain.SetTournamentInfo(ctx, tx, domain.TournamentInfo{Name: "Renamed Open"})
	})
	require.NoError(t, err)

	info, err = domain.GetTournamentInfo(ctx, store.DB(), 0)
	require.NoError(t, err)
	require.Equal(t, "Renamed Open", info.Name)
	require.False(t, info.UsesTeams)
}
