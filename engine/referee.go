package engine

import (
	"context"

	"github.com/shuttlecourt/tournament-engine/domain"
	"github.com/shuttlecourt/tournament-engine/errs"
	"github.com/shuttlecourt/tournament-engine/storagedb"
)

// AssignReferee puts an Idle player into the Referee state and records
// them on the match, mirroring the Idle<->Playing transition pattern
// used for match participants.
func AssignReferee(ctx context.Context, tx *storagedb.Tx, matchID, playerID int64) error {
	p, err := domain.GetPlayer(ctx, tx.SQL(), playerID)
	if err != nil {
		return err
	}
	if p.State != domain.PlayerIdle {
		return errs.ErrWrongState
	}
	if err := domain.SetPlayerState(ctx, tx, playerID, domain.PlayerReferee); err != nil {
		return err
	}
	return domain.SetMatchReferee(ctx, tx, matchID, &playerID)
}

// ReleaseReferee returns the referee to Idle and clears the match's
// referee slot.
func ReleaseReferee(ctx context.Context, tx *storagedb.Tx, matchID int64) error {
	m, err := domain.GetMatch(ctx, tx.SQL(), matchID)
	if err != nil {
		return err
	}
	if m.RefereeID == nil {
		return errs.ErrNotFound
	}
	if err := domain.SetPlayerState(ctx, tx, *m.RefereeID, domain.PlayerIdle); err != nil {
		return err
	}
	return domain.SetMatchReferee(ctx, tx, matchID, nil)
}
