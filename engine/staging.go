package engine

import (
	"context"

	"github.com/shuttlecourt/tournament-engine/domain"
	"github.com/shuttlecourt/tournament-engine/errs"
	"github.com/shuttlecourt/tournament-engine/storagedb"
)

// StageMatch is the "called to court" transition: Ready -> Busy, moving
// both of its players Idle -> Playing.
func StageMatch(ctx context.Context, tx *storagedb.Tx, matchID int64) error {
	m, err := domain.GetMatch(ctx, tx.SQL(), matchID)
	if err != nil {
		return err
	}
	if m.State != domain.MatchReady {
		return errs.ErrWrongState
	}
	if err := setMatchPlayersState(ctx, tx, m, domain.PlayerPlaying); err != nil {
		return err
	}
	if err := domain.SetMatchState(ctx, tx, matchID, domain.MatchBusy); err != nil {
		return err
	}
	return recomputeGroupState(ctx, tx, m.GroupID)
}

// UnstageMatch reverses StageMatch: a call-to-court that gets cancelled
// or rolled back, Busy -> Ready, returning both players to Idle.
func UnstageMatch(ctx context.Context, tx *storagedb.Tx, matchID int64) error {
	m, err := domain.GetMatch(ctx, tx.SQL(), matchID)
	if err != nil {
		return err
	}
	if m.State != domain.MatchBusy {
		return errs.ErrWrongState
	}
	if err := setMatchPlayersState(ctx, tx, m, domain.PlayerIdle); err != nil {
		return err
	}
	if err := domain.SetMatchState(ctx, tx, matchID, domain.MatchReady); err != nil {
		return err
	}
	return recomputeGroupState(ctx, tx, m.GroupID)
}

// setMatchPlayersState drives both of a resolved match's pairs' players
// through the Idle<->Playing transition the match's own state change
// implies.
func setMatchPlayersState(ctx context.Context, tx *storagedb.Tx, m *domain.Match, state domain.PlayerState) error {
	for _, slot := range []domain.Slot{m.Pair1, m.Pair2} {
		if !slot.Resolved() {
			continue
		}
		pair, err := domain.GetPair(ctx, tx.SQL(), *slot.PairID)
		if err != nil {
			return err
		}
		if err := domain.SetPlayerState(ctx, tx, pair.Player1ID, state); err != nil {
			return err
		}
		if pair.Player2ID != nil {
			if err := domain.SetPlayerState(ctx, tx, *pair.Player2ID, state); err != nil {
				return err
			}
		}
	}
	return nil
}
