package engine

import (
	"context"

	"github.com/shuttlecourt/tournament-engine/domain"
	"github.com/shuttlecourt/tournament-engine/errs"
	"github.com/shuttlecourt/tournament-engine/storagedb"
)

// CloseMatchGroup moves a group Frozen -> Idle, promotes every
// fully-resolved Waiting match to Ready once its players are both
// Idle, and renumbers the group's matches in creation order (already
// the bracket's match-number sort order for elimination groups, and
// pairing-round order for round-robin groups).
func CloseMatchGroup(ctx context.Context, tx *storagedb.Tx, groupID int64) error {
	group, err := domain.GetMatchGroup(ctx, tx.SQL(), groupID)
	if err != nil {
		return err
	}
	if group.State != domain.GroupFrozen {
		return errs.ErrWrongState
	}
	if err := domain.SetMatchGroupState(ctx, tx, groupID, domain.GroupIdle); err != nil {
		return err
	}

	matches, err := domain.ListMatchesByGroup(ctx, tx.SQL(), groupID)
	if err != nil {
		return err
	}
	for i, m := range matches {
		if err := domain.SetMatchNumber(ctx, tx, m.ID, i+1); err != nil {
			return err
		}
		if m.State != domain.MatchWaiting {
			continue
		}
		ready, err := bothPlayersIdle(ctx, tx, m)
		if err != nil {
			return err
		}
		if ready {
			if err := domain.SetMatchState(ctx, tx, m.ID, domain.MatchReady); err != nil {
				return err
			}
		}
	}
	return nil
}

func bothPlayersIdle(ctx context.Context, tx *storagedb.Tx, m *domain.Match) (bool, error) {
	if !m.Pair1.Resolved() || !m.Pair2.Resolved() {
		return false, nil
	}
	for _, pairID := range []int64{*m.Pair1.PairID, *m.Pair2.PairID} {
		pair, err := domain.GetPair(ctx, tx.SQL(), pairID)
		if err != nil {
			return false, err
		}
		if ok, err := playerIdle(ctx, tx, pair.Player1ID); err != nil || !ok {
			return false, err
		}
		if pair.Player2ID != nil {
			if ok, err := playerIdle(ctx, tx, *pair.Player2ID); err != nil || !ok {
				return false, err
			}
		}
	}
	return true, nil
}

func playerIdle(ctx context.Context, tx *storagedb.Tx, playerID int64) (bool, error) {
	p, err := domain.GetPlayer(ctx, tx.SQL(), playerID)
	if err != nil {
		return false, err
	}
	return p.State == domain.PlayerIdle, nil
}

// recomputeGroupState derives a group's Idle/Playing/Finished state from
// its matches' current states: Playing while any match is Busy,
// Finished once every match is Finished, Idle otherwise. Groups still in
// Config or Frozen are left alone — those transitions belong to group
// creation and CloseMatchGroup respectively.
func recomputeGroupState(ctx context.Context, tx *storagedb.Tx, groupID int64) error {
	group, err := domain.GetMatchGroup(ctx, tx.SQL(), groupID)
	if err != nil {
		return err
	}
	if group.State != domain.GroupIdle && group.State != domain.GroupPlaying && group.State != domain.GroupFinished {
		return nil
	}
	matches, err := domain.ListMatchesByGroup(ctx, tx.SQL(), groupID)
	if err != nil {
		return err
	}
	target := domain.GroupIdle
	allFinished := true
	for _, m := range matches {
		if m.State == domain.MatchBusy {
			target = domain.GroupPlaying
		}
		if m.State != domain.MatchFinished {
			allFinished = false
		}
	}
	if allFinished && len(matches) > 0 {
		target = domain.GroupFinished
	}
	if target == group.State {
		return nil
	}
	return domain.SetMatchGroupState(ctx, tx, groupID, target)
}
