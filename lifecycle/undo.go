package lifecycle

import (
	"context"

	"github.com/shuttlecourt/tournament-engine/domain"
	"github.com/shuttlecourt/tournament-engine/engine"
	"github.com/shuttlecourt/tournament-engine/errs"
	"github.com/shuttlecourt/tournament-engine/storagedb"
)

// UndoRound reverts every Finished match in a category's current round
// back to Ready, clearing its score and releasing its referee to Idle. It only
// ever touches the deepest round a category has materialized: once
// CompleteRound has run for a round and generated the next one, that
// round's results are load-bearing for every match it fed symbolically
// and are no longer undoable through this path — re-freezing the
// category is the only way back past that point.
func UndoRound(ctx context.Context, tx *storagedb.Tx, categoryID int64) error {
	cat, err := domain.GetCategory(ctx, tx.SQL(), categoryID)
	if err != nil {
		return err
	}
	if cat.State != domain.CategoryPlaying {
		return errs.ErrWrongState
	}
	round, err := domain.MaxRoundForCategory(ctx, tx.SQL(), categoryID)
	if err != nil {
		return err
	}
	if round == 0 {
		return errs.ErrWrongState
	}

	groups, err := domain.ListMatchGroupsByRound(ctx, tx.SQL(), categoryID, round)
	if err != nil {
		return err
	}
	touched := false
	for _, g := range groups {
		matches, err := domain.ListMatchesByGroup(ctx, tx.SQL(), g.ID)
		if err != nil {
			return err
		}
		for _, m := range matches {
			if m.State != domain.MatchFinished {
				continue
			}
			if hasSuccessorResolved(ctx, tx, m.ID) {
				return errs.ErrWrongState
			}
			if err := domain.RecordMatchScore(ctx, tx, m.ID, nil, false, nil); err != nil {
				return err
			}
			if err := domain.SetMatchState(ctx, tx, m.ID, domain.MatchReady); err != nil {
				return err
			}
			if m.RefereeID != nil {
				if err := engine.ReleaseReferee(ctx, tx, m.ID); err != nil {
					return err
				}
			}
			touched = true
		}
		if touched {
			if err := domain.SetMatchGroupState(ctx, tx, g.ID, domain.GroupPlaying); err != nil {
				return err
			}
		}
	}
	if !touched {
		return errs.ErrWrongState
	}
	return nil
}

// hasSuccessorResolved reports whether any match still referencing
// matchID's winner/loser symbolically has already been resolved into a
// real pair, which would mean undoing matchID now orphans that
// resolution.
func hasSuccessorResolved(ctx context.Context, tx *storagedb.Tx, matchID int64) bool {
	successors, err := domain.FindMatchesBySymRef(ctx, tx.SQL(), matchID)
	if err != nil {
		return true
	}
	for _, s := range successors {
		if s.Pair1.Resolved() && s.Pair2.Resolved() && s.State != domain.MatchIncomplete {
			return true
		}
	}
	return false
}
