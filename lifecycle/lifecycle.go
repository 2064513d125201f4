// Package lifecycle drives the single per-category FSM (Config -> Frozen
// -> Idle -> Playing -> WaitForIntermediateSeeding -> Finalized) and is
// the only caller that writes Category.State. It validates preconditions
// via strategy, then hands off to engine/ranking to materialize matches
// and standings, one storagedb.Tx per command.
package lifecycle

import (
	"context"

	"github.com/shuttlecourt/tournament-engine/domain"
	"github.com/shuttlecourt/tournament-engine/engine"
	"github.com/shuttlecourt/tournament-engine/storagedb"
)

// RoundStatus is a per-round read-only aggregate derived from the
// states of a round's match groups, distinct from the category's own
// state: a category can be Playing while round 1 already shows
// Finished and round 2 shows Running.
type RoundStatus string

const (
	RoundIdle     RoundStatus = "Idle"
	RoundRunning  RoundStatus = "Running"
	RoundFinished RoundStatus = "Finished"
	RoundFrozen   RoundStatus = "Frozen"
)

// DeriveRoundStatus aggregates every MatchGroup of (categoryID, round)
// into one status: Frozen if any group has not yet been closed,
// Running if any group is Playing, Finished if every group is
// Finished, Idle otherwise. A round with no groups yet is Idle.
func DeriveRoundStatus(ctx context.Context, db domain.Querier, categoryID int64, round int) (RoundStatus, error) {
	groups, err := domain.ListMatchGroupsByRound(ctx, db, categoryID, round)
	if err != nil {
		return "", err
	}
	if len(groups) == 0 {
		return RoundIdle, nil
	}
	allFinished := true
	anyRunning := false
	anyUnclosed := false
	for _, g := range groups {
		switch g.State {
		case domain.GroupConfig, domain.GroupFrozen:
			anyUnclosed = true
		case domain.GroupPlaying, domain.GroupSched:
			anyRunning = true
		}
		if g.State != domain.GroupFinished {
			allFinished = false
		}
	}
	switch {
	case anyUnclosed:
		return RoundFrozen, nil
	case allFinished:
		return RoundFinished, nil
	case anyRunning:
		return RoundRunning, nil
	default:
		return RoundIdle, nil
	}
}

// closeGroups freezes and closes every group created for (categoryID,
// round), promoting already-resolved matches to Ready. Generators leave
// groups in Config; this is the step that makes a round playable.
func closeGroups(ctx context.Context, tx *storagedb.Tx, categoryID int64, round int) error {
	groups, err := domain.ListMatchGroupsByRound(ctx, tx.SQL(), categoryID, round)
	if err != nil {
		return err
	}
	for _, g := range groups {
		if err := domain.SetMatchGroupState(ctx, tx, g.ID, domain.GroupFrozen); err != nil {
			return err
		}
		if err := engine.CloseMatchGroup(ctx, tx, g.ID); err != nil {
			return err
		}
	}
	return nil
}
