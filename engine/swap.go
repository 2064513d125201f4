package engine

import (
	"context"

	"github.com/shuttlecourt/tournament-engine/domain"
	"github.com/shuttlecourt/tournament-engine/errs"
	"github.com/shuttlecourt/tournament-engine/storagedb"
)

// SwapPlayer replaces one resolved pair slot of a not-yet-finished
// match, e.g. a late withdrawal substitution.
func SwapPlayer(ctx context.Context, tx *storagedb.Tx, matchID, oldPairID, newPairID int64) error {
	m, err := domain.GetMatch(ctx, tx.SQL(), matchID)
	if err != nil {
		return err
	}
	if m.State == domain.MatchFinished {
		return errs.ErrWrongState
	}

	p1, p2 := m.Pair1, m.Pair2
	switch {
	case p1.PairID != nil && *p1.PairID == oldPairID:
		p1 = domain.Slot{PairID: &newPairID}
	case p2.PairID != nil && *p2.PairID == oldPairID:
		p2 = domain.Slot{PairID: &newPairID}
	default:
		return errs.ErrNotFound
	}
	return domain.UpdateMatchSlots(ctx, tx, matchID, p1, p2)
}
