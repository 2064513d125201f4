package engine

import (
	"context"

	"github.com/shuttlecourt/tournament-engine/domain"
	"github.com/shuttlecourt/tournament-engine/pairing"
	"github.com/shuttlecourt/tournament-engine/storagedb"
)

// GenerateGroupMatches emits one MatchGroup per round-robin round for a
// single pool of pairIDs, with one Match per pairing, both slots wired
// immediately since round-robin needs no symbolic references.
func GenerateGroupMatches(ctx context.Context, tx *storagedb.Tx, categoryID int64, pairIDs []int64, groupNum, firstRoundNum int) error {
	total := pairing.TotalRounds(len(pairIDs))
	for r := 0; r < total; r++ {
		group, err := domain.CreateMatchGroup(ctx, tx, categoryID, firstRoundNum+r, groupNum)
		if err != nil {
			return err
		}
		for _, pair := range pairing.RoundRobinPairs(len(pairIDs), r) {
			m, err := domain.CreateMatch(ctx, tx, group.ID)
			if err != nil {
				return err
			}
			p1, p2 := pairIDs[pair[0]], pairIDs[pair[1]]
			if err := domain.UpdateMatchSlots(ctx, tx, m.ID, domain.Slot{PairID: &p1}, domain.Slot{PairID: &p2}); err != nil {
				return err
			}
		}
	}
	return nil
}
