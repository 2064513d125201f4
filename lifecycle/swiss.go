package lifecycle

import (
	"context"

	"github.com/shuttlecourt/tournament-engine/domain"
	"github.com/shuttlecourt/tournament-engine/storagedb"
	"github.com/shuttlecourt/tournament-engine/strategy"
)

// pairRoundOrDeadlock runs strategy.PairRound over standing (already
// ordered best-to-worst) using int64 pair ids as PairRound's opaque
// int tokens. The second return is false on an unresolvable deadlock,
// which the caller treats as an announced early Finalized transition,
// not an error.
func pairRoundOrDeadlock(standing []int64, played map[int64]map[int64]bool, byeHistory map[int64]bool) ([][2]int64, bool) {
	ids := make([]int, len(standing))
	for i, id := range standing {
		ids[i] = int(id)
	}
	intPlayed := make(map[int]map[int]bool, len(played))
	for a, opponents := range played {
		inner := make(map[int]bool, len(opponents))
		for b := range opponents {
			inner[int(b)] = true
		}
		intPlayed[int(a)] = inner
	}
	intBye := make(map[int]bool, len(byeHistory))
	for a := range byeHistory {
		intBye[int(a)] = true
	}

	pairs := strategy.PairRound(ids, intPlayed, intBye)
	if pairs == nil {
		return nil, false
	}
	out := make([][2]int64, len(pairs))
	for i, p := range pairs {
		out[i] = [2]int64{int64(p[0]), int64(p[1])}
	}
	return out, true
}

// materializeSwissRound creates one MatchGroup and one Match per
// non-bye pairing for round, both slots wired immediately since a
// Swiss pairing is always between two already-known pairs.
func materializeSwissRound(ctx context.Context, tx *storagedb.Tx, categoryID int64, pairs [][2]int64, round int) error {
	group, err := domain.CreateMatchGroup(ctx, tx, categoryID, round, 1)
	if err != nil {
		return err
	}
	for _, p := range pairs {
		if p[1] == -1 {
			continue
		}
		m, err := domain.CreateMatch(ctx, tx, group.ID)
		if err != nil {
			return err
		}
		p1, p2 := p[0], p[1]
		if err := domain.UpdateMatchSlots(ctx, tx, m.ID,
			domain.Slot{PairID: &p1}, domain.Slot{PairID: &p2}); err != nil {
			return err
		}
	}
	return nil
}

// swissHistory scans every round through throughRound and reconstructs
// the played-opponent and bye-history sets PairRound needs, since
// neither is stored directly anywhere.
func swissHistory(ctx context.Context, db domain.Querier, categoryID int64, throughRound int, allPairs []int64) (played map[int64]map[int64]bool, byeHistory map[int64]bool, err error) {
	played = make(map[int64]map[int64]bool)
	byeHistory = make(map[int64]bool)
	all := make(map[int64]bool, len(allPairs))
	for _, id := range allPairs {
		all[id] = true
	}

	for r := 1; r <= throughRound; r++ {
		groups, err := domain.ListMatchGroupsByRound(ctx, db, categoryID, r)
		if err != nil {
			return nil, nil, err
		}
		playedThisRound := make(map[int64]bool)
		for _, g := range groups {
			matches, err := domain.ListMatchesByGroup(ctx, db, g.ID)
			if err != nil {
				return nil, nil, err
			}
			for _, m := range matches {
				if !m.Pair1.Resolved() || !m.Pair2.Resolved() {
					continue
				}
				a, b := *m.Pair1.PairID, *m.Pair2.PairID
				if played[a] == nil {
					played[a] = map[int64]bool{}
				}
				if played[b] == nil {
					played[b] = map[int64]bool{}
				}
				played[a][b] = true
				played[b][a] = true
				playedThisRound[a] = true
				playedThisRound[b] = true
			}
		}
		for id := range all {
			if !playedThisRound[id] {
				byeHistory[id] = true
			}
		}
	}
	return played, byeHistory, nil
}
