// Package ranking builds and rebuilds the per-round standings a
// category's strategy produces: a running cumulative tally sorted by
// comparator for round-robin/Swiss/GroupsThenKO, or the bracket's own
// final ranks for elimination systems, which have no intrinsic order of
// their own.
package ranking

import (
	"context"
	"sort"

	"github.com/shuttlecourt/tournament-engine/domain"
	"github.com/shuttlecourt/tournament-engine/storagedb"
	"github.com/shuttlecourt/tournament-engine/strategy"
)

// RebuildRound recomputes every RankingEntry for (categoryID, round),
// replacing whatever was there before.
func RebuildRound(ctx context.Context, tx *storagedb.Tx, categoryID int64, round int) error {
	cat, err := domain.GetCategory(ctx, tx.SQL(), categoryID)
	if err != nil {
		return err
	}
	strat, err := strategy.For(cat.MatchSystem)
	if err != nil {
		return err
	}
	if err := domain.DeleteRankingEntriesForRound(ctx, tx, categoryID, round); err != nil {
		return err
	}
	pairs, err := domain.ListPairsByCategory(ctx, tx.SQL(), categoryID)
	if err != nil {
		return err
	}
	if strat.Comparator() != nil {
		return rebuildCumulative(ctx, tx, categoryID, round, pairs, strat.Comparator())
	}
	return rebuildElimination(ctx, tx, categoryID, round, pairs)
}

// RebuildFromRound rebuilds every round from fromRound through
// throughRound, the fallout of a score edit in an already-completed
// round: ranks for every later completed round depend on it too.
func RebuildFromRound(ctx context.Context, tx *storagedb.Tx, categoryID int64, fromRound, throughRound int) error {
	for r := fromRound; r <= throughRound; r++ {
		if err := RebuildRound(ctx, tx, categoryID, r); err != nil {
			return err
		}
	}
	return nil
}

func rebuildCumulative(ctx context.Context, tx *storagedb.Tx, categoryID int64, round int, pairs []*domain.PlayerPair, cmp strategy.Comparator) error {
	stats := make(map[int64]strategy.Stats, len(pairs))
	for _, p := range pairs {
		stats[p.ID] = strategy.Stats{}
	}

	for r := 1; r <= round; r++ {
		groups, err := domain.ListMatchGroupsByRound(ctx, tx.SQL(), categoryID, r)
		if err != nil {
			return err
		}
		for _, group := range groups {
			matches, err := domain.ListMatchesByGroup(ctx, tx.SQL(), group.ID)
			if err != nil {
				return err
			}
			for _, m := range matches {
				if m.State != domain.MatchFinished || !m.Pair1.Resolved() || !m.Pair2.Resolved() {
					continue
				}
				accumulate(stats, *m.Pair1.PairID, *m.Pair2.PairID, m)
			}
		}
	}

	type ranked struct {
		pairID int64
		stats  strategy.Stats
	}
	ordered := make([]ranked, 0, len(pairs))
	for _, p := range pairs {
		ordered = append(ordered, ranked{pairID: p.ID, stats: stats[p.ID]})
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return cmp(ordered[i].stats, ordered[j].stats)
	})

	for i, r := range ordered {
		entry, err := domain.CreateRankingEntry(ctx, tx, domain.RankingEntry{
			CategoryID:   categoryID,
			Round:        round,
			PairID:       r.pairID,
			MatchesWon:   r.stats.Wins,
			MatchesDrawn: r.stats.Draws,
			MatchesLost:  r.stats.Losses,
			GamesWon:     r.stats.GamesWon,
			GamesLost:    r.stats.GamesLost,
			PointsWon:    r.stats.PointsWon,
			PointsLost:   r.stats.PointsLost,
		})
		if err != nil {
			return err
		}
		rank := i + 1
		if err := domain.SetRankingEntryRank(ctx, tx, entry.ID, rank); err != nil {
			return err
		}
	}
	return nil
}

// RebuildGroupPhaseRound recomputes standings for one round-robin pool
// of a GroupsThenKO category's group phase, scoped to poolNum: only
// matches played inside that pool's own match groups count, and every
// entry it writes carries GroupNum so a pool's ranks stay a permutation
// of 1..len(pairIDs) instead of being mixed in with every other pool
// playing the same round.
func RebuildGroupPhaseRound(ctx context.Context, tx *storagedb.Tx, categoryID int64, round, poolNum int, pairIDs []int64) error {
	cmp := strategy.GroupsThenKO{}.Comparator()
	stats := make(map[int64]strategy.Stats, len(pairIDs))
	for _, id := range pairIDs {
		stats[id] = strategy.Stats{}
	}

	for r := 1; r <= round; r++ {
		groups, err := domain.ListMatchGroupsByRound(ctx, tx.SQL(), categoryID, r)
		if err != nil {
			return err
		}
		for _, group := range groups {
			if group.GroupNum != poolNum {
				continue
			}
			matches, err := domain.ListMatchesByGroup(ctx, tx.SQL(), group.ID)
			if err != nil {
				return err
			}
			for _, m := range matches {
				if m.State != domain.MatchFinished || !m.Pair1.Resolved() || !m.Pair2.Resolved() {
					continue
				}
				accumulate(stats, *m.Pair1.PairID, *m.Pair2.PairID, m)
			}
		}
	}

	type ranked struct {
		pairID int64
		stats  strategy.Stats
	}
	ordered := make([]ranked, 0, len(pairIDs))
	for _, id := range pairIDs {
		ordered = append(ordered, ranked{pairID: id, stats: stats[id]})
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return cmp(ordered[i].stats, ordered[j].stats)
	})

	for i, r := range ordered {
		pool := poolNum
		entry, err := domain.CreateRankingEntry(ctx, tx, domain.RankingEntry{
			CategoryID:   categoryID,
			Round:        round,
			PairID:       r.pairID,
			GroupNum:     &pool,
			MatchesWon:   r.stats.Wins,
			MatchesDrawn: r.stats.Draws,
			MatchesLost:  r.stats.Losses,
			GamesWon:     r.stats.GamesWon,
			GamesLost:    r.stats.GamesLost,
			PointsWon:    r.stats.PointsWon,
			PointsLost:   r.stats.PointsLost,
		})
		if err != nil {
			return err
		}
		rank := i + 1
		if err := domain.SetRankingEntryRank(ctx, tx, entry.ID, rank); err != nil {
			return err
		}
	}
	return nil
}

// accumulate folds one finished match's result into both pairs' running
// Stats, in place via the shared map.
func accumulate(stats map[int64]strategy.Stats, pair1ID, pair2ID int64, m *domain.Match) {
	s1, s2 := stats[pair1ID], stats[pair2ID]
	if m.IsWalkover {
		if m.WalkoverWinner != nil && *m.WalkoverWinner == pair1ID {
			s1.Wins++
			s2.Losses++
		} else {
			s2.Wins++
			s1.Losses++
		}
		stats[pair1ID], stats[pair2ID] = s1, s2
		return
	}

	gamesP1, gamesP2 := 0, 0
	for _, g := range m.Score {
		s1.PointsWon += g.P1
		s1.PointsLost += g.P2
		s2.PointsWon += g.P2
		s2.PointsLost += g.P1
		switch {
		case g.P1 > g.P2:
			gamesP1++
		case g.P2 > g.P1:
			gamesP2++
		}
	}
	s1.GamesWon += gamesP1
	s1.GamesLost += gamesP2
	s2.GamesWon += gamesP2
	s2.GamesLost += gamesP1

	switch {
	case gamesP1 > gamesP2:
		s1.Wins++
		s2.Losses++
	case gamesP2 > gamesP1:
		s2.Wins++
		s1.Losses++
	default:
		s1.Draws++
		s2.Draws++
	}
	stats[pair1ID], stats[pair2ID] = s1, s2
}

func rebuildElimination(ctx context.Context, tx *storagedb.Tx, categoryID int64, round int, pairs []*domain.PlayerPair) error {
	finalRank := make(map[int64]int, len(pairs))
	for r := 1; r <= round; r++ {
		groups, err := domain.ListMatchGroupsByRound(ctx, tx.SQL(), categoryID, r)
		if err != nil {
			return err
		}
		for _, group := range groups {
			matches, err := domain.ListMatchesByGroup(ctx, tx.SQL(), group.ID)
			if err != nil {
				return err
			}
			for _, m := range matches {
				if m.State != domain.MatchFinished || !m.Pair1.Resolved() {
					continue
				}
				winnerID, loserID, hasLoser := winnerLoser(m)
				if m.WinnerRank != nil {
					finalRank[winnerID] = *m.WinnerRank
				}
				if hasLoser && m.LoserRank != nil {
					finalRank[loserID] = *m.LoserRank
				}
			}
		}
	}

	for _, p := range pairs {
		entry, err := domain.CreateRankingEntry(ctx, tx, domain.RankingEntry{
			CategoryID: categoryID,
			Round:      round,
			PairID:     p.ID,
		})
		if err != nil {
			return err
		}
		if rank, ok := finalRank[p.ID]; ok {
			if err := domain.SetRankingEntryRank(ctx, tx, entry.ID, rank); err != nil {
				return err
			}
		}
	}
	return nil
}

// winnerLoser identifies a finished match's winner and loser pair ids.
// hasLoser is false for a Ranking1 auto-walkover node that never had a
// real second entrant (domain.Slot{} rather than a resolved pair): the
// winner still claims its rank, but there is no loser to rank.
func winnerLoser(m *domain.Match) (winnerID, loserID int64, hasLoser bool) {
	if !m.Pair2.Resolved() {
		return *m.Pair1.PairID, 0, false
	}
	if m.IsWalkover && m.WalkoverWinner != nil {
		if *m.WalkoverWinner == *m.Pair1.PairID {
			return *m.Pair1.PairID, *m.Pair2.PairID, true
		}
		return *m.Pair2.PairID, *m.Pair1.PairID, true
	}
	gamesP1, gamesP2 := 0, 0
	for _, g := range m.Score {
		if g.P1 > g.P2 {
			gamesP1++
		} else if g.P2 > g.P1 {
			gamesP2++
		}
	}
	if gamesP1 >= gamesP2 {
		return *m.Pair1.PairID, *m.Pair2.PairID, true
	}
	return *m.Pair2.PairID, *m.Pair1.PairID, true
}
