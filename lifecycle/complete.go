package lifecycle

import (
	"context"
	"time"

	"github.com/shuttlecourt/tournament-engine/domain"
	"github.com/shuttlecourt/tournament-engine/errs"
	"github.com/shuttlecourt/tournament-engine/metrics"
	"github.com/shuttlecourt/tournament-engine/pairing"
	"github.com/shuttlecourt/tournament-engine/ranking"
	"github.com/shuttlecourt/tournament-engine/storagedb"
	"github.com/shuttlecourt/tournament-engine/strategy"
)

// CompleteRound rebuilds round's standings, then either materializes
// the category's next round or, once no round remains, transitions to
// Finalized. round must already be RoundFinished.
func CompleteRound(ctx context.Context, tx *storagedb.Tx, categoryID int64, round int) error {
	cat, err := domain.GetCategory(ctx, tx.SQL(), categoryID)
	if err != nil {
		return err
	}
	if cat.State != domain.CategoryPlaying {
		return errs.ErrWrongState
	}
	status, err := DeriveRoundStatus(ctx, tx.SQL(), categoryID, round)
	if err != nil {
		return err
	}
	if status != RoundFinished {
		return errs.ErrWrongState
	}
	pairs, err := domain.ListPairsByCategory(ctx, tx.SQL(), categoryID)
	if err != nil {
		return err
	}

	switch cat.MatchSystem {
	case domain.MatchSystemRoundRobin:
		if err := ranking.RebuildRound(ctx, tx, categoryID, round); err != nil {
			return err
		}
		total, err := strategy.RoundRobin{}.TotalRounds(len(pairs), cat.Params)
		if err != nil {
			return err
		}
		if round >= total {
			return domain.SetCategoryState(ctx, tx, categoryID, domain.CategoryFinalized)
		}
		return nil

	case domain.MatchSystemSwissLadder:
		return completeSwissRound(ctx, tx, categoryID, cat, pairs, round)

	case domain.MatchSystemSingleElim, domain.MatchSystemRanking1:
		if err := ranking.RebuildRound(ctx, tx, categoryID, round); err != nil {
			return err
		}
		deepest, err := domain.MaxRoundForCategory(ctx, tx.SQL(), categoryID)
		if err != nil {
			return err
		}
		if round >= deepest {
			return domain.SetCategoryState(ctx, tx, categoryID, domain.CategoryFinalized)
		}
		return nil

	case domain.MatchSystemGroupsThenKO:
		return completeGroupsThenKORound(ctx, tx, categoryID, cat, pairs, round)

	default:
		return errs.ErrInvalidMatchType
	}
}

// completeSwissRound rebuilds the round just finished, re-derives
// played-opponent/bye history from the full match record, and either
// re-pairs the next round or, on a deadlock or having reached the
// strategy's round cap, finalizes the category early — a deadlock is
// an announced outcome, not an error.
func completeSwissRound(ctx context.Context, tx *storagedb.Tx, categoryID int64, cat *domain.Category, pairs []*domain.PlayerPair, round int) error {
	if err := ranking.RebuildRound(ctx, tx, categoryID, round); err != nil {
		return err
	}
	roundCap, err := strategy.SwissLadder{}.TotalRounds(len(pairs), cat.Params)
	if err != nil {
		return err
	}
	if round >= roundCap {
		return domain.SetCategoryState(ctx, tx, categoryID, domain.CategoryFinalized)
	}

	entries, err := domain.ListRankingEntries(ctx, tx.SQL(), categoryID, round)
	if err != nil {
		return err
	}
	standing := standingFromEntries(entries)

	allIDs := make([]int64, len(pairs))
	for i, p := range pairs {
		allIDs[i] = p.ID
	}
	played, byeHistory, err := swissHistory(ctx, tx.SQL(), categoryID, round, allIDs)
	if err != nil {
		return err
	}

	pairings, ok := pairRoundOrDeadlock(standing, played, byeHistory)
	if !ok {
		return domain.SetCategoryState(ctx, tx, categoryID, domain.CategoryFinalized)
	}
	nextRound := round + 1
	genStart := time.Now()
	err = materializeSwissRound(ctx, tx, categoryID, pairings, nextRound)
	metrics.GenerationSeconds.WithLabelValues(string(domain.MatchSystemSwissLadder)).Observe(time.Since(genStart).Seconds())
	if err != nil {
		return err
	}
	return closeRounds(ctx, tx, categoryID, nextRound, nextRound)
}

// standingFromEntries orders a round's ranking entries by rank,
// unranked entries last in their existing order.
func standingFromEntries(entries []*domain.RankingEntry) []int64 {
	ranked := make([]*domain.RankingEntry, len(entries))
	copy(ranked, entries)
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && rankOrMaxEntry(ranked[j]) < rankOrMaxEntry(ranked[j-1]); j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}
	out := make([]int64, len(ranked))
	for i, e := range ranked {
		out[i] = e.PairID
	}
	return out
}

func rankOrMaxEntry(e *domain.RankingEntry) int {
	if e.Rank == nil {
		return int(^uint(0) >> 1)
	}
	return *e.Rank
}

// completeGroupsThenKORound rebuilds each pool's own standings for a
// group-phase round. Once every pool has played out its round count,
// the category moves to WaitForIntermediateSeeding instead of
// generating more matches; the knock-out phase only starts once
// ApplyIntermediateSeeding supplies its seeding.
func completeGroupsThenKORound(ctx context.Context, tx *storagedb.Tx, categoryID int64, cat *domain.Category, pairs []*domain.PlayerPair, round int) error {
	cfg, err := strategy.ParseGroupConfig(cat.Params.GroupConfig)
	if err != nil {
		return err
	}
	groups, err := domain.ListMatchGroupsByRound(ctx, tx.SQL(), categoryID, round)
	if err != nil {
		return err
	}
	koRound := true
	for _, g := range groups {
		if g.GroupNum > 0 {
			koRound = false
		}
	}
	if koRound {
		if err := ranking.RebuildRound(ctx, tx, categoryID, round); err != nil {
			return err
		}
		deepest, err := domain.MaxRoundForCategory(ctx, tx.SQL(), categoryID)
		if err != nil {
			return err
		}
		if round >= deepest {
			return domain.SetCategoryState(ctx, tx, categoryID, domain.CategoryFinalized)
		}
		return nil
	}

	byPool := make(map[int][]int64)
	for _, p := range pairs {
		if p.GroupNum != nil {
			byPool[*p.GroupNum] = append(byPool[*p.GroupNum], p.ID)
		}
	}
	for poolNum, ids := range byPool {
		if err := ranking.RebuildGroupPhaseRound(ctx, tx, categoryID, round, poolNum, ids); err != nil {
			return err
		}
	}

	maxGroupRound := 0
	for _, blk := range cfg.Blocks {
		if r := pairing.TotalRounds(blk.GroupSize); r > maxGroupRound {
			maxGroupRound = r
		}
	}
	if round >= maxGroupRound {
		return domain.SetCategoryState(ctx, tx, categoryID, domain.CategoryWaitForIntermediateSeeding)
	}
	return nil
}
