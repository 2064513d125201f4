package lifecycle

import (
	"context"
	"sort"
	"time"

	"github.com/shuttlecourt/tournament-engine/domain"
	"github.com/shuttlecourt/tournament-engine/engine"
	"github.com/shuttlecourt/tournament-engine/errs"
	"github.com/shuttlecourt/tournament-engine/metrics"
	"github.com/shuttlecourt/tournament-engine/pairing"
	"github.com/shuttlecourt/tournament-engine/storagedb"
	"github.com/shuttlecourt/tournament-engine/strategy"
)

// StartFirstRound materializes round 1 (the whole event, for systems
// that generate everything up-front) and transitions Idle -> Playing.
// A category whose match system needs neither a seeding nor a group
// assignment has no step that moves it to Idle, so it starts straight
// from Frozen.
func StartFirstRound(ctx context.Context, tx *storagedb.Tx, categoryID int64) error {
	cat, err := domain.GetCategory(ctx, tx.SQL(), categoryID)
	if err != nil {
		return err
	}
	switch cat.State {
	case domain.CategoryIdle:
	case domain.CategoryFrozen:
		strat, err := strategy.For(cat.MatchSystem)
		if err != nil {
			return err
		}
		if strat.NeedsInitialRanking() || strat.NeedsGroupInitialization() {
			return errs.ErrWrongState
		}
	default:
		return errs.ErrWrongState
	}
	pairs, err := domain.ListPairsByCategory(ctx, tx.SQL(), categoryID)
	if err != nil {
		return err
	}

	start := time.Now()
	defer func() {
		metrics.GenerationSeconds.WithLabelValues(string(cat.MatchSystem)).Observe(time.Since(start).Seconds())
	}()

	switch cat.MatchSystem {
	case domain.MatchSystemRoundRobin:
		ids := pairIDsBySeq(pairs)
		if err := engine.GenerateGroupMatches(ctx, tx, categoryID, ids, 1, 1); err != nil {
			return err
		}
		total, err := strategy.RoundRobin{}.TotalRounds(len(pairs), cat.Params)
		if err != nil {
			return err
		}
		if err := closeRounds(ctx, tx, categoryID, 1, total); err != nil {
			return err
		}

	case domain.MatchSystemSwissLadder:
		ids := pairIDsByInitialRank(pairs)
		pairings, ok := pairRoundOrDeadlock(ids, nil, nil)
		if !ok {
			return errs.ErrInvalidPlayerCount
		}
		if err := materializeSwissRound(ctx, tx, categoryID, pairings, 1); err != nil {
			return err
		}
		if err := closeRounds(ctx, tx, categoryID, 1, 1); err != nil {
			return err
		}

	case domain.MatchSystemSingleElim:
		ids := pairIDsByInitialRank(pairs)
		if err := engine.GenerateBracketMatches(ctx, tx, categoryID, engine.BracketSingleElim, ids, 1); err != nil {
			return err
		}
		if err := closeAllGroups(ctx, tx, categoryID); err != nil {
			return err
		}

	case domain.MatchSystemRanking1:
		ids := pairIDsByInitialRank(pairs)
		if err := engine.GenerateBracketMatches(ctx, tx, categoryID, engine.BracketRanking1, ids, 1); err != nil {
			return err
		}
		if err := closeAllGroups(ctx, tx, categoryID); err != nil {
			return err
		}

	case domain.MatchSystemGroupsThenKO:
		if err := startGroupsPhase(ctx, tx, categoryID, cat, pairs); err != nil {
			return err
		}

	default:
		return errs.ErrInvalidMatchType
	}

	return domain.SetCategoryState(ctx, tx, categoryID, domain.CategoryPlaying)
}

// startGroupsPhase emits every round-robin pool's matches from the
// group assignment an earlier ApplyGroupAssignment recorded on each
// pair, then closes every round the longest pool needs.
func startGroupsPhase(ctx context.Context, tx *storagedb.Tx, categoryID int64, cat *domain.Category, pairs []*domain.PlayerPair) error {
	cfg, err := strategy.ParseGroupConfig(cat.Params.GroupConfig)
	if err != nil {
		return err
	}
	byPool := make(map[int][]int64)
	for _, p := range pairs {
		if p.GroupNum == nil {
			return errs.ErrInvalidKoConfig
		}
		byPool[*p.GroupNum] = append(byPool[*p.GroupNum], p.ID)
	}
	for poolNum := range byPool {
		if err := engine.GenerateGroupMatches(ctx, tx, categoryID, byPool[poolNum], poolNum, 1); err != nil {
			return err
		}
	}
	maxRound := 0
	for _, blk := range cfg.Blocks {
		if r := pairing.TotalRounds(blk.GroupSize); r > maxRound {
			maxRound = r
		}
	}
	return closeRounds(ctx, tx, categoryID, 1, maxRound)
}

// pairIDsBySeq orders pairs by registration order, the default seeding
// when a strategy does not need an external initial ranking.
func pairIDsBySeq(pairs []*domain.PlayerPair) []int64 {
	ids := make([]int64, len(pairs))
	for i, p := range pairs {
		ids[i] = p.ID
	}
	return ids
}

// pairIDsByInitialRank orders pairs by the InitialRank an earlier
// ApplySeeding call assigned.
func pairIDsByInitialRank(pairs []*domain.PlayerPair) []int64 {
	ordered := make([]*domain.PlayerPair, len(pairs))
	copy(ordered, pairs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return rankOrMax(ordered[i]) < rankOrMax(ordered[j])
	})
	ids := make([]int64, len(ordered))
	for i, p := range ordered {
		ids[i] = p.ID
	}
	return ids
}

func rankOrMax(p *domain.PlayerPair) int {
	if p.InitialRank == nil {
		return int(^uint(0) >> 1)
	}
	return *p.InitialRank
}

// closeRounds freezes and closes every group of categoryID across
// rounds fromRound..throughRound inclusive.
func closeRounds(ctx context.Context, tx *storagedb.Tx, categoryID int64, fromRound, throughRound int) error {
	for r := fromRound; r <= throughRound; r++ {
		if err := closeGroups(ctx, tx, categoryID, r); err != nil {
			return err
		}
	}
	return nil
}

// closeAllGroups closes every group a full bracket generation created,
// spanning round 1 through the deepest round present.
func closeAllGroups(ctx context.Context, tx *storagedb.Tx, categoryID int64) error {
	deepest, err := domain.MaxRoundForCategory(ctx, tx.SQL(), categoryID)
	if err != nil {
		return err
	}
	return closeRounds(ctx, tx, categoryID, 1, deepest)
}
