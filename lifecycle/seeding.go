package lifecycle

import (
	"context"

	"github.com/shuttlecourt/tournament-engine/domain"
	"github.com/shuttlecourt/tournament-engine/errs"
	"github.com/shuttlecourt/tournament-engine/storagedb"
	"github.com/shuttlecourt/tournament-engine/strategy"
)

// ApplySeeding records an external initial ranking (index i holds the
// pair that ranks i+1) and transitions Frozen -> Idle. Only legal for
// strategies whose NeedsInitialRanking is true.
func ApplySeeding(ctx context.Context, tx *storagedb.Tx, categoryID int64, seeding []int64) error {
	cat, err := domain.GetCategory(ctx, tx.SQL(), categoryID)
	if err != nil {
		return err
	}
	if cat.State != domain.CategoryFrozen {
		return errs.ErrCategoryNotYetFrozen
	}
	strat, err := strategy.For(cat.MatchSystem)
	if err != nil {
		return err
	}
	if !strat.NeedsInitialRanking() {
		return errs.ErrCategoryNeedsNoSeeding
	}
	pairs, err := domain.ListPairsByCategory(ctx, tx.SQL(), categoryID)
	if err != nil {
		return err
	}
	if err := validatePairSet(pairs, seeding); err != nil {
		return err
	}
	for i, pairID := range seeding {
		rank := i + 1
		if err := domain.SetPairGroupAndRank(ctx, tx, pairID, nil, &rank); err != nil {
			return err
		}
	}
	return domain.SetCategoryState(ctx, tx, categoryID, domain.CategoryIdle)
}

// ApplyGroupAssignment records an external assignment of pairs into
// round-robin pools (groups[i] is the ordered set of pairs in pool
// i+1) and transitions Frozen -> Idle. Only legal for strategies whose
// NeedsGroupInitialization is true; pool sizes must match the
// category's parsed GroupConfig exactly.
func ApplyGroupAssignment(ctx context.Context, tx *storagedb.Tx, categoryID int64, groups [][]int64) error {
	cat, err := domain.GetCategory(ctx, tx.SQL(), categoryID)
	if err != nil {
		return err
	}
	if cat.State != domain.CategoryFrozen {
		return errs.ErrCategoryNotYetFrozen
	}
	strat, err := strategy.For(cat.MatchSystem)
	if err != nil {
		return err
	}
	if !strat.NeedsGroupInitialization() {
		return errs.ErrCategoryNeedsNoGroupAssignments
	}
	cfg, err := strategy.ParseGroupConfig(cat.Params.GroupConfig)
	if err != nil {
		return err
	}
	sizes := cfg.PoolSizes()
	if len(groups) != len(sizes) {
		return errs.ErrInvalidKoConfig
	}
	var all []int64
	for i, pool := range groups {
		if len(pool) != sizes[i] {
			return errs.ErrInvalidKoConfig
		}
		all = append(all, pool...)
	}
	pairs, err := domain.ListPairsByCategory(ctx, tx.SQL(), categoryID)
	if err != nil {
		return err
	}
	if err := validatePairSet(pairs, all); err != nil {
		return err
	}
	for i, pool := range groups {
		poolNum := i + 1
		for _, pairID := range pool {
			if err := domain.SetPairGroupAndRank(ctx, tx, pairID, &poolNum, nil); err != nil {
				return err
			}
		}
	}
	return domain.SetCategoryState(ctx, tx, categoryID, domain.CategoryIdle)
}

// validatePairSet reports an error unless ids is exactly a permutation
// of pairs' ids (every registered pair named once, no strangers).
func validatePairSet(pairs []*domain.PlayerPair, ids []int64) error {
	if len(ids) != len(pairs) {
		return errs.ErrInvalidReconfig
	}
	known := make(map[int64]bool, len(pairs))
	for _, p := range pairs {
		known[p.ID] = true
	}
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if !known[id] || seen[id] {
			return errs.ErrInvalidReconfig
		}
		seen[id] = true
	}
	return nil
}
