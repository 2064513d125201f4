package lifecycle

import (
	"context"

	"github.com/shuttlecourt/tournament-engine/domain"
	"github.com/shuttlecourt/tournament-engine/errs"
	"github.com/shuttlecourt/tournament-engine/storagedb"
	"github.com/shuttlecourt/tournament-engine/strategy"
)

// Freeze validates a category's pairs against its strategy's freeze
// preconditions and transitions Config -> Frozen. No pair/player edits
// are accepted once frozen.
func Freeze(ctx context.Context, tx *storagedb.Tx, categoryID int64) error {
	cat, err := domain.GetCategory(ctx, tx.SQL(), categoryID)
	if err != nil {
		return err
	}
	if cat.State != domain.CategoryConfig {
		return errs.ErrCategoryNotConfigurable
	}
	strat, err := strategy.For(cat.MatchSystem)
	if err != nil {
		return err
	}
	pairs, err := domain.ListPairsByCategory(ctx, tx.SQL(), categoryID)
	if err != nil {
		return err
	}
	hasUnpaired, err := domain.HasUnpairedPlayers(ctx, tx.SQL(), categoryID)
	if err != nil {
		return err
	}
	if err := strat.CanFreeze(len(pairs), hasUnpaired, cat.Params); err != nil {
		return err
	}
	return domain.SetCategoryState(ctx, tx, categoryID, domain.CategoryFrozen)
}
