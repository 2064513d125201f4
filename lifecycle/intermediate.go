package lifecycle

import (
	"context"
	"time"

	"github.com/shuttlecourt/tournament-engine/domain"
	"github.com/shuttlecourt/tournament-engine/engine"
	"github.com/shuttlecourt/tournament-engine/errs"
	"github.com/shuttlecourt/tournament-engine/metrics"
	"github.com/shuttlecourt/tournament-engine/storagedb"
	"github.com/shuttlecourt/tournament-engine/strategy"
)

// startLevelSize maps a GroupsThenKO start level to its knock-out
// table size: the number of slots the bracket is built fixed to,
// regardless of how many survivors actually fill it.
func startLevelSize(start strategy.StartLevel) int {
	switch start {
	case strategy.StartL16:
		return 16
	case strategy.StartQ:
		return 8
	case strategy.StartS:
		return 4
	default:
		return 0
	}
}

// ApplyIntermediateSeeding supplies the knock-out phase's entry order
// once a GroupsThenKO category's group phase has finished: seeding[i]
// is the pair entering table slot i+1. Requires
// WaitForIntermediateSeeding; transitions back to Playing once the
// bracket is built.
func ApplyIntermediateSeeding(ctx context.Context, tx *storagedb.Tx, categoryID int64, seeding []int64, start strategy.StartLevel) error {
	cat, err := domain.GetCategory(ctx, tx.SQL(), categoryID)
	if err != nil {
		return err
	}
	if cat.State != domain.CategoryWaitForIntermediateSeeding {
		return errs.ErrWrongState
	}
	size := startLevelSize(start)
	if size == 0 || len(seeding) > size {
		return errs.ErrInvalidKoConfig
	}

	groupRound, err := domain.MaxRoundForCategory(ctx, tx.SQL(), categoryID)
	if err != nil {
		return err
	}
	koFirstRound := groupRound + 1
	genStart := time.Now()
	genErr := engine.GenerateKOBracketMatches(ctx, tx, categoryID, size, seeding, koFirstRound)
	metrics.GenerationSeconds.WithLabelValues(string(domain.MatchSystemGroupsThenKO)).Observe(time.Since(genStart).Seconds())
	if genErr != nil {
		return genErr
	}
	deepest, err := domain.MaxRoundForCategory(ctx, tx.SQL(), categoryID)
	if err != nil {
		return err
	}
	if err := closeRounds(ctx, tx, categoryID, koFirstRound, deepest); err != nil {
		return err
	}
	return domain.SetCategoryState(ctx, tx, categoryID, domain.CategoryPlaying)
}
