package strategy

import (
	"github.com/shuttlecourt/tournament-engine/domain"
	"github.com/shuttlecourt/tournament-engine/errs"
)

// Ranking1 is SingleElim's fixed 16/32-slot sibling: up to 32 pairs,
// table size fixed regardless of entrant count.
type Ranking1 struct{}

func (Ranking1) System() domain.MatchSystem { return domain.MatchSystemRanking1 }

func (Ranking1) CanFreeze(pairCount int, hasUnpaired bool, _ domain.CategoryParams) error {
	if hasUnpaired {
		return errs.ErrPlayerNotInCategory
	}
	if pairCount < 2 || pairCount > 32 {
		return errs.ErrInvalidPlayerCount
	}
	return nil
}

func (Ranking1) NeedsInitialRanking() bool      { return true }
func (Ranking1) NeedsGroupInitialization() bool { return false }

// TotalRounds is the placement table's own round count: 5 rounds for
// the 16-slot sheet, 7 for the 32-slot sheet. Both tables carry extra
// placement rounds past the doubling final (depth 0 alone pairs off
// four placement matches below the usual third-place game), so this
// is not log2(tableSize).
func (Ranking1) TotalRounds(pairCount int, _ domain.CategoryParams) (int, error) {
	if pairCount > 16 {
		return 7, nil
	}
	return 5, nil
}

// Comparator is nil: like SingleElim, a placement table has no running
// tally to sort by. Its order comes from the WinnerRank/LoserRank the
// table itself stamps onto every terminal match, read back directly by
// the elimination ranking rebuild.
func (Ranking1) Comparator() Comparator { return nil }
