package strategy

import (
	"github.com/shuttlecourt/tournament-engine/domain"
	"github.com/shuttlecourt/tournament-engine/errs"
)

// SingleElim needs an initial seeding and builds its whole bracket
// up-front; ranking order comes from the bracket, not a comparator.
type SingleElim struct{}

func (SingleElim) System() domain.MatchSystem { return domain.MatchSystemSingleElim }

func (SingleElim) CanFreeze(pairCount int, hasUnpaired bool, _ domain.CategoryParams) error {
	if hasUnpaired {
		return errs.ErrPlayerNotInCategory
	}
	if pairCount < 2 {
		return errs.ErrInvalidPlayerCount
	}
	return nil
}

func (SingleElim) NeedsInitialRanking() bool      { return true }
func (SingleElim) NeedsGroupInitialization() bool { return false }

func (SingleElim) TotalRounds(pairCount int, _ domain.CategoryParams) (int, error) {
	rounds := 0
	n := 1
	for n < pairCount {
		n *= 2
		rounds++
	}
	return rounds, nil
}

func (SingleElim) Comparator() Comparator { return nil }
