package strategy

import (
	"github.com/shuttlecourt/tournament-engine/domain"
	"github.com/shuttlecourt/tournament-engine/errs"
	"github.com/shuttlecourt/tournament-engine/pairing"
)

// RoundRobin plays every pairing once per iteration; canFreeze needs at
// least three pairs with nobody left unpaired.
type RoundRobin struct{}

func (RoundRobin) System() domain.MatchSystem { return domain.MatchSystemRoundRobin }

func (RoundRobin) CanFreeze(pairCount int, hasUnpaired bool, _ domain.CategoryParams) error {
	if hasUnpaired {
		return errs.ErrPlayerNotInCategory
	}
	if pairCount < 3 {
		return errs.ErrInvalidPlayerCount
	}
	return nil
}

func (RoundRobin) NeedsInitialRanking() bool     { return false }
func (RoundRobin) NeedsGroupInitialization() bool { return false }

func (RoundRobin) TotalRounds(pairCount int, params domain.CategoryParams) (int, error) {
	iterations := params.RoundRobinIterations
	if iterations < 1 {
		iterations = 1
	}
	return iterations * pairing.TotalRounds(pairCount), nil
}

func (RoundRobin) Comparator() Comparator { return standardComparator }
