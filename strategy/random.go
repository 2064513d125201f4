package strategy

import (
	"github.com/shuttlecourt/tournament-engine/domain"
	"github.com/shuttlecourt/tournament-engine/errs"
)

// Random is declared in domain.MatchSystem but has no generator behind
// it; CanFreeze always refuses.
type Random struct{}

func (Random) System() domain.MatchSystem { return domain.MatchSystemRandom }

func (Random) CanFreeze(int, bool, domain.CategoryParams) error {
	return errs.ErrInvalidMatchType
}

func (Random) NeedsInitialRanking() bool      { return false }
func (Random) NeedsGroupInitialization() bool { return false }

func (Random) TotalRounds(int, domain.CategoryParams) (int, error) {
	return 0, errs.ErrInvalidMatchType
}

func (Random) Comparator() Comparator { return nil }
