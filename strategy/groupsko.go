package strategy

import (
	"github.com/shuttlecourt/tournament-engine/domain"
	"github.com/shuttlecourt/tournament-engine/errs"
	"github.com/shuttlecourt/tournament-engine/pairing"
)

// GroupsThenKO runs a round-robin group phase, then hands the survivors
// to a knock-out phase once an external seeding for that phase is
// supplied (the category sits in WaitForIntermediateSeeding meanwhile).
type GroupsThenKO struct{}

func (GroupsThenKO) System() domain.MatchSystem { return domain.MatchSystemGroupsThenKO }

func (GroupsThenKO) CanFreeze(pairCount int, hasUnpaired bool, params domain.CategoryParams) error {
	if hasUnpaired {
		return errs.ErrPlayerNotInCategory
	}
	cfg, err := ParseGroupConfig(params.GroupConfig)
	if err != nil {
		return err
	}
	if len(cfg.Blocks) == 0 {
		return errs.ErrInvalidKoConfig
	}
	if cfg.TotalPairs() != pairCount {
		return errs.ErrInvalidKoConfig
	}
	return nil
}

func (GroupsThenKO) NeedsInitialRanking() bool      { return false }
func (GroupsThenKO) NeedsGroupInitialization() bool { return true }

// TotalRounds is the group phase's round count alone; the knock-out
// phase's round count is only known once its seeding is supplied and is
// tracked separately by the lifecycle controller.
func (GroupsThenKO) TotalRounds(pairCount int, params domain.CategoryParams) (int, error) {
	cfg, err := ParseGroupConfig(params.GroupConfig)
	if err != nil {
		return 0, err
	}
	if len(cfg.Blocks) == 0 {
		return 0, errs.ErrInvalidKoConfig
	}
	max := 0
	for _, blk := range cfg.Blocks {
		if r := pairing.TotalRounds(blk.GroupSize); r > max {
			max = r
		}
	}
	return max, nil
}

func (GroupsThenKO) Comparator() Comparator { return standardComparator }

// KORoundsFor returns how many knock-out rounds a start level implies.
func KORoundsFor(start StartLevel) int {
	switch start {
	case StartL16:
		return 4
	case StartQ:
		return 3
	case StartS:
		return 2
	default:
		return 0
	}
}
