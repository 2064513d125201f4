// Package strategy answers the six per-match-system policy questions:
// freeze preconditions, seeding/grouping needs, round count, and the
// ranking comparator. Match and group generation themselves live in
// engine, which consults a Strategy before acting so the two packages
// do not need to import each other.
package strategy

import (
	"github.com/shuttlecourt/tournament-engine/domain"
	"github.com/shuttlecourt/tournament-engine/errs"
)

// Stats is the running tally a ranking comparator sorts on.
type Stats struct {
	Wins, Draws, Losses int
	GamesWon, GamesLost int
	PointsWon, PointsLost int
}

// Comparator reports whether a should rank ahead of b. nil for
// elimination systems, whose order comes from the bracket's final
// ranks instead of a running tally.
type Comparator func(a, b Stats) bool

// Strategy is implemented once per domain.MatchSystem value.
type Strategy interface {
	System() domain.MatchSystem
	CanFreeze(pairCount int, hasUnpaired bool, params domain.CategoryParams) error
	NeedsInitialRanking() bool
	NeedsGroupInitialization() bool
	TotalRounds(pairCount int, params domain.CategoryParams) (int, error)
	Comparator() Comparator
}

// For resolves the concrete Strategy for a match system, rejecting
// Random (declared in the enum, no generator behind it).
func For(system domain.MatchSystem) (Strategy, error) {
	switch system {
	case domain.MatchSystemRoundRobin:
		return RoundRobin{}, nil
	case domain.MatchSystemSwissLadder:
		return SwissLadder{}, nil
	case domain.MatchSystemSingleElim:
		return SingleElim{}, nil
	case domain.MatchSystemRanking1:
		return Ranking1{}, nil
	case domain.MatchSystemGroupsThenKO:
		return GroupsThenKO{}, nil
	default:
		return nil, errs.ErrInvalidMatchType
	}
}

// standardComparator is the lexicographic (wins desc, game-delta desc,
// point-delta desc) order shared by RoundRobin and SwissLadder.
func standardComparator(a, b Stats) bool {
	if a.Wins != b.Wins {
		return a.Wins > b.Wins
	}
	aGD := a.GamesWon - a.GamesLost
	bGD := b.GamesWon - b.GamesLost
	if aGD != bGD {
		return aGD > bGD
	}
	aPD := a.PointsWon - a.PointsLost
	bPD := b.PointsWon - b.PointsLost
	return aPD > bPD
}
