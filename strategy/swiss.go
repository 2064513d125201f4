package strategy

import (
	"github.com/shuttlecourt/tournament-engine/domain"
	"github.com/shuttlecourt/tournament-engine/errs"
)

// SwissLadder re-pairs every round from the current standings; the same
// freeze precondition as RoundRobin, but round count is a maximum that
// Swiss deadlock may shorten.
type SwissLadder struct{}

func (SwissLadder) System() domain.MatchSystem { return domain.MatchSystemSwissLadder }

func (SwissLadder) CanFreeze(pairCount int, hasUnpaired bool, _ domain.CategoryParams) error {
	if hasUnpaired {
		return errs.ErrPlayerNotInCategory
	}
	if pairCount < 3 {
		return errs.ErrInvalidPlayerCount
	}
	return nil
}

func (SwissLadder) NeedsInitialRanking() bool      { return true }
func (SwissLadder) NeedsGroupInitialization() bool { return false }

// TotalRounds is the maximum a Swiss event of pairCount entrants can
// run for absent a deadlock; the lifecycle controller shortens it in
// place if PairRound hits one.
func (SwissLadder) TotalRounds(pairCount int, _ domain.CategoryParams) (int, error) {
	if pairCount%2 == 0 {
		return pairCount - 1, nil
	}
	return pairCount, nil
}

func (SwissLadder) Comparator() Comparator { return standardComparator }

// PairRound walks standings top-to-bottom pairing the highest unpaired
// entrant with the next unpaired entrant it has not already played,
// backtracking on dead ends. played maps an index to the set of
// opponent indices it has already faced. byeHistory marks indices that
// have already sat out once, so byes rotate before repeating. Returns
// nil if no valid full pairing exists (deadlock) — the caller then
// shortens TotalRounds to the current round.
func PairRound(standing []int, played map[int]map[int]bool, byeHistory map[int]bool) [][2]int {
	if len(standing)%2 == 0 {
		pairs, _, ok := pairRound(standing, played, nil)
		if !ok {
			return nil
		}
		return pairs
	}

	// odd field: try giving the bye to the lowest-ranked entrant who has
	// not had one yet, falling back up the standings, then repeating
	// with a willingness to re-bye only if every other seat already has.
	for _, allowRepeat := range []bool{false, true} {
		for i := len(standing) - 1; i >= 0; i-- {
			candidate := standing[i]
			if !allowRepeat && byeHistory[candidate] {
				continue
			}
			rest := make([]int, 0, len(standing)-1)
			rest = append(rest, standing[:i]...)
			rest = append(rest, standing[i+1:]...)
			pairs, _, ok := pairRound(rest, played, nil)
			if ok {
				return append(pairs, [2]int{candidate, -1})
			}
		}
	}
	return nil
}

func pairRound(remaining []int, played map[int]map[int]bool, acc [][2]int) ([][2]int, int, bool) {
	if len(remaining) == 0 {
		return acc, -1, true
	}
	if len(remaining) == 1 {
		return acc, remaining[0], true
	}

	first := remaining[0]
	rest := remaining[1:]
	for i, candidate := range rest {
		if played[first] != nil && played[first][candidate] {
			continue
		}
		next := make([]int, 0, len(rest)-1)
		next = append(next, rest[:i]...)
		next = append(next, rest[i+1:]...)
		result, bye, ok := pairRound(next, played, append(acc, [2]int{first, candidate}))
		if ok {
			return result, bye, true
		}
	}
	return nil, -1, false
}
