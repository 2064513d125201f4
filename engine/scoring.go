package engine

import (
	"context"

	"github.com/shuttlecourt/tournament-engine/domain"
	"github.com/shuttlecourt/tournament-engine/errs"
	"github.com/shuttlecourt/tournament-engine/storagedb"
)

// SetMatchScore validates score against the category's game-count rule,
// finishes the match, and propagates the winner/loser pair to every
// match still holding a symbolic reference to it. If allowFlip is
// false and the edit would change an already-finished match's winner,
// it fails without mutating anything.
func SetMatchScore(ctx context.Context, tx *storagedb.Tx, matchID int64, score []domain.GameScore, isWalkover bool, walkoverWinner *int64, allowFlip bool) error {
	m, err := domain.GetMatch(ctx, tx.SQL(), matchID)
	if err != nil {
		return err
	}
	if m.State != domain.MatchBusy && m.State != domain.MatchFinished {
		return errs.ErrWrongState
	}
	if !m.Pair1.Resolved() || !m.Pair2.Resolved() {
		return errs.ErrWrongState
	}
	group, err := domain.GetMatchGroup(ctx, tx.SQL(), m.GroupID)
	if err != nil {
		return err
	}
	cat, err := domain.GetCategory(ctx, tx.SQL(), group.CategoryID)
	if err != nil {
		return err
	}

	var winnerPairID, loserPairID int64
	if isWalkover {
		if walkoverWinner == nil {
			return errs.ErrInvalidScore
		}
		winnerPairID = *walkoverWinner
		loserPairID = otherPair(m, winnerPairID)
	} else {
		win, err := scoredWinner(score, cat.Params)
		if err != nil {
			return err
		}
		if win {
			winnerPairID, loserPairID = *m.Pair1.PairID, *m.Pair2.PairID
		} else {
			winnerPairID, loserPairID = *m.Pair2.PairID, *m.Pair1.PairID
		}
	}

	if m.State == domain.MatchFinished {
		prevWinner, prevLoser, err := previousResult(m, cat.Params)
		if err != nil {
			return err
		}
		flips := prevWinner != winnerPairID || prevLoser != loserPairID
		if flips && !allowFlip {
			return errs.ErrScoreFlipRejected
		}
		if flips {
			started, err := successorsPastReady(ctx, tx, matchID)
			if err != nil {
				return err
			}
			if started {
				return errs.ErrWrongState
			}
		}
	}

	if err := domain.RecordMatchScore(ctx, tx, matchID, score, isWalkover, walkoverWinner); err != nil {
		return err
	}
	if m.State == domain.MatchBusy {
		if err := setMatchPlayersState(ctx, tx, m, domain.PlayerIdle); err != nil {
			return err
		}
	}
	if err := recomputeGroupState(ctx, tx, m.GroupID); err != nil {
		return err
	}
	return propagateResult(ctx, tx, matchID, winnerPairID, loserPairID)
}

func otherPair(m *domain.Match, pairID int64) int64 {
	if m.Pair1.PairID != nil && *m.Pair1.PairID == pairID {
		return *m.Pair2.PairID
	}
	return *m.Pair1.PairID
}

// scoredWinner reports whether pair1 won, validating the game count
// against the category's scoring rule: 2*winScore-1 games when draws
// are disallowed, 2*(winScore-1) when they are allowed.
func scoredWinner(score []domain.GameScore, params domain.CategoryParams) (bool, error) {
	maxGames := 2*params.WinScore - 1
	if params.AllowDraw {
		maxGames = 2 * (params.WinScore - 1)
	}
	if len(score) == 0 || len(score) > maxGames {
		return false, errs.ErrInvalidScore
	}
	return gameMajority(score, params.AllowDraw)
}

// gameMajority tallies games won per side with no length bound; a tied
// tally is an error unless draws are allowed, in which case it reports
// pair1 did not win without distinguishing "draw" from "pair2 won" —
// callers that need the draw itself read the raw score instead.
func gameMajority(score []domain.GameScore, allowDraw bool) (bool, error) {
	gamesP1, gamesP2 := 0, 0
	for _, g := range score {
		switch {
		case g.P1 == g.P2:
			if !allowDraw {
				return false, errs.ErrInvalidScore
			}
		case g.P1 > g.P2:
			gamesP1++
		default:
			gamesP2++
		}
	}
	if gamesP1 == gamesP2 && !allowDraw {
		return false, errs.ErrInvalidScore
	}
	return gamesP1 > gamesP2, nil
}

// previousResult re-derives the winner/loser of an already-finished
// match from its stored score, for the allowFlip comparison.
func previousResult(m *domain.Match, params domain.CategoryParams) (winner, loser int64, err error) {
	if m.IsWalkover {
		if m.WalkoverWinner == nil {
			return 0, 0, errs.ErrInvalidScore
		}
		return *m.WalkoverWinner, otherPair(m, *m.WalkoverWinner), nil
	}
	win, err := gameMajority(m.Score, params.AllowDraw)
	if err != nil {
		return 0, 0, err
	}
	if win {
		return *m.Pair1.PairID, *m.Pair2.PairID, nil
	}
	return *m.Pair2.PairID, *m.Pair1.PairID, nil
}

// propagateResult resolves every match still holding a symbolic
// reference to matchID into the just-decided pair, possibly unblocking
// it from Incomplete into Waiting.
func propagateResult(ctx context.Context, tx *storagedb.Tx, matchID, winnerPairID, loserPairID int64) error {
	successors, err := domain.FindMatchesBySymRef(ctx, tx.SQL(), matchID)
	if err != nil {
		return err
	}
	for _, succ := range successors {
		p1 := resolveSlot(succ.Pair1, matchID, winnerPairID, loserPairID)
		p2 := resolveSlot(succ.Pair2, matchID, winnerPairID, loserPairID)
		if err := domain.UpdateMatchSlots(ctx, tx, succ.ID, p1, p2); err != nil {
			return err
		}
	}
	return nil
}

// successorsPastReady reports whether any match still holding a
// symbolic reference to matchID has progressed past Ready: a flip that
// changes matchID's winner must be rejected once a successor has
// started, since the pair it already resolved into may no longer be
// correct once the flip propagates.
func successorsPastReady(ctx context.Context, tx *storagedb.Tx, matchID int64) (bool, error) {
	successors, err := domain.FindMatchesBySymRef(ctx, tx.SQL(), matchID)
	if err != nil {
		return false, err
	}
	for _, s := range successors {
		switch s.State {
		case domain.MatchBusy, domain.MatchFinished, domain.MatchPostponed:
			return true, nil
		}
	}
	return false, nil
}

func resolveSlot(s domain.Slot, matchID, winnerPairID, loserPairID int64) domain.Slot {
	if s.Sym == nil {
		return s
	}
	switch *s.Sym {
	case matchID:
		return domain.Slot{PairID: &winnerPairID, Sym: s.Sym}
	case -matchID:
		return domain.Slot{PairID: &loserPairID, Sym: s.Sym}
	default:
		return s
	}
}
