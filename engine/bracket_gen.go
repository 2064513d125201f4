// Package engine materializes the match graph a category plays:
// bracket generation, round-robin group generation, staging, scoring
// and player swaps. Every exported function runs inside the caller's
// transaction and leaves no partial state behind on error.
package engine

import (
	"context"

	"github.com/shuttlecourt/tournament-engine/bracket"
	"github.com/shuttlecourt/tournament-engine/domain"
	"github.com/shuttlecourt/tournament-engine/errs"
	"github.com/shuttlecourt/tournament-engine/storagedb"
)

// BracketKind selects which bracket.Build* function generates a
// category's knock-out matches.
type BracketKind int

const (
	BracketSingleElim BracketKind = iota
	BracketRanking1
)

// GenerateBracketMatches builds the bracket graph for seeding (index i
// holds seed i+1's pair id) and materializes it under categoryID. A
// single-elim graph is the smallest doubling bracket covering
// len(seeding); a Ranking1 graph is the fixed 16- or 32-slot table.
func GenerateBracketMatches(ctx context.Context, tx *storagedb.Tx, categoryID int64, kind BracketKind, seeding []int64, firstRoundNum int) error {
	var g *bracket.Graph
	var err error
	switch kind {
	case BracketSingleElim:
		g, err = bracket.BuildSingleElim(len(seeding))
	case BracketRanking1:
		g, err = bracket.BuildRanking1(len(seeding))
	default:
		return errs.ErrInvalidMatchType
	}
	if err != nil {
		return err
	}
	return materializeGraph(ctx, tx, categoryID, g, seeding, firstRoundNum)
}

// GenerateKOBracketMatches builds the knock-out phase of a Groups-then-KO
// category once group play has produced a seeding: unlike GenerateBracketMatches,
// the table size is fixed by the chosen start level (targetSize) rather than
// derived from the survivor count, so a partially-filled table fast-forwards
// the missing seeds exactly like Ranking1 does.
func GenerateKOBracketMatches(ctx context.Context, tx *storagedb.Tx, categoryID int64, targetSize int, seeding []int64, firstRoundNum int) error {
	g, err := bracket.BuildFixed(targetSize, len(seeding))
	if err != nil {
		return err
	}
	return materializeGraph(ctx, tx, categoryID, g, seeding, firstRoundNum)
}

// materializeGraph creates one MatchGroup per bracket round plus a
// standalone third-place group, one Match per playable node, and wires
// every slot to either a resolved pair (from seeding) or a symbolic
// winner/loser reference. It also persists the bracket's visualisation
// model. firstRoundNum is the category's own round counter, not bracket
// depth.
func materializeGraph(ctx context.Context, tx *storagedb.Tx, categoryID int64, g *bracket.Graph, seeding []int64, firstRoundNum int) error {
	maxDepth := 0
	for _, n := range g.Matches {
		if n.Depth > maxDepth {
			maxDepth = n.Depth
		}
	}

	type groupKey struct{ round, tag int }
	groups := make(map[groupKey]int64, len(g.Matches))
	nodeMatch := make(map[int64]int64, len(g.Matches))

	for _, n := range g.Matches {
		round := firstRoundNum + (maxDepth - n.Depth)
		key := groupKey{round: round, tag: groupTagFor(n)}
		groupID, ok := groups[key]
		if !ok {
			group, err := domain.CreateMatchGroup(ctx, tx, categoryID, round, key.tag)
			if err != nil {
				return err
			}
			groupID = group.ID
			groups[key] = groupID
		}
		m, err := domain.CreateMatch(ctx, tx, groupID)
		if err != nil {
			return err
		}
		nodeMatch[n.ID] = m.ID
	}

	for _, n := range g.Matches {
		realID := nodeMatch[n.ID]
		slot1 := toSlot(n.Slot1, seeding, nodeMatch)
		slot2 := toSlot(n.Slot2, seeding, nodeMatch)
		if err := domain.UpdateMatchSlots(ctx, tx, realID, slot1, slot2); err != nil {
			return err
		}

		var winnerNext, loserNext *int64
		var winnerSlot, loserSlot, winnerRank, loserRank *int
		if n.WinnerNext != nil {
			id := nodeMatch[n.WinnerNext.ID]
			winnerNext = &id
			slot := n.WinnerSlot
			winnerSlot = &slot
		}
		if n.LoserNext != nil {
			id := nodeMatch[n.LoserNext.ID]
			loserNext = &id
			slot := n.LoserSlot
			loserSlot = &slot
		}
		if n.WinnerRank > 0 {
			r := n.WinnerRank
			winnerRank = &r
		}
		if n.LoserRank > 0 {
			r := n.LoserRank
			loserRank = &r
		}
		if err := domain.UpdateMatchSuccessors(ctx, tx, realID, winnerNext, loserNext, winnerSlot, loserSlot, winnerRank, loserRank); err != nil {
			return err
		}

		if n.AutoWalkover {
			if err := domain.RecordMatchScore(ctx, tx, realID, nil, true, slot1.PairID); err != nil {
				return err
			}
		}
	}

	vis := bracket.BuildVisModel(g, g.AllNodes)
	for _, row := range vis.Nodes {
		var matchID *int64
		if id, ok := nodeMatch[row.MatchID]; ok {
			matchID = &id
		}
		if err := domain.CreateBracketVisRow(ctx, tx, categoryID, matchID, row.NodeUID, row.Depth, row.X, row.Y, row.Label); err != nil {
			return err
		}
	}

	return nil
}

func groupTagFor(n *bracket.Node) int {
	switch {
	case n.ThirdPlace:
		return domain.GroupTagThirdPlace
	case n.Depth == 0:
		return domain.GroupTagFinal
	case n.Depth == 1:
		return domain.GroupTagSemifinal
	case n.Depth == 2:
		return domain.GroupTagQuarter
	case n.Depth == 3:
		return domain.GroupTagL16
	default:
		return domain.GroupTagIteration
	}
}

func toSlot(ref bracket.SlotRef, seeding []int64, nodeMatch map[int64]int64) domain.Slot {
	switch ref.Kind {
	case bracket.RefSeed:
		id := seeding[ref.Seed-1]
		return domain.Slot{PairID: &id}
	case bracket.RefNone:
		return domain.Slot{}
	}
	real := nodeMatch[ref.Node.ID]
	sym := real
	if ref.FromLoser {
		sym = -real
	}
	return domain.Slot{Sym: &sym}
}
