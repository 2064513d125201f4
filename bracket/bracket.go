// Package bracket builds elimination bracket graphs: single elimination
// with a third-place match (right-to-left doubling construction plus a
// frontier pruning pass), and the fixed-size Ranking1 placement table
// (16 or 32 slots, hard-coded in ranking1.go) that gives every entrant
// a unique final rank instead of just the top four.
package bracket

import (
	"sort"

	"github.com/shuttlecourt/tournament-engine/errs"
)

// RefKind tags whether a match slot is fed by a literal seed number, by
// the winner/loser of another node once that node is played, or by no
// one at all (RefNone: the table never produced an opponent for this
// slot, and the holder of the other slot claims its placement as a
// recorded walkover instead of a contested match).
type RefKind int

const (
	RefSeed RefKind = iota
	RefMatch
	RefNone
)

// SlotRef is one input slot of a Node.
type SlotRef struct {
	Kind      RefKind
	Seed      int   // valid when Kind == RefSeed
	Node      *Node // valid when Kind == RefMatch
	FromLoser bool  // when Kind == RefMatch: fed by Node's loser, not its winner
}

// Node is one bracket match, pre-assignment of a real Match id. Depth 0
// is the final; depth increases toward the first round. FastForward
// nodes are not played: their sole valid seed is promoted directly into
// the slot that consumes them, and the node itself never appears in
// Graph.Matches.
type Node struct {
	ID          int64 // stable within-graph id, used for winner/loser symbolic refs once numbered
	Depth       int
	ThirdPlace  bool
	Slot1       SlotRef
	Slot2       SlotRef
	WinnerNext  *Node // nil for the final
	WinnerSlot  int   // 1 or 2, which slot of WinnerNext the winner feeds
	LoserNext   *Node // semifinals feeding the third-place match; in Ranking1, every match whose loser plays on
	LoserSlot   int
	WinnerRank   int // final rank awarded to the winner; 0 if none
	LoserRank    int // final rank awarded to the loser; 0 if none
	FastForward  bool
	PromotedSeed int // valid when FastForward and the survivor is a literal seed
	AutoWalkover bool // Ranking1 only: a recorded walkover with no real opponent, not a bye

	survivor SlotRef // valid when FastForward: what a consumer slot resolves to
}

// Graph is a built, pruned bracket: Matches holds every node that must
// actually be played, in match-number order (Graph.Matches[i].ID == i+1).
type Graph struct {
	Matches  []*Node
	Final    *Node
	Third    *Node // nil when no third-place match was generated
	AllNodes []*Node // every constructed node, including pruned fast-forwards; feeds BuildVisModel
}

// BuildSingleElim builds a minimally-sized single-elimination bracket
// for actualPlayers real entrants: the final (rank 1/2), a third-place
// match when actualPlayers > 3 (rank 3/4), and as many doubling rounds
// as needed to reach actualPlayers, each one split seed s -> (s, n+1-s).
func BuildSingleElim(actualPlayers int) (*Graph, error) {
	if actualPlayers < 2 {
		return nil, errs.ErrInvalidPlayerCount
	}
	return build(actualPlayers, actualPlayers)
}

// BuildFixed builds a bracket sized to an explicit table size (used by
// Groups-then-KO's knock-out phase, whose entry size is fixed by the
// chosen start level rather than derived from the survivor count).
func BuildFixed(targetN, actualPlayers int) (*Graph, error) {
	if actualPlayers < 2 || actualPlayers > targetN {
		return nil, errs.ErrInvalidPlayerCount
	}
	return build(targetN, actualPlayers)
}

func build(targetN, actualPlayers int) (*Graph, error) {
	final := &Node{Depth: 0, WinnerRank: 1, LoserRank: 2}
	final.Slot1 = SlotRef{Kind: RefSeed, Seed: 1}
	final.Slot2 = SlotRef{Kind: RefSeed, Seed: 2}

	var third *Node
	if actualPlayers > 3 {
		third = &Node{Depth: 0, ThirdPlace: true, WinnerRank: 3, LoserRank: 4}
		third.Slot1 = SlotRef{Kind: RefSeed, Seed: 3}
		third.Slot2 = SlotRef{Kind: RefSeed, Seed: 4}
	}

	all := []*Node{final}
	if third != nil {
		all = append(all, third)
	}

	frontier := []*Node{final}
	n := 2
	for n < targetN {
		newN := n * 2
		next := make([]*Node, 0, len(frontier)*2)
		for _, parent := range frontier {
			c1 := splitChild(parent, 1, newN)
			c2 := splitChild(parent, 2, newN)
			if parent == final && third != nil {
				c1.LoserNext, c1.LoserSlot = third, 1
				c2.LoserNext, c2.LoserSlot = third, 2
				third.Slot1 = SlotRef{Kind: RefMatch, Node: c1, FromLoser: true}
				third.Slot2 = SlotRef{Kind: RefMatch, Node: c2, FromLoser: true}
			}
			next = append(next, c1, c2)
		}
		all = append(all, next...)
		frontier = next
		n = newN
	}

	prune(frontier, actualPlayers)

	playable := make([]*Node, 0, len(all))
	for _, node := range all {
		if node.FastForward {
			continue
		}
		playable = append(playable, node)
	}

	sortMatchOrder(playable)
	for i, node := range playable {
		node.ID = int64(i + 1)
	}

	return &Graph{Matches: playable, Final: final, Third: third, AllNodes: all}, nil
}

// splitChild creates the slotIndex-th child of parent at the next
// doubled level: seed s -> (s, newN+1-s), feeding parent's slotIndex.
func splitChild(parent *Node, slotIndex, newN int) *Node {
	var seed int
	if slotIndex == 1 {
		seed = parent.Slot1.Seed
	} else {
		seed = parent.Slot2.Seed
	}
	child := &Node{
		Depth:      parent.Depth + 1,
		WinnerNext: parent,
		WinnerSlot: slotIndex,
	}
	child.Slot1 = SlotRef{Kind: RefSeed, Seed: seed}
	child.Slot2 = SlotRef{Kind: RefSeed, Seed: newN + 1 - seed}

	if slotIndex == 1 {
		parent.Slot1 = SlotRef{Kind: RefMatch, Node: child}
	} else {
		parent.Slot2 = SlotRef{Kind: RefMatch, Node: child}
	}
	return child
}

// prune resolves the deepest frontier against the real entrant count:
// a node with both seeds beyond actualPlayers has no valid occupant (an
// impossible case given standard doubling seeding, guarded defensively);
// a node with exactly one valid seed is a fast-forward, promoted
// straight into whatever slot consumed it; a node with both seeds valid
// is played normally.
func prune(frontier []*Node, actualPlayers int) {
	for _, node := range frontier {
		v1 := node.Slot1.Seed <= actualPlayers
		v2 := node.Slot2.Seed <= actualPlayers
		switch {
		case v1 && v2:
			// both real, nothing to do
		case v1 || v2:
			real := node.Slot1.Seed
			if !v1 {
				real = node.Slot2.Seed
			}
			node.FastForward = true
			node.PromotedSeed = real
			promote(node, real)
		default:
			// both seeds exceed actualPlayers: cannot occur for a
			// targetN chosen as the smallest bracket covering
			// actualPlayers, since standard seed-doubling never pairs
			// two invalid seeds together. Leave the node dead/unplayed
			// with no promotion; the caller will simply never see it.
			node.FastForward = true
			node.PromotedSeed = 0
		}
	}
}

// promote rewrites whichever parent slot referenced node to a direct
// seed reference instead of "winner of node", since node is never
// played.
func promote(node *Node, seed int) {
	if node.WinnerNext == nil {
		return
	}
	ref := SlotRef{Kind: RefSeed, Seed: seed}
	if node.WinnerSlot == 1 {
		node.WinnerNext.Slot1 = ref
	} else {
		node.WinnerNext.Slot2 = ref
	}
}

// sortMatchOrder assigns match numbers depth descending (earliest
// rounds first); among ties, matches leading to a final rank come
// last, and within those, the higher numerical rank comes later.
func sortMatchOrder(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if a.Depth != b.Depth {
			return a.Depth > b.Depth
		}
		aRanked := a.WinnerRank > 0 || a.LoserRank > 0
		bRanked := b.WinnerRank > 0 || b.LoserRank > 0
		if aRanked != bRanked {
			return !aRanked
		}
		if !aRanked {
			return false
		}
		return rankOf(a) < rankOf(b)
	})
}

func rankOf(n *Node) int {
	r := n.WinnerRank
	if n.LoserRank > r {
		r = n.LoserRank
	}
	return r
}
