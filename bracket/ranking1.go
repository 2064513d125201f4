package bracket

import "github.com/shuttlecourt/tournament-engine/errs"

// ranking1Row is one entry of a hard-coded Ranking1 placement table.
// seed1/seed2 are either a literal seed number (>0) or the negated id
// of the match that feeds this slot (<0), through its winner or its
// loser depending on which of that match's nextWinner/nextLoser names
// this row. nextWinner/nextLoser
// are either the id of the match the winner/loser continues to (>0),
// a negated final rank the winner/loser is awarded instead (<0), or 0
// if that outcome drops out with no further placement. slotWinner/
// slotLoser is the 1-or-2 slot occupied in the next match. depth
// decreases toward the final.
type ranking1Row struct {
	seed1, seed2          int
	nextWinner, nextLoser int
	slotWinner, slotLoser int
	depth                 int
}

// ranking1Table16 is the 16-player placement sheet: 36 matches,
// producing a unique rank 1..16 for every entrant.
var ranking1Table16 = []ranking1Row{
	{1, 16, 13, 9, 1, 1, 4},
	{8, 9, 13, 9, 2, 2, 4},
	{5, 12, 14, 10, 1, 1, 4},
	{4, 13, 14, 10, 2, 2, 4},
	{14, 3, 15, 11, 1, 1, 4},
	{11, 6, 15, 11, 2, 2, 4},
	{10, 7, 16, 12, 1, 1, 4},
	{15, 2, 16, 12, 2, 2, 4},

	{-1, -2, 17, 21, 1, 1, 3},
	{-3, -4, 18, 22, 1, 1, 3},
	{-5, -6, 19, 21, 1, 2, 3},
	{-7, -8, 20, 22, 1, 2, 3},
	{-1, -2, 27, 19, 1, 2, 3},
	{-3, -4, 27, 20, 2, 2, 3},
	{-5, -6, 28, 17, 1, 2, 3},
	{-7, -8, 28, 18, 2, 2, 3},

	{-9, -15, 25, 23, 1, 1, 2},
	{-10, -16, 25, 23, 2, 2, 2},
	{-11, -13, 26, 24, 1, 1, 2},
	{-12, -14, 26, 24, 2, 2, 2},

	{-9, -11, 30, 29, 1, 1, 1},
	{-10, -12, 30, 29, 2, 2, 1},
	{-17, -18, 32, 31, 1, 1, 1},
	{-19, -20, 32, 31, 2, 2, 1},
	{-17, -18, 34, 33, 1, 1, 1},
	{-19, -20, 34, 33, 2, 2, 1},
	{-13, -14, 36, 35, 1, 1, 1},
	{-15, -16, 36, 35, 2, 2, 1},

	{-21, -22, -15, -16, 0, 0, 0},
	{-21, -22, -13, -14, 0, 0, 0},
	{-23, -24, -11, -12, 0, 0, 0},
	{-23, -24, -9, -10, 0, 0, 0},
	{-25, -26, -7, -8, 0, 0, 0},
	{-25, -26, -5, -6, 0, 0, 0},
	{-27, -28, -3, -4, 0, 0, 0},
	{-27, -28, -1, -2, 0, 0, 0},
}

// ranking1Table32 is the 32-player placement sheet: 92 matches,
// producing a unique rank 1..32 for every entrant.
var ranking1Table32 = []ranking1Row{
	{1, 32, 18, 17, 1, 1, 6},
	{16, 17, 18, 17, 2, 2, 6},
	{8, 25, 20, 19, 1, 1, 6},
	{9, 24, 20, 19, 2, 2, 6},
	{4, 29, 22, 21, 1, 1, 6},
	{13, 20, 22, 21, 2, 2, 6},
	{5, 28, 24, 23, 1, 1, 6},
	{12, 21, 24, 23, 2, 2, 6},
	{22, 11, 26, 25, 1, 1, 6},
	{27, 6, 26, 25, 2, 2, 6},
	{19, 14, 28, 27, 1, 1, 6},
	{30, 3, 28, 27, 2, 2, 6},
	{23, 10, 30, 29, 1, 1, 6},
	{26, 7, 30, 29, 2, 2, 6},
	{18, 15, 32, 31, 1, 1, 6},
	{31, 2, 32, 31, 2, 2, 6},

	{-1, -2, 33, 45, 1, 1, 5},
	{-1, -2, 34, 36, 1, 2, 5},
	{-3, -4, 35, 45, 1, 2, 5},
	{-3, -4, 34, 38, 2, 2, 5},
	{-5, -6, 36, 46, 1, 1, 5},
	{-5, -6, 37, 33, 1, 2, 5},
	{-7, -8, 38, 46, 1, 2, 5},
	{-7, -8, 37, 35, 2, 2, 5},
	{-9, -10, 39, 47, 1, 1, 5},
	{-9, -10, 40, 42, 1, 2, 5},
	{-11, -12, 41, 47, 1, 2, 5},
	{-11, -12, 40, 44, 2, 2, 5},
	{-13, -14, 42, 48, 1, 1, 5},
	{-13, -14, 43, 41, 1, 2, 5},
	{-15, -16, 44, 48, 1, 2, 5},
	{-15, -16, 43, 39, 2, 2, 5},

	{-17, -22, 53, 49, 1, 1, 4},
	{-18, -20, 57, 65, 1, 2, 4},
	{-19, -24, 53, 49, 2, 2, 4},
	{-21, -18, 54, 50, 1, 1, 4},
	{-22, -24, 57, 66, 2, 2, 4},
	{-23, -20, 54, 50, 2, 2, 4},
	{-25, -32, 55, 51, 1, 1, 4},
	{-26, -28, 58, 63, 1, 2, 4},
	{-27, -30, 55, 51, 2, 2, 4},
	{-29, -26, 56, 52, 1, 1, 4},
	{-30, -32, 58, 64, 2, 2, 4},
	{-31, -28, 56, 52, 2, 2, 4},
	{-17, -19, 60, 59, 1, 1, 4},
	{-21, -23, 60, 59, 2, 2, 4},
	{-25, -27, 62, 61, 1, 1, 4},
	{-29, -31, 62, 61, 2, 2, 4},

	{-33, -35, 68, 67, 1, 1, 3},
	{-36, -38, 68, 67, 2, 2, 3},
	{-39, -41, 70, 69, 1, 1, 3},
	{-42, -44, 70, 69, 2, 2, 3},
	{-33, -35, 63, 71, 1, 1, 3},
	{-36, -38, 64, 71, 1, 2, 3},
	{-39, -41, 65, 72, 1, 1, 3},
	{-42, -44, 66, 72, 1, 2, 3},

	{-34, -37, 92, 91, 1, 1, 2},
	{-40, -43, 92, 91, 2, 2, 2},
	{-45, -46, 78, 77, 1, 1, 2},
	{-45, -46, 80, 79, 1, 1, 2},
	{-47, -48, 78, 77, 2, 2, 2},
	{-47, -48, 80, 79, 2, 2, 2},
	{-53, -40, 75, 73, 1, 1, 2},
	{-54, -43, 75, 73, 2, 2, 2},
	{-55, -34, 76, 74, 1, 1, 2},
	{-56, -37, 76, 74, 2, 2, 2},

	{-49, -50, 82, 81, 1, 1, 1},
	{-49, -50, 84, 83, 1, 1, 1},
	{-51, -52, 82, 81, 2, 2, 1},
	{-51, -52, 84, 83, 2, 2, 1},
	{-53, -54, 86, 85, 1, 1, 1},
	{-55, -56, 86, 85, 2, 2, 1},
	{-63, -64, 88, 87, 1, 1, 1},
	{-65, -66, 88, 87, 2, 2, 1},
	{-63, -64, 90, 89, 1, 1, 1},
	{-65, -66, 90, 89, 2, 2, 1},

	{-59, -61, -31, -32, 0, 0, 0},
	{-59, -61, -29, -30, 0, 0, 0},
	{-60, -62, -27, -28, 0, 0, 0},
	{-60, -62, -25, -26, 0, 0, 0},
	{-67, -69, -23, -24, 0, 0, 0},
	{-67, -69, -21, -22, 0, 0, 0},
	{-68, -70, -19, -20, 0, 0, 0},
	{-68, -70, -17, -18, 0, 0, 0},
	{-71, -72, -15, -16, 0, 0, 0},
	{-71, -72, -13, -14, 0, 0, 0},
	{-73, -74, -11, -12, 0, 0, 0},
	{-73, -74, -9, -10, 0, 0, 0},
	{-75, -76, -7, -8, 0, 0, 0},
	{-75, -76, -5, -6, 0, 0, 0},
	{-57, -58, -3, -4, 0, 0, 0},
	{-57, -58, -1, -2, 0, 0, 0},
}

// deadSeedSentinel stands for a slot no real entrant can ever occupy,
// regardless of actualPlayers: it always fails the "<= actualPlayers"
// validity check.
const deadSeedSentinel = 1 << 30

// BuildRanking1 builds the fixed 16- or 32-slot placement table: the
// bracket is always sized to the next of {16, 32}, regardless of how
// many of those slots are real entrants, matching the physically
// printed 16/32-player placement sheet. Unlike a minimally-sized
// single-elimination tree, every one of the table's slots resolves to
// a final rank: byes cascade through the same table that assigns
// ranks 1..tableSize, so every real entrant ends up with a unique
// placement instead of only the top four.
func BuildRanking1(actualPlayers int) (*Graph, error) {
	if actualPlayers < 2 || actualPlayers > 32 {
		return nil, errs.ErrInvalidPlayerCount
	}
	table := ranking1Table16
	if actualPlayers > 16 {
		table = ranking1Table32
	}
	return buildRanking1FromTable(table, actualPlayers)
}

func buildRanking1FromTable(table []ranking1Row, actualPlayers int) (*Graph, error) {
	nodes := make([]*Node, len(table))
	for i, r := range table {
		nodes[i] = &Node{Depth: r.depth}
	}

	// first pass: literal seeds. Match-sourced slots are wired below,
	// from the producing match's own outgoing links, since the same
	// match id can feed one consumer via its winner and a different
	// consumer via its loser.
	for i, r := range table {
		n := nodes[i]
		if r.seed1 > 0 {
			n.Slot1 = SlotRef{Kind: RefSeed, Seed: r.seed1}
		}
		if r.seed2 > 0 {
			n.Slot2 = SlotRef{Kind: RefSeed, Seed: r.seed2}
		}
	}

	for i, r := range table {
		n := nodes[i]
		switch {
		case r.nextWinner > 0:
			target := nodes[r.nextWinner-1]
			n.WinnerNext, n.WinnerSlot = target, r.slotWinner
			setSlot(target, r.slotWinner, SlotRef{Kind: RefMatch, Node: n})
		case r.nextWinner < 0:
			n.WinnerRank = -r.nextWinner
		}
		switch {
		case r.nextLoser > 0:
			target := nodes[r.nextLoser-1]
			n.LoserNext, n.LoserSlot = target, r.slotLoser
			setSlot(target, r.slotLoser, SlotRef{Kind: RefMatch, Node: n, FromLoser: true})
		case r.nextLoser < 0:
			n.LoserRank = -r.nextLoser
		}
	}

	// nodes are already listed earliest-round-first, so every slot a
	// node consumes was produced by a node processed in an earlier
	// iteration: one pass resolves the whole cascade of byes.
	for _, n := range nodes {
		pruneRanking1Node(n, actualPlayers)
	}

	playable := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if !n.FastForward {
			playable = append(playable, n)
		}
	}
	sortMatchOrder(playable)
	for i, n := range playable {
		n.ID = int64(i + 1)
	}

	return &Graph{Matches: playable, AllNodes: nodes}, nil
}

func setSlot(n *Node, slot int, ref SlotRef) {
	if slot == 1 {
		n.Slot1 = ref
	} else {
		n.Slot2 = ref
	}
}

// classifyRanking1Slot resolves ref to either a concrete seed number,
// comparable against actualPlayers, or a live match reference whose
// winner/loser is not yet known but is guaranteed to be a real entrant
// once decided. invalid reports whether ref can never be occupied by a
// real player.
func classifyRanking1Slot(ref SlotRef, actualPlayers int) (SlotRef, bool) {
	if ref.Kind == RefSeed {
		return ref, ref.Seed > actualPlayers
	}
	n := ref.Node
	if !n.FastForward {
		return ref, false
	}
	if ref.FromLoser {
		// a node that never played has no real loser to promote.
		return SlotRef{Kind: RefSeed, Seed: deadSeedSentinel}, true
	}
	survivor := n.survivor
	return survivor, survivor.Kind == RefSeed && survivor.Seed > actualPlayers
}

// pruneRanking1Node decides whether n is a real contested match, a bye
// that promotes its one real occupant onward, or dead (no real
// occupant at all), and for a terminal placement node that turns out
// to be a bye, pushes its rank backward onto whichever real match (or
// recorded walkover) actually produces the surviving entrant.
func pruneRanking1Node(n *Node, actualPlayers int) {
	r1, invalid1 := classifyRanking1Slot(n.Slot1, actualPlayers)
	r2, invalid2 := classifyRanking1Slot(n.Slot2, actualPlayers)

	switch {
	case !invalid1 && !invalid2:
		n.Slot1, n.Slot2 = r1, r2
	case invalid1 && invalid2:
		n.FastForward = true
		n.survivor = SlotRef{Kind: RefSeed, Seed: deadSeedSentinel}
	default:
		survivor := r1
		if invalid1 {
			survivor = r2
		}
		n.FastForward = true
		n.survivor = survivor
		if survivor.Kind == RefSeed {
			n.PromotedSeed = survivor.Seed
		}
		if n.WinnerNext == nil && n.WinnerRank > 0 {
			migrateRanking1Rank(n, survivor)
		}
	}
}

// migrateRanking1Rank attaches a terminal node's winner rank to a real
// match instead of leaving it stranded on a node that never plays. If
// the survivor traces back to a still-live match, that match's own
// winner (or loser, if fed via a loser link) claims the rank once
// decided. If the whole chain back to the survivor was byes, with no
// live match anywhere in it, the node is kept as a recorded walkover
// so the rank still attaches to a real match row.
func migrateRanking1Rank(n *Node, survivor SlotRef) {
	rank := n.WinnerRank
	if survivor.Kind == RefMatch {
		if survivor.FromLoser {
			survivor.Node.LoserRank = rank
		} else {
			survivor.Node.WinnerRank = rank
		}
		return
	}
	n.FastForward = false
	n.AutoWalkover = true
	n.Slot1 = survivor
	n.Slot2 = SlotRef{Kind: RefNone}
}
