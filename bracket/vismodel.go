package bracket

import "fmt"

// VisModel is the in-memory bracket visualisation the engine emits for
// an external renderer: one placeholder row per node, carrying enough
// layout information (depth column, row position) for an SVG renderer
// to place match boxes without recomputing the bracket structure
// itself.
type VisModel struct {
	Nodes []VisNode
}

// VisNode is one row of VisModel: a node's position plus an optional
// label (used for fast-forward nodes, which never get a real Match id
// but still occupy a bracket cell).
type VisNode struct {
	NodeUID    string
	MatchID    int64 // 0 for fast-forward placeholders
	Depth      int
	X          float64
	Y          float64
	Label      string
	ThirdPlace bool
}

// BuildVisModel lays out every node of a graph (playable and
// fast-forward alike) on a simple column-per-depth, row-per-slot grid;
// depth 0 (the final) sits in the rightmost column.
func BuildVisModel(g *Graph, allNodes []*Node) VisModel {
	maxDepth := 0
	for _, n := range allNodes {
		if n.Depth > maxDepth {
			maxDepth = n.Depth
		}
	}

	rowCounters := make(map[int]int)
	model := VisModel{Nodes: make([]VisNode, 0, len(allNodes))}
	for _, n := range allNodes {
		row := rowCounters[n.Depth]
		rowCounters[n.Depth] = row + 1

		label := ""
		if n.FastForward {
			label = "bye"
		}
		model.Nodes = append(model.Nodes, VisNode{
			NodeUID:    nodeUID(n, row),
			MatchID:    n.ID,
			Depth:      n.Depth,
			X:          float64(maxDepth - n.Depth),
			Y:          float64(row),
			Label:      label,
			ThirdPlace: n.ThirdPlace,
		})
	}
	return model
}

func nodeUID(n *Node, row int) string {
	if n.ThirdPlace {
		return "third-place"
	}
	if n.WinnerNext == nil {
		return "final"
	}
	return fmt.Sprintf("d%d-%d", n.Depth, row)
}
