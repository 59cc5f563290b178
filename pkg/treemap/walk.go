package treemap

// Walk visits every non-excluded node in pre-order, parents before their
// children and siblings in their current order. Excluded nodes and their
// subtrees are skipped. If fn returns false the node's children are skipped.
func Walk(t *Tree, fn func(n *Node) bool) {
	walk(t, Root, fn)
}

// WalkFrom is like [Walk] but starts at id.
func WalkFrom(t *Tree, id NodeID, fn func(n *Node) bool) {
	walk(t, id, fn)
}

func walk(t *Tree, id NodeID, fn func(n *Node) bool) {
	n := &t.nodes[id]
	if n.Excluded || !fn(n) {
		return
	}
	for _, c := range n.Children {
		walk(t, c, fn)
	}
}

// Stats summarizes a laid out tree.
type Stats struct {
	Nodes    int
	Leaves   int
	Excluded int
	MaxDepth int
}

// Summarize counts nodes of t. Nodes below an excluded node are not counted.
func Summarize(t *Tree) Stats {
	var s Stats
	var visit func(id NodeID)
	visit = func(id NodeID) {
		n := &t.nodes[id]
		s.Nodes++
		s.MaxDepth = max(s.MaxDepth, n.Depth)
		if n.Excluded {
			s.Excluded++
			return
		}
		if len(n.Children) == 0 {
			s.Leaves++
		}
		for _, c := range n.Children {
			visit(c)
		}
	}
	visit(Root)
	return s
}
