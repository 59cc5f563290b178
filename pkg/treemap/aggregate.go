package treemap

import "math"

// Aggregate recomputes the weights of the subtree rooted at id and returns
// its total weight.
//
// A node whose payload is excluded weighs 0 and its descendants are not
// visited. A leaf keeps its stored weight. An inner node's weight is
// overwritten with the sum of its children, and its child extrema are
// recomputed from the same values.
func Aggregate(t *Tree, id NodeID, cfg *Config) float64 {
	n := &t.nodes[id]
	n.Excluded = cfg.Excludes(n.Payload)

	if len(n.Children) == 0 {
		if n.Excluded {
			return 0
		}
		return n.Weight
	}

	n.Weight = 0
	n.MaxChildWeight = 0
	if n.Excluded {
		n.MinChildWeight = 0
		return 0
	}

	n.MinChildWeight = math.Inf(1)
	for _, c := range n.Children {
		w := Aggregate(t, c, cfg)
		// t.nodes is not reallocated during aggregation, so n stays valid.
		n.Weight += w
		n.MinChildWeight = min(n.MinChildWeight, w)
		n.MaxChildWeight = max(n.MaxChildWeight, w)
	}
	return n.Weight
}

// weight is the weight the layout distributes: 0 for excluded nodes, which
// keeps an excluded leaf's stored weight intact for later passes.
func (t *Tree) weight(id NodeID) float64 {
	n := &t.nodes[id]
	if n.Excluded {
		return 0
	}
	return n.Weight
}
