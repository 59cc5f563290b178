package treemap

import "math"

// Calculate resolves opts, aggregates weights from the root and lays out the
// whole tree inside the root's rectangle.
func Calculate(t *Tree, opts Options) error {
	cfg, err := opts.Resolve()
	if err != nil {
		return err
	}
	cfg.Calculate(t)
	return nil
}

// Calculate aggregates and lays out t with an already resolved configuration.
func (c *Config) Calculate(t *Tree) {
	Aggregate(t, Root, c)
	Layout(t, Root, c)
}

// Layout assigns rectangles to every descendant of id using the squarified
// algorithm. The node's own rectangle and the weights of its subtree must
// already be set (see [Aggregate]).
//
// Children are ordered, then packed into rows. A row grows while its items
// stay wider than the row is thick; when that stops holding, the last item is
// dropped again if the row without it had the better ratio. Each child is laid
// out recursively as soon as its rectangle is assigned.
func Layout(t *Tree, id NodeID, cfg *Config) {
	n := &t.nodes[id]
	if n.Excluded {
		n.Rect = Offscreen
		return
	}
	kids := n.Children
	if len(kids) == 0 {
		return
	}

	cfg.Orderer.Order(t, kids)
	for i, c := range kids {
		t.nodes[c].Index = i
	}

	rest := n.Rect.Inset(cfg.Padding)
	restX, restY, restW, restH := rest.X, rest.Y, rest.W, rest.H
	restSum := n.Weight

	for start := 0; start < len(kids); {
		// a is the edge the row is laid along, b the edge it grows into.
		horizontal := true
		a, b := restW, restH
		if cfg.Direction != Horizontal && (restW > restH || cfg.Direction == Vertical) {
			horizontal = false
			a, b = restH, restW
		}

		end, rowSum, bLen := fillRow(t, kids, start, a, b, restSum)

		aPos, bPos, aLen := restX, restY, restW
		if !horizontal {
			aPos, bPos, aLen = restY, restX, restH
		}
		for _, c := range kids[start : end+1] {
			aPart := aLen * fraction(t.weight(c), rowSum)
			if horizontal {
				t.nodes[c].Rect = Rect{X: aPos, Y: bPos, W: aPart, H: bLen}
			} else {
				t.nodes[c].Rect = Rect{X: bPos, Y: aPos, W: bLen, H: aPart}
			}
			Layout(t, c, cfg)
			aPos += aPart
		}

		if horizontal {
			restY += bLen
			restH -= bLen
		} else {
			restX += bLen
			restW -= bLen
		}
		restSum -= rowSum
		start = end + 1
	}
}

// fillRow greedily collects kids[start:end+1] into one row and returns the
// index of the row's last item, the row's weight and its thickness along b.
func fillRow(t *Tree, kids []NodeID, start int, a, b, restSum float64) (end int, rowSum, bLen float64) {
	rowCount := 0
	avRelPrev := math.MaxFloat64
	for i := start; i < len(kids); i++ {
		w := t.weight(kids[i])
		rowSum += w
		rowCount++

		bLen = b * fraction(rowSum, restSum)
		// average item extent along a relative to the row thickness
		avRel := (a / float64(rowCount)) / bLen

		if avRel < 1 || i == len(kids)-1 {
			// A row always keeps its first item, otherwise a degenerate
			// rectangle would never make progress.
			if rowCount > 1 && avRelPrev < 1/avRel {
				rowSum -= w
				bLen = b * fraction(rowSum, restSum)
				return i - 1, rowSum, bLen
			}
			return i, rowSum, bLen
		}
		avRelPrev = avRel
	}
	return len(kids) - 1, rowSum, bLen
}

// fraction returns num/den, or 0 when den is 0.
func fraction(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
