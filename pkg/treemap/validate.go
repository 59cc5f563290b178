package treemap

import (
	"math"

	"github.com/matzehuels/treemap/pkg/errors"
)

// Validate checks structural invariants the layout relies on but never
// verifies itself: every node is reachable exactly once from the root, parent
// links and depths agree with the child lists, and leaf weights are finite
// and non-negative. It is meant for debugging and for untrusted input.
func Validate(t *Tree) error {
	return validate(t, true)
}

// ValidateStructure is [Validate] without the weight checks.
func ValidateStructure(t *Tree) error {
	return validate(t, false)
}

func validate(t *Tree, weights bool) error {
	if len(t.nodes) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "tree has no root")
	}
	if p := t.nodes[Root].Parent; p != NoParent {
		return errors.New(errors.ErrCodeInvalidParent, "root has parent %d", p)
	}

	seen := make([]bool, len(t.nodes))
	stack := []NodeID{Root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			return errors.New(errors.ErrCodeCycle, "node %d is reachable twice", id)
		}
		seen[id] = true

		n := &t.nodes[id]
		if n.ID != id {
			return errors.New(errors.ErrCodeInvalidInput, "node at %d has ID %d", id, n.ID)
		}
		if weights && len(n.Children) == 0 && (n.Weight < 0 || math.IsNaN(n.Weight) || math.IsInf(n.Weight, 0)) {
			return errors.New(errors.ErrCodeInvalidWeight, "leaf %d (%s) has weight %v", id, n.Label(), n.Weight)
		}
		for _, c := range n.Children {
			if !t.Valid(c) {
				return errors.New(errors.ErrCodeInvalidParent, "node %d lists unknown child %d", id, c)
			}
			child := &t.nodes[c]
			if child.Parent != id {
				return errors.New(errors.ErrCodeInvalidParent, "node %d lists child %d whose parent is %d", id, c, child.Parent)
			}
			if child.Depth != n.Depth+1 {
				return errors.New(errors.ErrCodeInvalidParent, "node %d has depth %d under parent depth %d", c, child.Depth, n.Depth)
			}
			stack = append(stack, c)
		}
	}

	for id, ok := range seen {
		if !ok {
			return errors.New(errors.ErrCodeInvalidParent, "node %d is not reachable from the root", id)
		}
	}
	return nil
}
