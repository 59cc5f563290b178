// Package treemap computes squarified treemap layouts.
//
// A [Tree] holds weighted nodes in an arena addressed by [NodeID]. The root
// (always [Root]) carries the rectangle assigned by the client; [Calculate]
// sums weights bottom-up and then subdivides every node's rectangle among its
// children so that each child's area is proportional to its weight while the
// rectangles stay close to square.
//
// # Usage
//
//	t := treemap.New(treemap.Rect{W: 800, H: 600})
//	src := t.AddChild(treemap.Root, "src", 0)
//	t.AddChild(src, "main.go", 120)
//	t.AddChild(src, "util.go", 40)
//	t.AddChild(treemap.Root, "README.md", 12)
//
//	if err := treemap.Calculate(t, treemap.Options{Padding: 2}); err != nil {
//	    return err
//	}
//	treemap.Walk(t, func(n *treemap.Node) bool {
//	    fmt.Println(n.Label(), n.Rect)
//	    return true
//	})
//
// # Passes
//
// Layout runs in two passes over the tree:
//
//  1. [Aggregate] (post-order): every inner node's weight becomes the sum of
//     its children; nodes whose payload is listed in [Options.Exclude] weigh 0.
//  2. [Layout] (pre-order): children are ordered by the configured [Orderer],
//     grouped greedily into rows and given their rectangles; each child is
//     laid out as soon as its own rectangle is final.
//
// Excluded nodes receive the [Offscreen] rectangle and their subtrees are
// left untouched. Zero weights produce zero-area rectangles; negative weights
// and oversized padding propagate arithmetically and are never rejected.
//
// # Concurrency
//
// A Tree is not safe for concurrent use. Callers must not mutate a tree
// while it is being laid out.
package treemap
