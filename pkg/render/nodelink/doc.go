// Package nodelink renders a weighted tree as a node-link diagram.
//
// Treemaps hide the hierarchy inside nested rectangles. A node-link diagram
// shows the same tree as boxes connected by arrows, which helps when
// checking how an input file was decoded or why a subtree was excluded.
//
// # Usage
//
// Convert a tree to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(tree, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The DOT source can also be saved and processed with external Graphviz
// tools. It uses top-to-bottom layout (rankdir=TB) with rounded box nodes.
// Excluded nodes are drawn dashed and grey, without their subtrees.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
