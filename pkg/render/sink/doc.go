// Package sink provides output format renderers for treemaps.
//
// # Overview
//
// A "sink" transforms a laid out [treemap.Tree] into a final output format:
//
//   - SVG: one <rect> per visible node, optional labels and hover highlight
//   - PNG: the same drawing rasterized with gg
//   - JSON: the saved layout format of the io package
//
// All renderers walk the tree with [treemap.Walk], so excluded subtrees are
// never drawn and children are painted after their parents.
//
// # Colors
//
// Leaves are filled from a [Palette]. A leaf's position in the ramp is its
// weight within its parent's [MinChildWeight, MaxChildWeight] range, so the
// heaviest sibling gets the palette's high end. Inner nodes are drawn as
// frames whose tone darkens with depth.
//
// # Styles
//
// [Simple] draws flat rectangles. [Cushion] adds a radial highlight to each
// leaf, which makes nesting easier to read in dense maps.
package sink
