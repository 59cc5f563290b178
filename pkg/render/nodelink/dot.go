package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/treemap/pkg/treemap"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds weight, depth and rectangle to node labels.
	// When false, only the node label is shown.
	Detailed bool

	// MaxDepth stops the diagram below this depth. Zero means unlimited.
	MaxDepth int
}

// ToDOT converts a tree to Graphviz DOT format for node-link visualization.
// The resulting DOT string can be rendered using [RenderSVG].
//
// Excluded nodes are rendered with dashed outlines and grey fill; their
// subtrees are omitted.
func ToDOT(t *treemap.Tree, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	var edges []string
	var visit func(id treemap.NodeID)
	visit = func(id treemap.NodeID) {
		n := t.Node(id)
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeName(id), strings.Join(fmtAttrs(n, fmtLabel(n, opts.Detailed)), ", "))
		if n.Parent != treemap.NoParent {
			edges = append(edges, fmt.Sprintf("  %q -> %q;\n", nodeName(n.Parent), nodeName(id)))
		}
		if n.Excluded || (opts.MaxDepth > 0 && n.Depth >= opts.MaxDepth) {
			return
		}
		for _, c := range n.Children {
			visit(c)
		}
	}
	visit(treemap.Root)

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeName(id treemap.NodeID) string {
	return "n" + strconv.Itoa(int(id))
}

func fmtLabel(n *treemap.Node, detailed bool) string {
	label := n.Label()
	if label == "" {
		label = nodeName(n.ID)
	}
	if !detailed {
		return label
	}

	parts := []string{
		fmt.Sprintf("weight: %g", n.Weight),
		fmt.Sprintf("depth: %d", n.Depth),
	}
	if !n.Excluded {
		parts = append(parts, fmt.Sprintf("rect: %s", n.Rect))
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n *treemap.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if n.Excluded {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
