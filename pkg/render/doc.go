// Package render turns laid out treemaps into output formats.
//
// # Overview
//
// Renderers never compute geometry. They consume a tree on which
// [treemap.Calculate] has run and draw each node's rectangle as is, visiting
// nodes in pre-order so that children paint over their parents.
//
//   - [sink]: treemap output (SVG, PNG, JSON)
//   - [nodelink]: the hierarchy as a Graphviz node-link diagram, for
//     inspecting tree structure independently of the layout
//
// # Treemap Output
//
//	svg := sink.RenderSVG(tree, sink.WithLabels(), sink.WithPalette(sink.Blues))
//	png, err := sink.RenderPNG(tree, sink.WithPNGScale(2))
//	data, err := sink.RenderJSON(tree, meta)
//
// # Node-Link Diagrams
//
//	dot := nodelink.ToDOT(tree, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [treemap.Calculate]: github.com/matzehuels/treemap/pkg/treemap.Calculate
package render

// Formats lists the output formats understood by the renderers.
var Formats = []string{FormatSVG, FormatPNG, FormatJSON, FormatDOT}

// Output format names.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ContentType returns the MIME type of a format, or "" if unknown.
func ContentType(format string) string {
	switch format {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatJSON:
		return "application/json"
	case FormatDOT:
		return "text/vnd.graphviz"
	}
	return ""
}
