package sink

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/treemap/pkg/treemap"
)

const blockInteractionCSS = `
    .block { transition: stroke-width 0.2s ease; }
    .block.highlight { stroke: #222222; stroke-width: 2; }`

const blockInteractionJS = `
    document.querySelectorAll('.block').forEach(el => {
      el.addEventListener('mouseenter', () => el.classList.add('highlight'));
      el.addEventListener('mouseleave', () => el.classList.remove('highlight'));
    });`

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	style       Style
	palette     Palette
	labels      bool
	titles      bool
	interactive bool
	legend      bool
}

// WithStyle sets the drawing style (default [Simple]).
func WithStyle(s Style) SVGOption { return func(r *svgRenderer) { r.style = s } }

// WithPalette sets the fill palette (default [Blues]).
func WithPalette(p Palette) SVGOption { return func(r *svgRenderer) { r.palette = p } }

// WithLabels draws leaf labels where they fit.
func WithLabels() SVGOption { return func(r *svgRenderer) { r.labels = true } }

// WithTitles adds a <title> tooltip with label and weight to each block.
func WithTitles() SVGOption { return func(r *svgRenderer) { r.titles = true } }

// WithInteraction adds hover highlighting.
func WithInteraction() SVGOption { return func(r *svgRenderer) { r.interactive = true } }

// WithLegend appends a color ramp below the map.
func WithLegend() SVGOption { return func(r *svgRenderer) { r.legend = true } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{style: Simple{}, palette: Blues}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

const legendHeight = 24.0

// RenderSVG draws the laid out tree. The view box is the root rectangle.
func RenderSVG(t *treemap.Tree, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	root := t.Root().Rect
	blocks := buildBlocks(t, r.palette)

	height := root.H
	if r.legend {
		height += legendHeight
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		root.X, root.Y, root.W, height, root.W, height)

	r.style.RenderDefs(&buf)
	for _, b := range blocks {
		if r.titles {
			fmt.Fprintf(&buf, "  <g><title>%s (%g)</title>\n", escapeXML(b.Label), b.Weight)
		}
		r.style.RenderBlock(&buf, b)
		if r.titles {
			buf.WriteString("  </g>\n")
		}
	}
	if r.labels {
		for _, b := range blocks {
			r.style.RenderText(&buf, b)
		}
	}
	if r.legend {
		renderLegend(&buf, r.palette, root)
	}
	if r.interactive {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", blockInteractionCSS)
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", blockInteractionJS)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderLegend(buf *bytes.Buffer, p Palette, root treemap.Rect) {
	const stops = 10
	w := root.W / stops
	y := root.Y + root.H + 4
	for i, c := range legendStops(p, stops) {
		fmt.Fprintf(buf, `  <rect class="legend" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>`+"\n",
			root.X+float64(i)*w, y, w, legendHeight-8, c.Hex())
	}
}
