package sink

import (
	"bytes"
	"fmt"
)

// Style controls how blocks and labels are drawn in SVG output.
type Style interface {
	// Name identifies the style in options and cache keys.
	Name() string
	// RenderDefs writes SVG <defs> content (gradients, filters).
	RenderDefs(buf *bytes.Buffer)
	// RenderBlock writes the SVG for a single block shape.
	RenderBlock(buf *bytes.Buffer, b Block)
	// RenderText writes the SVG for a block's label.
	RenderText(buf *bytes.Buffer, b Block)
}

// LookupStyle returns a style by name. The empty name selects [Simple].
func LookupStyle(name string) (Style, error) {
	switch name {
	case "", "simple":
		return Simple{}, nil
	case "cushion":
		return Cushion{}, nil
	}
	return nil, fmt.Errorf("unknown style %q (available: simple, cushion)", name)
}

// Simple draws flat, thinly stroked rectangles.
type Simple struct{}

func (Simple) Name() string                 { return "simple" }
func (Simple) RenderDefs(buf *bytes.Buffer) {}

func (Simple) RenderBlock(buf *bytes.Buffer, b Block) {
	fmt.Fprintf(buf, `  <rect id="node-%d" class="block" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" stroke="#ffffff" stroke-width="%s"/>`+"\n",
		b.ID, b.X, b.Y, b.W, b.H, b.Fill.Hex(), strokeWidth(b))
}

func (Simple) RenderText(buf *bytes.Buffer, b Block) {
	renderLabel(buf, b)
}

// Cushion overlays a radial highlight on leaves.
type Cushion struct{}

func (Cushion) Name() string { return "cushion" }

func (Cushion) RenderDefs(buf *bytes.Buffer) {
	buf.WriteString(`  <defs>
    <radialGradient id="cushion" cx="35%" cy="35%" r="75%">
      <stop offset="0%" stop-color="#ffffff" stop-opacity="0.45"/>
      <stop offset="100%" stop-color="#000000" stop-opacity="0.25"/>
    </radialGradient>
  </defs>
`)
}

func (Cushion) RenderBlock(buf *bytes.Buffer, b Block) {
	Simple{}.RenderBlock(buf, b)
	if b.Leaf {
		fmt.Fprintf(buf, `  <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="url(#cushion)" pointer-events="none"/>`+"\n",
			b.X, b.Y, b.W, b.H)
	}
}

func (Cushion) RenderText(buf *bytes.Buffer, b Block) {
	renderLabel(buf, b)
}

func strokeWidth(b Block) string {
	if b.Leaf {
		return "0.5"
	}
	return "1"
}

func renderLabel(buf *bytes.Buffer, b Block) {
	if !b.Leaf || !hasRoomForLabel(b) {
		return
	}
	fmt.Fprintf(buf, `  <text class="block-text" data-block="%d" x="%.2f" y="%.2f" font-family="sans-serif" font-size="%.1f" fill="%s" text-anchor="middle" dominant-baseline="central" pointer-events="none">%s</text>`+"\n",
		b.ID, b.X+b.W/2, b.Y+b.H/2, fontSize(b), b.Text.Hex(), escapeXML(truncateLabel(b)))
}
