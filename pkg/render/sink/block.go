package sink

import (
	"bytes"
	"encoding/xml"
	"unicode/utf8"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/treemap/pkg/treemap"
)

// Block contains all data needed to draw a single treemap node.
type Block struct {
	ID         treemap.NodeID
	Label      string
	X, Y, W, H float64
	Depth      int
	Leaf       bool
	Weight     float64
	Fill       colorful.Color
	Text       colorful.Color
}

// buildBlocks collects drawable nodes in pre-order. Nodes without a positive
// extent are skipped, their children too, since they cannot be visible.
func buildBlocks(t *treemap.Tree, p Palette) []Block {
	var blocks []Block
	treemap.Walk(t, func(n *treemap.Node) bool {
		r := n.Rect
		if r.W <= 0 || r.H <= 0 {
			return false
		}
		fill := p.Fill(t, n)
		blocks = append(blocks, Block{
			ID:     n.ID,
			Label:  n.Label(),
			X:      r.X,
			Y:      r.Y,
			W:      r.W,
			H:      r.H,
			Depth:  n.Depth,
			Leaf:   n.IsLeaf(),
			Weight: n.Weight,
			Fill:   fill,
			Text:   textColor(fill),
		})
		return true
	})
	return blocks
}

const (
	fontHeightRatio = 0.6
	fontWidthRatio  = 0.85
	fontCharWidth   = 0.55
	fontSizeMin     = 8.0
	fontSizeMax     = 24.0
)

// fontSize fits the label into the block, bounded by [fontSizeMin, fontSizeMax].
func fontSize(b Block) float64 {
	n := max(1, utf8.RuneCountInString(b.Label))
	byHeight := b.H * fontHeightRatio
	byWidth := (b.W * fontWidthRatio) / (float64(n) * fontCharWidth)
	return max(fontSizeMin, min(fontSizeMax, min(byHeight, byWidth)))
}

// hasRoomForLabel reports whether even the smallest font fits three characters.
func hasRoomForLabel(b Block) bool {
	return b.Label != "" &&
		b.H*fontHeightRatio >= fontSizeMin &&
		b.W*fontWidthRatio >= 3*fontSizeMin*fontCharWidth
}

// truncateLabel shortens the label to the characters that fit at fontSize.
func truncateLabel(b Block) string {
	charWidth := fontSize(b) * fontCharWidth
	maxChars := max(3, int(b.W*fontWidthRatio/charWidth))
	runes := []rune(b.Label)
	if len(runes) <= maxChars {
		return b.Label
	}
	return string(runes[:maxChars-2]) + ".."
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
