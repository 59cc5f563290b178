package sink

import (
	"fmt"
	"slices"
	"sort"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/treemap/pkg/treemap"
)

// Palette is a two-stop color ramp blended in CIE L*a*b* space.
type Palette struct {
	Name  string
	Low   colorful.Color
	High  colorful.Color
	Frame colorful.Color
}

// Built-in palettes.
var (
	Blues  = newPalette("blues", "#deebf7", "#3182bd", "#f7f7f7")
	Greens = newPalette("greens", "#e5f5e0", "#31a354", "#f7f7f7")
	Heat   = newPalette("heat", "#ffeda0", "#f03b20", "#fff7ec")
	Greys  = newPalette("greys", "#f0f0f0", "#636363", "#ffffff")
)

var palettes = map[string]Palette{
	Blues.Name:  Blues,
	Greens.Name: Greens,
	Heat.Name:   Heat,
	Greys.Name:  Greys,
}

// PaletteNames returns the names accepted by [LookupPalette], sorted.
func PaletteNames() []string {
	names := make([]string, 0, len(palettes))
	for name := range palettes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupPalette returns a built-in palette by name. The empty name selects
// [Blues].
func LookupPalette(name string) (Palette, error) {
	if name == "" {
		return Blues, nil
	}
	p, ok := palettes[name]
	if !ok {
		return Palette{}, fmt.Errorf("unknown palette %q (available: %v)", name, PaletteNames())
	}
	return p, nil
}

func newPalette(name, low, high, frame string) Palette {
	return Palette{Name: name, Low: mustHex(low), High: mustHex(high), Frame: mustHex(frame)}
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// At returns the ramp color at t, clamped to [0, 1].
func (p Palette) At(t float64) colorful.Color {
	t = max(0, min(1, t))
	return p.Low.BlendLab(p.High, t).Clamped()
}

// frameAt darkens the frame color with depth.
func (p Palette) frameAt(depth int) colorful.Color {
	t := min(0.6, 0.08*float64(depth))
	return p.Frame.BlendLab(p.High, t).Clamped()
}

// Fill returns the fill color for a node: a frame tone for inner nodes and a
// ramp color for leaves.
func (p Palette) Fill(t *treemap.Tree, n *treemap.Node) colorful.Color {
	if !n.IsLeaf() {
		return p.frameAt(n.Depth)
	}
	return p.At(relativeWeight(t, n))
}

// relativeWeight positions n within its parent's child weight range.
// Without a parent, or when all siblings weigh the same, it is 1.
func relativeWeight(t *treemap.Tree, n *treemap.Node) float64 {
	if n.Parent == treemap.NoParent {
		return 1
	}
	p := t.Node(n.Parent)
	span := p.MaxChildWeight - p.MinChildWeight
	if span <= 0 {
		return 1
	}
	return (n.Weight - p.MinChildWeight) / span
}

// textColor picks black or white, whichever contrasts more with bg.
func textColor(bg colorful.Color) colorful.Color {
	l, _, _ := bg.Lab()
	if l > 0.55 {
		return colorful.Color{R: 0.1, G: 0.1, B: 0.1}
	}
	return colorful.Color{R: 1, G: 1, B: 1}
}

// legendStops samples the palette for a legend.
func legendStops(p Palette, n int) []colorful.Color {
	stops := make([]colorful.Color, 0, n)
	for i := range n {
		stops = append(stops, p.At(float64(i)/float64(max(1, n-1))))
	}
	return slices.Clip(stops)
}
