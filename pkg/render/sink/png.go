package sink

import (
	"bytes"
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/treemap"
)

// MaxPNGSide bounds each side of a rendered PNG in pixels.
const MaxPNGSide = 16384

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	palette Palette
	scale   float64
	labels  bool
}

// WithPNGPalette sets the fill palette (default [Blues]).
func WithPNGPalette(p Palette) PNGOption { return func(r *pngRenderer) { r.palette = p } }

// WithPNGScale sets the scale factor (default 1; 2.0 for high-DPI output).
func WithPNGScale(s float64) PNGOption { return func(r *pngRenderer) { r.scale = s } }

// WithPNGLabels draws leaf labels where they fit.
func WithPNGLabels() PNGOption { return func(r *pngRenderer) { r.labels = true } }

// RenderPNG rasterizes the laid out tree. The image covers the root
// rectangle at the configured scale.
func RenderPNG(t *treemap.Tree, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{palette: Blues, scale: 1}
	for _, opt := range opts {
		opt(&r)
	}

	root := t.Root().Rect
	if r.scale <= 0 || math.IsNaN(r.scale) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "png scale must be > 0, got %v", r.scale)
	}
	w := int(math.Ceil(root.W * r.scale))
	h := int(math.Ceil(root.H * r.scale))
	if w <= 0 || h <= 0 {
		return nil, errors.New(errors.ErrCodeEmptyRectangle, "cannot rasterize %v", root)
	}
	if w > MaxPNGSide || h > MaxPNGSide {
		return nil, errors.New(errors.ErrCodeInvalidInput, "png of %dx%d exceeds %d pixels per side", w, h, MaxPNGSide)
	}

	dc := gg.NewContext(w, h)
	dc.SetColor(color.White)
	dc.Clear()
	dc.Scale(r.scale, r.scale)
	dc.Translate(-root.X, -root.Y)

	blocks := buildBlocks(t, r.palette)
	for _, b := range blocks {
		dc.DrawRectangle(b.X, b.Y, b.W, b.H)
		dc.SetColor(b.Fill)
		dc.FillPreserve()
		dc.SetColor(color.White)
		if b.Leaf {
			dc.SetLineWidth(0.5)
		} else {
			dc.SetLineWidth(1)
		}
		dc.Stroke()
	}

	if r.labels {
		for _, b := range blocks {
			if !b.Leaf || !hasRoomForLabel(b) {
				continue
			}
			label := truncateLabel(b)
			if tw, th := dc.MeasureString(label); tw > b.W || th > b.H {
				continue
			}
			dc.SetColor(b.Text)
			dc.DrawStringAnchored(label, b.X+b.W/2, b.Y+b.H/2, 0.5, 0.5)
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}
