package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/treemap/pkg/render/nodelink"
	"github.com/matzehuels/treemap/pkg/render/sink"
	"github.com/matzehuels/treemap/pkg/treemap"
)

// Render generates output artifacts in the requested formats from a laid
// out tree. Options must have been validated with [Options.ValidateForRender].
func Render(ctx context.Context, t *treemap.Tree, opts Options) (map[string][]byte, error) {
	if opts.IsNodelink() {
		return renderNodelink(ctx, t, opts)
	}
	return renderTreemap(t, opts)
}

// renderTreemap generates treemap outputs.
func renderTreemap(t *treemap.Tree, opts Options) (map[string][]byte, error) {
	svgOpts, err := buildSVGOptions(opts)
	if err != nil {
		return nil, err
	}
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(t, svgOpts...)
		case FormatPNG:
			data, err = sink.RenderPNG(t, buildPNGOptions(opts)...)
		case FormatJSON:
			data, err = sink.RenderJSON(t, opts.LayoutMeta())
		case FormatDOT:
			data = []byte(nodelink.ToDOT(t, nodelink.Options{Detailed: opts.Detailed, MaxDepth: opts.MaxDepth}))
		default:
			return nil, fmt.Errorf("unsupported treemap format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// renderNodelink generates node-link diagrams of the hierarchy.
func renderNodelink(ctx context.Context, t *treemap.Tree, opts Options) (map[string][]byte, error) {
	dot := nodelink.ToDOT(t, nodelink.Options{Detailed: opts.Detailed, MaxDepth: opts.MaxDepth})
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dot)
		case FormatDOT:
			data = []byte(dot)
		case FormatJSON:
			data, err = sink.RenderJSON(t, opts.LayoutMeta())
		default:
			return nil, fmt.Errorf("unsupported nodelink format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// buildSVGOptions builds SVG rendering options.
func buildSVGOptions(opts Options) ([]sink.SVGOption, error) {
	style, err := sink.LookupStyle(opts.Style)
	if err != nil {
		return nil, err
	}
	palette, err := sink.LookupPalette(opts.Palette)
	if err != nil {
		return nil, err
	}

	svgOpts := []sink.SVGOption{sink.WithStyle(style), sink.WithPalette(palette), sink.WithTitles()}
	if opts.Labels {
		svgOpts = append(svgOpts, sink.WithLabels())
	}
	if opts.Legend {
		svgOpts = append(svgOpts, sink.WithLegend())
	}
	if opts.Interactive {
		svgOpts = append(svgOpts, sink.WithInteraction())
	}
	return svgOpts, nil
}

// buildPNGOptions builds PNG rendering options. The palette was checked by
// buildSVGOptions.
func buildPNGOptions(opts Options) []sink.PNGOption {
	palette, _ := sink.LookupPalette(opts.Palette)
	pngOpts := []sink.PNGOption{sink.WithPNGPalette(palette), sink.WithPNGScale(opts.Scale)}
	if opts.Labels {
		pngOpts = append(pngOpts, sink.WithPNGLabels())
	}
	return pngOpts
}
