package cli

import (
	"strings"

	"github.com/spf13/cobra"

	tmio "github.com/matzehuels/treemap/pkg/io"
	"github.com/matzehuels/treemap/pkg/pipeline"
	"github.com/matzehuels/treemap/pkg/render/sink"
	"github.com/matzehuels/treemap/pkg/treemap"
)

// optionFlags binds pipeline options to command flags. Commands register
// the groups they use and call resolve once flags are parsed.
type optionFlags struct {
	opts    pipeline.Options
	shuffle bool
	formats string
	noCache bool
}

func newOptionFlags() *optionFlags {
	f := &optionFlags{}
	f.opts.Keys = tmio.DefaultKeys()
	f.opts.SetLayoutDefaults()
	f.opts.SetRenderDefaults()
	f.opts.Logger = nil
	return f
}

func (f *optionFlags) addInput(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.opts.Keys.Children, "children-key", f.opts.Keys.Children, "field holding a node's children")
	cmd.Flags().StringVar(&f.opts.Keys.Count, "count-key", f.opts.Keys.Count, "field holding a leaf's weight")
	cmd.Flags().StringVar(&f.opts.Keys.Data, "data-key", f.opts.Keys.Data, "field used as the node payload (empty: none)")
}

func (f *optionFlags) addScan(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.opts.MaxDepth, "max-depth", 0, "collapse directories below this depth (0: unlimited)")
	cmd.Flags().BoolVar(&f.opts.Hidden, "hidden", false, "include dotfiles")
	cmd.Flags().BoolVar(&f.opts.FreeSpace, "free-space", false, "add the mount's free space as a node")
	cmd.Flags().StringSliceVar(&f.opts.Ignore, "ignore", nil, "glob patterns of names to skip")
}

func (f *optionFlags) addLayout(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.opts.Width, "width", f.opts.Width, "root rectangle width")
	cmd.Flags().Float64Var(&f.opts.Height, "height", f.opts.Height, "root rectangle height")
	cmd.Flags().BoolVar(&f.shuffle, "shuffle", false, "shuffle siblings instead of sorting by weight")
	cmd.Flags().Uint64Var(&f.opts.Seed, "seed", f.opts.Seed, "shuffle seed")
	cmd.Flags().StringVar(&f.opts.Direction, "direction", f.opts.Direction, "split direction: both, horizontal, vertical")
	cmd.Flags().Float64Var(&f.opts.Padding, "padding", 0, "inset between a parent and its children")
	cmd.Flags().StringSliceVar(&f.opts.Exclude, "exclude", nil, "node names to leave out of the layout")
}

func (f *optionFlags) addRender(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.opts.VizType, "type", "t", f.opts.VizType, "visualization type: treemap, nodelink")
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output formats: svg, png, json, dot (comma-separated)")
	cmd.Flags().StringVar(&f.opts.Style, "style", f.opts.Style, "svg style: simple, cushion")
	cmd.Flags().StringVar(&f.opts.Palette, "palette", f.opts.Palette, "fill palette: "+strings.Join(sink.PaletteNames(), ", "))
	cmd.Flags().BoolVar(&f.opts.Labels, "labels", false, "draw leaf labels")
	cmd.Flags().BoolVar(&f.opts.Legend, "legend", false, "append a color legend (svg)")
	cmd.Flags().BoolVar(&f.opts.Interactive, "interactive", false, "add hover highlighting (svg)")
	cmd.Flags().BoolVar(&f.opts.Detailed, "detailed", false, "show weights and rectangles (nodelink)")
	cmd.Flags().Float64Var(&f.opts.Scale, "scale", f.opts.Scale, "png scale factor")
}

func (f *optionFlags) addCache(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.opts.Refresh, "refresh", false, "recompute and overwrite cached results")
}

// resolve returns the options with config file values applied under the
// flags that were set explicitly.
func (f *optionFlags) resolve(cmd *cobra.Command, cfg *Config) pipeline.Options {
	opts := f.opts
	cfg.apply(cmd, &opts)

	if cmd.Flags().Changed("shuffle") {
		opts.Sort = treemap.Bool(!f.shuffle)
	}
	if cmd.Flags().Changed("format") || len(opts.Formats) == 0 {
		opts.Formats = parseFormats(f.formats)
	}
	return opts
}
