package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/treemap/pkg/pipeline"
	"github.com/matzehuels/treemap/pkg/treemap"
)

// renderCommand creates the render command for generating visualizations.
func (c *CLI) renderCommand() *cobra.Command {
	var output string
	flags := newOptionFlags()

	cmd := &cobra.Command{
		Use:   "render [tree.json|tree.toml|layout.json|-]",
		Short: "Render a tree or a saved layout",
		Long: `Render a tree or a saved layout.

Trees are laid out first using the layout flags; saved layouts (from
'layout' or 'render -f json') are rendered as they are. Each requested
format is written next to the input, or to the path given with -o
(without extension).

Use -t nodelink for a Graphviz node-link diagram of the hierarchy.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := flags.resolve(cmd, c.cfg())
			return c.runRender(cmd.Context(), args[0], opts, output, flags.noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output base path (default: input path without extension)")
	flags.addInput(cmd)
	flags.addLayout(cmd)
	flags.addRender(cmd)
	flags.addCache(cmd)

	return cmd
}

// runRender loads the input, lays it out when needed, and writes artifacts.
func (c *CLI) runRender(ctx context.Context, path string, opts pipeline.Options, output string, noCache bool) error {
	opts.Logger = c.Logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	in, err := loadInput(path, opts.Keys, os.Stdin)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	laid, layoutHit := in.tree, true
	if !in.laidOut {
		laid, layoutHit, err = c.computeLayout(ctx, runner, in.tree, opts)
		if err != nil {
			return err
		}
	}

	base := output
	if base == "" {
		base = renderBasePath(path)
	}
	paths, renderHit, err := c.renderArtifacts(ctx, runner, laid, opts, base)
	if err != nil {
		return err
	}

	printSuccess("Rendered %d file(s)", len(paths))
	for _, p := range paths {
		printFile(p)
	}
	printStats(treemap.Summarize(laid), layoutHit && renderHit)
	return nil
}

// renderArtifacts renders laid behind a spinner and writes one file per
// format under base.
func (c *CLI) renderArtifacts(ctx context.Context, runner *pipeline.Runner, laid *treemap.Tree, opts pipeline.Options, base string) ([]string, bool, error) {
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", opts.VizType))
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, laid, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return nil, false, fmt.Errorf("render: %w", err)
	}
	if ctx.Err() != nil {
		spinner.Stop()
		return nil, false, ctx.Err()
	}

	spinner.Update("Writing files...")
	paths, err := writeArtifacts(base, opts.Formats, artifacts)
	if err != nil {
		spinner.StopWithError("Write failed")
		return nil, false, err
	}
	spinner.Stop()
	return paths, cacheHit, nil
}

// writeArtifacts writes one file per format under base and returns the paths.
func writeArtifacts(base string, formats []string, artifacts map[string][]byte) ([]string, error) {
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		p := artifactPath(base, format)
		if err := os.WriteFile(p, artifacts[format], 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", p, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// renderBasePath names rendered files for input.
func renderBasePath(input string) string {
	if input == stdinPath {
		return "treemap"
	}
	return basePath(input)
}

// artifactPath returns the file a format is written to. JSON output is a
// saved layout and keeps the .layout.json suffix so it can be re-rendered.
func artifactPath(base, format string) string {
	if format == pipeline.FormatJSON {
		return base + ".layout.json"
	}
	return base + "." + format
}
