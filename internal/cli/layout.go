package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	tmio "github.com/matzehuels/treemap/pkg/io"
	"github.com/matzehuels/treemap/pkg/pipeline"
	"github.com/matzehuels/treemap/pkg/treemap"
)

// layoutCommand creates the layout command for computing treemap layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var output string
	flags := newOptionFlags()

	cmd := &cobra.Command{
		Use:   "layout [tree.json|tree.toml|-]",
		Short: "Compute a treemap layout for a weighted tree",
		Long: `Compute a treemap layout for a weighted tree.

The input is a nested JSON or TOML document (or "-" for JSON on stdin) where
each node lists its children and leaves carry a weight. The output is a
layout.json file with one rectangle per node, which 'render' and 'browse'
accept directly.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := flags.resolve(cmd, c.cfg())
			return c.runLayout(cmd.Context(), args[0], opts, output, flags.noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	flags.addInput(cmd)
	flags.addLayout(cmd)
	flags.addCache(cmd)

	return cmd
}

// runLayout loads the tree, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, path string, opts pipeline.Options, output string, noCache bool) error {
	opts.Logger = c.Logger
	if err := opts.ValidateForLayout(); err != nil {
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

	laid, cacheHit, err := c.computeLayout(ctx, runner, in.tree, opts)
	if err != nil {
		return err
	}

	outputPath := output
	if outputPath == "" {
		outputPath = layoutOutputPath(path)
	}
	if err := tmio.ExportLayout(laid, opts.LayoutMeta(), outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(treemap.Summarize(laid), cacheHit)
	printNewline()
	printTopChildren(laid, 8)
	printNextStep("Render", appName+" render "+outputPath)
	printNextStep("Browse", appName+" browse "+outputPath)

	return nil
}

// computeLayout runs the layout stage behind a spinner.
func (c *CLI) computeLayout(ctx context.Context, runner *pipeline.Runner, t *treemap.Tree, opts pipeline.Options) (*treemap.Tree, bool, error) {
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Computing layout for %d nodes...", t.Len()))
	spinner.Start()

	laid, cacheHit, err := runner.ComputeLayoutWithCacheInfo(ctx, t, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return nil, false, fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return nil, false, ctx.Err()
	}
	return laid, cacheHit, nil
}

// layoutOutputPath names the layout file written for input.
func layoutOutputPath(input string) string {
	if input == stdinPath {
		return "tree.layout.json"
	}
	return basePath(input) + ".layout.json"
}
