package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	tmio "github.com/matzehuels/treemap/pkg/io"
	"github.com/matzehuels/treemap/pkg/pipeline"
	"github.com/matzehuels/treemap/pkg/treemap"
)

// scanCommand creates the scan command for mapping disk usage.
func (c *CLI) scanCommand() *cobra.Command {
	var (
		output   string
		saveTree string
		treeOnly bool
	)
	flags := newOptionFlags()

	cmd := &cobra.Command{
		Use:   "scan [dir]",
		Short: "Map a directory's disk usage as a treemap",
		Long: `Map a directory's disk usage as a treemap.

Files become leaves weighted by their size and directories become inner
nodes. Symbolic links are not followed. The result is laid out and rendered
like any other tree; use --tree-only to just save the scanned tree as JSON.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			opts := flags.resolve(cmd, c.cfg())
			if treeOnly && saveTree == "" {
				saveTree = scanOutputBase(root, output) + ".tree.json"
			}
			return c.runScan(cmd.Context(), root, opts, output, saveTree, treeOnly, flags.noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output base path (default: directory name)")
	cmd.Flags().StringVar(&saveTree, "save-tree", "", "also write the scanned tree as nested JSON")
	cmd.Flags().BoolVar(&treeOnly, "tree-only", false, "write the scanned tree and skip layout and rendering")
	flags.addScan(cmd)
	flags.addLayout(cmd)
	flags.addRender(cmd)
	flags.addCache(cmd)

	return cmd
}

// runScan scans root, then lays out and renders the result.
func (c *CLI) runScan(ctx context.Context, root string, opts pipeline.Options, output, saveTree string, treeOnly, noCache bool) error {
	opts.Logger = c.Logger
	if !treeOnly {
		if err := opts.ValidateAndSetDefaults(); err != nil {
			return err
		}
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx), "scan")
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Scanning %s...", root))
	spinner.Start()

	tree, scanHit, err := runner.ScanWithCacheInfo(ctx, root, opts)
	if err != nil {
		spinner.StopWithError("Scan failed")
		return fmt.Errorf("scan %s: %w", root, err)
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	prog.done("Scanned", "root", root, "nodes", tree.Len(), "cached", scanHit)

	if saveTree != "" {
		if err := tmio.ExportTree(tree, tmio.DefaultKeys(), saveTree); err != nil {
			return fmt.Errorf("write tree %s: %w", saveTree, err)
		}
	}
	if treeOnly {
		printSuccess("Scan complete")
		printFile(saveTree)
		printStats(treemap.Summarize(tree), scanHit)
		printNewline()
		printNextStep("Render", appName+" render "+saveTree)
		return nil
	}

	laid, layoutHit, err := c.computeLayout(ctx, runner, tree, opts)
	if err != nil {
		return err
	}
	paths, renderHit, err := c.renderArtifacts(ctx, runner, laid, opts, scanOutputBase(root, output))
	if err != nil {
		return err
	}

	printSuccess("Scan complete")
	if saveTree != "" {
		printFile(saveTree)
	}
	for _, p := range paths {
		printFile(p)
	}
	printStats(treemap.Summarize(laid), scanHit && layoutHit && renderHit)
	printKeyValue("Total", formatBytes(int64(laid.Root().Weight)))
	printNewline()
	printTopChildren(laid, 10)
	return nil
}

// scanOutputBase names the files written for a scan of root.
func scanOutputBase(root, output string) string {
	if output != "" {
		return output
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "scan"
	}
	name := filepath.Base(abs)
	if name == string(filepath.Separator) || name == "." {
		return "scan"
	}
	return name
}
