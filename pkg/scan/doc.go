// Package scan builds a weighted tree from a directory on disk.
//
// Files become leaves weighted by their size in bytes; directories become
// inner nodes whose weight is filled in by [treemap.Calculate]. Payloads are
// slash separated paths relative to the scanned root, so a layout can exclude
// "vendor" or "web/node_modules" directly.
//
// Subdirectories are read in parallel, bounded by [Options.Concurrency].
// Symbolic links are never followed, and unreadable subdirectories show up as
// empty nodes rather than failing the scan.
//
//	tree, stats, err := scan.Dir(ctx, ".", scan.Options{Ignore: []string{".git"}})
//
// [treemap.Calculate]: github.com/matzehuels/treemap/pkg/treemap.Calculate
package scan
