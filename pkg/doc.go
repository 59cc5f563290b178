// Package pkg provides the core libraries for treemap layouts.
//
// # Overview
//
// Treemap turns a weighted tree into nested rectangles whose areas are
// proportional to the weights, using the squarified algorithm to keep the
// rectangles close to square. The pkg directory is organized into four areas:
//
//  1. [treemap] - The layout engine (tree arena, aggregation, squarified layout)
//  2. [io], [scan] - Inputs (nested JSON/TOML documents, directory scans)
//  3. [render] - Outputs (SVG, PNG, saved layout JSON, Graphviz DOT)
//  4. [pipeline], [cache], [server] - Orchestration, caching and the HTTP API
//
// # Architecture
//
// The typical data flow:
//
//	JSON/TOML document or directory
//	         ↓
//	    [io] / [scan] package (build a weighted tree)
//	         ↓
//	    [treemap] package (aggregate weights + lay out)
//	         ↓
//	    [render/sink] / [render/nodelink] packages
//	         ↓
//	    SVG/PNG/JSON/DOT output
//
// # Quick Start
//
// Lay out a small tree and render it:
//
//	import (
//	    "github.com/matzehuels/treemap/pkg/render/sink"
//	    "github.com/matzehuels/treemap/pkg/treemap"
//	)
//
//	t := treemap.New(treemap.Rect{W: 800, H: 600})
//	src := t.AddChild(treemap.Root, "src", 0)
//	t.AddChild(src, "main.go", 1200)
//	t.AddChild(treemap.Root, "README.md", 300)
//
//	if err := treemap.Calculate(t, treemap.Options{Padding: 2}); err != nil {
//	    return err
//	}
//	svg := sink.RenderSVG(t, sink.WithLabels())
//
// # Main Packages
//
// [treemap] - Arena-backed tree with integer node IDs, weight aggregation with
// exclusion, ordering policies (descending weight or seeded shuffle) and the
// squarified layout itself. It does not log and has no dependencies beyond
// [errors].
//
// [io] - Nested JSON/TOML import with configurable key names, nested export
// and the saved layout format used by the cache, the API and 'render'.
//
// [scan] - Concurrent directory walk producing a tree weighted by file size,
// with an optional free-space node.
//
// [render/sink] - SVG (simple and cushion styles, palettes, legend) and PNG
// output. [render/nodelink] - Graphviz node-link diagrams of the hierarchy.
//
// [pipeline] - Shared defaults, validation and the cached scan → layout →
// render Runner used by the CLI and the HTTP API.
//
// [cache] - Cache interface with file, Redis, MongoDB and null backends,
// plus cache key generation.
//
// [server] - HTTP API on top of a pipeline Runner.
//
// [errors] - Coded errors shared by every package. [observability] - Hooks
// for metrics and tracing. [buildinfo] - Version information.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/treemap/...            # Specific package
//	go test -run Example ./pkg/...       # Examples only
//
// [treemap]: https://pkg.go.dev/github.com/matzehuels/treemap/pkg/treemap
// [io]: https://pkg.go.dev/github.com/matzehuels/treemap/pkg/io
// [scan]: https://pkg.go.dev/github.com/matzehuels/treemap/pkg/scan
// [render]: https://pkg.go.dev/github.com/matzehuels/treemap/pkg/render
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/treemap/pkg/render/sink
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/treemap/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/treemap/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/treemap/pkg/cache
// [server]: https://pkg.go.dev/github.com/matzehuels/treemap/pkg/server
// [errors]: https://pkg.go.dev/github.com/matzehuels/treemap/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/treemap/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/treemap/pkg/buildinfo
package pkg
