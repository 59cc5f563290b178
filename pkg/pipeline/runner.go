package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/treemap/pkg/cache"
	tmio "github.com/matzehuels/treemap/pkg/io"
	"github.com/matzehuels/treemap/pkg/observability"
	"github.com/matzehuels/treemap/pkg/scan"
	"github.com/matzehuels/treemap/pkg/treemap"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the layout → render pipeline on t with caching.
func (r *Runner) Execute(ctx context.Context, t *treemap.Tree, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	treeHash, err := TreeHash(t)
	if err != nil {
		return nil, err
	}
	result := &Result{TreeHash: treeHash}

	// Stage 1: Layout
	layoutStart := time.Now()
	laid, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, t, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Tree = laid
	result.Stats.Stats = treemap.Summarize(laid)
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	opts.Logger.Info("computed layout",
		"nodes", result.Stats.Nodes,
		"excluded", result.Stats.Excluded,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, laid, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ScanWithCacheInfo scans a directory with caching and returns cache hit info.
func (r *Runner) ScanWithCacheInfo(ctx context.Context, root string, opts Options) (*treemap.Tree, bool, error) {
	r.applyLogger(&opts)
	opts.SetScanDefaults()

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, false, fmt.Errorf("resolve %s: %w", root, err)
	}
	cacheKey := r.Keyer.ScanKey(abs, opts.ScanKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var doc map[string]any
			if err := json.Unmarshal(data, &doc); err == nil {
				if t, err := tmio.Decode(doc, tmio.DefaultKeys()); err == nil {
					observability.Cache().OnCacheHit(ctx, "scan")
					return t, true, nil
				}
			}
		}
		observability.Cache().OnCacheMiss(ctx, "scan")
	}

	hooks := observability.Pipeline()
	hooks.OnScanStart(ctx, abs)
	start := time.Now()
	t, stats, err := scan.Dir(ctx, abs, opts.ScanOptions())
	hooks.OnScanComplete(ctx, abs, treeLen(t), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	opts.Logger.Info("scanned directory",
		"root", abs,
		"files", stats.Files,
		"dirs", stats.Dirs,
		"bytes", stats.Bytes,
		"duration", time.Since(start))

	if data, err := json.Marshal(tmio.EncodeTree(t, tmio.DefaultKeys())); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLScan); err == nil {
			observability.Cache().OnCacheSet(ctx, "scan", len(data))
		}
	}

	return t, false, nil
}

// Scan is a convenience wrapper that calls ScanWithCacheInfo and discards the cache hit info.
func (r *Runner) Scan(ctx context.Context, root string, opts Options) (*treemap.Tree, error) {
	t, _, err := r.ScanWithCacheInfo(ctx, root, opts)
	return t, err
}

// ComputeLayoutWithCacheInfo lays out a copy of t with caching and returns
// cache hit info.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, t *treemap.Tree, opts Options) (*treemap.Tree, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}

	treeHash, err := TreeHash(t)
	if err != nil {
		return nil, false, err
	}
	cacheKey := r.Keyer.LayoutKey(treeHash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if cached, _, err := tmio.UnmarshalLayout(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return cached, true, nil
			}
			// If deserialization fails, fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, t.Len())
	start := time.Now()
	laid, err := Layout(t, opts)
	hooks.OnLayoutComplete(ctx, t.Len(), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}
	opts.Logger.Debug("layout options", "width", opts.Width, "height", opts.Height,
		"sorted", opts.Sorted(), "direction", opts.Direction, "padding", opts.Padding)

	if data, err := tmio.MarshalLayout(laid, opts.LayoutMeta()); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err == nil {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}

	return laid, false, nil
}

// ComputeLayout is a convenience wrapper that calls ComputeLayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, t *treemap.Tree, opts Options) (*treemap.Tree, error) {
	laid, _, err := r.ComputeLayoutWithCacheInfo(ctx, t, opts)
	return laid, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, t *treemap.Tree, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	// Compute cache key from layout data
	layoutData, err := tmio.MarshalLayout(t, nil)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	// Try to get all formats from cache
	artifacts := make(map[string][]byte)
	if !opts.Refresh {
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, cacheKey)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := Render(ctx, t, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, t *treemap.Tree, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, t, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// TreeHash returns the content hash of a tree's structure, payloads and
// stored weights. Rectangles do not take part.
func TreeHash(t *treemap.Tree) (string, error) {
	data, err := json.Marshal(tmio.EncodeTree(t, tmio.DefaultKeys()))
	if err != nil {
		return "", fmt.Errorf("hash tree: %w", err)
	}
	return cache.Hash(data), nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func treeLen(t *treemap.Tree) int {
	if t == nil {
		return 0
	}
	return t.Len()
}
