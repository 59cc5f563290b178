// Package pipeline provides the scan → layout → render pipeline for treemap.
//
// This package implements the pipeline shared by the CLI and the HTTP API.
// By centralizing this logic, every entry point applies the same defaults,
// validation and cache keys.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Input: Decode a nested JSON/TOML tree, or scan a directory
//  2. Layout: Run [treemap.Calculate] on a copy of the tree
//  3. Render: Generate output in various formats (SVG, PNG, JSON, DOT)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Width:   1200,
//	    Height:  800,
//	    Formats: []string{"svg", "png"},
//	}
//	result, err := runner.Execute(ctx, tree, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Scan only
//	tree, err := runner.Scan(ctx, "/home", opts)
//
//	// Layout an existing tree
//	laid, err := runner.ComputeLayout(ctx, tree, opts)
//
//	// Render a laid out tree
//	artifacts, err := runner.Render(ctx, laid, opts)
//
// [treemap.Calculate]: github.com/matzehuels/treemap/pkg/treemap.Calculate
package pipeline

import (
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/treemap/pkg/cache"
	"github.com/matzehuels/treemap/pkg/errors"
	tmio "github.com/matzehuels/treemap/pkg/io"
	"github.com/matzehuels/treemap/pkg/render"
	"github.com/matzehuels/treemap/pkg/render/sink"
	"github.com/matzehuels/treemap/pkg/scan"
	"github.com/matzehuels/treemap/pkg/treemap"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default root rectangle width.
	DefaultWidth = 800.0

	// DefaultHeight is the default root rectangle height.
	DefaultHeight = 600.0

	// DefaultSeed is the shuffle seed used when sorting is disabled and no
	// seed is given, so that shuffled layouts are reproducible and cacheable.
	DefaultSeed = uint64(42)

	// DefaultStyle is the default SVG style.
	DefaultStyle = "simple"

	// DefaultPalette is the default fill palette.
	DefaultPalette = "blues"

	// MaxDimension bounds the root rectangle on each side.
	MaxDimension = 1e6
)

// Visualization types.
const (
	VizTypeTreemap  = "treemap"
	VizTypeNodelink = "nodelink"
)

// Format constants for output formats.
const (
	FormatSVG  = render.FormatSVG
	FormatPNG  = render.FormatPNG
	FormatJSON = render.FormatJSON
	FormatDOT  = render.FormatDOT
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Input options
	Keys tmio.Keys `json:"keys,omitempty"`

	// Scan options. MaxDepth also bounds nodelink diagrams.
	MaxDepth  int      `json:"max_depth,omitempty"`
	Hidden    bool     `json:"hidden,omitempty"`
	FreeSpace bool     `json:"free_space,omitempty"`
	Ignore    []string `json:"ignore,omitempty"`

	// Layout options
	Width     float64  `json:"width,omitempty"`
	Height    float64  `json:"height,omitempty"`
	Sort      *bool    `json:"sort,omitempty"` // nil or true: descending weight; false: shuffle
	Seed      uint64   `json:"seed,omitempty"`
	Direction string   `json:"direction,omitempty"`
	Padding   float64  `json:"padding,omitempty"`
	Exclude   []string `json:"exclude,omitempty"`

	// Render options
	VizType     string   `json:"viz_type,omitempty"`
	Formats     []string `json:"formats,omitempty"`
	Style       string   `json:"style,omitempty"`
	Palette     string   `json:"palette,omitempty"`
	Labels      bool     `json:"labels,omitempty"`
	Legend      bool     `json:"legend,omitempty"`
	Interactive bool     `json:"interactive,omitempty"`
	Detailed    bool     `json:"detailed,omitempty"` // nodelink labels
	Scale       float64  `json:"scale,omitempty"`    // PNG scale factor

	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Tree is the laid out tree.
	Tree *treemap.Tree

	// TreeHash is the content hash of the input tree.
	TreeHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	treemap.Stats
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !slices.Contains(render.Formats, format) {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, json, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateVizType checks that a visualization type is valid.
func ValidateVizType(vizType string) error {
	switch vizType {
	case VizTypeTreemap, VizTypeNodelink:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidInput, "invalid viz_type: %q (must be one of: treemap, nodelink)", vizType)
}

func validateDimension(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > MaxDimension {
		return errors.New(errors.ErrCodeInvalidInput, "%s must be between 0 and %g, got %v", name, float64(MaxDimension), v)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// SetScanDefaults sets default values for scanning.
func (o *Options) SetScanDefaults() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Direction == "" {
		o.Direction = string(treemap.Both)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := validateDimension("width", o.Width); err != nil {
		return err
	}
	if err := validateDimension("height", o.Height); err != nil {
		return err
	}
	_, err := o.TreemapOptions().Resolve()
	return err
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if o.VizType == "" {
		o.VizType = VizTypeTreemap
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.Palette == "" {
		o.Palette = DefaultPalette
	}
	if o.Scale == 0 {
		o.Scale = 1
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.IsNodelink() && slices.Contains(o.Formats, FormatPNG) {
		return errors.New(errors.ErrCodeUnsupported, "png output is not available for nodelink diagrams")
	}
	if _, err := sink.LookupStyle(o.Style); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "style")
	}
	if _, err := sink.LookupPalette(o.Palette); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "palette")
	}
	if o.Scale <= 0 || math.IsNaN(o.Scale) || math.IsInf(o.Scale, 0) {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be > 0, got %v", o.Scale)
	}
	return nil
}

// ValidateAndSetDefaults validates and defaults the layout and render
// options. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	return o.ValidateForRender()
}

// IsNodelink returns true if this is a nodelink visualization.
func (o *Options) IsNodelink() bool {
	return o.VizType == VizTypeNodelink
}

// Sorted reports whether children are ordered by descending weight.
func (o *Options) Sorted() bool {
	return o.Sort == nil || *o.Sort
}

// TreemapOptions converts the layout options for [treemap.Calculate].
func (o *Options) TreemapOptions() treemap.Options {
	return treemap.Options{
		Sort:      treemap.Bool(o.Sorted()),
		Seed:      o.Seed,
		Direction: treemap.Direction(o.Direction),
		Padding:   o.Padding,
		Exclude:   ExcludeValues(o.Exclude),
	}
}

// ExcludeValues turns textual exclude entries into payload values. Entries
// that parse as numbers or booleans also match payloads of that kind, the
// form [tmio] decodes numeric and boolean names into.
func ExcludeValues(names []string) []any {
	out := make([]any, 0, len(names))
	for _, name := range names {
		out = append(out, name)
		if f, err := strconv.ParseFloat(strings.TrimSpace(name), 64); err == nil && !math.IsNaN(f) {
			out = append(out, f)
		}
		if name == "true" || name == "false" {
			out = append(out, name == "true")
		}
	}
	return out
}

// ScanOptions converts the scan options for [scan.Dir].
func (o *Options) ScanOptions() scan.Options {
	return scan.Options{
		MaxDepth:  o.MaxDepth,
		Hidden:    o.Hidden,
		FreeSpace: o.FreeSpace,
		Ignore:    o.Ignore,
		Logger:    o.Logger,
	}
}

// ScanKeyOpts returns cache key options for scanning.
func (o *Options) ScanKeyOpts() cache.ScanKeyOpts {
	return cache.ScanKeyOpts{
		MaxDepth:   o.MaxDepth,
		Hidden:     o.Hidden,
		FreeSpace:  o.FreeSpace,
		IgnoreList: o.Ignore,
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
// The seed only takes part in the key of shuffled layouts.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	k := cache.LayoutKeyOpts{
		Width:     o.Width,
		Height:    o.Height,
		Sort:      o.Sorted(),
		Direction: o.Direction,
		Padding:   o.Padding,
	}
	if !k.Sort {
		k.Seed = o.Seed
	}
	if len(o.Exclude) > 0 {
		k.Exclude = slices.Sorted(slices.Values(o.Exclude))
	}
	return k
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		VizType:     o.VizType,
		Format:      format,
		Style:       o.Style,
		Palette:     o.Palette,
		Labels:      o.Labels,
		Legend:      o.Legend,
		Interactive: o.Interactive,
		Detailed:    o.Detailed,
		Scale:       o.Scale,
	}
}

// LayoutMeta records the layout options in saved layouts.
func (o *Options) LayoutMeta() map[string]any {
	meta := map[string]any{
		"width":     o.Width,
		"height":    o.Height,
		"sort":      o.Sorted(),
		"direction": o.Direction,
		"padding":   o.Padding,
	}
	if !o.Sorted() {
		meta["seed"] = o.Seed
	}
	if len(o.Exclude) > 0 {
		meta["exclude"] = o.Exclude
	}
	return meta
}
