package cache

import "fmt"

// Keyer builds cache keys.
type Keyer interface {
	// ScanKey identifies the tree produced by scanning a directory.
	ScanKey(root string, opts ScanKeyOpts) string

	// LayoutKey identifies a layout of the tree with the given content hash.
	LayoutKey(treeHash string, opts LayoutKeyOpts) string

	// ArtifactKey identifies a rendering of the layout with the given hash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string

	// StoredKey identifies a layout saved under a client visible ID.
	StoredKey(id string) string
}

// ScanKeyOpts lists the scan options that change the resulting tree.
type ScanKeyOpts struct {
	MaxDepth   int      `json:"max_depth"`
	Hidden     bool     `json:"hidden"`
	FreeSpace  bool     `json:"free_space"`
	IgnoreList []string `json:"ignore,omitempty"`
}

// LayoutKeyOpts lists the options that change a computed layout.
type LayoutKeyOpts struct {
	Width     float64  `json:"width"`
	Height    float64  `json:"height"`
	Sort      bool     `json:"sort"`
	Seed      uint64   `json:"seed"`
	Direction string   `json:"direction"`
	Padding   float64  `json:"padding"`
	Exclude   []string `json:"exclude,omitempty"`
}

// ArtifactKeyOpts lists the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	VizType     string  `json:"viz_type"`
	Format      string  `json:"format"`
	Style       string  `json:"style"`
	Palette     string  `json:"palette"`
	Labels      bool    `json:"labels"`
	Legend      bool    `json:"legend"`
	Interactive bool    `json:"interactive"`
	Detailed    bool    `json:"detailed"`
	Scale       float64 `json:"scale"`
}

// DefaultKeyer hashes options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard key scheme.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ScanKey returns "scan:<sha256>".
func (DefaultKeyer) ScanKey(root string, opts ScanKeyOpts) string {
	return hashKey("scan", root, opts)
}

// LayoutKey returns "layout:<sha256>".
func (DefaultKeyer) LayoutKey(treeHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", treeHash, opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// StoredKey returns "stored:<id>". IDs are generated by the server, so they
// are used verbatim.
func (DefaultKeyer) StoredKey(id string) string {
	return fmt.Sprintf("stored:%s", id)
}
