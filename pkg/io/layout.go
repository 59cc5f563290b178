package io

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/treemap"
)

// LayoutVersion is the current version of the saved layout format.
const LayoutVersion = 1

// Layout is the serialized form of a laid out tree.
type Layout struct {
	Version int            `json:"version"`
	Meta    map[string]any `json:"meta,omitempty"`
	Nodes   []LayoutNode   `json:"nodes"`
}

// LayoutNode is one node record of a [Layout].
type LayoutNode struct {
	ID             treemap.NodeID   `json:"id"`
	Parent         treemap.NodeID   `json:"parent"`
	Children       []treemap.NodeID `json:"children,omitempty"`
	Depth          int              `json:"depth"`
	Index          int              `json:"index"`
	Label          string           `json:"label,omitempty"`
	Payload        any              `json:"payload,omitempty"`
	Weight         float64          `json:"weight"`
	Rect           treemap.Rect     `json:"rect"`
	Excluded       bool             `json:"excluded,omitempty"`
	MinChildWeight float64          `json:"min_child_weight,omitempty"`
	MaxChildWeight float64          `json:"max_child_weight,omitempty"`
}

// NewLayout converts a laid out tree into its serialized form.
func NewLayout(t *treemap.Tree, meta map[string]any) Layout {
	nodes := t.Nodes()
	out := Layout{Version: LayoutVersion, Meta: meta, Nodes: make([]LayoutNode, len(nodes))}
	for i := range nodes {
		n := &nodes[i]
		out.Nodes[i] = LayoutNode{
			ID:             n.ID,
			Parent:         n.Parent,
			Children:       n.Children,
			Depth:          n.Depth,
			Index:          n.Index,
			Label:          n.Label(),
			Payload:        n.Payload,
			Weight:         finite(n.Weight),
			Rect:           n.Rect,
			Excluded:       n.Excluded,
			MinChildWeight: finite(n.MinChildWeight),
			MaxChildWeight: finite(n.MaxChildWeight),
		}
	}
	return out
}

// Tree rebuilds the tree described by l. The structure is validated;
// weights are taken as stored.
func (l Layout) Tree() (*treemap.Tree, error) {
	if l.Version != LayoutVersion {
		return nil, errors.New(errors.ErrCodeUnsupported, "layout version %d (want %d)", l.Version, LayoutVersion)
	}
	nodes := make([]treemap.Node, len(l.Nodes))
	for i, r := range l.Nodes {
		nodes[i] = treemap.Node{
			ID:             r.ID,
			Parent:         r.Parent,
			Children:       r.Children,
			Depth:          r.Depth,
			Index:          r.Index,
			Payload:        r.Payload,
			Weight:         r.Weight,
			Rect:           r.Rect,
			Excluded:       r.Excluded,
			MinChildWeight: r.MinChildWeight,
			MaxChildWeight: r.MaxChildWeight,
		}
	}
	return treemap.FromNodes(nodes)
}

// WriteLayout encodes a laid out tree as JSON and writes it to w.
func WriteLayout(w io.Writer, t *treemap.Tree, meta map[string]any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewLayout(t, meta)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// MarshalLayout is [WriteLayout] into a compact byte slice, as stored in caches.
func MarshalLayout(t *treemap.Tree, meta map[string]any) ([]byte, error) {
	return json.Marshal(NewLayout(t, meta))
}

// ReadLayout decodes a layout written by [WriteLayout] and returns the
// restored tree together with the stored metadata.
func ReadLayout(r io.Reader) (*treemap.Tree, map[string]any, error) {
	var l Layout
	if err := json.NewDecoder(r).Decode(&l); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode layout")
	}
	t, err := l.Tree()
	if err != nil {
		return nil, nil, err
	}
	return t, l.Meta, nil
}

// UnmarshalLayout is [ReadLayout] over a byte slice.
func UnmarshalLayout(data []byte) (*treemap.Tree, map[string]any, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode layout")
	}
	t, err := l.Tree()
	if err != nil {
		return nil, nil, err
	}
	return t, l.Meta, nil
}

// ExportLayout writes a laid out tree to a JSON file at path.
func ExportLayout(t *treemap.Tree, meta map[string]any, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteLayout(f, t, meta)
}

// ImportLayout reads a layout file written by [ExportLayout].
func ImportLayout(path string) (*treemap.Tree, map[string]any, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadLayout(f)
}

// finite maps NaN and infinities to 0 since JSON cannot represent them.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
