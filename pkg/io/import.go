package io

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/treemap"
)

// Keys names the fields of a nested tree object.
type Keys struct {
	Children string `json:"children,omitempty" toml:"children"`
	Count    string `json:"count,omitempty" toml:"count"`
	Data     string `json:"data,omitempty" toml:"data"`
}

// DefaultKeys returns the keys used when none are configured.
func DefaultKeys() Keys {
	return Keys{Children: "children", Count: "value", Data: "name"}
}

// WithDefaults fills empty Children and Count keys. Data is left alone
// because an empty data key is meaningful.
func (k Keys) WithDefaults() Keys {
	d := DefaultKeys()
	if k.Children == "" {
		k.Children = d.Children
	}
	if k.Count == "" {
		k.Count = d.Count
	}
	return k
}

// Validate checks each key with [errors.ValidateKey].
func (k Keys) Validate() error {
	for _, key := range []string{k.Children, k.Count, k.Data} {
		if err := errors.ValidateKey(key); err != nil {
			return err
		}
	}
	if k.Children == "" || k.Count == "" {
		return errors.New(errors.ErrCodeInvalidKey, "children and count keys are required")
	}
	if k.Children == k.Count || (k.Data != "" && (k.Data == k.Children || k.Data == k.Count)) {
		return errors.New(errors.ErrCodeInvalidKey, "keys must be distinct")
	}
	return nil
}

// ReadJSON decodes a nested JSON object from r into a new tree. The root
// rectangle is left empty; set it with [treemap.Tree.SetRect] before laying out.
// ReadJSON does not close r.
func ReadJSON(r io.Reader, keys Keys) (*treemap.Tree, error) {
	var doc map[string]any
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json")
	}
	return Decode(doc, keys)
}

// ReadTOML decodes a TOML document from r the same way as [ReadJSON].
func ReadTOML(r io.Reader, keys Keys) (*treemap.Tree, error) {
	var doc map[string]any
	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode toml")
	}
	return Decode(doc, keys)
}

// Decode builds a tree from an already decoded nested object.
func Decode(doc map[string]any, keys Keys) (*treemap.Tree, error) {
	keys = keys.WithDefaults()
	if err := keys.Validate(); err != nil {
		return nil, err
	}

	t := treemap.New(treemap.Rect{})
	if err := fill(t, treemap.Root, doc, keys, "$"); err != nil {
		return nil, err
	}
	return t, nil
}

func fill(t *treemap.Tree, id treemap.NodeID, obj map[string]any, keys Keys, path string) error {
	n := t.Node(id)
	if keys.Data != "" {
		n.Payload = normalizePayload(obj[keys.Data])
	} else {
		n.Payload = obj
	}

	if raw, ok := obj[keys.Count]; ok && raw != nil {
		w, err := toWeight(raw)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidWeight, err, "%s.%s", path, keys.Count)
		}
		n.Weight = w
	}

	kids, ok := asList(obj[keys.Children])
	if !ok {
		return nil
	}
	for i, raw := range kids {
		child, ok := raw.(map[string]any)
		if !ok {
			return errors.New(errors.ErrCodeInvalidFormat, "%s.%s[%d]: expected object, got %T", path, keys.Children, i, raw)
		}
		c := t.AddChild(id, nil, 0)
		if err := fill(t, c, child, keys, fmt.Sprintf("%s.%s[%d]", path, keys.Children, i)); err != nil {
			return err
		}
	}
	return nil
}

// normalizePayload stores numeric payloads as float64 whichever decoder
// produced them (json.Number, TOML int64), so equal numbers compare equal.
func normalizePayload(v any) any {
	switch n := v.(type) {
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return v
}

// asList accepts the array shapes produced by encoding/json and BurntSushi/toml.
func asList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []map[string]any:
		out := make([]any, len(l))
		for i, m := range l {
			out[i] = m
		}
		return out, true
	}
	return nil, false
}

func toWeight(v any) (float64, error) {
	var w float64
	switch n := v.(type) {
	case float64:
		w = n
	case int64:
		w = float64(n)
	case int:
		w = float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, err
		}
		w = f
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return 0, fmt.Errorf("weight must be finite, got %v", w)
	}
	return w, nil
}

// ImportFile reads a tree from path, choosing the decoder by extension:
// ".toml" uses [ReadTOML], anything else [ReadJSON].
func ImportFile(path string, keys Keys) (*treemap.Tree, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return ReadTOML(f, keys)
	}
	return ReadJSON(f, keys)
}
