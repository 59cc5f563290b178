package io

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"

	"github.com/matzehuels/treemap/pkg/treemap"
)

// EncodeTree converts a tree back into the nested form read by [Decode].
//
// If keys.Data is empty and a payload is an object, its fields are copied
// into the output object; other payloads are written under the default data
// key. Inner nodes carry their current (possibly aggregated) weight.
func EncodeTree(t *treemap.Tree, keys Keys) map[string]any {
	keys = keys.WithDefaults()
	return encodeNode(t, treemap.Root, keys)
}

func encodeNode(t *treemap.Tree, id treemap.NodeID, keys Keys) map[string]any {
	n := t.Node(id)
	obj := make(map[string]any)

	switch p := n.Payload.(type) {
	case map[string]any:
		if keys.Data == "" {
			maps.Copy(obj, p)
		} else {
			obj[keys.Data] = p
		}
	case nil:
	default:
		key := keys.Data
		if key == "" {
			key = DefaultKeys().Data
		}
		obj[key] = p
	}

	obj[keys.Count] = n.Weight
	delete(obj, keys.Children)
	if len(n.Children) > 0 {
		kids := make([]any, len(n.Children))
		for i, c := range n.Children {
			kids[i] = encodeNode(t, c, keys)
		}
		obj[keys.Children] = kids
	}
	return obj
}

// WriteTree writes t as nested JSON. The output can be re-read with
// [ReadJSON] using the same keys.
func WriteTree(w io.Writer, t *treemap.Tree, keys Keys) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(EncodeTree(t, keys)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportTree writes t as nested JSON to a file at path.
func ExportTree(t *treemap.Tree, keys Keys, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteTree(f, t, keys)
}
