package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/treemap/pkg/errors"
	tmio "github.com/matzehuels/treemap/pkg/io"
	"github.com/matzehuels/treemap/pkg/treemap"
)

// stdinPath selects standard input as the input file.
const stdinPath = "-"

// input is a loaded tree document. Saved layouts already carry rectangles
// and can be rendered without another layout pass.
type input struct {
	tree    *treemap.Tree
	laidOut bool
	meta    map[string]any
}

// loadInput reads a nested JSON/TOML tree or a saved layout from path.
// The kind of JSON document is detected from its content.
func loadInput(path string, keys tmio.Keys, stdin io.Reader) (*input, error) {
	var (
		data []byte
		err  error
	)
	if path == stdinPath {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		t, err := tmio.ReadTOML(bytes.NewReader(data), keys)
		if err != nil {
			return nil, err
		}
		return &input{tree: t}, nil
	}

	if isLayout(data) {
		t, meta, err := tmio.UnmarshalLayout(data)
		if err != nil {
			return nil, err
		}
		return &input{tree: t, laidOut: true, meta: meta}, nil
	}

	t, err := tmio.ReadJSON(bytes.NewReader(data), keys)
	if err != nil {
		return nil, err
	}
	return &input{tree: t}, nil
}

// isLayout reports whether data looks like a saved layout document.
func isLayout(data []byte) bool {
	var probe struct {
		Version int               `json:"version"`
		Nodes   []json.RawMessage `json:"nodes"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}
	return probe.Version > 0 && len(probe.Nodes) > 0
}
