package sink

import (
	"bytes"

	"github.com/matzehuels/treemap/pkg/io"
	"github.com/matzehuels/treemap/pkg/treemap"
)

// RenderJSON exports the laid out tree in the saved layout format, with meta
// recorded alongside (options, IDs) for round-trip rendering.
func RenderJSON(t *treemap.Tree, meta map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	if err := io.WriteLayout(&buf, t, meta); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
