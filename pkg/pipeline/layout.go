package pipeline

import (
	"github.com/matzehuels/treemap/pkg/treemap"
)

// Layout lays out a copy of t in a Width x Height rectangle anchored at the
// origin. The input tree is not modified.
func Layout(t *treemap.Tree, opts Options) (*treemap.Tree, error) {
	out := t.Clone()
	out.SetRect(treemap.Root, treemap.Rect{W: opts.Width, H: opts.Height})
	if err := treemap.Calculate(out, opts.TreemapOptions()); err != nil {
		return nil, err
	}
	return out, nil
}
