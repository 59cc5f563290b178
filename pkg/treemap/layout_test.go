package treemap

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/matzehuels/treemap/pkg/errors"
)

const eps = 1e-6

func approx(a, b float64) bool { return math.Abs(a-b) <= eps }

func approxRect(a, b Rect) bool {
	return approx(a.X, b.X) && approx(a.Y, b.Y) && approx(a.W, b.W) && approx(a.H, b.H)
}

func flatTree(rect Rect, weights ...float64) (*Tree, []NodeID) {
	tr := New(rect)
	ids := make([]NodeID, len(weights))
	for i, w := range weights {
		ids[i] = tr.AddChild(Root, string(rune('A'+i)), w)
	}
	return tr, ids
}

func TestCalculateScenarios(t *testing.T) {
	tests := []struct {
		name    string
		rect    Rect
		weights []float64
		opts    Options
		want    []Rect
	}{
		{
			name:    "three children",
			rect:    Rect{W: 100, H: 100},
			weights: []float64{50, 30, 20},
			want: []Rect{
				{X: 0, Y: 0, W: 62.5, H: 80},
				{X: 62.5, Y: 0, W: 37.5, H: 80},
				{X: 0, Y: 80, W: 100, H: 20},
			},
		},
		{
			name:    "zero weight siblings",
			rect:    Rect{W: 100, H: 100},
			weights: []float64{100, 0, 0},
			want: []Rect{
				{X: 0, Y: 0, W: 100, H: 100},
				{X: 0, Y: 100, W: 0, H: 0},
				{X: 0, Y: 100, W: 0, H: 0},
			},
		},
		{
			name:    "wide rectangle gives squares",
			rect:    Rect{W: 200, H: 100},
			weights: []float64{1, 1},
			want: []Rect{
				{X: 0, Y: 0, W: 100, H: 100},
				{X: 100, Y: 0, W: 100, H: 100},
			},
		},
		{
			name:    "horizontal rows",
			rect:    Rect{W: 100, H: 100},
			weights: []float64{1, 1, 1},
			opts:    Options{Direction: Horizontal},
			want: []Rect{
				{X: 0, Y: 0, W: 50, H: 200.0 / 3},
				{X: 50, Y: 0, W: 50, H: 200.0 / 3},
				{X: 0, Y: 200.0 / 3, W: 100, H: 100.0 / 3},
			},
		},
		{
			name:    "vertical rows",
			rect:    Rect{W: 100, H: 100},
			weights: []float64{1, 1, 1},
			opts:    Options{Direction: Vertical},
			want: []Rect{
				{X: 0, Y: 0, W: 200.0 / 3, H: 50},
				{X: 0, Y: 50, W: 200.0 / 3, H: 50},
				{X: 200.0 / 3, Y: 0, W: 100.0 / 3, H: 100},
			},
		},
		{
			name:    "padding",
			rect:    Rect{W: 120, H: 120},
			weights: []float64{50, 30, 20},
			opts:    Options{Padding: 10},
			want: []Rect{
				{X: 10, Y: 10, W: 62.5, H: 80},
				{X: 72.5, Y: 10, W: 37.5, H: 80},
				{X: 10, Y: 90, W: 100, H: 20},
			},
		},
		{
			name:    "negative weight",
			rect:    Rect{W: 100, H: 100},
			weights: []float64{80, -20, 40},
			want: []Rect{
				{X: 0, Y: 0, W: 100, H: 80},
				{X: 200, Y: 80, W: -100, H: 20},
				{X: 0, Y: 80, W: 200, H: 20},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, ids := flatTree(tt.rect, tt.weights...)
			if err := Calculate(tr, tt.opts); err != nil {
				t.Fatalf("Calculate() error: %v", err)
			}
			for i, id := range ids {
				if got := tr.Node(id).Rect; !approxRect(got, tt.want[i]) {
					t.Errorf("child %d rect = %v, want %v", i, got, tt.want[i])
				}
			}
		})
	}
}

func TestCalculateNegativeWeightPropagates(t *testing.T) {
	tr, ids := flatTree(Rect{W: 100, H: 100}, 80, -20, 40)
	if err := Calculate(tr, Options{}); err != nil {
		t.Fatalf("Calculate() error: %v", err)
	}
	if got := tr.Root().Weight; got != 100 {
		t.Errorf("root weight = %v, want 100", got)
	}
	if got := tr.Node(ids[1]).Rect.Area(); got >= 0 {
		t.Errorf("negative weight area = %v, want < 0", got)
	}
	if tr.Root().MinChildWeight != -20 || tr.Root().MaxChildWeight != 80 {
		t.Errorf("child extrema = [%v, %v], want [-20, 80]", tr.Root().MinChildWeight, tr.Root().MaxChildWeight)
	}
}

func TestCalculateExclusion(t *testing.T) {
	tr, ids := flatTree(Rect{W: 100, H: 100}, 30, 40, 30)

	if err := Calculate(tr, Options{Exclude: []any{"B"}}); err != nil {
		t.Fatal(err)
	}

	if w := tr.Root().Weight; w != 60 {
		t.Errorf("root weight = %v, want 60", w)
	}
	if r := tr.Node(ids[1]).Rect; r != Offscreen {
		t.Errorf("excluded rect = %v, want %v", r, Offscreen)
	}
	for _, id := range []NodeID{ids[0], ids[2]} {
		if a := tr.Node(id).Rect.Area(); !approx(a, 5000) {
			t.Errorf("%s area = %v, want 5000", tr.Node(id).Label(), a)
		}
	}
}

func TestCalculateExcludedSubtreeKeepsOldRects(t *testing.T) {
	tr := New(Rect{W: 10, H: 10})
	dir := tr.AddChild(Root, "dir", 0)
	leaf := tr.AddChild(dir, "leaf", 1)
	tr.AddChild(Root, "other", 1)

	if err := Calculate(tr, Options{}); err != nil {
		t.Fatal(err)
	}
	before := tr.Node(leaf).Rect

	if err := Calculate(tr, Options{Exclude: []any{"dir"}}); err != nil {
		t.Fatal(err)
	}
	if tr.Node(dir).Rect != Offscreen {
		t.Errorf("dir rect = %v, want offscreen", tr.Node(dir).Rect)
	}
	if tr.Node(leaf).Rect != before {
		t.Errorf("descendant of excluded node was laid out again: %v", tr.Node(leaf).Rect)
	}
}

func TestCalculateLeafRoot(t *testing.T) {
	rect := Rect{X: 3, Y: 4, W: 50, H: 20}
	tr := New(rect)
	tr.SetWeight(Root, 7)

	if err := Calculate(tr, Options{Padding: 5}); err != nil {
		t.Fatal(err)
	}
	if tr.Root().Rect != rect {
		t.Errorf("leaf rect changed to %v", tr.Root().Rect)
	}
	if tr.Root().Weight != 7 {
		t.Errorf("leaf weight changed to %v", tr.Root().Weight)
	}
}

func TestCalculateIdempotent(t *testing.T) {
	tr := randomTree(rand.New(rand.NewPCG(1, 2)), Rect{W: 640, H: 480}, 4, 5)

	if err := Calculate(tr, Options{Padding: 1}); err != nil {
		t.Fatal(err)
	}
	first := tr.Clone()
	if err := Calculate(tr, Options{Padding: 1}); err != nil {
		t.Fatal(err)
	}

	for i, n := range tr.Nodes() {
		if n.Rect != first.Nodes()[i].Rect {
			t.Fatalf("node %d moved from %v to %v", i, first.Nodes()[i].Rect, n.Rect)
		}
	}
}

func TestCalculateShuffleReproducible(t *testing.T) {
	build := func() *Tree {
		return randomTree(rand.New(rand.NewPCG(7, 7)), Rect{W: 300, H: 200}, 3, 6)
	}
	a, b := build(), build()
	opts := Options{Sort: Bool(false), Seed: 99}

	if err := Calculate(a, opts); err != nil {
		t.Fatal(err)
	}
	if err := Calculate(b, opts); err != nil {
		t.Fatal(err)
	}
	for i := range a.Nodes() {
		if a.Nodes()[i].Rect != b.Nodes()[i].Rect {
			t.Fatalf("node %d differs between runs with the same seed", i)
		}
	}
}

func TestCalculateProperties(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"sorted", Options{}},
		{"shuffled", Options{Sort: Bool(false), Seed: 3}},
		{"horizontal", Options{Direction: Horizontal}},
		{"vertical", Options{Direction: Vertical}},
		{"padded", Options{Padding: 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewPCG(42, 43))
			for range 20 {
				tr := randomTree(rng, Rect{X: 5, Y: 5, W: 800, H: 600}, 3, 6)
				if err := Calculate(tr, tt.opts); err != nil {
					t.Fatal(err)
				}
				checkTiling(t, tr, tt.opts.Padding)
			}
		})
	}
}

// checkTiling asserts that every inner node's children exactly tile its padded
// rectangle: areas sum up, each area is proportional to weight, children stay
// inside and siblings do not overlap.
func checkTiling(t *testing.T, tr *Tree, padding float64) {
	t.Helper()
	Walk(tr, func(n *Node) bool {
		if n.IsLeaf() || n.Weight <= 0 {
			return true
		}
		inner := n.Rect.Inset(padding)
		if inner.W <= 0 || inner.H <= 0 {
			return false
		}
		area := inner.Area()
		tol := 1e-6 * area

		var sum float64
		for i, c := range n.Children {
			r := tr.Node(c).Rect
			sum += r.Area()
			want := tr.Node(c).Weight / n.Weight * area
			if math.Abs(r.Area()-want) > tol {
				t.Errorf("node %d: child %d area %v, want %v", n.ID, c, r.Area(), want)
			}
			if !inner.Contains(r, 1e-6) {
				t.Errorf("node %d: child %d %v outside %v", n.ID, c, r, inner)
			}
			for _, d := range n.Children[i+1:] {
				if o := r.Overlap(tr.Node(d).Rect); o > tol {
					t.Errorf("node %d: children %d and %d overlap by %v", n.ID, c, d, o)
				}
			}
		}
		if math.Abs(sum-area) > tol {
			t.Errorf("node %d: child areas sum to %v, want %v", n.ID, sum, area)
		}
		return true
	})
}

// randomTree builds a tree with positive leaf weights.
func randomTree(rng *rand.Rand, rect Rect, depth, fanout int) *Tree {
	tr := New(rect)
	var grow func(id NodeID, d int)
	grow = func(id NodeID, d int) {
		n := 1 + rng.IntN(fanout)
		for i := range n {
			if d < depth && rng.IntN(3) == 0 {
				c := tr.AddChild(id, i, 0)
				grow(c, d+1)
				continue
			}
			tr.AddChild(id, i, 1+float64(rng.IntN(100)))
		}
	}
	grow(Root, 1)
	return tr
}

func TestCalculateDegenerateRectangles(t *testing.T) {
	t.Run("zero width terminates", func(t *testing.T) {
		tr, ids := flatTree(Rect{W: 0, H: 100}, 3, 2, 1)
		if err := Calculate(tr, Options{}); err != nil {
			t.Fatal(err)
		}
		wantH := []float64{50, 100.0 / 3, 50.0 / 3}
		for i, id := range ids {
			r := tr.Node(id).Rect
			if r.W != 0 || !approx(r.H, wantH[i]) {
				t.Errorf("child %d rect = %v, want width 0 height %v", i, r, wantH[i])
			}
		}
	})

	t.Run("zero size", func(t *testing.T) {
		tr, ids := flatTree(Rect{}, 3, 2, 1)
		if err := Calculate(tr, Options{}); err != nil {
			t.Fatal(err)
		}
		for _, id := range ids {
			if a := tr.Node(id).Rect.Area(); a != 0 {
				t.Errorf("child area = %v, want 0", a)
			}
		}
	})

	t.Run("padding larger than rectangle", func(t *testing.T) {
		tr, ids := flatTree(Rect{W: 100, H: 100}, 1, 1)
		if err := Calculate(tr, Options{Padding: 60}); err != nil {
			t.Fatal(err)
		}
		for _, id := range ids {
			if r := tr.Node(id).Rect; r.W > 0 || r.H > 0 {
				t.Errorf("child rect = %v, want non-positive extent", r)
			}
		}
	})

	t.Run("all weights zero", func(t *testing.T) {
		tr, ids := flatTree(Rect{W: 10, H: 10}, 0, 0)
		if err := Calculate(tr, Options{}); err != nil {
			t.Fatal(err)
		}
		for _, id := range ids {
			r := tr.Node(id).Rect
			if math.IsNaN(r.X) || math.IsNaN(r.Y) || r.Area() != 0 {
				t.Errorf("child rect = %v, want a finite empty rectangle", r)
			}
		}
	})
}

func TestCalculateInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"direction", Options{Direction: "diagonal"}, errors.ErrCodeInvalidDirection},
		{"negative padding", Options{Padding: -1}, errors.ErrCodeInvalidPadding},
		{"nan padding", Options{Padding: math.NaN()}, errors.ErrCodeInvalidPadding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, _ := flatTree(Rect{W: 1, H: 1}, 1)
			err := Calculate(tr, tt.opts)
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("error code = %q, want %q (err: %v)", got, tt.code, err)
			}
		})
	}
}

func TestCalculateSetsIndex(t *testing.T) {
	tr, ids := flatTree(Rect{W: 10, H: 10}, 1, 3, 2)
	if err := Calculate(tr, Options{}); err != nil {
		t.Fatal(err)
	}

	want := map[NodeID]int{ids[1]: 0, ids[2]: 1, ids[0]: 2}
	for id, idx := range want {
		if got := tr.Node(id).Index; got != idx {
			t.Errorf("%s index = %d, want %d", tr.Node(id).Label(), got, idx)
		}
	}
}
