package treemap

import (
	"slices"
	"testing"
)

func TestNewTree(t *testing.T) {
	tr := New(Rect{X: 1, Y: 2, W: 30, H: 40})

	if tr.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", tr.Len())
	}
	root := tr.Root()
	if root.ID != Root || root.Parent != NoParent || root.Depth != 0 {
		t.Errorf("root = %+v, want ID 0, no parent, depth 0", root)
	}
	if !tr.IsRoot(Root) {
		t.Error("IsRoot(Root) = false")
	}
	if root.Rect != (Rect{X: 1, Y: 2, W: 30, H: 40}) {
		t.Errorf("root rect = %v", root.Rect)
	}
}

func TestAddChild(t *testing.T) {
	tr := New(Rect{})
	a := tr.AddChild(Root, "a", 3)
	b := tr.AddChild(a, "b", 5)

	if got := tr.Children(Root); !slices.Equal(got, []NodeID{a}) {
		t.Errorf("Children(Root) = %v, want [%d]", got, a)
	}
	if n := tr.Node(b); n.Parent != a || n.Depth != 2 || n.Weight != 5 {
		t.Errorf("b = %+v, want parent %d depth 2 weight 5", n, a)
	}
	if tr.IsRoot(b) {
		t.Error("IsRoot(b) = true")
	}
}

func TestAddData(t *testing.T) {
	tr := New(Rect{})

	words := []string{"go", "rust", "go", "zig", "go", "rust"}
	created := 0
	for _, w := range words {
		if tr.AddData(Root, w) {
			created++
		}
	}

	if created != 3 {
		t.Errorf("created = %d, want 3", created)
	}

	want := map[string]float64{"go": 3, "rust": 2, "zig": 1}
	for _, c := range tr.Children(Root) {
		n := tr.Node(c)
		if n.Weight != want[n.Label()] {
			t.Errorf("weight of %q = %v, want %v", n.Label(), n.Weight, want[n.Label()])
		}
	}
}

func TestAddDataUncomparablePayload(t *testing.T) {
	tr := New(Rect{})

	// maps never compare equal, so each call creates a node
	tr.AddData(Root, map[string]any{"name": "a"})
	tr.AddData(Root, map[string]any{"name": "a"})

	if n := len(tr.Children(Root)); n != 2 {
		t.Errorf("children = %d, want 2", n)
	}
}

func TestFind(t *testing.T) {
	tr := New(Rect{})
	tr.AddChild(Root, "x", 1)
	y := tr.AddChild(Root, 42, 1)

	if id, ok := tr.Find(Root, 42); !ok || id != y {
		t.Errorf("Find(42) = %d, %v, want %d, true", id, ok, y)
	}
	if _, ok := tr.Find(Root, "missing"); ok {
		t.Error("Find(missing) should fail")
	}
}

func TestPathAndLeaves(t *testing.T) {
	tr := New(Rect{})
	a := tr.AddChild(Root, "a", 0)
	b := tr.AddChild(a, "b", 1)
	c := tr.AddChild(a, "c", 1)
	d := tr.AddChild(Root, "d", 1)

	if got := tr.Path(c); !slices.Equal(got, []NodeID{Root, a, c}) {
		t.Errorf("Path(c) = %v", got)
	}
	if got := tr.Leaves(); !slices.Equal(got, []NodeID{b, c, d}) {
		t.Errorf("Leaves() = %v, want [%d %d %d]", got, b, c, d)
	}
}

func TestClone(t *testing.T) {
	tr := New(Rect{W: 10, H: 10})
	a := tr.AddChild(Root, "a", 1)
	tr.AddChild(Root, "b", 2)

	cp := tr.Clone()
	cp.SetWeight(a, 99)
	cp.Children(Root)[0], cp.Children(Root)[1] = cp.Children(Root)[1], cp.Children(Root)[0]

	if tr.Node(a).Weight != 1 {
		t.Error("Clone shares node values with the original")
	}
	if tr.Children(Root)[0] != a {
		t.Error("Clone shares child slices with the original")
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		name    string
		payload any
		want    string
	}{
		{"nil", nil, ""},
		{"string", "src", "src"},
		{"number", 3.5, "3.5"},
		{"map name", map[string]any{"name": "lib", "value": 3}, "lib"},
		{"map id", map[string]any{"id": 7.0}, "7"},
		{"map without name", map[string]any{"value": 3}, ""},
		{"stringer", Rect{W: 1, H: 2}, "(0,0 1x2)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Label(tt.payload); got != tt.want {
				t.Errorf("Label() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRectHelpers(t *testing.T) {
	r := Rect{X: 10, Y: 20, W: 30, H: 40}

	if r.Area() != 1200 {
		t.Errorf("Area() = %v, want 1200", r.Area())
	}
	if r.Right() != 40 || r.Bottom() != 60 {
		t.Errorf("Right/Bottom = %v/%v, want 40/60", r.Right(), r.Bottom())
	}
	if in := r.Inset(5); in != (Rect{X: 15, Y: 25, W: 20, H: 30}) {
		t.Errorf("Inset(5) = %v", in)
	}
	if !r.Contains(Rect{X: 10, Y: 20, W: 30, H: 40}, 0) {
		t.Error("rect should contain itself")
	}
	if r.Contains(Rect{X: 9, Y: 20, W: 1, H: 1}, 0.5) {
		t.Error("rect should not contain a rect left of it")
	}
	if got := r.Overlap(Rect{X: 30, Y: 50, W: 100, H: 100}); got != 100 {
		t.Errorf("Overlap() = %v, want 100", got)
	}
	if got := r.Overlap(Rect{X: 40, Y: 20, W: 10, H: 10}); got != 0 {
		t.Errorf("Overlap() of touching rects = %v, want 0", got)
	}
}
