package treemap

import (
	"math"
	"testing"
)

func TestAggregateSums(t *testing.T) {
	tr := New(Rect{})
	a := tr.AddChild(Root, "a", 1000) // stale inner weight, overwritten
	tr.AddChild(a, "a1", 2)
	tr.AddChild(a, "a2", 5)
	tr.AddChild(Root, "b", 4)

	total := Aggregate(tr, Root, DefaultConfig())

	if total != 11 {
		t.Errorf("Aggregate() = %v, want 11", total)
	}
	if w := tr.Node(a).Weight; w != 7 {
		t.Errorf("inner weight = %v, want 7", w)
	}
	if r := tr.Root(); r.MinChildWeight != 4 || r.MaxChildWeight != 7 {
		t.Errorf("root extrema = %v/%v, want 4/7", r.MinChildWeight, r.MaxChildWeight)
	}
	if n := tr.Node(a); n.MinChildWeight != 2 || n.MaxChildWeight != 5 {
		t.Errorf("a extrema = %v/%v, want 2/5", n.MinChildWeight, n.MaxChildWeight)
	}
}

func TestAggregateLeafKeepsWeight(t *testing.T) {
	tr := New(Rect{})
	tr.SetWeight(Root, 12)

	if got := Aggregate(tr, Root, DefaultConfig()); got != 12 {
		t.Errorf("Aggregate() on a childless root = %v, want 12", got)
	}
	if r := tr.Root(); r.MinChildWeight != 0 || r.MaxChildWeight != 0 {
		t.Errorf("leaf extrema changed: %v/%v", r.MinChildWeight, r.MaxChildWeight)
	}
}

func TestAggregateExclusion(t *testing.T) {
	tr := New(Rect{})
	tr.AddChild(Root, "A", 30)
	b := tr.AddChild(Root, "B", 40)
	tr.AddChild(Root, "C", 30)

	cfg, err := Options{Exclude: []any{"B"}}.Resolve()
	if err != nil {
		t.Fatal(err)
	}

	if got := Aggregate(tr, Root, cfg); got != 60 {
		t.Errorf("Aggregate() = %v, want 60", got)
	}
	if !tr.Node(b).Excluded {
		t.Error("B should be excluded")
	}
	if tr.Node(b).Weight != 40 {
		t.Errorf("excluded leaf lost its stored weight: %v", tr.Node(b).Weight)
	}
	if r := tr.Root(); r.MinChildWeight != 0 || r.MaxChildWeight != 30 {
		t.Errorf("root extrema = %v/%v, want 0/30", r.MinChildWeight, r.MaxChildWeight)
	}

	// exclusion is recomputed on every pass
	if got := Aggregate(tr, Root, DefaultConfig()); got != 100 {
		t.Errorf("Aggregate() without exclusion = %v, want 100", got)
	}
	if tr.Node(b).Excluded {
		t.Error("B should no longer be excluded")
	}
}

func TestAggregateExcludedParentShortCircuits(t *testing.T) {
	tr := New(Rect{})
	dir := tr.AddChild(Root, "vendor", 0)
	leaf := tr.AddChild(dir, "lib.go", 50)
	tr.AddChild(Root, "main.go", 10)

	// mark the leaf so we can tell whether it is visited
	tr.Node(leaf).Excluded = true

	cfg, _ := Options{Exclude: []any{"vendor"}}.Resolve()
	if got := Aggregate(tr, Root, cfg); got != 10 {
		t.Errorf("Aggregate() = %v, want 10", got)
	}
	if w := tr.Node(dir).Weight; w != 0 {
		t.Errorf("excluded inner weight = %v, want 0", w)
	}
	if !tr.Node(leaf).Excluded {
		t.Error("descendants of an excluded node must not be visited")
	}
}

func TestAggregateUncomparablePayloads(t *testing.T) {
	tr := New(Rect{})
	tr.AddChild(Root, map[string]any{"name": "x"}, 3)
	tr.AddChild(Root, []int{1, 2}, 4)
	tr.AddChild(Root, nil, 5)

	cfg, _ := Options{Exclude: []any{"x", map[string]any{"name": "x"}}}.Resolve()
	if got := Aggregate(tr, Root, cfg); got != 12 {
		t.Errorf("Aggregate() = %v, want 12", got)
	}
}

func TestAggregateZeroWeights(t *testing.T) {
	tr := New(Rect{})
	a := tr.AddChild(Root, "a", 0)
	tr.AddChild(a, "a1", 0)

	if got := Aggregate(tr, Root, DefaultConfig()); got != 0 {
		t.Errorf("Aggregate() = %v, want 0", got)
	}
	if n := tr.Node(a); n.MinChildWeight != 0 || math.IsInf(n.MinChildWeight, 1) {
		t.Errorf("min child weight = %v, want 0", n.MinChildWeight)
	}
}
