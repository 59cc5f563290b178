package treemap

import (
	"fmt"
	"reflect"
	"slices"
)

// NodeID addresses a node inside a [Tree].
type NodeID int

const (
	// Root is the ID of the tree's root node.
	Root NodeID = 0

	// NoParent is the parent of the root.
	NoParent NodeID = -1
)

// Offscreen is the rectangle given to excluded nodes: zero area, placed far
// outside any visible coordinate range so it never shows up if drawn by accident.
var Offscreen = Rect{X: -100000, Y: 0, W: 0, H: 0}

// Rect is an axis-aligned rectangle. Y grows downward.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Area returns W*H. Degenerate rectangles may have zero or negative area.
func (r Rect) Area() float64 { return r.W * r.H }

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Inset shrinks r by pad on all four sides. The result is not clamped.
func (r Rect) Inset(pad float64) Rect {
	return Rect{X: r.X + pad, Y: r.Y + pad, W: r.W - 2*pad, H: r.H - 2*pad}
}

// Contains reports whether o lies inside r, allowing eps of slack on each edge.
func (r Rect) Contains(o Rect, eps float64) bool {
	return o.X >= r.X-eps && o.Y >= r.Y-eps &&
		o.Right() <= r.Right()+eps && o.Bottom() <= r.Bottom()+eps
}

// Overlap returns the area shared by r and o.
func (r Rect) Overlap(o Rect) float64 {
	w := min(r.Right(), o.Right()) - max(r.X, o.X)
	h := min(r.Bottom(), o.Bottom()) - max(r.Y, o.Y)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

func (r Rect) String() string {
	return fmt.Sprintf("(%g,%g %gx%g)", r.X, r.Y, r.W, r.H)
}

// Node is a single weighted entry of a [Tree].
//
// Weight is an input on leaves and is overwritten on inner nodes by every
// aggregation pass. Rect, Excluded, MinChildWeight, MaxChildWeight and Index
// are outputs of [Calculate].
type Node struct {
	ID       NodeID
	Parent   NodeID
	Children []NodeID
	Depth    int

	// Payload is arbitrary client data. It identifies the node for
	// [Tree.AddData] and for exclusion.
	Payload any

	Weight float64
	Rect   Rect

	Excluded bool

	// Extrema over the aggregated weights of the immediate children.
	// Not used by the layout; exposed for color scales.
	MinChildWeight float64
	MaxChildWeight float64

	// Index is the node's position among its siblings after ordering.
	Index int
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Label returns a display name for the node derived from its payload.
func (n *Node) Label() string { return Label(n.Payload) }

// Label derives a display name from a payload. Strings and fmt.Stringers are
// used as-is; maps are searched for a "name", "label" or "id" entry.
func Label(payload any) string {
	switch p := payload.(type) {
	case nil:
		return ""
	case string:
		return p
	case fmt.Stringer:
		return p.String()
	case map[string]any:
		for _, k := range []string{"name", "label", "id"} {
			if v, ok := p[k]; ok {
				return Label(v)
			}
		}
		return ""
	}
	return fmt.Sprint(payload)
}

// Tree is an arena of nodes. Node pointers returned by [Tree.Node] stay valid
// until the next node is added.
//
// The zero value is not usable - use [New].
type Tree struct {
	nodes []Node
}

// New creates a tree holding only a root node with the given rectangle.
func New(rect Rect) *Tree {
	return &Tree{nodes: []Node{{ID: Root, Parent: NoParent, Rect: rect}}}
}

// FromNodes rebuilds a tree from nodes indexed by their IDs, as produced by
// decoding a saved layout. The structure is checked with [ValidateStructure].
func FromNodes(nodes []Node) (*Tree, error) {
	t := &Tree{nodes: nodes}
	if err := ValidateStructure(t); err != nil {
		return nil, err
	}
	return t, nil
}

// Nodes returns the arena in ID order. The slice is owned by the tree.
func (t *Tree) Nodes() []Node { return t.nodes }

// Len returns the number of nodes, including the root.
func (t *Tree) Len() int { return len(t.nodes) }

// Node returns the node with the given ID. It panics if id is out of range.
func (t *Tree) Node(id NodeID) *Node { return &t.nodes[id] }

// Root returns the root node.
func (t *Tree) Root() *Node { return &t.nodes[Root] }

// Valid reports whether id addresses a node of t.
func (t *Tree) Valid(id NodeID) bool { return id >= 0 && int(id) < len(t.nodes) }

// IsRoot reports whether id is the root.
func (t *Tree) IsRoot(id NodeID) bool { return t.nodes[id].Parent == NoParent }

// Children returns the ordered child IDs of id. The slice is owned by the tree.
func (t *Tree) Children(id NodeID) []NodeID { return t.nodes[id].Children }

// SetRect assigns a node's rectangle. Clients use it on the root before
// calling [Calculate].
func (t *Tree) SetRect(id NodeID, r Rect) { t.nodes[id].Rect = r }

// SetWeight assigns a node's stored weight. On inner nodes the value is
// replaced by the next aggregation.
func (t *Tree) SetWeight(id NodeID, w float64) { t.nodes[id].Weight = w }

// AddChild appends a new child under parent without checking for an existing
// child with the same payload, and returns its ID.
func (t *Tree) AddChild(parent NodeID, payload any, weight float64) NodeID {
	id := NodeID(len(t.nodes))
	depth := t.nodes[parent].Depth + 1
	t.nodes = append(t.nodes, Node{
		ID:      id,
		Parent:  parent,
		Depth:   depth,
		Payload: payload,
		Weight:  weight,
	})
	t.nodes[parent].Children = append(t.nodes[parent].Children, id)
	return id
}

// AddData counts one occurrence of payload under parent. If a child with an
// equal payload exists its weight is incremented; otherwise a new child with
// weight 1 is appended. It reports whether a child was created.
func (t *Tree) AddData(parent NodeID, payload any) bool {
	for _, c := range t.nodes[parent].Children {
		if equalPayload(t.nodes[c].Payload, payload) {
			t.nodes[c].Weight++
			return false
		}
	}
	t.AddChild(parent, payload, 1)
	return true
}

// Find returns the first child of parent whose payload equals payload.
func (t *Tree) Find(parent NodeID, payload any) (NodeID, bool) {
	for _, c := range t.nodes[parent].Children {
		if equalPayload(t.nodes[c].Payload, payload) {
			return c, true
		}
	}
	return NoParent, false
}

// Path returns the IDs from the root down to id, inclusive.
func (t *Tree) Path(id NodeID) []NodeID {
	var path []NodeID
	for cur := id; cur != NoParent; cur = t.nodes[cur].Parent {
		path = append(path, cur)
	}
	slices.Reverse(path)
	return path
}

// Leaves returns the IDs of all childless nodes in pre-order.
func (t *Tree) Leaves() []NodeID {
	var out []NodeID
	stack := []NodeID{Root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		kids := t.nodes[id].Children
		if len(kids) == 0 {
			out = append(out, id)
			continue
		}
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	return out
}

// Clone returns a deep copy of the tree structure. Payloads are shared.
func (t *Tree) Clone() *Tree {
	nodes := make([]Node, len(t.nodes))
	copy(nodes, t.nodes)
	for i := range nodes {
		nodes[i].Children = slices.Clone(nodes[i].Children)
	}
	return &Tree{nodes: nodes}
}

// equalPayload compares payloads with Go equality, treating values of
// uncomparable dynamic types (maps, slices) as never equal instead of panicking.
func equalPayload(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	defer func() { _ = recover() }()
	return a == b
}
