package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/treemap/pkg/cache"
	tmio "github.com/matzehuels/treemap/pkg/io"
	"github.com/matzehuels/treemap/pkg/treemap"
)

// memCache is an in-memory cache that counts hits.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	hits int
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[key]
	if ok {
		c.hits++
	}
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

var _ cache.Cache = (*memCache)(nil)

const sampleJSON = `{
  "name": "root",
  "children": [
    {"name": "a", "value": 50},
    {"name": "b", "value": 30},
    {"name": "c", "value": 20}
  ]
}`

func sampleTree(t *testing.T) *treemap.Tree {
	t.Helper()
	tr, err := tmio.ReadJSON(strings.NewReader(sampleJSON), tmio.DefaultKeys())
	if err != nil {
		t.Fatal(err)
	}
	return tr
}

func TestLayoutDoesNotModifyInput(t *testing.T) {
	in := sampleTree(t)
	out, err := Layout(in, Options{Width: 100, Height: 100})
	if err != nil {
		t.Fatal(err)
	}
	if in.Root().Rect != (treemap.Rect{}) || in.Root().Weight != 0 {
		t.Error("input tree was modified")
	}
	a, _ := out.Find(treemap.Root, "a")
	got := out.Node(a).Rect
	if math.Abs(got.X) > 1e-9 || math.Abs(got.Y) > 1e-9 || math.Abs(got.W-62.5) > 1e-9 || math.Abs(got.H-80) > 1e-9 {
		t.Errorf("rect(a) = %v, want (0,0 62.5x80)", got)
	}
}

func TestRunnerExecute(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), sampleTree(t), Options{
		Width:   100,
		Height:  100,
		Formats: []string{FormatSVG, FormatPNG, FormatJSON, FormatDOT},
		Labels:  true,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if res.Stats.Nodes != 4 || res.Stats.Leaves != 3 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if res.TreeHash == "" {
		t.Error("missing tree hash")
	}
	if res.Tree.Root().Weight != 100 {
		t.Errorf("root weight = %v, want 100", res.Tree.Root().Weight)
	}

	if !strings.HasPrefix(string(res.Artifacts[FormatSVG]), "<svg") {
		t.Error("svg artifact malformed")
	}
	if _, err := png.Decode(bytes.NewReader(res.Artifacts[FormatPNG])); err != nil {
		t.Errorf("png artifact: %v", err)
	}
	if !strings.HasPrefix(string(res.Artifacts[FormatDOT]), "digraph G {") {
		t.Error("dot artifact malformed")
	}

	back, meta, err := tmio.UnmarshalLayout(res.Artifacts[FormatJSON])
	if err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if back.Len() != 4 || meta["width"] != 100.0 || meta["sort"] != true {
		t.Errorf("json artifact: len=%d meta=%v", back.Len(), meta)
	}
}

func TestRunnerCaches(t *testing.T) {
	c := newMemCache()
	r := NewRunner(c, nil, nil)
	opts := Options{Width: 100, Height: 100, Formats: []string{FormatSVG, FormatJSON}}

	first, err := r.Execute(context.Background(), sampleTree(t), opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Errorf("first run hit the cache: %+v", first.CacheInfo)
	}

	second, err := r.Execute(context.Background(), sampleTree(t), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run missed the cache: %+v", second.CacheInfo)
	}
	if !bytes.Equal(first.Artifacts[FormatSVG], second.Artifacts[FormatSVG]) {
		t.Error("cached svg differs")
	}

	opts.Refresh = true
	third, err := r.Execute(context.Background(), sampleTree(t), opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.LayoutHit || third.CacheInfo.RenderHit {
		t.Errorf("refresh run hit the cache: %+v", third.CacheInfo)
	}
}

func TestRunnerLayoutKeyedByOptions(t *testing.T) {
	c := newMemCache()
	r := NewRunner(c, nil, nil)
	tr := sampleTree(t)

	if _, err := r.ComputeLayout(context.Background(), tr, Options{Width: 100, Height: 100}); err != nil {
		t.Fatal(err)
	}
	laid, hit, err := r.ComputeLayoutWithCacheInfo(context.Background(), tr, Options{Width: 200, Height: 100})
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("different width reused a cached layout")
	}
	if laid.Root().Rect.W != 200 {
		t.Errorf("root width = %v, want 200", laid.Root().Rect.W)
	}
}

func TestRunnerShuffleReproducible(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	opts := Options{Width: 100, Height: 100, Sort: treemap.Bool(false), Seed: 9}

	a, err := r.ComputeLayout(context.Background(), sampleTree(t), opts)
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.ComputeLayout(context.Background(), sampleTree(t), opts)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.Nodes() {
		if a.Nodes()[i].Rect != b.Nodes()[i].Rect {
			t.Fatalf("node %d: %v vs %v", i, a.Nodes()[i].Rect, b.Nodes()[i].Rect)
		}
	}
}

func TestRunnerInvalidOptions(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if _, err := r.Execute(context.Background(), sampleTree(t), Options{Direction: "up"}); err == nil {
		t.Error("invalid direction should fail")
	}
}

func TestRunnerScan(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.bin"), make([]byte, 64), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "sub", "b.bin"), make([]byte, 16), 0o644); err != nil {
		t.Fatal(err)
	}

	c := newMemCache()
	r := NewRunner(c, nil, nil)
	tr, hit, err := r.ScanWithCacheInfo(context.Background(), root, Options{})
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if hit || tr.Len() != 4 {
		t.Errorf("scan: hit=%v len=%d, want miss with 4 nodes", hit, tr.Len())
	}

	cached, hit, err := r.ScanWithCacheInfo(context.Background(), root, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !hit {
		t.Error("second scan should hit the cache")
	}
	if id, ok := cached.Find(treemap.Root, "a.bin"); !ok || cached.Node(id).Weight != 64 {
		t.Error("cached scan lost a.bin")
	}
}

func TestTreeHash(t *testing.T) {
	a, err := TreeHash(sampleTree(t))
	if err != nil {
		t.Fatal(err)
	}
	other := sampleTree(t)
	other.SetWeight(1, 51)
	b, err := TreeHash(other)
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("weight change should change the hash")
	}

	laid := sampleTree(t)
	laid.SetRect(treemap.Root, treemap.Rect{W: 5, H: 5})
	c, _ := TreeHash(laid)
	if a != c {
		t.Error("rectangles should not affect the hash")
	}
}

func TestLayoutMetaJSON(t *testing.T) {
	opts := Options{Sort: treemap.Bool(false), Exclude: []string{"x"}}
	opts.SetLayoutDefaults()
	data, err := json.Marshal(opts.LayoutMeta())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"seed":42`) || !strings.Contains(string(data), `"exclude":["x"]`) {
		t.Errorf("meta = %s", data)
	}
}
