package server

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/matzehuels/treemap/pkg/cache"
	"github.com/matzehuels/treemap/pkg/pipeline"
)

const layoutBody = `{
  "tree": {"name": "root", "children": [
    {"name": "a", "value": 50},
    {"name": "b", "value": 30},
    {"name": "c", "value": 20}
  ]},
  "options": {"width": 100, "height": 100}
}`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return New(pipeline.NewRunner(c, nil, nil), Config{})
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var e errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&e); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return e
}

func TestHealthAndRequestID(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if _, err := uuid.Parse(rec.Header().Get(RequestIDHeader)); err != nil {
		t.Errorf("X-Request-ID = %q, want a uuid", rec.Header().Get(RequestIDHeader))
	}

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != id {
		t.Errorf("incoming request id not kept: %q", got)
	}
}

func TestVersion(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/version", "")
	var info map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatal(err)
	}
	if info["version"] == "" {
		t.Errorf("version body = %v", info)
	}
}

func TestLayoutStoreAndFetch(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/v1/layout", layoutBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body)
	}
	var resp LayoutResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if _, err := uuid.Parse(resp.ID); err != nil {
		t.Errorf("id = %q", resp.ID)
	}
	if rec.Header().Get("Location") != "/v1/layouts/"+resp.ID {
		t.Errorf("Location = %q", rec.Header().Get("Location"))
	}
	if len(resp.Layout.Nodes) != 4 {
		t.Fatalf("nodes = %d, want 4", len(resp.Layout.Nodes))
	}
	for _, n := range resp.Layout.Nodes {
		if n.Label == "a" && (math.Abs(n.Rect.W-62.5) > 1e-9 || math.Abs(n.Rect.H-80) > 1e-9) {
			t.Errorf("rect(a) = %v, want 62.5x80", n.Rect)
		}
	}

	rec = do(t, s, http.MethodGet, "/v1/layouts/"+resp.ID, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), resp.ID) {
		t.Errorf("GET stored: status = %d body = %.100s", rec.Code, rec.Body)
	}

	rec = do(t, s, http.MethodGet, "/v1/layouts/"+resp.ID+"/svg?labels=true&palette=heat", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("render stored: status = %d body = %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "<svg") {
		t.Error("body is not svg")
	}
}

func TestLayoutExclude(t *testing.T) {
	tests := []struct {
		name       string
		keys       string
		exclude    string
		wantWeight float64
		excluded   string
	}{
		{"default keys", "", `["B"]`, 100, "B"},
		{"numeric name", "", `["42"]`, 100, "42"},
		{"partial keys keep data default", `"keys": {"count": "value"},`, `["B"]`, 100, "B"},
		{"whole object payload", `"keys": {"data": ""},`, `["B"]`, 140, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{
  "tree": {"name": "root", "children": [
    {"name": "A", "value": 30},
    {"name": "B", "value": 40},
    {"name": "C", "value": 30},
    {"name": 42, "value": 40}
  ]},
  "options": {` + tt.keys + ` "width": 100, "height": 100, "exclude": ` + tt.exclude + `}
}`
			rec := do(t, newTestServer(t), http.MethodPost, "/v1/layout", body)
			if rec.Code != http.StatusCreated {
				t.Fatalf("status = %d body = %s", rec.Code, rec.Body)
			}
			var resp LayoutResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatal(err)
			}
			if got := resp.Layout.Nodes[0].Weight; got != tt.wantWeight {
				t.Errorf("root weight = %v, want %v", got, tt.wantWeight)
			}
			for _, n := range resp.Layout.Nodes[1:] {
				want := n.Label == tt.excluded
				if n.Excluded != want {
					t.Errorf("node %q excluded = %v, want %v", n.Label, n.Excluded, want)
				}
				if want && n.Rect.X != -100000 {
					t.Errorf("excluded node %q rect = %v, want off-canvas", n.Label, n.Rect)
				}
			}
		})
	}
}

func TestStoredLayoutErrors(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/v1/layouts/"+uuid.NewString(), "")
	if rec.Code != http.StatusNotFound || decodeError(t, rec).Code != "NOT_FOUND" {
		t.Errorf("unknown id: status = %d", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/v1/layouts/not-a-uuid", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed id: status = %d", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/v1/layouts/"+uuid.NewString()+"/gif", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad format: status = %d", rec.Code)
	}
}

func TestRender(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/v1/render/svg", layoutBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body)
	}
	if rec.Header().Get("X-Cache") != "miss" {
		t.Errorf("first render X-Cache = %q", rec.Header().Get("X-Cache"))
	}
	first := rec.Body.String()

	rec = do(t, s, http.MethodPost, "/v1/render/svg", layoutBody)
	if rec.Header().Get("X-Cache") != "hit" {
		t.Errorf("second render X-Cache = %q", rec.Header().Get("X-Cache"))
	}
	if rec.Body.String() != first {
		t.Error("cached render differs")
	}

	rec = do(t, s, http.MethodPost, "/v1/render/png", layoutBody)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Errorf("png: status = %d type = %q", rec.Code, rec.Header().Get("Content-Type"))
	}
}

func TestRequestErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{"malformed json", "/v1/layout", `{"tree":`, http.StatusBadRequest, "INVALID_FORMAT"},
		{"missing tree", "/v1/layout", `{"options": {}}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad weight", "/v1/layout", `{"tree": {"children": [{"value": "x"}]}}`, http.StatusBadRequest, "INVALID_WEIGHT"},
		{"bad direction", "/v1/layout", `{"tree": {}, "options": {"direction": "diagonal"}}`, http.StatusBadRequest, "INVALID_DIRECTION"},
		{"bad format", "/v1/render/gif", layoutBody, http.StatusBadRequest, "INVALID_FORMAT"},
		{"nodelink png", "/v1/render/png", `{"tree": {}, "options": {"viz_type": "nodelink"}}`, http.StatusUnprocessableEntity, "UNSUPPORTED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, tt.path, tt.body)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body)
			}
			if got := decodeError(t, rec).Code; string(got) != tt.code {
				t.Errorf("code = %q, want %q", got, tt.code)
			}
		})
	}
}
