// Package observability lets applications observe the treemap pipeline
// without the libraries importing a metrics or tracing backend.
//
// Three hook sets are emitted:
//
//   - [PipelineHooks]: scan, layout and render stages of [pipeline.Runner]
//   - [CacheHooks]: hits, misses and writes, keyed by stage ("scan", "layout", "artifact")
//   - [HTTPHooks]: requests handled by the API server
//
// Every set defaults to a no-op. The binary registers real implementations
// once, before work starts; the treemap CLI forwards events to its logger:
//
//	observability.SetPipelineHooks(myHooks)
//	observability.SetCacheHooks(myHooks)
//
// Emitters look the hooks up at the call site:
//
//	start := time.Now()
//	observability.Pipeline().OnLayoutStart(ctx, t.Len())
//	err := treemap.Calculate(t, opts)
//	observability.Pipeline().OnLayoutComplete(ctx, t.Len(), time.Since(start), err)
//
// [pipeline.Runner]: https://pkg.go.dev/github.com/matzehuels/treemap/pkg/pipeline#Runner
package observability

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the treemap pipeline.
type PipelineHooks interface {
	OnScanStart(ctx context.Context, root string)
	OnScanComplete(ctx context.Context, root string, nodeCount int, duration time.Duration, err error)
	OnLayoutStart(ctx context.Context, nodeCount int)
	OnLayoutComplete(ctx context.Context, nodeCount int, duration time.Duration, err error)
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives cache lookups and writes made by the pipeline runner.
// stage is "scan", "layout" or "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, stage string)
	OnCacheMiss(ctx context.Context, stage string)
	OnCacheSet(ctx context.Context, stage string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API server.
type HTTPHooks interface {
	// OnRequest records an incoming request. route is the matched pattern.
	OnRequest(ctx context.Context, method, route string)

	// OnResponse records a completed response.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)

	// OnError records a handler failure reported to the client.
	OnError(ctx context.Context, method, route string, err error)
}

// =============================================================================
// Defaults
// =============================================================================

// NoopPipelineHooks ignores every pipeline event.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnScanStart(context.Context, string)                                {}
func (NoopPipelineHooks) OnScanComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnLayoutStart(context.Context, int)                                {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, int, time.Duration, error)       {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                           {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error)  {}

// NoopCacheHooks ignores every cache event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks ignores every HTTP event.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, error)                 {}

// =============================================================================
// Registry
// =============================================================================

// hookSet is an immutable snapshot of the registered hooks. Setters copy
// the current snapshot, change one field and swap it in.
type hookSet struct {
	pipeline PipelineHooks
	cache    CacheHooks
	http     HTTPHooks
}

var (
	current atomic.Pointer[hookSet]
	setMu   sync.Mutex
)

func init() { Reset() }

func update(fn func(*hookSet)) {
	setMu.Lock()
	defer setMu.Unlock()
	next := *current.Load()
	fn(&next)
	current.Store(&next)
}

// SetPipelineHooks registers pipeline hooks. A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		update(func(s *hookSet) { s.pipeline = h })
	}
}

// SetCacheHooks registers cache hooks. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		update(func(s *hookSet) { s.cache = h })
	}
}

// SetHTTPHooks registers HTTP hooks. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		update(func(s *hookSet) { s.http = h })
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks { return current.Load().pipeline }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return current.Load().cache }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return current.Load().http }

// Reset restores the no-op hooks. Tests call it in cleanup.
func Reset() {
	setMu.Lock()
	defer setMu.Unlock()
	current.Store(&hookSet{
		pipeline: NoopPipelineHooks{},
		cache:    NoopCacheHooks{},
		http:     NoopHTTPHooks{},
	})
}
