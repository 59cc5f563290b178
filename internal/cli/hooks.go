package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/treemap/pkg/observability"
)

// logHooks reports pipeline, cache and HTTP events at debug level, so they
// show up with --verbose.
type logHooks struct {
	logger *log.Logger
}

// installLogHooks registers logHooks for every hook category.
func installLogHooks(l *log.Logger) {
	h := logHooks{logger: l.WithPrefix("hooks")}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h logHooks) OnScanStart(_ context.Context, root string) {
	h.logger.Debug("scan start", "root", root)
}

func (h logHooks) OnScanComplete(_ context.Context, root string, nodes int, d time.Duration, err error) {
	h.done("scan", err, "root", root, "nodes", nodes, "duration", d)
}

func (h logHooks) OnLayoutStart(_ context.Context, nodes int) {
	h.logger.Debug("layout start", "nodes", nodes)
}

func (h logHooks) OnLayoutComplete(_ context.Context, nodes int, d time.Duration, err error) {
	h.done("layout", err, "nodes", nodes, "duration", d)
}

func (h logHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render start", "formats", formats)
}

func (h logHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.done("render", err, "formats", formats, "duration", d)
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h logHooks) OnRequest(_ context.Context, method, route string) {
	h.logger.Debug("request", "method", method, "route", route)
}

func (h logHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "route", route, "status", status, "duration", d)
}

func (h logHooks) OnError(_ context.Context, method, route string, err error) {
	h.logger.Warn("request failed", "method", method, "route", route, "err", err)
}

func (h logHooks) done(stage string, err error, kv ...any) {
	if err != nil {
		h.logger.Debug(stage+" failed", append(kv, "err", err)...)
		return
	}
	h.logger.Debug(stage+" done", kv...)
}
