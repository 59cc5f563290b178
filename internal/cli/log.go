// Package cli implements the treemap command-line interface.
//
// This package provides commands for laying out weighted trees, rendering
// them as SVG, PNG, JSON or DOT, scanning directories into trees, serving
// the HTTP API and browsing a layout in the terminal. The CLI is built using
// cobra and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - layout: Compute a layout and save it as layout.json
//   - render: Render a tree or a saved layout
//   - scan: Turn a directory into a tree weighted by file size
//   - serve: Run the HTTP API
//   - browse: Drill into a layout interactively
//   - cache, config: Manage the cache and treemap.toml
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns a logger writing to w at level, with "15:04:05.00"
// timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one CLI stage (scan, layout, render) and logs its outcome
// with the elapsed time as a structured field.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger, stage string) *progress {
	return &progress{logger: l.WithPrefix(stage), start: time.Now()}
}

// done logs msg with keyvals and the elapsed time, rounded to milliseconds:
//
//	12:00:01.20 INFO scan: Scanned nodes=1204 elapsed=1.234s
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches l to ctx for loggerFromContext.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
