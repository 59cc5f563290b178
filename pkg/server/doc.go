// Package server exposes the treemap pipeline over HTTP.
//
// # Endpoints
//
//	POST /v1/layout              lay out a tree, store it, return the layout
//	POST /v1/render/{format}     lay out and render a tree in one request
//	GET  /v1/layouts/{id}        fetch a stored layout
//	GET  /v1/layouts/{id}/{fmt}  render a stored layout
//	GET  /healthz                liveness probe
//	GET  /version                build information
//
// Request bodies carry the nested tree and the pipeline options:
//
//	{
//	  "tree":    {"name": "root", "children": [{"name": "a", "value": 3}]},
//	  "options": {"width": 800, "height": 600, "exclude": ["vendor"]}
//	}
//
// Stored layouts live in the runner's cache under a generated UUID for
// [cache.TTLStored], so replicas sharing a Redis or MongoDB cache serve each
// other's layouts.
//
// Every response carries an X-Request-ID header. Validation failures map to
// 400, unknown layouts to 404, and anything else to 500, always with a JSON
// body of the form {"error": "...", "code": "..."}.
//
// [cache.TTLStored]: github.com/matzehuels/treemap/pkg/cache.TTLStored
package server
