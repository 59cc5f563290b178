// Package cache provides byte-level caching for scans, layouts and rendered
// artifacts.
//
// Backends implement [Cache]: [NullCache] (disabled), [FileCache] (CLI),
// [RedisCache] and [MongoCache] (shared by server replicas). Keys are built
// by a [Keyer] so every entry point derives identical keys from identical
// inputs.
package cache

import (
	"context"
	"time"
)

// Cache is a key/value store for serialized pipeline results.
//
// Get reports a miss with ok=false and a nil error. A zero ttl in Set means
// the entry does not expire. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default lifetimes per entry kind.
const (
	// TTLScan is short because directories change under us.
	TTLScan = 10 * time.Minute

	// TTLLayout covers computed layouts. Layouts are pure functions of the
	// tree and options, so they only expire to bound storage.
	TTLLayout = 7 * 24 * time.Hour

	// TTLArtifact covers rendered SVG/PNG/JSON output.
	TTLArtifact = 7 * 24 * time.Hour

	// TTLStored covers layouts stored by the HTTP API under a generated ID.
	TTLStored = 24 * time.Hour
)
