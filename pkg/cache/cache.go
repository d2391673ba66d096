// Package cache stores derived bytes: fetched topology documents and
// rendered map artifacts.
//
// Backends share the [Cache] interface:
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: shared cache for multi-instance servers
//   - [MongoCache]: document-store cache for deployments that already run Mongo
//   - [NullCache]: disables caching
//
// Keys are produced by a [Keyer] so that every backend sees the same key
// layout.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry time-to-live.
type Cache interface {
	// Get returns the data stored under key. hit is false on a miss or an
	// expired entry; err is reserved for backend failures.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default TTLs.
const (
	TopologyTTL = 24 * time.Hour
	ArtifactTTL = 7 * 24 * time.Hour
)
