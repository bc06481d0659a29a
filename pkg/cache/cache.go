// Package cache stores computed layouts and rendered artifacts.
//
// Layout passes are cheap but not free, and the HTTP API tends to receive the
// same table again and again while a game is running. The pipeline caches the
// JSON-encoded layout result keyed by a hash of its inputs, and every rendered
// artifact keyed by the layout hash plus render options.
//
// Backends:
//   - [NullCache]: disables caching
//   - [FileCache]: one file per entry, for the CLI
//   - [RedisCache]: shared cache for several server instances
//   - [MongoCache]: document store with a TTL index
package cache

import (
	"context"
	"time"
)

// Default time-to-live values.
const (
	// TTLLayout is how long a computed layout stays cached.
	TTLLayout = 24 * time.Hour

	// TTLArtifact is how long a rendered artifact stays cached.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte store with per-entry expiration.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	// Clear removes all entries and returns how many were removed, when the
	// backend knows.
	Clear(ctx context.Context) (int, error)
}
