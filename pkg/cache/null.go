package cache

import (
	"context"
	"time"
)

// NullCache stores nothing; every Get is a miss. The CLI uses it for
// --no-cache and the "none" backend.
type NullCache struct{}

// NewNullCache returns a cache that disables caching.
func NewNullCache() Cache { return NullCache{} }

// Get reports a miss.
func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set discards data.
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

// Delete is a no-op.
func (NullCache) Delete(context.Context, string) error { return nil }

// Clear reports zero removed entries.
func (NullCache) Clear(context.Context) (int, error) { return 0, nil }

// Close is a no-op.
func (NullCache) Close() error { return nil }

var (
	_ Cache   = NullCache{}
	_ Clearer = NullCache{}
)
