// Package cache provides pluggable artifact caching for unfolding runs.
//
// Three backends are available: a file cache for CLI usage, a Redis cache
// for server deployments, and a null cache that disables caching entirely.
// All backends store opaque byte payloads under string keys with optional
// expiration.
package cache

import (
	"context"
	"fmt"
	"time"
)

// DefaultTTL is the expiration applied to cached artifacts. Unfolding is
// deterministic, so entries only ever go stale through cache-key changes;
// the TTL bounds disk growth rather than correctness.
const DefaultTTL = 7 * 24 * time.Hour

// Cache is the interface all cache backends implement.
//
// Get returns the data and true on a hit, or nil and false on a miss.
// A backend failure is reported through the error; a miss is not an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// ArtifactKey builds the cache key for one output artifact of an unfolding
// run. Any input that changes the artifact bytes must appear here: the hash
// of the source graph text, the unfolding factor, the policy pair, the
// separator and the output format.
func ArtifactKey(inputHash string, k int, policy, separator, format string) string {
	return hashKey("artifact", inputHash, fmt.Sprintf("k=%d", k), policy, separator, format)
}
