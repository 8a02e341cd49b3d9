// Package cache stores upstream API responses between runs.
//
// Three backends implement [Cache]: [FileCache] for single-machine use,
// [RedisCache] for runs that share a cache across hosts, and [NullCache]
// when caching is disabled. Keys are opaque strings; [Namespaced] prefixes
// them so several clients can share one backend.
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/skillcat/pkg/observability"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Namespaced wraps c so every key is prefixed with ns and hits, misses and
// writes are reported to the cache hooks under ns.
func Namespaced(c Cache, ns string) Cache {
	if c == nil {
		c = NewNullCache()
	}
	return &namespaced{inner: c, ns: ns}
}

type namespaced struct {
	inner Cache
	ns    string
}

func (n *namespaced) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := n.inner.Get(ctx, n.ns+key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, n.ns)
		} else {
			observability.Cache().OnCacheMiss(ctx, n.ns)
		}
	}
	return data, ok, err
}

func (n *namespaced) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := n.inner.Set(ctx, n.ns+key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, n.ns, len(data))
	return nil
}

func (n *namespaced) Delete(ctx context.Context, key string) error {
	return n.inner.Delete(ctx, n.ns+key)
}

func (n *namespaced) Close() error { return n.inner.Close() }
