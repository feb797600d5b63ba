// Package cache provides the byte-level response cache used by registry
// clients.
//
// Three backends implement [Cache]:
//   - [FileCache]: JSON entries under a directory, for the CLI.
//   - [RedisCache]: a shared Redis instance, for long-running servers.
//   - [NullCache]: stores nothing; the default when caching is disabled.
//
// Keys are opaque strings. Use [Scoped] to give each client its own key
// space:
//
//	tags := cache.Scoped(c, "github:tags:")
//	tags.Set(ctx, "mitre/cti", body, time.Hour)
//
// This cache holds small HTTP responses such as tag listings. Dataset files
// are not stored here; they live in the dataset cache directory managed by
// the dataset package.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable reports a backend that could not be reached.
var ErrUnavailable = errors.New("cache unavailable")

// Cache stores opaque byte values with an optional time-to-live.
type Cache interface {
	// Get returns the value for key. A miss or an expired entry returns
	// (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

type scoped struct {
	inner  Cache
	prefix string
}

// Scoped returns a view of c that prefixes every key with prefix.
// A nil c yields a [NullCache] view.
func Scoped(c Cache, prefix string) Cache {
	if c == nil {
		c = NewNullCache()
	}
	if s, ok := c.(*scoped); ok {
		return &scoped{inner: s.inner, prefix: s.prefix + prefix}
	}
	return &scoped{inner: c, prefix: prefix}
}

func (s *scoped) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *scoped) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return s.inner.Set(ctx, s.prefix+key, data, ttl)
}

func (s *scoped) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

// Close is a no-op; the owner of the inner cache closes it.
func (s *scoped) Close() error { return nil }

// NullCache never stores anything; every Get is a miss.
type NullCache struct{}

// NewNullCache returns a [NullCache].
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)       { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }
