// Package observability carries events out of the dataset, cache and HTTP
// layers without tying them to a metrics backend.
//
// Libraries report through [Dataset], [Cache] and [HTTP]. Until something
// is installed those return [Noop]. [Metrics] is the Prometheus-backed
// implementation that "attack serve" installs:
//
//	m := observability.NewMetrics(registry)
//	restore := observability.Install(m)
//	defer restore()
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// DatasetHooks receives events from the dataset freshness orchestrator.
type DatasetHooks interface {
	// OnVersionCheck records a registry lookup of the latest online version.
	// cached is empty on first run; online is empty when err is non-nil.
	OnVersionCheck(ctx context.Context, cached, online string, err error)

	// OnDownload records a dataset download of size bytes.
	OnDownload(ctx context.Context, version string, size int, duration time.Duration, err error)

	// OnFallback records the use of a cached dataset after a failure.
	OnFallback(ctx context.Context, version string, cause error)

	// OnReuse records the reuse of an up-to-date cached dataset.
	OnReuse(ctx context.Context, version string)
}

// CacheHooks receives events from the response cache.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, key string)
	OnCacheMiss(ctx context.Context, key string)
	OnCacheSet(ctx context.Context, key string, size int)
}

// HTTPHooks receives events from outgoing HTTP requests.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, status int, duration time.Duration)
	OnError(ctx context.Context, method, host, path string, err error)
}

// Noop implements every hook interface and records nothing.
type Noop struct{}

func (Noop) OnVersionCheck(context.Context, string, string, error)                  {}
func (Noop) OnDownload(context.Context, string, int, time.Duration, error)          {}
func (Noop) OnFallback(context.Context, string, error)                              {}
func (Noop) OnReuse(context.Context, string)                                        {}
func (Noop) OnCacheHit(context.Context, string)                                     {}
func (Noop) OnCacheMiss(context.Context, string)                                    {}
func (Noop) OnCacheSet(context.Context, string, int)                                {}
func (Noop) OnRequest(context.Context, string, string, string)                      {}
func (Noop) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (Noop) OnError(context.Context, string, string, string, error)                 {}

type hookSet struct {
	dataset DatasetHooks
	cache   CacheHooks
	http    HTTPHooks
}

var defaults = &hookSet{dataset: Noop{}, cache: Noop{}, http: Noop{}}

var current atomic.Pointer[hookSet]

func init() { current.Store(defaults) }

// Install registers h for every hook interface it implements and leaves
// the others as they are. The returned function restores the previous set.
func Install(h any) (restore func()) {
	prev := current.Load()
	next := *prev
	if d, ok := h.(DatasetHooks); ok {
		next.dataset = d
	}
	if c, ok := h.(CacheHooks); ok {
		next.cache = c
	}
	if x, ok := h.(HTTPHooks); ok {
		next.http = x
	}
	current.Store(&next)
	return func() { current.Store(prev) }
}

// Reset restores the no-op hooks.
func Reset() { current.Store(defaults) }

// Dataset returns the installed dataset hooks.
func Dataset() DatasetHooks { return current.Load().dataset }

// Cache returns the installed cache hooks.
func Cache() CacheHooks { return current.Load().cache }

// HTTP returns the installed HTTP hooks.
func HTTP() HTTPHooks { return current.Load().http }
