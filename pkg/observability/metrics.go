package observability

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records hook events as Prometheus series.
type Metrics struct {
	versionChecks *prometheus.CounterVec
	downloads     *prometheus.CounterVec
	downloadBytes prometheus.Counter
	downloadTime  prometheus.Histogram
	fallbacks     prometheus.Counter
	reuses        prometheus.Counter
	cache         *prometheus.CounterVec
	requests      *prometheus.CounterVec
	requestTime   *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		versionChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attack_dataset_version_checks_total",
			Help: "Registry lookups of the latest release by result.",
		}, []string{"result"}),
		downloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attack_dataset_downloads_total",
			Help: "Dataset downloads by result.",
		}, []string{"result"}),
		downloadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "attack_dataset_download_bytes_total",
			Help: "Bytes of dataset downloaded.",
		}),
		downloadTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "attack_dataset_download_duration_seconds",
			Help:    "Dataset download latency.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "attack_dataset_fallbacks_total",
			Help: "Times a cached dataset was used after a failure.",
		}),
		reuses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "attack_dataset_reuses_total",
			Help: "Times the cached dataset was already current.",
		}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attack_cache_operations_total",
			Help: "Response cache operations by kind of key and outcome.",
		}, []string{"key", "op"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attack_upstream_requests_total",
			Help: "Outgoing HTTP requests by host and status.",
		}, []string{"host", "status"}),
		requestTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "attack_upstream_request_duration_seconds",
			Help:    "Outgoing HTTP latency by host.",
			Buckets: prometheus.DefBuckets,
		}, []string{"host"}),
	}
	reg.MustRegister(m.versionChecks, m.downloads, m.downloadBytes, m.downloadTime,
		m.fallbacks, m.reuses, m.cache, m.requests, m.requestTime)
	return m
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// keyKind reduces a cache key to its namespace so labels stay bounded.
func keyKind(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "other"
}

func (m *Metrics) OnVersionCheck(_ context.Context, _, _ string, err error) {
	m.versionChecks.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) OnDownload(_ context.Context, _ string, size int, d time.Duration, err error) {
	m.downloads.WithLabelValues(result(err)).Inc()
	if err == nil {
		m.downloadBytes.Add(float64(size))
		m.downloadTime.Observe(d.Seconds())
	}
}

func (m *Metrics) OnFallback(context.Context, string, error) { m.fallbacks.Inc() }
func (m *Metrics) OnReuse(context.Context, string)           { m.reuses.Inc() }

func (m *Metrics) OnCacheHit(_ context.Context, key string) {
	m.cache.WithLabelValues(keyKind(key), "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, key string) {
	m.cache.WithLabelValues(keyKind(key), "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, key string, _ int) {
	m.cache.WithLabelValues(keyKind(key), "set").Inc()
}

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, _, host, _ string, status int, d time.Duration) {
	m.requests.WithLabelValues(host, strconv.Itoa(status)).Inc()
	m.requestTime.WithLabelValues(host).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, _, host, _ string, _ error) {
	m.requests.WithLabelValues(host, "error").Inc()
}

var (
	_ DatasetHooks = (*Metrics)(nil)
	_ CacheHooks   = (*Metrics)(nil)
	_ HTTPHooks    = (*Metrics)(nil)
)
