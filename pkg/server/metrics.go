package server

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/redcanaryco/vscode-attack/pkg/attack"
)

// metrics holds the server's Prometheus collectors. Each server owns its
// registry so that several servers can run in one process.
type metrics struct {
	registry *prometheus.Registry

	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	searchResults prometheus.Histogram
	reloads       *prometheus.CounterVec
	entities      *prometheus.GaugeVec
	dataset       *prometheus.GaugeVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attack",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "attack",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"route"}),
		searchResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "attack",
			Name:      "search_results",
			Help:      "Number of results returned per search.",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 25, 100},
		}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attack",
			Name:      "reloads_total",
			Help:      "Dataset reloads by result.",
		}, []string{"result"}),
		entities: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "attack",
			Name:      "entities",
			Help:      "Entities in the current snapshot by kind.",
		}, []string{"kind"}),
		dataset: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "attack",
			Name:      "dataset_info",
			Help:      "Always 1; labelled with the version of the current snapshot.",
		}, []string{"version"}),
	}

	m.registry.MustRegister(
		m.requests, m.duration, m.searchResults, m.reloads, m.entities, m.dataset,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (m *metrics) observeRequest(route, method string, status int, seconds float64) {
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(route).Observe(seconds)
}

// setSnapshot publishes the counts and version of snap.
func (m *metrics) setSnapshot(snap *attack.Snapshot) {
	if snap == nil {
		return
	}
	for _, k := range attack.Kinds {
		m.entities.WithLabelValues(k.Plural()).Set(float64(snap.Len(k)))
	}
	m.dataset.Reset()
	m.dataset.WithLabelValues(snap.Version).Set(1)
}
