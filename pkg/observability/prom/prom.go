// Package prom implements the observability hooks with Prometheus metrics.
//
//	h := prom.New(prometheus.DefaultRegisterer)
//	observability.SetCollectHooks(h)
//	observability.SetCacheHooks(h)
//	observability.SetHTTPHooks(h)
package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/depcollect/pkg/observability"
)

var (
	_ observability.CollectHooks = (*Hooks)(nil)
	_ observability.CacheHooks   = (*Hooks)(nil)
	_ observability.HTTPHooks    = (*Hooks)(nil)
)

// Hooks records collection, cache and HTTP events as metrics.
type Hooks struct {
	collectTotal    *prometheus.CounterVec
	collectErrors   prometheus.Counter
	collectDuration prometheus.Histogram
	graphNodes      prometheus.Histogram
	rangeTotal      *prometheus.CounterVec
	descriptorTotal *prometheus.CounterVec
	nodesReused     prometheus.Counter
	duplicates      prometheus.Counter
	relocations     prometheus.Counter

	cacheTotal *prometheus.CounterVec
	cacheBytes *prometheus.CounterVec

	httpTotal    *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpErrors   *prometheus.CounterVec
}

// New creates the metrics and registers them on reg. A nil reg leaves them
// unregistered.
func New(reg prometheus.Registerer) *Hooks {
	h := &Hooks{
		collectTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depcollect_collections_total",
				Help: "Number of collections by outcome.",
			},
			[]string{"outcome"},
		),
		collectErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "depcollect_collection_errors_total",
				Help: "Total number of errors recorded during collections.",
			},
		),
		collectDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "depcollect_collection_duration_seconds",
				Help:    "Time taken to collect a dependency graph.",
				Buckets: prometheus.DefBuckets,
			},
		),
		graphNodes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "depcollect_graph_nodes",
				Help:    "Number of nodes in collected graphs.",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
		rangeTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depcollect_version_range_requests_total",
				Help: "Number of version range resolutions by outcome.",
			},
			[]string{"outcome"},
		),
		descriptorTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depcollect_descriptor_reads_total",
				Help: "Number of descriptor reads by outcome.",
			},
			[]string{"outcome"},
		),
		nodesReused: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "depcollect_nodes_reused_total",
				Help: "Number of times an expanded node was shared by another edge.",
			},
		),
		duplicates: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "depcollect_cycles_skipped_total",
				Help: "Number of dependencies dropped because an ancestor has the same artifact.",
			},
		),
		relocations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "depcollect_relocations_total",
				Help: "Number of relocations followed.",
			},
		),
		cacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depcollect_cache_operations_total",
				Help: "Number of cache operations by key type and result.",
			},
			[]string{"key_type", "result"},
		),
		cacheBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depcollect_cache_written_bytes_total",
				Help: "Bytes written to the cache by key type.",
			},
			[]string{"key_type"},
		),
		httpTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depcollect_http_requests_total",
				Help: "Number of repository HTTP responses by host and status code.",
			},
			[]string{"host", "code"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "depcollect_http_request_duration_seconds",
				Help:    "Repository HTTP request latency by host.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"host"},
		),
		httpErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depcollect_http_errors_total",
				Help: "Number of repository HTTP requests that failed without a response.",
			},
			[]string{"host"},
		),
	}
	if reg != nil {
		reg.MustRegister(h.Collectors()...)
	}
	return h
}

// Collectors returns every metric, for registering on a custom registry.
func (h *Hooks) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		h.collectTotal, h.collectErrors, h.collectDuration, h.graphNodes,
		h.rangeTotal, h.descriptorTotal, h.nodesReused, h.duplicates, h.relocations,
		h.cacheTotal, h.cacheBytes,
		h.httpTotal, h.httpDuration, h.httpErrors,
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (h *Hooks) OnCollectStart(context.Context, string) {}

func (h *Hooks) OnCollectComplete(_ context.Context, _ string, nodes, errs int, d time.Duration, err error) {
	h.collectTotal.WithLabelValues(outcome(err)).Inc()
	h.collectErrors.Add(float64(errs))
	h.collectDuration.Observe(d.Seconds())
	h.graphNodes.Observe(float64(nodes))
}

func (h *Hooks) OnRangeResolved(_ context.Context, _ string, _ int, err error) {
	h.rangeTotal.WithLabelValues(outcome(err)).Inc()
}

func (h *Hooks) OnDescriptorRead(_ context.Context, _ string, err error) {
	h.descriptorTotal.WithLabelValues(outcome(err)).Inc()
}

func (h *Hooks) OnNodeReused(context.Context, string)         { h.nodesReused.Inc() }
func (h *Hooks) OnDuplicate(context.Context, string)          { h.duplicates.Inc() }
func (h *Hooks) OnRelocation(context.Context, string, string) { h.relocations.Inc() }

func (h *Hooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheTotal.WithLabelValues(keyType, "hit").Inc()
}

func (h *Hooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheTotal.WithLabelValues(keyType, "miss").Inc()
}

func (h *Hooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheTotal.WithLabelValues(keyType, "set").Inc()
	h.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (h *Hooks) OnRequest(context.Context, string, string, string) {}

func (h *Hooks) OnResponse(_ context.Context, _, host, _ string, status int, d time.Duration) {
	h.httpTotal.WithLabelValues(host, strconv.Itoa(status)).Inc()
	h.httpDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (h *Hooks) OnError(_ context.Context, _, host, _ string, _ error) {
	h.httpErrors.WithLabelValues(host).Inc()
}
