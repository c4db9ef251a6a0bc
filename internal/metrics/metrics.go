// Package metrics holds the Prometheus collectors for the server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kidandcat/heartquest/internal/narration"
)

const namespace = "heartquest"

// Collector owns its registry so several can coexist in tests.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	TokensResolved    *prometheus.CounterVec
	MemoriesCollected prometheus.Counter
	Narrations        *prometheus.CounterVec
	UploadBytes       prometheus.Counter
	ProposalsCreated  prometheus.Counter
}

func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		TokensResolved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tokens_resolved_total",
				Help:      "Token lookups by result",
			},
			[]string{"result"},
		),
		MemoriesCollected: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "memories_collected_total",
				Help:      "Memories marked collected",
			},
		),
		Narrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "narrations_total",
				Help:      "Narration requests by outcome",
			},
			[]string{"outcome"},
		),
		UploadBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upload_bytes_total",
				Help:      "Bytes accepted from creator uploads",
			},
		),
		ProposalsCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "proposals_created_total",
				Help:      "Proposals created",
			},
		),
	}
	c.registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.TokensResolved,
		c.MemoriesCollected,
		c.Narrations,
		c.UploadBytes,
		c.ProposalsCreated,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler exposes the registry in the text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one finished HTTP request. route is the mux
// pattern, never the raw path.
func (c *Collector) ObserveRequest(method, route string, status int, d time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Resolved counts a token lookup.
func (c *Collector) Resolved(found bool) {
	result := "miss"
	if found {
		result = "hit"
	}
	c.TokensResolved.WithLabelValues(result).Inc()
}

// Narrated counts a narration outcome; it fits narration.Guard.Observe.
func (c *Collector) Narrated(o narration.Outcome) {
	c.Narrations.WithLabelValues(string(o)).Inc()
}
