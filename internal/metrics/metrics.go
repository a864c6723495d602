// Package metrics exposes simulation and server counters to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/litescript/ls-orrery/internal/catalog"
	"github.com/litescript/ls-orrery/internal/orbit"
)

const namespace = "orrery"

// Collector holds every metric. Each Collector has its own registry so
// several can coexist in one process.
type Collector struct {
	registry *prometheus.Registry

	ticksTotal    *prometheus.CounterVec
	tickDuration  prometheus.Histogram
	bodies        prometheus.Gauge
	catalogLoads  *prometheus.CounterVec
	rejectedTotal *prometheus.CounterVec
	wsClients     prometheus.Gauge
	wsFrames      *prometheus.CounterVec
}

// NewCollector creates and registers all metrics.
func NewCollector() *Collector {
	m := &Collector{
		registry: prometheus.NewRegistry(),
		ticksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ticks_total",
				Help:      "Simulation ticks processed",
			},
			[]string{"mode"},
		),
		tickDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tick_duration_seconds",
				Help:      "Time spent advancing all bodies one tick",
				Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
			},
		),
		bodies: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "bodies",
				Help:      "Bodies in the simulation",
			},
		),
		catalogLoads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_loads_total",
				Help:      "Catalog loads by outcome",
			},
			[]string{"result"},
		),
		rejectedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_rejected_total",
				Help:      "Catalog records rejected by reason",
			},
			[]string{"reason"},
		),
		wsClients: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "ws_clients",
				Help:      "Connected websocket clients",
			},
		),
		wsFrames: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ws_frames_total",
				Help:      "Snapshot frames offered to websocket clients by outcome",
			},
			[]string{"result"},
		),
	}

	m.registry.MustRegister(
		m.ticksTotal,
		m.tickDuration,
		m.bodies,
		m.catalogLoads,
		m.rejectedTotal,
		m.wsClients,
		m.wsFrames,
	)
	return m
}

// ObserveTick records one simulation tick.
func (m *Collector) ObserveTick(d time.Duration, bodies int, parallel bool) {
	mode := "sequential"
	if parallel {
		mode = "parallel"
	}
	m.ticksTotal.WithLabelValues(mode).Inc()
	m.tickDuration.Observe(d.Seconds())
	m.bodies.Set(float64(bodies))
}

// RecordLoad records a catalog load and its rejections.
func (m *Collector) RecordLoad(res catalog.Result) {
	if res.Error != nil {
		m.catalogLoads.WithLabelValues("error").Inc()
	} else {
		m.catalogLoads.WithLabelValues("ok").Inc()
	}
	for _, rej := range res.Rejected {
		m.rejectedTotal.WithLabelValues(rej.Reason).Inc()
	}
}

// WatchSampler exports the path cache hit and miss counts.
func (m *Collector) WatchSampler(s *orbit.Sampler) {
	m.registry.MustRegister(
		prometheus.NewCounterFunc(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "path_cache_hits_total",
				Help:      "Orbit path cache hits",
			},
			func() float64 {
				hits, _ := s.Stats()
				return float64(hits)
			},
		),
		prometheus.NewCounterFunc(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "path_cache_misses_total",
				Help:      "Orbit path cache misses",
			},
			func() float64 {
				_, misses := s.Stats()
				return float64(misses)
			},
		),
	)
}

// ClientConnected increments the websocket client gauge.
func (m *Collector) ClientConnected() {
	m.wsClients.Inc()
}

// ClientDisconnected decrements the websocket client gauge.
func (m *Collector) ClientDisconnected() {
	m.wsClients.Dec()
}

// FrameSent counts a frame written to a client.
func (m *Collector) FrameSent() {
	m.wsFrames.WithLabelValues("sent").Inc()
}

// FrameDropped counts a frame skipped by a client's rate limit or full queue.
func (m *Collector) FrameDropped() {
	m.wsFrames.WithLabelValues("dropped").Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Collector) Registry() *prometheus.Registry {
	return m.registry
}
