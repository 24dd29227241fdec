// Package metrics exposes scenepool pool activity as Prometheus metrics.
//
// # Overview
//
// The metrics package provides:
//   - A Collector that implements pool.Observer
//   - Per-template counters for acquisitions, releases, creations and destructions
//   - Per-template gauges for idle and outstanding instances
//   - A latency histogram for simulation ticks
//   - An HTTP handler for the scrape endpoint
//
// # Basic Usage
//
//	reg := prometheus.NewRegistry()
//	collector := metrics.NewCollector(reg, "scenepool")
//	p, _ := pool.New(loader, pool.WithObserver(collector))
//
//	http.Handle("/metrics", collector.Handler())
//
// Each Collector registers its own metric families, so tests can use a fresh
// registry without touching the process-wide default one.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ajitpratap0/scenepool/pkg/pool"
)

// Result label values for acquisitions.
const (
	ResultHit  = "hit"
	ResultMiss = "miss"
)

// Collector records pool lifecycle events. It is safe to share between pools;
// the underlying Prometheus vectors are safe for concurrent use.
type Collector struct {
	gatherer prometheus.Gatherer

	acquisitions *prometheus.CounterVec // Instances handed out, by result
	releases     *prometheus.CounterVec // Instances parked on an idle stack
	creations    *prometheus.CounterVec // Instances materialized by the loader
	adoptions    *prometheus.CounterVec // Resources wrapped from outside the pool
	destructions *prometheus.CounterVec // Instances torn down
	loadFailures *prometheus.CounterVec // Loader errors
	idle         *prometheus.GaugeVec   // Idle instances per template
	active       *prometheus.GaugeVec   // Registered instances that are not idle
	tickLatency  prometheus.Histogram   // Duration of one simulation tick
}

var _ pool.Observer = (*Collector)(nil)

// NewCollector registers the scenepool metric families on reg under namespace.
// A nil reg uses the default Prometheus registry.
//
// Example:
//
//	collector := metrics.NewCollector(prometheus.NewRegistry(), "scenepool")
//	p, _ := pool.New(loader, pool.WithObserver(collector))
func NewCollector(reg *prometheus.Registry, namespace string) *Collector {
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if reg != nil {
		registerer, gatherer = reg, reg
	}
	factory := promauto.With(registerer)

	c := &Collector{
		acquisitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "acquisitions_total",
			Help:      "Instances handed out by the pool",
		}, []string{"template", "result"}),
		releases: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "releases_total",
			Help:      "Instances returned to an idle stack",
		}, []string{"template"}),
		creations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "creations_total",
			Help:      "Instances materialized by the loader",
		}, []string{"template"}),
		adoptions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "adoptions_total",
			Help:      "Externally created resources wrapped by the pool",
		}, []string{"template"}),
		destructions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "destructions_total",
			Help:      "Instances torn down",
		}, []string{"template"}),
		loadFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_failures_total",
			Help:      "Templates the loader failed to materialize",
		}, []string{"template"}),
		idle: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "idle_instances",
			Help:      "Instances parked and ready for reuse",
		}, []string{"template"}),
		active: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_instances",
			Help:      "Registered instances that are not idle",
		}, []string{"template"}),
		tickLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Duration of one simulation tick",
			Buckets: []float64{
				1e-6, // 1μs
				1e-5, // 10μs
				1e-4, // 100μs
				1e-3, // 1ms
				1e-2, // 10ms
				1e-1, // 100ms
			},
		}),
	}
	c.gatherer = gatherer
	return c
}

// Created counts a loader materialization. The instance is outstanding until
// it is either handed out or parked.
func (c *Collector) Created(template string) {
	c.creations.WithLabelValues(template).Inc()
	c.active.WithLabelValues(template).Inc()
}

// Adopted counts a wrapped external resource.
func (c *Collector) Adopted(template string) {
	c.adoptions.WithLabelValues(template).Inc()
	c.active.WithLabelValues(template).Inc()
}

// Acquired counts a hand-out. A hit moves an instance from idle to active;
// a miss was already counted active by Created.
func (c *Collector) Acquired(template string, hit bool) {
	if hit {
		c.acquisitions.WithLabelValues(template, ResultHit).Inc()
		c.idle.WithLabelValues(template).Dec()
		c.active.WithLabelValues(template).Inc()
		return
	}
	c.acquisitions.WithLabelValues(template, ResultMiss).Inc()
}

// Released counts an instance parked on its idle stack.
func (c *Collector) Released(template string) {
	c.releases.WithLabelValues(template).Inc()
	c.active.WithLabelValues(template).Dec()
	c.idle.WithLabelValues(template).Inc()
}

// Prepared moves a freshly created warm-up instance to idle.
func (c *Collector) Prepared(template string) {
	c.active.WithLabelValues(template).Dec()
	c.idle.WithLabelValues(template).Inc()
}

// Destroyed counts a teardown.
func (c *Collector) Destroyed(template string, wasIdle bool) {
	c.destructions.WithLabelValues(template).Inc()
	if wasIdle {
		c.idle.WithLabelValues(template).Dec()
		return
	}
	c.active.WithLabelValues(template).Dec()
}

// LoadFailed counts a loader error.
func (c *Collector) LoadFailed(template string, _ error) {
	c.loadFailures.WithLabelValues(template).Inc()
}

// ObserveTick records the duration of one simulation tick.
func (c *Collector) ObserveTick(d time.Duration) {
	c.tickLatency.Observe(d.Seconds())
}

// Handler serves the metrics gathered by the collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// Timer measures one operation, such as a simulation tick.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
//
// Example:
//
//	timer := metrics.NewTimer()
//	runTick()
//	collector.ObserveTick(timer.Stop())
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Stop returns the time elapsed since NewTimer. It may be called repeatedly.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
