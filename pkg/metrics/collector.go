package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/sessionkit/pkg/session"
)

const namespace = "sessionkit"

// Collector exports session lifecycle events as Prometheus metrics.
// It implements session.Recorder.
type Collector struct {
	loads     *prometheus.CounterVec
	finalizes *prometheus.CounterVec
	errors    *prometheus.CounterVec
	available prometheus.Gauge
}

var _ session.Recorder = (*Collector)(nil)

// NewCollector creates the metrics and registers them with registerer.
// If registerer is nil, prometheus.DefaultRegisterer is used.
func NewCollector(registerer prometheus.Registerer) *Collector {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	c := &Collector{
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "loads_total",
			Help:      "Sessions loaded, by result",
		}, []string{"result"}),
		finalizes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "finalizes_total",
			Help:      "Session finalization decisions, by action",
		}, []string{"action"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "errors_total",
			Help:      "Session errors, by operation",
		}, []string{"op"}),
		available: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "available",
			Help:      "1 when the session store is reachable",
		}),
	}

	registerer.MustRegister(c.loads, c.finalizes, c.errors, c.available)
	return c
}

func (c *Collector) RecordLoad(result session.LoadResult) {
	c.loads.WithLabelValues(string(result)).Inc()
}

func (c *Collector) RecordFinalize(action session.Action) {
	c.finalizes.WithLabelValues(string(action)).Inc()
}

func (c *Collector) RecordError(op string) {
	c.errors.WithLabelValues(op).Inc()
}

// Track mirrors the availability of store in the store_available gauge.
func (c *Collector) Track(store *session.Store) {
	c.setAvailable(store.Available())
	store.OnConnect(func() { c.setAvailable(true) })
	store.OnDisconnect(func() { c.setAvailable(false) })
}

func (c *Collector) setAvailable(ok bool) {
	if ok {
		c.available.Set(1)
		return
	}
	c.available.Set(0)
}

// Handler serves the metrics gathered by gatherer, or the default registry
// when gatherer is nil.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	if gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
