// Package metrics exposes Prometheus counters for tray activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry and implements tray.Recorder.
type Metrics struct {
	registry *prometheus.Registry

	titleUpdates *prometheus.CounterVec
	rebuilds     prometheus.Counter
	events       *prometheus.CounterVec
}

// New creates the metrics and registers them with a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		titleUpdates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "popomomo_tray_title_updates_total",
				Help: "Tray title updates by the path that served them",
			},
			[]string{"path"},
		),
		rebuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "popomomo_tray_rebuilds_total",
			Help: "Tray icon rebuild attempts",
		}),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "popomomo_tray_events_total",
				Help: "Interaction events routed by kind",
			},
			[]string{"kind"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.titleUpdates,
		m.rebuilds,
		m.events,
	)
	return m
}

// TitleUpdate counts a title update served by path.
func (m *Metrics) TitleUpdate(path string) {
	m.titleUpdates.WithLabelValues(path).Inc()
}

// Rebuild counts a rebuild attempt.
func (m *Metrics) Rebuild() {
	m.rebuilds.Inc()
}

// Event counts a routed event of kind.
func (m *Metrics) Event(kind string) {
	m.events.WithLabelValues(kind).Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the /metrics handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
