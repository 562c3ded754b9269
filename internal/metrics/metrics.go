// Package metrics exposes Prometheus counters for view projections,
// diagnostics and presentation commands.
package metrics

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the service counters. A nil *Metrics records nothing.
type Metrics struct {
	registry    *prometheus.Registry
	projections *prometheus.CounterVec
	diagnostics *prometheus.CounterVec
	commands    *prometheus.CounterVec
}

// New registers the counters on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		projections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "feedview",
			Name:      "projections_total",
			Help:      "View models derived from snapshots, by view.",
		}, []string{"view"}),
		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "feedview",
			Name:      "diagnostics_total",
			Help:      "Non-fatal data anomalies met while projecting, by kind.",
		}, []string{"kind"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "feedview",
			Name:      "commands_total",
			Help:      "Presentation commands, by type and outcome.",
		}, []string{"type", "outcome"}),
	}
	m.registry.MustRegister(m.projections, m.diagnostics, m.commands)
	return m
}

func (m *Metrics) Projected(view string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.projections.WithLabelValues(view).Add(float64(n))
}

func (m *Metrics) Diagnostic(kind string) {
	if m == nil {
		return
	}
	m.diagnostics.WithLabelValues(kind).Inc()
}

func (m *Metrics) Command(commandType, outcome string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(commandType, outcome).Inc()
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
