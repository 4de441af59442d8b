package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors
type Metrics struct {
	registry *prometheus.Registry

	RefreshTotal    *prometheus.CounterVec
	EnrichmentTotal *prometheus.CounterVec
	SMSSendTotal    *prometheus.CounterVec
}

// New creates the metrics registry with all collectors registered
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		RefreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aniarr_refresh_total",
			Help: "Metadata refresh attempts by trigger and outcome",
		}, []string{"trigger", "outcome"}),
		EnrichmentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aniarr_enrichment_total",
			Help: "Per-character enrichment attempts by outcome",
		}, []string{"outcome"}),
		SMSSendTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aniarr_sms_send_total",
			Help: "Verification SMS sends by outcome",
		}, []string{"outcome"}),
	}

	registry.MustRegister(m.RefreshTotal, m.EnrichmentTotal, m.SMSSendTotal)
	return m
}

// Handler returns the HTTP handler serving the registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
