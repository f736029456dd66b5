package dev

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// devMetrics is the dev server's own Prometheus surface, exposed at
// /metrics when metrics.enabled is set in zenith.json. It lives on a
// private registry so enabling it never pollutes the default one.
type devMetrics struct {
	registry   *prometheus.Registry
	scans      *prometheus.CounterVec
	broadcasts *prometheus.CounterVec
}

func newDevMetrics(namespace string, clientCount func() float64) *devMetrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &devMetrics{
		registry: registry,
		scans: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dev",
			Name:      "scans_total",
			Help:      "Route manifest scans by result.",
		}, []string{"result"}),
		broadcasts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dev",
			Name:      "reload_broadcasts_total",
			Help:      "Live-reload messages broadcast by type.",
		}, []string{"type"}),
	}

	if clientCount != nil {
		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dev",
			Name:      "reload_clients",
			Help:      "Currently connected live-reload clients.",
		}, clientCount)
	}

	return m
}

func (m *devMetrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *devMetrics) observeScan(result ScanResult) {
	outcome := "ok"
	if result.Err != nil {
		outcome = "error"
	}
	m.scans.WithLabelValues(outcome).Inc()
}

func (m *devMetrics) observeBroadcast(t ReloadMessageType) {
	m.broadcasts.WithLabelValues(string(t)).Inc()
}
