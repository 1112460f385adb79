// Package metrics exposes prometheus collectors for access decisions.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the access-control collectors. A nil *Metrics records nothing.
type Metrics struct {
	Decisions      *prometheus.CounterVec
	DegradedChecks *prometheus.CounterVec
	Transitions    *prometheus.CounterVec
	HTTPRequests   *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "itm_access_decisions_total",
				Help: "Session resolutions by outcome",
			},
			[]string{"outcome"},
		),
		DegradedChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "itm_access_degraded_checks_total",
				Help: "Lookups that failed and were treated as inconclusive",
			},
			[]string{"check"},
		),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "itm_access_guest_request_transitions_total",
				Help: "Guest request workflow transitions by resulting status",
			},
			[]string{"status"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "itm_access_http_requests_total",
				Help: "HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Decisions, m.DegradedChecks, m.Transitions, m.HTTPRequests)
	}
	return m
}

// NewRegistry returns a registry carrying the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the registry in the prometheus exposition format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// ObserveDecision counts one session resolution.
func (m *Metrics) ObserveDecision(outcome string) {
	if m == nil {
		return
	}
	m.Decisions.WithLabelValues(outcome).Inc()
}

// ObserveDegraded counts one failed lookup.
func (m *Metrics) ObserveDegraded(check string) {
	if m == nil {
		return
	}
	m.DegradedChecks.WithLabelValues(check).Inc()
}

// ObserveTransition counts one workflow transition.
func (m *Metrics) ObserveTransition(status string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(status).Inc()
}

// ObserveHTTP counts one served request.
func (m *Metrics) ObserveHTTP(method, route, status string) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
}
