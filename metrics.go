package txui

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of one App. Collectors are
// registered on a private registry so several apps (or tests) can coexist in
// one process.
type Metrics struct {
	// Requests counts served page requests by route, mode (full|partial) and
	// outcome (ok|reload|error).
	Requests *prometheus.CounterVec
	// Transactions counts how requests resolved their transaction: created,
	// loaded, lost, route_violation or forked.
	Transactions *prometheus.CounterVec
	// Phase observes the duration of each lifecycle phase.
	Phase *prometheus.HistogramVec
	// Events counts applied client events by route and event type.
	Events *prometheus.CounterVec
	// ClientParse observes the client-reported parse time sent by log_time.
	ClientParse *prometheus.HistogramVec

	registry *prometheus.Registry
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "txui_requests_total",
				Help: "Total number of page requests",
			},
			[]string{"route", "mode", "outcome"},
		),
		Transactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "txui_transactions_total",
				Help: "Transaction resolutions by outcome",
			},
			[]string{"route", "outcome"},
		),
		Phase: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "txui_phase_duration_seconds",
				Help:    "Duration of request lifecycle phases",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
			},
			[]string{"route", "phase"},
		),
		Events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "txui_events_total",
				Help: "Applied client events",
			},
			[]string{"route", "type"},
		),
		ClientParse: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "txui_client_parse_seconds",
				Help: "Client-side parse time reported by the browser",
			},
			[]string{"route"},
		),
		registry: prometheus.NewRegistry(),
	}
	m.registry.MustRegister(m.Requests, m.Transactions, m.Phase, m.Events, m.ClientParse)
	return m
}

// Registry returns the Prometheus registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collectors in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
