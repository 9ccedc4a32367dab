// Package observability exposes Prometheus collectors for the daemon.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the daemon.
type Metrics struct {
	registry        *prometheus.Registry
	ResolveRequests *prometheus.CounterVec
	ResolveDuration *prometheus.HistogramVec
	Expansions      *prometheus.CounterVec
	RegistryReloads *prometheus.CounterVec
	RegistryTools   prometheus.Gauge
	TransportErrs   *prometheus.CounterVec
	Explanations    *prometheus.CounterVec
}

// NewMetrics constructs a metrics registry with the daemon collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	reqs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "paw_resolve_requests_total",
		Help: "Prompt resolutions by transport and whether any tool matched",
	}, []string{"transport", "matched"})

	durs := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "paw_resolve_duration_seconds",
		Help:    "Prompt resolution duration in seconds",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
	}, []string{"transport"})

	expansions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "paw_expansions_total",
		Help: "Template expansions by whether every placeholder was filled",
	}, []string{"all_filled"})

	reloads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "paw_registry_reloads_total",
		Help: "Registry reloads from disk by outcome",
	}, []string{"outcome"})

	tools := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "paw_registry_tools",
		Help: "Number of tools in the loaded registry",
	})

	trErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "paw_transport_errors_total",
		Help: "Transport-level errors by transport and reason",
	}, []string{"transport", "reason"})

	explanations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "paw_explanations_total",
		Help: "Model explanations by model and outcome",
	}, []string{"model", "outcome"})

	reg.MustRegister(reqs, durs, expansions, reloads, tools, trErrors, explanations)

	return &Metrics{
		registry:        reg,
		ResolveRequests: reqs,
		ResolveDuration: durs,
		Expansions:      expansions,
		RegistryReloads: reloads,
		RegistryTools:   tools,
		TransportErrs:   trErrors,
		Explanations:    explanations,
	}
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordResolve records a resolution and its duration.
func (m *Metrics) RecordResolve(transport string, matches int, duration time.Duration) {
	if m == nil {
		return
	}
	if transport == "" {
		transport = "unknown"
	}
	m.ResolveRequests.WithLabelValues(transport, strconv.FormatBool(matches > 0)).Inc()
	m.ResolveDuration.WithLabelValues(transport).Observe(duration.Seconds())
}

// RecordExpansion counts an expansion.
func (m *Metrics) RecordExpansion(allFilled bool) {
	if m == nil {
		return
	}
	m.Expansions.WithLabelValues(strconv.FormatBool(allFilled)).Inc()
}

// RecordReload counts a registry reload and updates the tool gauge on success.
func (m *Metrics) RecordReload(tools int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.RegistryReloads.WithLabelValues("error").Inc()
		return
	}
	m.RegistryReloads.WithLabelValues("ok").Inc()
	m.RegistryTools.Set(float64(tools))
}

// SetTools sets the tool gauge.
func (m *Metrics) SetTools(n int) {
	if m == nil {
		return
	}
	m.RegistryTools.Set(float64(n))
}

// RecordTransportError records a transport-level error.
func (m *Metrics) RecordTransportError(transport, reason string) {
	if m == nil {
		return
	}
	if transport == "" {
		transport = "unknown"
	}
	if reason == "" {
		reason = "unknown"
	}
	m.TransportErrs.WithLabelValues(transport, reason).Inc()
}

// RecordExplanation counts a model explanation attempt.
func (m *Metrics) RecordExplanation(model string, err error) {
	if m == nil {
		return
	}
	if model == "" {
		model = "unknown"
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Explanations.WithLabelValues(model, outcome).Inc()
}
