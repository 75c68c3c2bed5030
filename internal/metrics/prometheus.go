// Package metrics exposes Prometheus instrumentation for the voice bridge.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contains all Prometheus metrics for the voice bridge.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Voice pipeline metrics
	VoiceRequests      *prometheus.CounterVec
	ConversionFailures *prometheus.CounterVec
	InputContainers    *prometheus.CounterVec
	InputDuration      prometheus.Histogram
	NormalizeDuration  prometheus.Histogram

	// Backend metrics
	BackendRequests *prometheus.CounterVec
	BackendDuration prometheus.Histogram

	// Toolchain
	ToolAvailable *prometheus.GaugeVec
}

// NewMetrics creates and registers all metrics on a private registry, along
// with the Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voice_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "voice_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 16), // 5ms to ~3 minutes
		}, []string{"method", "route"}),

		VoiceRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voice_requests_total",
			Help: "Voice-to-voice requests by outcome",
		}, []string{"outcome"}),
		ConversionFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voice_conversion_failures_total",
			Help: "Audio normalization failures by stage",
		}, []string{"stage"}),
		InputContainers: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voice_input_containers_total",
			Help: "Successfully decoded inputs by container format",
		}, []string{"container"}),
		InputDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "voice_input_audio_seconds",
			Help:    "Duration of normalized input audio",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 9), // 0.5s to ~2 minutes
		}),
		NormalizeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "voice_normalize_duration_seconds",
			Help:    "Time spent decoding, resampling and encoding input audio",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		}),

		BackendRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voice_backend_requests_total",
			Help: "Backend calls by result",
		}, []string{"result"}),
		BackendDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "voice_backend_duration_seconds",
			Help:    "Backend call latency",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to ~3 minutes
		}),

		ToolAvailable: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "voice_tool_available",
			Help: "Whether an external audio tool answered its last check (1) or not (0)",
		}, []string{"tool"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, route, status string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(durationSeconds)
}

// RecordVoiceRequest counts a finished voice request by outcome
func (m *Metrics) RecordVoiceRequest(outcome string) {
	if m == nil {
		return
	}
	m.VoiceRequests.WithLabelValues(outcome).Inc()
}

// RecordNormalization records a successful normalization
func (m *Metrics) RecordNormalization(container string, audioSeconds, elapsedSeconds float64) {
	if m == nil {
		return
	}
	m.InputContainers.WithLabelValues(container).Inc()
	m.InputDuration.Observe(audioSeconds)
	m.NormalizeDuration.Observe(elapsedSeconds)
}

// RecordConversionFailure counts a failed normalization by stage
func (m *Metrics) RecordConversionFailure(stage string) {
	if m == nil {
		return
	}
	m.ConversionFailures.WithLabelValues(stage).Inc()
}

// RecordBackendCall records a backend call and its result
func (m *Metrics) RecordBackendCall(result string, elapsedSeconds float64) {
	if m == nil {
		return
	}
	m.BackendRequests.WithLabelValues(result).Inc()
	m.BackendDuration.Observe(elapsedSeconds)
}

// RecordToolAvailability records the outcome of an external tool check
func (m *Metrics) RecordToolAvailability(tool string, available bool) {
	if m == nil {
		return
	}
	v := 0.0
	if available {
		v = 1
	}
	m.ToolAvailable.WithLabelValues(tool).Set(v)
}
