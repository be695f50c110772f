package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Extraction outcomes recorded by the extractor.
const (
	ExtractionSuccess       = "success"
	ExtractionParseError    = "parse_error"
	ExtractionInvalid       = "invalid"
	ExtractionProviderError = "provider_error"
)

// Rate limit decisions recorded by the limiter.
const (
	RateLimitAllowed  = "allowed"
	RateLimitDenied   = "denied"
	RateLimitFailOpen = "fail_open"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry            *prometheus.Registry
	handler             http.Handler
	requestDuration     *prometheus.HistogramVec
	requestTotal        *prometheus.CounterVec
	extractionTotal     *prometheus.CounterVec
	providerLatency     prometheus.Observer
	rateLimitDecisions  *prometheus.CounterVec
	counterStoreLatency prometheus.Observer
}

// NewMetricsService registers core Prometheus collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	extractionTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "event_extractions_total",
		Help: "Event extractions by outcome",
	}, []string{"outcome"})

	providerLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "llm_request_duration_seconds",
		Help:    "Latency of language-model extraction calls",
		Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
	})

	rateLimitDecisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rate_limit_decisions_total",
		Help: "Rate limit decisions by result",
	}, []string{"endpoint", "result"})

	counterStoreLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "rate_limit_store_duration_seconds",
		Help:    "Latency of counter store round trips",
		Buckets: prometheus.DefBuckets,
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, extractionTotal, providerLatency, rateLimitDecisions, counterStoreLatency, goroutines)

	return &MetricsService{
		registry:            registry,
		handler:             promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:     requestDuration,
		requestTotal:        requestTotal,
		extractionTotal:     extractionTotal,
		providerLatency:     providerLatency,
		rateLimitDecisions:  rateLimitDecisions,
		counterStoreLatency: counterStoreLatency,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry returns the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordExtraction counts an extraction outcome and, when the provider was
// reached, its latency.
func (m *MetricsService) RecordExtraction(outcome string, providerDuration time.Duration) {
	if m == nil {
		return
	}
	m.extractionTotal.WithLabelValues(outcome).Inc()
	if providerDuration > 0 {
		m.providerLatency.Observe(providerDuration.Seconds())
	}
}

// RecordRateLimit counts a limiter decision and the store round trip.
func (m *MetricsService) RecordRateLimit(endpoint, result string, storeDuration time.Duration) {
	if m == nil {
		return
	}
	m.rateLimitDecisions.WithLabelValues(endpoint, result).Inc()
	if storeDuration > 0 {
		m.counterStoreLatency.Observe(storeDuration.Seconds())
	}
}
