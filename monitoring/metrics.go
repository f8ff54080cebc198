// Package monitoring exposes the service's Prometheus instrumentation and
// the realtime prediction feed.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric outcome label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

var (
	// PredictionRequestsTotal counts prediction requests by final status.
	// It is incremented on every request, successful or not.
	PredictionRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prediction_requests_total",
			Help: "Total number of prediction requests",
		},
		[]string{"status"},
	)

	// PredictionResults counts successful predictions by outcome label.
	PredictionResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prediction_results_total",
			Help: "Prediction results by outcome",
		},
		[]string{"outcome"},
	)

	// PredictionLatency observes end-to-end predict handler latency.
	PredictionLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "prediction_latency_seconds",
			Help:    "Prediction request latency in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		},
	)

	// ModelLoaded is 1 when a pipeline artifact is loaded, 0 otherwise.
	ModelLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_loaded",
			Help: "Whether the ML model is currently loaded (1=yes, 0=no)",
		},
	)

	// ModelInfo describes the loaded artifact through labels; the sample
	// value is always 1. Reset and re-set on every successful (re)load so
	// only the current artifact is exposed.
	ModelInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "model_info",
			Help: "Metadata of the loaded model artifact",
		},
		[]string{"version", "algorithm", "path"},
	)

	// HTTPRequestsTotal counts every HTTP request through the middleware
	// chain.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// PredictionCacheHits counts predict requests answered from the LRU memo.
	PredictionCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prediction_cache_hits_total",
			Help: "Predict requests served from the result cache",
		},
	)

	// ModelReloadsTotal counts artifact reloads by result.
	ModelReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_reloads_total",
			Help: "Model artifact reload attempts by result",
		},
		[]string{"status"},
	)
)
