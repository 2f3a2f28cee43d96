// Package metrics provides Prometheus metrics collection for the diarisk
// pipeline and model server. It defines and manages the training, tuning,
// and inference metrics exposed via the Prometheus metrics endpoint.
//
// The package includes metrics for prediction volume and confidence,
// prediction cache behavior, training and tuning durations, and
// per-variant selection scores.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the pipeline and server.
type Metrics struct {
	// Inference metrics
	PredictionsTotal     *prometheus.CounterVec // Predictions served, by outcome label
	PredictionFailures   prometheus.Counter     // Prediction requests that failed
	PredictionConfidence prometheus.Histogram   // Distribution of reported confidence
	PredictionLatency    prometheus.Histogram   // End-to-end prediction latency
	CacheHits            prometheus.Counter     // Prediction cache hits
	CacheMisses          prometheus.Counter     // Prediction cache misses

	// Pipeline metrics
	TrainingDuration    prometheus.Histogram // Duration of panel selection runs
	TuningDuration      prometheus.Histogram // Duration of grid search runs
	TuningEvaluations   prometheus.Counter   // Hyperparameter combinations evaluated
	VariantTestAccuracy *prometheus.GaugeVec // Held-out accuracy per candidate variant

	// Serving metrics
	HTTPRequestDuration *prometheus.HistogramVec // Handler latency by path
	ArtifactReloads     prometheus.Counter       // Model artifact hot reloads
}

// New creates and registers all Prometheus metrics using the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for testing).
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		PredictionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Total number of predictions served, by outcome label",
		}, []string{"label"}),
		PredictionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "prediction_failures_total",
			Help: "Total number of prediction requests that failed",
		}),
		PredictionConfidence: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "prediction_confidence",
			Help:    "Distribution of confidence reported with predictions",
			Buckets: prometheus.LinearBuckets(0.5, 0.05, 11),
		}),
		PredictionLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "prediction_latency_seconds",
			Help:    "End-to-end prediction latency in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "prediction_cache_hits_total",
			Help: "Total number of prediction cache hits",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "prediction_cache_misses_total",
			Help: "Total number of prediction cache misses",
		}),
		TrainingDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "training_duration_seconds",
			Help:    "Duration of candidate panel training runs in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		TuningDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tuning_duration_seconds",
			Help:    "Duration of hyperparameter grid searches in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		TuningEvaluations: factory.NewCounter(prometheus.CounterOpts{
			Name: "tuning_evaluations_total",
			Help: "Total number of hyperparameter combinations evaluated",
		}),
		VariantTestAccuracy: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "variant_test_accuracy",
			Help: "Held-out test accuracy per candidate variant",
		}, []string{"variant"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP handler latency in seconds, by path",
			Buckets: prometheus.DefBuckets,
		}, []string{"path"}),
		ArtifactReloads: factory.NewCounter(prometheus.CounterOpts{
			Name: "artifact_reloads_total",
			Help: "Total number of model artifact hot reloads",
		}),
	}
}

// ObservePrediction records one served prediction.
func (m *Metrics) ObservePrediction(label string, confidence, seconds float64) {
	m.PredictionsTotal.WithLabelValues(label).Inc()
	m.PredictionConfidence.Observe(confidence)
	m.PredictionLatency.Observe(seconds)
}
