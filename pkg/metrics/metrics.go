// Package metrics exposes Prometheus metrics for predictions and the HTTP surface.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid_input"
	OutcomeFailure = "failure"
	OutcomeCached  = "cached"
)

var (
	// PredictionsTotal counts predictions by outcome.
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "topicpredict_predictions_total",
			Help: "Total number of prediction requests by outcome",
		},
		[]string{"outcome"},
	)

	// PredictedLabelTotal counts successful predictions by decoded topic.
	PredictedLabelTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "topicpredict_predicted_label_total",
			Help: "Total number of predictions per recommended topic",
		},
		[]string{"label"},
	)

	PredictionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "topicpredict_prediction_duration_seconds",
			Help:    "Duration of a single prediction in seconds",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	// ArtifactsLoadedTimestamp is the unix time of the last successful artifact load.
	ArtifactsLoadedTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "topicpredict_artifacts_loaded_timestamp_seconds",
			Help: "Unix timestamp of the last successful artifact load",
		},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "topicpredict_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "topicpredict_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RecordPrediction records the outcome of one prediction. label is only
// counted for successful, uncached predictions.
func RecordPrediction(outcome, label string, duration time.Duration) {
	PredictionsTotal.WithLabelValues(outcome).Inc()
	PredictionDuration.Observe(duration.Seconds())
	if label != "" && (outcome == OutcomeSuccess || outcome == OutcomeCached) {
		PredictedLabelTotal.WithLabelValues(label).Inc()
	}
}

// RecordInvalidInput counts a submission rejected before prediction.
func RecordInvalidInput() {
	PredictionsTotal.WithLabelValues(OutcomeInvalid).Inc()
}

// RecordArtifactsLoaded stamps the artifact load time.
func RecordArtifactsLoaded(at time.Time) {
	ArtifactsLoadedTimestamp.Set(float64(at.Unix()))
}

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
