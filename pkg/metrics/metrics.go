// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PredictionsTotal counts prediction requests by outcome
	// (ok, unknown_product, malformed_date, invalid_request).
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shampoo_predictions_total",
			Help: "Total prediction requests by outcome",
		},
		[]string{"outcome"},
	)

	// DegradedAxesTotal counts encodings where a categorical axis carried no
	// signal because its value was not seen during training.
	DegradedAxesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shampoo_encoding_degraded_axes_total",
			Help: "Categorical axes encoded as all-zero because the value was unknown",
		},
		[]string{"axis"},
	)

	// StageDuration observes time spent in each prediction stage.
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shampoo_prediction_stage_seconds",
			Help:    "Duration of the encoding and predicting stages",
			Buckets: []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .05},
		},
		[]string{"stage"},
	)

	// PredictedUnits observes the served unit predictions.
	PredictedUnits = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shampoo_predicted_units",
			Help:    "Distribution of predicted units sold",
			Buckets: prometheus.ExponentialBuckets(10, 2, 8),
		},
	)

	// ModelInfo exposes the loaded artifact version as a constant gauge.
	ModelInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "shampoo_model_info",
			Help: "Loaded model artifact (value is always 1)",
		},
		[]string{"version", "kind"},
	)
)
