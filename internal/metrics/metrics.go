// Package metrics provides Prometheus metrics for an evaluation run.
// The command is a batch job, so instead of serving an endpoint the registry is
// written once to a textfile that a node exporter textfile collector can pick up.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for an evaluation run.
type Metrics struct {
	// Data metrics
	RecordsLoaded  prometheus.Counter // Session rows read from the source table
	RecordsEncoded prometheus.Counter // Session rows converted to feature vectors
	EncodeErrors   prometheus.Counter // Rows rejected by the encoder

	// Prediction metrics
	Predictions          prometheus.Counter   // Test vectors classified
	PredictionsCorrect   prometheus.Counter   // Predictions that matched the held-out label
	PredictionsIncorrect prometheus.Counter   // Predictions that did not
	PredictionLatency    prometheus.Histogram // Wall time of the whole predict step

	// Evaluation metrics
	Sensitivity prometheus.Gauge // True-positive rate of the last run
	Specificity prometheus.Gauge // True-negative rate of the last run

	RunDuration prometheus.Histogram // End-to-end run duration

	gatherer prometheus.Gatherer
}

// New creates and registers all metrics on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	return NewWithRegistry(reg, reg)
}

// NewWithRegistry creates metrics with a custom registerer (useful for testing).
// The gatherer is used by WriteTextfile.
func NewWithRegistry(registerer prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		RecordsLoaded: factory.NewCounter(prometheus.CounterOpts{
			Name: "records_loaded_total",
			Help: "Total number of session rows read from the source table",
		}),
		RecordsEncoded: factory.NewCounter(prometheus.CounterOpts{
			Name: "records_encoded_total",
			Help: "Total number of session rows encoded into feature vectors",
		}),
		EncodeErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "encode_errors_total",
			Help: "Total number of session rows rejected by the encoder",
		}),
		Predictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Total number of test sessions classified",
		}),
		PredictionsCorrect: factory.NewCounter(prometheus.CounterOpts{
			Name: "predictions_correct_total",
			Help: "Total number of predictions matching the held-out label",
		}),
		PredictionsIncorrect: factory.NewCounter(prometheus.CounterOpts{
			Name: "predictions_incorrect_total",
			Help: "Total number of predictions not matching the held-out label",
		}),
		PredictionLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "prediction_latency_seconds",
			Help:    "Duration of the predict step in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}),
		Sensitivity: factory.NewGauge(prometheus.GaugeOpts{
			Name: "evaluation_sensitivity",
			Help: "True-positive rate of the last evaluation (NaN when no positives were held out)",
		}),
		Specificity: factory.NewGauge(prometheus.GaugeOpts{
			Name: "evaluation_specificity",
			Help: "True-negative rate of the last evaluation (NaN when no negatives were held out)",
		}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "run_duration_seconds",
			Help:    "End-to-end evaluation run duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 15),
		}),
		gatherer: gatherer,
	}
}

func (m *Metrics) RecordsLoadedAdd(n int)  { m.RecordsLoaded.Add(float64(n)) }
func (m *Metrics) RecordsEncodedAdd(n int) { m.RecordsEncoded.Add(float64(n)) }
func (m *Metrics) EncodeErrorsInc()        { m.EncodeErrors.Inc() }

func (m *Metrics) PredictionLatencyObserve(seconds float64) { m.PredictionLatency.Observe(seconds) }
func (m *Metrics) RunDurationObserve(seconds float64)       { m.RunDuration.Observe(seconds) }

// EvaluationSet records the outcome counts and rates of one evaluation.
func (m *Metrics) EvaluationSet(correct, incorrect int, sensitivity, specificity float64) {
	m.Predictions.Add(float64(correct + incorrect))
	m.PredictionsCorrect.Add(float64(correct))
	m.PredictionsIncorrect.Add(float64(incorrect))
	m.Sensitivity.Set(sensitivity)
	m.Specificity.Set(specificity)
}

// WriteTextfile writes every gathered metric to path in the Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	if m.gatherer == nil {
		return fmt.Errorf("metrics: no gatherer configured")
	}
	if err := prometheus.WriteToTextfile(path, m.gatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
