// Package experiment runs one evaluation of the session classifier: encode the
// session table, split it, fit, predict the held-out subset and score the
// predictions.
package experiment

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"shopping-eval/internal/cfg"
	"shopping-eval/internal/dataset"
	"shopping-eval/internal/eval"
	"shopping-eval/internal/features"
	"shopping-eval/internal/ml"
	"shopping-eval/internal/storage"

	"github.com/rs/zerolog/log"
)

// MetricsRecorder receives run metrics. *metrics.Metrics implements it.
type MetricsRecorder interface {
	RecordsLoadedAdd(n int)
	RecordsEncodedAdd(n int)
	EncodeErrorsInc()
	PredictionLatencyObserve(seconds float64)
	RunDurationObserve(seconds float64)
	EvaluationSet(correct, incorrect int, sensitivity, specificity float64)
}

type noopMetrics struct{}

func (noopMetrics) RecordsLoadedAdd(int)                     {}
func (noopMetrics) RecordsEncodedAdd(int)                    {}
func (noopMetrics) EncodeErrorsInc()                         {}
func (noopMetrics) PredictionLatencyObserve(float64)         {}
func (noopMetrics) RunDurationObserve(float64)               {}
func (noopMetrics) EvaluationSet(int, int, float64, float64) {}

// Engine represents the evaluation engine
type Engine struct {
	config     *cfg.Settings
	classifier ml.Classifier
	metrics    MetricsRecorder
	now        func() time.Time
}

// Prediction pairs a held-out session with the classifier's output.
type Prediction struct {
	Row       int            `json:"row"`
	Actual    features.Label `json:"actual"`
	Predicted features.Label `json:"predicted"`
}

// Results holds the outcome of one run
type Results struct {
	Dataset      string
	StartTime    time.Time
	EndTime      time.Time
	Seed         int64
	Neighbors    int
	TestFraction float64

	Records   int
	TrainSize int
	TestSize  int

	Evaluation  eval.Result
	Predictions []Prediction
	Features    *ml.FeatureSummary

	EncodeDuration  time.Duration
	FitDuration     time.Duration
	PredictDuration time.Duration
}

// NewEngine creates a new evaluation engine. metrics may be nil.
func NewEngine(config *cfg.Settings, classifier ml.Classifier, metrics MetricsRecorder) *Engine {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Engine{
		config:     config,
		classifier: classifier,
		metrics:    metrics,
		now:        time.Now,
	}
}

// Run executes the evaluation over the raw records of the named dataset.
// Any error aborts the run; no partial results are returned.
func (e *Engine) Run(name string, records []features.RawRecord) (*Results, error) {
	start := e.now()
	e.metrics.RecordsLoadedAdd(len(records))

	seed := e.config.Seed
	if seed == 0 {
		seed = start.UnixNano()
	}

	log.Info().
		Str("dataset", name).
		Int("records", len(records)).
		Float64("test_size", e.config.TestSize).
		Int64("seed", seed).
		Msg("Starting evaluation")

	encodeStart := e.now()
	x, y, err := features.EncodeAll(records)
	if err != nil {
		e.metrics.EncodeErrorsInc()
		return nil, fmt.Errorf("encode: %w", err)
	}
	encodeDuration := e.now().Sub(encodeStart)
	e.metrics.RecordsEncodedAdd(len(x))

	split, err := dataset.TrainTestSplit(x, y, e.config.TestSize, rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, err
	}

	summary := ml.SummarizeFeatures(split.TrainX, split.TrainY)
	log.Debug().
		Str("dominant_feature", summary.Dominant()).
		Msg("Training feature summary computed")

	fitStart := e.now()
	if err := e.classifier.Fit(split.TrainX, split.TrainY); err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}
	fitDuration := e.now().Sub(fitStart)

	predictStart := e.now()
	predicted, err := e.classifier.Predict(split.TestX)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	predictDuration := e.now().Sub(predictStart)
	e.metrics.PredictionLatencyObserve(predictDuration.Seconds())

	result, err := eval.Evaluate(split.TestY, predicted)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}

	predictions := make([]Prediction, len(predicted))
	for i := range predicted {
		predictions[i] = Prediction{
			Row:       split.TestIndex[i],
			Actual:    split.TestY[i],
			Predicted: predicted[i],
		}
	}

	end := e.now()
	e.metrics.EvaluationSet(result.Correct(), result.Incorrect(), result.Sensitivity, result.Specificity)
	e.metrics.RunDurationObserve(end.Sub(start).Seconds())

	if !result.SensitivityDefined() || !result.SpecificityDefined() {
		log.Warn().
			Int("positives", result.TotalPositive).
			Int("negatives", result.TotalNegative).
			Msg("A class is absent from the test subset; its rate is undefined")
	}

	log.Info().
		Int("train", len(split.TrainX)).
		Int("test", len(split.TestX)).
		Int("correct", result.Correct()).
		Int("incorrect", result.Incorrect()).
		Dur("duration", end.Sub(start)).
		Msg("Evaluation completed")

	return &Results{
		Dataset:         name,
		StartTime:       start,
		EndTime:         end,
		Seed:            seed,
		Neighbors:       e.config.Neighbors,
		TestFraction:    e.config.TestSize,
		Records:         len(records),
		TrainSize:       len(split.TrainX),
		TestSize:        len(split.TestX),
		Evaluation:      result,
		Predictions:     predictions,
		Features:        summary,
		EncodeDuration:  encodeDuration,
		FitDuration:     fitDuration,
		PredictDuration: predictDuration,
	}, nil
}

// RunRecord converts the results into a run-history entry.
func (r *Results) RunRecord() storage.RunRecord {
	return storage.RunRecord{
		Dataset:       r.Dataset,
		StartedAt:     r.StartTime,
		Duration:      r.EndTime.Sub(r.StartTime).Seconds(),
		Seed:          r.Seed,
		Neighbors:     r.Neighbors,
		TestFraction:  r.TestFraction,
		TrainSize:     r.TrainSize,
		TestSize:      r.TestSize,
		TruePositive:  r.Evaluation.TruePositive,
		TrueNegative:  r.Evaluation.TrueNegative,
		TotalPositive: r.Evaluation.TotalPositive,
		TotalNegative: r.Evaluation.TotalNegative,
		Correct:       r.Evaluation.Correct(),
		Incorrect:     r.Evaluation.Incorrect(),
		Sensitivity:   definedRate(r.Evaluation.Sensitivity),
		Specificity:   definedRate(r.Evaluation.Specificity),
	}
}

// definedRate maps NaN to nil so the value survives JSON encoding.
func definedRate(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
