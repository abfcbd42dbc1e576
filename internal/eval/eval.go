// Package eval scores binary predictions against held-out labels using the
// class-conditional accuracy pair: sensitivity (true-positive rate) and
// specificity (true-negative rate).
//
// A rate whose class is absent from the truth sequence has a zero denominator.
// Such a rate is reported as NaN; use SensitivityDefined and SpecificityDefined
// to tell the cases apart.
package eval

import (
	"fmt"
	"math"

	"shopping-eval/internal/features"
)

// ValidationError reports label sequences that cannot be evaluated.
// Index is -1 when the sequences differ in length.
type ValidationError struct {
	Index  int
	Value  features.Label
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid labels: %s", e.Reason)
	}
	return fmt.Sprintf("invalid labels: index %d: value %d: %s", e.Index, e.Value, e.Reason)
}

// Result holds the confusion counts and the two rates derived from them.
type Result struct {
	TruePositive  int `json:"true_positive"`
	TrueNegative  int `json:"true_negative"`
	TotalPositive int `json:"total_positive"`
	TotalNegative int `json:"total_negative"`

	Sensitivity float64 `json:"-"`
	Specificity float64 `json:"-"`
}

// Evaluate counts matched pairs in a single pass and derives the rates.
func Evaluate(truth, predicted []features.Label) (Result, error) {
	if err := validate(truth, predicted); err != nil {
		return Result{}, err
	}

	var r Result
	for i, actual := range truth {
		switch actual {
		case features.Positive:
			r.TotalPositive++
			if predicted[i] == features.Positive {
				r.TruePositive++
			}
		case features.Negative:
			r.TotalNegative++
			if predicted[i] == features.Negative {
				r.TrueNegative++
			}
		}
	}

	r.Sensitivity = rate(r.TruePositive, r.TotalPositive)
	r.Specificity = rate(r.TrueNegative, r.TotalNegative)
	return r, nil
}

// Rates returns only (sensitivity, specificity).
func Rates(truth, predicted []features.Label) (float64, float64, error) {
	r, err := Evaluate(truth, predicted)
	if err != nil {
		return 0, 0, err
	}
	return r.Sensitivity, r.Specificity, nil
}

func validate(truth, predicted []features.Label) error {
	if len(truth) != len(predicted) {
		return &ValidationError{
			Index:  -1,
			Reason: fmt.Sprintf("length mismatch: %d true labels, %d predictions", len(truth), len(predicted)),
		}
	}
	for i := range truth {
		if !truth[i].Valid() {
			return &ValidationError{Index: i, Value: truth[i], Reason: "true label must be 0 or 1"}
		}
		if !predicted[i].Valid() {
			return &ValidationError{Index: i, Value: predicted[i], Reason: "predicted label must be 0 or 1"}
		}
	}
	return nil
}

func rate(hits, total int) float64 {
	if total == 0 {
		return math.NaN()
	}
	return float64(hits) / float64(total)
}

func (r Result) Total() int { return r.TotalPositive + r.TotalNegative }

// Correct is the number of pairs where prediction equals truth.
func (r Result) Correct() int { return r.TruePositive + r.TrueNegative }

func (r Result) Incorrect() int { return r.Total() - r.Correct() }

func (r Result) FalseNegative() int { return r.TotalPositive - r.TruePositive }

func (r Result) FalsePositive() int { return r.TotalNegative - r.TrueNegative }

// Accuracy is Correct/Total, NaN for an empty evaluation.
func (r Result) Accuracy() float64 { return rate(r.Correct(), r.Total()) }

func (r Result) SensitivityDefined() bool { return r.TotalPositive > 0 }

func (r Result) SpecificityDefined() bool { return r.TotalNegative > 0 }
