// Package ml provides the session classifier used to predict purchase intent
// and summary statistics over the encoded feature space.
//
// The classifier works on features.Vector values directly: every position is
// treated as a float, including the categorical codes.
package ml

import (
	"errors"

	"shopping-eval/internal/features"
)

var (
	ErrNotFitted = errors.New("classifier has not been fitted")
	ErrNonFinite = errors.New("vector holds NaN or an infinity")
)

// Classifier is a supervised binary classifier over encoded sessions.
type Classifier interface {
	// Fit trains the classifier. x and y are parallel: y[i] is the label of x[i].
	Fit(x []features.Vector, y []features.Label) error

	// Predict returns one label per input vector, in input order.
	Predict(x []features.Vector) ([]features.Label, error)
}
