package ml

import (
	"fmt"
	"math"
	"sync"

	"shopping-eval/internal/features"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
)

// ProgressFunc is called with the number of vectors a worker has just finished.
// It may be called concurrently.
type ProgressFunc func(done int)

// KNN is a k-nearest-neighbour classifier using Euclidean distance and a
// majority vote. Vote ties resolve to Negative; equidistant neighbours resolve
// to the earlier training sample.
type KNN struct {
	K        int
	Workers  int
	Progress ProgressFunc

	trainX []features.Vector
	trainY []features.Label
}

// NewKNN creates a classifier with k neighbours and the given prediction parallelism.
func NewKNN(k, workers int) *KNN {
	if workers < 1 {
		workers = 1
	}
	return &KNN{K: k, Workers: workers}
}

// Fit stores the training set; k-NN has no other training step.
func (m *KNN) Fit(x []features.Vector, y []features.Label) error {
	if len(x) != len(y) {
		return fmt.Errorf("fit: %d vectors but %d labels", len(x), len(y))
	}
	if m.K < 1 {
		return fmt.Errorf("fit: k must be at least 1, got %d", m.K)
	}
	if len(x) < m.K {
		return fmt.Errorf("fit: k=%d exceeds %d training samples", m.K, len(x))
	}
	for i, l := range y {
		if !l.Valid() {
			return fmt.Errorf("fit: label %d at index %d is not 0 or 1", l, i)
		}
	}
	if i := firstNonFinite(x); i >= 0 {
		return fmt.Errorf("fit: training vector %d: %w", i, ErrNonFinite)
	}

	m.trainX = x
	m.trainY = y

	log.Debug().
		Int("samples", len(x)).
		Int("k", m.K).
		Msg("k-NN classifier fitted")

	return nil
}

// Predict labels each vector. Work is split into contiguous chunks, one per
// worker, and every worker writes only its own output positions.
func (m *KNN) Predict(x []features.Vector) ([]features.Label, error) {
	if m.trainX == nil {
		return nil, ErrNotFitted
	}

	if i := firstNonFinite(x); i >= 0 {
		return nil, fmt.Errorf("predict: query vector %d: %w", i, ErrNonFinite)
	}

	out := make([]features.Label, len(x))
	if len(x) == 0 {
		return out, nil
	}

	workers := m.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(x) {
		workers = len(x)
	}
	chunk := (len(x) + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < len(x); start += chunk {
		end := start + chunk
		if end > len(x) {
			end = len(x)
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				out[i] = m.predictOne(&x[i])
				if m.Progress != nil {
					m.Progress(1)
				}
			}
		}(start, end)
	}
	wg.Wait()

	return out, nil
}

type neighbour struct {
	dist  float64
	label features.Label
}

func (m *KNN) predictOne(q *features.Vector) features.Label {
	// nearest holds the closest neighbours found so far, sorted by distance.
	nearest := make([]neighbour, 0, m.K)

	for j := range m.trainX {
		d := floats.Distance(q[:], m.trainX[j][:], 2)

		if len(nearest) == m.K && d >= nearest[len(nearest)-1].dist {
			continue
		}

		pos := len(nearest)
		for pos > 0 && nearest[pos-1].dist > d {
			pos--
		}
		// Unordered distances (NaN) fall through both comparisons above.
		if pos == m.K {
			continue
		}
		if len(nearest) < m.K {
			nearest = append(nearest, neighbour{})
		}
		copy(nearest[pos+1:], nearest[pos:len(nearest)-1])
		nearest[pos] = neighbour{dist: d, label: m.trainY[j]}
	}

	positives := 0
	for _, n := range nearest {
		if n.label == features.Positive {
			positives++
		}
	}
	if positives > len(nearest)-positives {
		return features.Positive
	}
	return features.Negative
}

// firstNonFinite returns the index of the first vector holding NaN or an
// infinity, or -1.
func firstNonFinite(x []features.Vector) int {
	for i := range x {
		for _, v := range x[i] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return i
			}
		}
	}
	return -1
}
