package ml

import (
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopping-eval/internal/features"
)

func vec(vals ...float64) features.Vector {
	var v features.Vector
	copy(v[:], vals)
	return v
}

func TestKNN_NearestNeighbour(t *testing.T) {
	m := NewKNN(1, 1)
	require.NoError(t, m.Fit(
		[]features.Vector{vec(0, 0), vec(10, 10), vec(0, 10)},
		[]features.Label{features.Negative, features.Positive, features.Positive},
	))

	pred, err := m.Predict([]features.Vector{vec(1, 1), vec(9, 8), vec(1, 9), vec(0, 0)})
	require.NoError(t, err)
	assert.Equal(t, []features.Label{
		features.Negative, features.Positive, features.Positive, features.Negative,
	}, pred)
}

func TestKNN_UsesAllFeaturePositions(t *testing.T) {
	var a, b features.Vector
	a[16] = 1
	b[16] = 0

	m := NewKNN(1, 1)
	require.NoError(t, m.Fit([]features.Vector{a, b}, []features.Label{features.Positive, features.Negative}))

	var q features.Vector
	q[16] = 0.9
	pred, err := m.Predict([]features.Vector{q})
	require.NoError(t, err)
	assert.Equal(t, features.Positive, pred[0])
}

func TestKNN_EquidistantPrefersEarlierSample(t *testing.T) {
	m := NewKNN(1, 1)
	require.NoError(t, m.Fit(
		[]features.Vector{vec(-1), vec(1)},
		[]features.Label{features.Positive, features.Negative},
	))

	pred, err := m.Predict([]features.Vector{vec(0)})
	require.NoError(t, err)
	assert.Equal(t, features.Positive, pred[0])
}

func TestKNN_MajorityVote(t *testing.T) {
	x := []features.Vector{vec(0), vec(1), vec(2), vec(10), vec(11)}
	y := []features.Label{features.Positive, features.Negative, features.Negative, features.Positive, features.Positive}

	m := NewKNN(3, 2)
	require.NoError(t, m.Fit(x, y))

	pred, err := m.Predict([]features.Vector{vec(0.2), vec(10.5)})
	require.NoError(t, err)
	// Neighbours of 0.2 are 0,1,2 -> one positive, two negatives.
	assert.Equal(t, features.Negative, pred[0])
	assert.Equal(t, features.Positive, pred[1])
}

func TestKNN_VoteTieIsNegative(t *testing.T) {
	m := NewKNN(2, 1)
	require.NoError(t, m.Fit(
		[]features.Vector{vec(0), vec(1)},
		[]features.Label{features.Positive, features.Negative},
	))

	pred, err := m.Predict([]features.Vector{vec(0.5)})
	require.NoError(t, err)
	assert.Equal(t, features.Negative, pred[0])
}

func TestKNN_ParallelMatchesSequential(t *testing.T) {
	var x []features.Vector
	var y []features.Label
	for i := 0; i < 200; i++ {
		x = append(x, vec(float64(i%17), float64(i%5), float64(i)))
		y = append(y, features.Label((i/7)%2))
	}
	var queries []features.Vector
	for i := 0; i < 97; i++ {
		queries = append(queries, vec(float64(i%13)+0.3, float64(i%4), float64(2*i)+0.1))
	}

	seq := NewKNN(3, 1)
	require.NoError(t, seq.Fit(x, y))
	expected, err := seq.Predict(queries)
	require.NoError(t, err)

	var done int64
	par := NewKNN(3, 8)
	par.Progress = func(n int) { atomic.AddInt64(&done, int64(n)) }
	require.NoError(t, par.Fit(x, y))
	got, err := par.Predict(queries)
	require.NoError(t, err)

	assert.Equal(t, expected, got)
	assert.Equal(t, int64(len(queries)), atomic.LoadInt64(&done))
}

func TestKNN_Errors(t *testing.T) {
	m := NewKNN(1, 1)
	_, err := m.Predict([]features.Vector{vec(1)})
	assert.True(t, errors.Is(err, ErrNotFitted))

	assert.Error(t, m.Fit([]features.Vector{vec(1)}, nil))
	assert.Error(t, m.Fit([]features.Vector{vec(1)}, []features.Label{3}))
	assert.Error(t, NewKNN(0, 1).Fit([]features.Vector{vec(1)}, []features.Label{1}))
	assert.Error(t, NewKNN(3, 1).Fit([]features.Vector{vec(1)}, []features.Label{1}))
}

func TestKNN_NonFiniteVectors(t *testing.T) {
	train := []features.Vector{vec(0, 0), vec(5, 5), vec(10, 10)}
	labels := []features.Label{features.Negative, features.Positive, features.Positive}

	m := NewKNN(1, 2)
	require.NoError(t, m.Fit(train, labels))

	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := m.Predict([]features.Vector{vec(1, 1), vec(bad, 2)})
		assert.True(t, errors.Is(err, ErrNonFinite), "query %v: got %v", bad, err)
		assert.Contains(t, err.Error(), "query vector 1")
	}

	err := NewKNN(1, 1).Fit([]features.Vector{vec(1), vec(math.NaN())}, []features.Label{0, 1})
	assert.True(t, errors.Is(err, ErrNonFinite))
}

func TestKNN_NaNDistanceDoesNotPanic(t *testing.T) {
	for _, k := range []int{1, 2, 3} {
		m := NewKNN(k, 1)
		require.NoError(t, m.Fit(
			[]features.Vector{vec(0), vec(1), vec(2), vec(3)},
			[]features.Label{features.Negative, features.Positive, features.Positive, features.Negative},
		))

		q := vec(math.NaN())
		assert.NotPanics(t, func() { m.predictOne(&q) }, "k=%d", k)
	}
}

func TestKNN_EmptyQuery(t *testing.T) {
	m := NewKNN(1, 4)
	require.NoError(t, m.Fit([]features.Vector{vec(1)}, []features.Label{1}))

	pred, err := m.Predict(nil)
	require.NoError(t, err)
	assert.Empty(t, pred)
}

func TestKNN_ImplementsClassifier(t *testing.T) {
	var _ Classifier = NewKNN(1, 1)
}
