package dataset

import (
	"fmt"
	"math"
	"math/rand"

	"shopping-eval/internal/features"
)

// Split is a lockstep partition of vectors and labels.
type Split struct {
	TrainX []features.Vector
	TrainY []features.Label
	TestX  []features.Vector
	TestY  []features.Label

	// TestIndex[i] is the position of TestX[i] in the unsplit input.
	TestIndex []int
}

// TestCount returns how many of n samples go to the test subset for the given
// fraction: ceil(fraction * n).
func TestCount(n int, fraction float64) int {
	return int(math.Ceil(fraction * float64(n)))
}

// TrainTestSplit shuffles the samples with rng and moves the first
// TestCount(len(x), testFraction) of them into the test subset. A vector and its
// label always travel together.
func TrainTestSplit(x []features.Vector, y []features.Label, testFraction float64, rng *rand.Rand) (Split, error) {
	if len(x) != len(y) {
		return Split{}, fmt.Errorf("split: %d vectors but %d labels", len(x), len(y))
	}
	if testFraction <= 0 || testFraction >= 1 {
		return Split{}, fmt.Errorf("split: test fraction must be between 0 and 1, got %f", testFraction)
	}

	n := len(x)
	nTest := TestCount(n, testFraction)
	nTrain := n - nTest
	if nTest < 1 || nTrain < 1 {
		return Split{}, fmt.Errorf("split: %d samples with test fraction %.2f leaves %d train and %d test samples", n, testFraction, nTrain, nTest)
	}

	perm := rng.Perm(n)

	s := Split{
		TrainX:    make([]features.Vector, 0, nTrain),
		TrainY:    make([]features.Label, 0, nTrain),
		TestX:     make([]features.Vector, 0, nTest),
		TestY:     make([]features.Label, 0, nTest),
		TestIndex: make([]int, 0, nTest),
	}
	for i, idx := range perm {
		if i < nTest {
			s.TestX = append(s.TestX, x[idx])
			s.TestY = append(s.TestY, y[idx])
			s.TestIndex = append(s.TestIndex, idx)
			continue
		}
		s.TrainX = append(s.TrainX, x[idx])
		s.TrainY = append(s.TrainY, y[idx])
	}

	return s, nil
}
