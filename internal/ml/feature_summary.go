package ml

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"

	"shopping-eval/internal/features"
)

// FeatureStats contains statistics for a single feature position
type FeatureStats struct {
	Name              string  `json:"name"`
	Count             int64   `json:"count"`
	Mean              float64 `json:"mean"`
	StandardDeviation float64 `json:"standard_deviation"`
	MinValue          float64 `json:"min_value"`
	MaxValue          float64 `json:"max_value"`
	PositiveMean      float64 `json:"positive_mean"`
	NegativeMean      float64 `json:"negative_mean"`

	m2            float64
	positiveCount int64
	negativeCount int64
}

// FeatureSummary tracks per-feature statistics over a labelled set of vectors.
// Because k-NN uses raw Euclidean distance, the spread of each feature shows
// which columns dominate the neighbour search.
type FeatureSummary struct {
	Stats [features.NumFeatures]*FeatureStats
}

// NewFeatureSummary creates an empty summary
func NewFeatureSummary() *FeatureSummary {
	fs := &FeatureSummary{}
	for i, name := range features.FeatureNames {
		fs.Stats[i] = &FeatureStats{Name: name}
	}
	return fs
}

// SummarizeFeatures builds a summary of x with labels y.
func SummarizeFeatures(x []features.Vector, y []features.Label) *FeatureSummary {
	fs := NewFeatureSummary()
	for i := range x {
		fs.Add(x[i], y[i])
	}
	return fs
}

// Add folds one observation into the running statistics (Welford's method).
func (fs *FeatureSummary) Add(v features.Vector, label features.Label) {
	for i, value := range v {
		stats := fs.Stats[i]

		stats.Count++
		delta := value - stats.Mean
		stats.Mean += delta / float64(stats.Count)
		stats.m2 += delta * (value - stats.Mean)
		if stats.Count > 1 {
			stats.StandardDeviation = math.Sqrt(stats.m2 / float64(stats.Count-1))
		}

		if stats.Count == 1 || value < stats.MinValue {
			stats.MinValue = value
		}
		if stats.Count == 1 || value > stats.MaxValue {
			stats.MaxValue = value
		}

		if label == features.Positive {
			stats.positiveCount++
			stats.PositiveMean += (value - stats.PositiveMean) / float64(stats.positiveCount)
		} else {
			stats.negativeCount++
			stats.NegativeMean += (value - stats.NegativeMean) / float64(stats.negativeCount)
		}
	}
}

// Dominant returns the name of the feature with the largest standard deviation.
func (fs *FeatureSummary) Dominant() string {
	best := fs.Stats[0]
	for _, s := range fs.Stats[1:] {
		if s.StandardDeviation > best.StandardDeviation {
			best = s
		}
	}
	return best.Name
}

// Save writes the summary as indented JSON
func (fs *FeatureSummary) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(fs.Stats, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}
