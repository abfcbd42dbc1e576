package ml

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopping-eval/internal/features"
)

func TestSummarizeFeatures(t *testing.T) {
	x := []features.Vector{vec(1, 100), vec(3, 300), vec(5, 500)}
	y := []features.Label{features.Positive, features.Negative, features.Negative}

	fs := SummarizeFeatures(x, y)

	first := fs.Stats[0]
	assert.Equal(t, "Administrative", first.Name)
	assert.Equal(t, int64(3), first.Count)
	assert.InDelta(t, 3.0, first.Mean, 1e-12)
	assert.InDelta(t, 2.0, first.StandardDeviation, 1e-12)
	assert.Equal(t, 1.0, first.MinValue)
	assert.Equal(t, 5.0, first.MaxValue)
	assert.InDelta(t, 1.0, first.PositiveMean, 1e-12)
	assert.InDelta(t, 4.0, first.NegativeMean, 1e-12)

	assert.Equal(t, "Administrative_Duration", fs.Dominant())

	last := fs.Stats[features.NumFeatures-1]
	assert.Equal(t, "Weekend", last.Name)
	assert.Equal(t, 0.0, last.StandardDeviation)
}

func TestFeatureSummary_Save(t *testing.T) {
	fs := SummarizeFeatures([]features.Vector{vec(1), vec(2)}, []features.Label{0, 1})

	path := filepath.Join(t.TempDir(), "nested", "summary.json")
	require.NoError(t, fs.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var stats []FeatureStats
	require.NoError(t, json.Unmarshal(data, &stats))
	require.Len(t, stats, features.NumFeatures)
	assert.Equal(t, "Administrative", stats[0].Name)
	assert.InDelta(t, 1.5, stats[0].Mean, 1e-12)
}
