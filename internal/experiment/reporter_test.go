package experiment

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopping-eval/internal/eval"
	"shopping-eval/internal/features"
	"shopping-eval/internal/ml"
)

func sampleResults() *Results {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return &Results{
		Dataset:      "shopping",
		StartTime:    start,
		EndTime:      start.Add(2 * time.Second),
		Seed:         5,
		Neighbors:    1,
		TestFraction: 0.4,
		Records:      12,
		TrainSize:    7,
		TestSize:     5,
		Evaluation: eval.Result{
			TruePositive:  2,
			TrueNegative:  1,
			TotalPositive: 3,
			TotalNegative: 2,
			Sensitivity:   2.0 / 3.0,
			Specificity:   0.5,
		},
		Predictions: []Prediction{
			{Row: 0, Actual: 1, Predicted: 1},
			{Row: 3, Actual: 1, Predicted: 0},
			{Row: 4, Actual: 0, Predicted: 0},
			{Row: 8, Actual: 0, Predicted: 1},
			{Row: 11, Actual: 1, Predicted: 1},
		},
		Features: ml.SummarizeFeatures(
			[]features.Vector{{1}, {2}, {3}},
			[]features.Label{features.Positive, features.Negative, features.Negative},
		),
	}
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "66.67%", FormatRate(2.0/3.0))
	assert.Equal(t, "100.00%", FormatRate(1))
	assert.Equal(t, "0.00%", FormatRate(0))
	assert.Equal(t, "undefined", FormatRate(math.NaN()))
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewReporter(sampleResults(), "").PrintSummary(&buf))

	expected := "Correct: 3\n" +
		"Incorrect: 2\n" +
		"True Positive Rate: 66.67%\n" +
		"True Negative Rate: 50.00%\n"
	assert.Equal(t, expected, buf.String())
}

func TestPrintSummary_UndefinedRate(t *testing.T) {
	results := sampleResults()
	results.Evaluation = eval.Result{TruePositive: 2, TotalPositive: 3, Sensitivity: 2.0 / 3.0, Specificity: math.NaN()}

	var buf bytes.Buffer
	require.NoError(t, NewReporter(results, "").PrintSummary(&buf))
	assert.Contains(t, buf.String(), "True Negative Rate: undefined\n")
}

func TestGenerateReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	require.NoError(t, NewReporter(sampleResults(), dir).GenerateReport())

	summary, err := os.ReadFile(filepath.Join(dir, "evaluation_summary.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "Dataset: shopping")
	assert.Contains(t, string(summary), "False Negatives: 1")
	assert.Contains(t, string(summary), "True Positive Rate: 66.67%")
	assert.Contains(t, string(summary), "Accuracy: 60.00%")

	f, err := os.Open(filepath.Join(dir, "predictions.csv"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, []string{"Row", "Actual", "Predicted", "Correct"}, rows[0])
	assert.Equal(t, []string{"3", "1", "0", "false"}, rows[2])

	data, err := os.ReadFile(filepath.Join(dir, "evaluation_results.json"))
	require.NoError(t, err)
	var report struct {
		Summary struct {
			Correct     int      `json:"correct"`
			Sensitivity *float64 `json:"sensitivity"`
			Specificity *float64 `json:"specificity"`
		} `json:"summary"`
		Predictions []Prediction `json:"predictions"`
	}
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, 3, report.Summary.Correct)
	require.NotNil(t, report.Summary.Specificity)
	assert.Equal(t, 0.5, *report.Summary.Specificity)
	assert.Len(t, report.Predictions, 5)

	featureData, err := os.ReadFile(filepath.Join(dir, "feature_summary.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(featureData), "Administrative,2.0000,1.0000,1.0000,3.0000,1.0000,2.5000")

	var stats []ml.FeatureStats
	featureJSON, err := os.ReadFile(filepath.Join(dir, "feature_summary.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(featureJSON, &stats))
	require.Len(t, stats, features.NumFeatures)
	assert.Equal(t, "Administrative", stats[0].Name)
	assert.Equal(t, int64(3), stats[0].Count)
}

func TestGenerateReport_UndefinedRateIsNull(t *testing.T) {
	results := sampleResults()
	results.Evaluation.Sensitivity = math.NaN()
	results.Features = nil

	dir := t.TempDir()
	require.NoError(t, NewReporter(results, dir).GenerateReport())

	data, err := os.ReadFile(filepath.Join(dir, "evaluation_results.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"sensitivity": null`)

	_, err = os.Stat(filepath.Join(dir, "feature_summary.csv"))
	assert.True(t, os.IsNotExist(err))
}
