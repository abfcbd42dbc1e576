package experiment

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// Reporter generates evaluation reports
type Reporter struct {
	results    *Results
	outputPath string
}

// NewReporter creates a new reporter
func NewReporter(results *Results, outputPath string) *Reporter {
	return &Reporter{
		results:    results,
		outputPath: outputPath,
	}
}

// FormatRate renders a rate as a percentage with two decimals, or "undefined"
// when the rate's class was absent from the test subset.
func FormatRate(rate float64) string {
	if math.IsNaN(rate) {
		return "undefined"
	}
	return fmt.Sprintf("%.2f%%", 100*rate)
}

// PrintSummary writes the four result lines
func (r *Reporter) PrintSummary(w io.Writer) error {
	e := r.results.Evaluation
	_, err := fmt.Fprintf(w, "Correct: %d\nIncorrect: %d\nTrue Positive Rate: %s\nTrue Negative Rate: %s\n",
		e.Correct(),
		e.Incorrect(),
		FormatRate(e.Sensitivity),
		FormatRate(e.Specificity))
	return err
}

// GenerateReport generates all report formats
func (r *Reporter) GenerateReport() error {
	// Create output directory
	if err := os.MkdirAll(r.outputPath, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := r.generateSummary(); err != nil {
		return err
	}

	if err := r.generatePredictionLog(); err != nil {
		return err
	}

	if err := r.generateJSONReport(); err != nil {
		return err
	}

	if err := r.generateFeatureReport(); err != nil {
		return err
	}

	return nil
}

// generateSummary generates a human-readable summary
func (r *Reporter) generateSummary() error {
	summaryPath := filepath.Join(r.outputPath, "evaluation_summary.txt")
	file, err := os.Create(summaryPath)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	res := r.results
	e := res.Evaluation

	fmt.Fprintf(file, "EVALUATION RESULTS SUMMARY\n")
	fmt.Fprintf(file, "==========================\n\n")

	fmt.Fprintf(file, "Dataset: %s\n", res.Dataset)
	fmt.Fprintf(file, "Started: %s\n", res.StartTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(file, "Duration: %s\n", res.EndTime.Sub(res.StartTime))
	fmt.Fprintf(file, "Seed: %d\n\n", res.Seed)

	fmt.Fprintf(file, "DATA\n")
	fmt.Fprintf(file, "----\n")
	fmt.Fprintf(file, "Sessions: %d\n", res.Records)
	fmt.Fprintf(file, "Training: %d\n", res.TrainSize)
	fmt.Fprintf(file, "Test: %d (fraction %.2f)\n", res.TestSize, res.TestFraction)
	fmt.Fprintf(file, "Neighbors: %d\n\n", res.Neighbors)

	fmt.Fprintf(file, "CONFUSION COUNTS\n")
	fmt.Fprintf(file, "----------------\n")
	fmt.Fprintf(file, "True Positives: %d\n", e.TruePositive)
	fmt.Fprintf(file, "False Negatives: %d\n", e.FalseNegative())
	fmt.Fprintf(file, "True Negatives: %d\n", e.TrueNegative)
	fmt.Fprintf(file, "False Positives: %d\n\n", e.FalsePositive())

	fmt.Fprintf(file, "RATES\n")
	fmt.Fprintf(file, "-----\n")
	if err := r.PrintSummary(file); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	fmt.Fprintf(file, "Accuracy: %s\n", FormatRate(e.Accuracy()))

	fmt.Fprintf(file, "\nTIMINGS\n")
	fmt.Fprintf(file, "-------\n")
	fmt.Fprintf(file, "Encode: %s\n", res.EncodeDuration)
	fmt.Fprintf(file, "Fit: %s\n", res.FitDuration)
	fmt.Fprintf(file, "Predict: %s\n", res.PredictDuration)

	log.Info().Str("file", summaryPath).Msg("Summary report generated")
	return nil
}

// generatePredictionLog generates a CSV log of every held-out prediction
func (r *Reporter) generatePredictionLog() error {
	csvPath := filepath.Join(r.outputPath, "predictions.csv")
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create prediction log: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	header := []string{"Row", "Actual", "Predicted", "Correct"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, p := range r.results.Predictions {
		record := []string{
			strconv.Itoa(p.Row),
			strconv.Itoa(int(p.Actual)),
			strconv.Itoa(int(p.Predicted)),
			strconv.FormatBool(p.Actual == p.Predicted),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to write prediction log: %w", err)
	}

	log.Info().Str("file", csvPath).Msg("Prediction log generated")
	return nil
}

// generateJSONReport generates a JSON report with all data
func (r *Reporter) generateJSONReport() error {
	jsonPath := filepath.Join(r.outputPath, "evaluation_results.json")

	res := r.results
	report := map[string]interface{}{
		"summary": map[string]interface{}{
			"dataset":        res.Dataset,
			"start_time":     res.StartTime,
			"end_time":       res.EndTime,
			"seed":           res.Seed,
			"neighbors":      res.Neighbors,
			"test_fraction":  res.TestFraction,
			"records":        res.Records,
			"train_size":     res.TrainSize,
			"test_size":      res.TestSize,
			"correct":        res.Evaluation.Correct(),
			"incorrect":      res.Evaluation.Incorrect(),
			"true_positive":  res.Evaluation.TruePositive,
			"true_negative":  res.Evaluation.TrueNegative,
			"total_positive": res.Evaluation.TotalPositive,
			"total_negative": res.Evaluation.TotalNegative,
			"sensitivity":    definedRate(res.Evaluation.Sensitivity),
			"specificity":    definedRate(res.Evaluation.Specificity),
		},
		"predictions":  res.Predictions,
		"generated_at": time.Now(),
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write JSON report: %w", err)
	}

	log.Info().Str("file", jsonPath).Msg("JSON report generated")
	return nil
}

// generateFeatureReport writes the training-set feature summary
func (r *Reporter) generateFeatureReport() error {
	if r.results.Features == nil {
		return nil
	}

	csvPath := filepath.Join(r.outputPath, "feature_summary.csv")
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create feature report: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	header := []string{"Feature", "Mean", "StdDev", "Min", "Max", "Positive Mean", "Negative Mean"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, s := range r.results.Features.Stats {
		record := []string{
			s.Name,
			fmt.Sprintf("%.4f", s.Mean),
			fmt.Sprintf("%.4f", s.StandardDeviation),
			fmt.Sprintf("%.4f", s.MinValue),
			fmt.Sprintf("%.4f", s.MaxValue),
			fmt.Sprintf("%.4f", s.PositiveMean),
			fmt.Sprintf("%.4f", s.NegativeMean),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to write feature report: %w", err)
	}

	jsonPath := filepath.Join(r.outputPath, "feature_summary.json")
	if err := r.results.Features.Save(jsonPath); err != nil {
		return fmt.Errorf("failed to write feature summary: %w", err)
	}

	log.Info().Str("file", csvPath).Str("json", jsonPath).Msg("Feature report generated")
	return nil
}
