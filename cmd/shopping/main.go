package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"shopping-eval/internal/cfg"
	"shopping-eval/internal/common"
	"shopping-eval/internal/dataset"
	"shopping-eval/internal/experiment"
	"shopping-eval/internal/metrics"
	"shopping-eval/internal/ml"
	"shopping-eval/internal/storage"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
)

// UsageError reports a wrong command line. It exits with common.ExitUsage.
type UsageError struct {
	Args []string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("expected exactly one argument, got %d", len(e.Args))
}

func main() {
	flags := flag.NewFlagSet("shopping", flag.ContinueOnError)
	flags.SetOutput(os.Stderr)
	flags.Usage = func() {
		fmt.Fprintln(flags.Output(), "Usage: shopping data.csv")
	}
	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(common.ExitUsage)
	}

	if err := run(flags.Args(), os.Stdout); err != nil {
		var usageErr *UsageError
		if errors.As(err, &usageErr) {
			flags.Usage()
			os.Exit(common.ExitUsage)
		}
		log.Error().Err(err).Msg("Evaluation failed")
		os.Exit(common.ExitFailure)
	}
}

func run(args []string, stdout io.Writer) (err error) {
	if len(args) != 1 {
		return &UsageError{Args: args}
	}
	dataPath := args[0]
	setupLogging(common.DefaultLogLevel)

	// A missing .env is fine; a malformed one is not.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	config, err := cfg.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	setupLogging(config.LogLevel)

	m := metrics.New()
	if config.MetricsFile != "" {
		// A failed run still leaves its counters behind. The success path
		// writes the file itself before printing.
		defer func() {
			if err == nil {
				return
			}
			if werr := m.WriteTextfile(config.MetricsFile); werr != nil {
				log.Warn().Err(werr).Str("file", config.MetricsFile).Msg("Failed to write metrics textfile")
			}
		}()
	}

	records, err := dataset.LoadCSV(dataPath)
	if err != nil {
		return err
	}

	knn := ml.NewKNN(config.Neighbors, config.Workers)
	if config.ShowProgress {
		bar := progressbar.NewOptions64(int64(dataset.TestCount(len(records), config.TestSize)),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("predicting"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		knn.Progress = func(n int) { _ = bar.Add(n) }
		defer bar.Finish()
	}

	engine := experiment.NewEngine(&config, knn, m)
	name := datasetName(dataPath)
	results, err := engine.Run(name, records)
	if err != nil {
		return err
	}

	if config.OutputPath != "" {
		reporter := experiment.NewReporter(results, config.OutputPath)
		if err := reporter.GenerateReport(); err != nil {
			return fmt.Errorf("generate reports: %w", err)
		}
	}

	if config.DataPath != "" {
		if err := recordRun(config.DataPath, results); err != nil {
			return err
		}
	}

	if config.MetricsFile != "" {
		if err := m.WriteTextfile(config.MetricsFile); err != nil {
			return err
		}
	}

	return experiment.NewReporter(results, config.OutputPath).PrintSummary(stdout)
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

// recordRun appends the run to the history store and logs how it compares
// with the previous run of the same dataset.
func recordRun(dataPath string, results *experiment.Results) error {
	store, err := storage.New(dataPath)
	if err != nil {
		return fmt.Errorf("open run history: %w", err)
	}
	defer store.Close()

	previous, found, err := store.LatestRun(results.Dataset)
	if err != nil {
		return fmt.Errorf("read run history: %w", err)
	}

	run, err := store.StoreRun(results.RunRecord())
	if err != nil {
		return fmt.Errorf("store run: %w", err)
	}

	event := log.Info().Str("run_id", run.ID).Str("dataset", run.Dataset)
	if found {
		event = event.
			Int("previous_correct", previous.Correct).
			Int("correct_delta", run.Correct-previous.Correct)
	}
	event.Msg("Run recorded")

	return nil
}

// datasetName is the file name without its extension
func datasetName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
