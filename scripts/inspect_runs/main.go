package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"shopping-eval/internal/storage"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	var (
		dataPath = flag.String("data", "./data", "Run history directory")
		name     = flag.String("dataset", "shopping", "Dataset name (CSV file name without extension)")
		since    = flag.Duration("since", 30*24*time.Hour, "How far back to list runs")
	)
	flag.Parse()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	store, err := storage.New(*dataPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open run history")
	}
	defer store.Close()

	end := time.Now()
	runs, err := store.GetRuns(*name, end.Add(-*since), end)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read runs")
	}

	fmt.Printf("Runs of %s in %s: %d\n\n", *name, *dataPath, len(runs))
	fmt.Printf("%-20s %-36s %6s %6s %8s %8s\n", "Started", "ID", "Test", "k", "TPR", "TNR")
	for _, r := range runs {
		fmt.Printf("%-20s %-36s %6d %6d %8s %8s\n",
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.ID,
			r.TestSize,
			r.Neighbors,
			percent(r.Sensitivity),
			percent(r.Specificity))
	}
}

func percent(rate *float64) string {
	if rate == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", 100 * *rate)
}
