package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"
	"time"

	"shopping-eval/internal/common"
	"shopping-eval/internal/dataset"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// The source table abbreviates every month except June.
var months = []string{"Feb", "Mar", "May", "June", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

func main() {
	var (
		outPath      = flag.String("out", "shopping.csv", "Output CSV path")
		rows         = flag.Int("rows", 12330, "Number of sessions to generate")
		positiveRate = flag.Float64("positive-rate", 0.155, "Fraction of sessions that end in a purchase")
		seed         = flag.Int64("seed", 0, "Random seed (0 = time based)")
	)
	flag.Parse()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	file, err := os.Create(*outPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create output file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(dataset.RequiredColumns); err != nil {
		log.Fatal().Err(err).Msg("Failed to write header")
	}

	positives := 0
	for i := 0; i < *rows; i++ {
		positive := rng.Float64() < *positiveRate
		if positive {
			positives++
		}
		if err := writer.Write(sessionRow(rng, positive)); err != nil {
			log.Fatal().Err(err).Int("row", i).Msg("Failed to write row")
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Fatal().Err(err).Msg("Failed to flush output")
	}

	log.Info().
		Str("file", *outPath).
		Int("rows", *rows).
		Int("positives", positives).
		Int64("seed", *seed).
		Msg("Sample sessions generated")
}

// sessionRow returns one session in dataset.RequiredColumns order. Buying
// sessions view more product pages, bounce less and carry page value.
func sessionRow(rng *rand.Rand, positive bool) []string {
	productPages := 5 + rng.Intn(40)
	pageValue := 0.0
	bounce := rng.Float64() * 0.05
	if positive {
		productPages += 20 + rng.Intn(30)
		pageValue = math.Round(rng.ExpFloat64()*2500) / 100
		bounce /= 4
	} else if rng.Float64() < 0.1 {
		pageValue = math.Round(rng.ExpFloat64()*500) / 100
	}

	admin := rng.Intn(6)
	info := rng.Intn(3)
	visitor := common.ReturningVisitor
	if rng.Float64() < 0.14 {
		visitor = "New_Visitor"
	} else if rng.Float64() < 0.01 {
		visitor = "Other"
	}

	return []string{
		strconv.Itoa(admin),
		duration(rng, admin, 80),
		strconv.Itoa(info),
		duration(rng, info, 35),
		strconv.Itoa(productPages),
		duration(rng, productPages, 38),
		fmt.Sprintf("%.6f", bounce),
		fmt.Sprintf("%.6f", bounce+rng.Float64()*0.05),
		strconv.FormatFloat(pageValue, 'f', -1, 64),
		[]string{"0", "0", "0", "0.2", "0.4", "0.6", "0.8", "1"}[rng.Intn(8)],
		months[rng.Intn(len(months))],
		strconv.Itoa(1 + rng.Intn(8)),
		strconv.Itoa(1 + rng.Intn(13)),
		strconv.Itoa(1 + rng.Intn(9)),
		strconv.Itoa(1 + rng.Intn(20)),
		visitor,
		boolLiteral(rng.Float64() < 0.23),
		boolLiteral(positive),
	}
}

// duration spreads roughly perPage seconds over each visited page
func duration(rng *rand.Rand, pages int, perPage float64) string {
	if pages == 0 {
		return "0"
	}
	return fmt.Sprintf("%.2f", float64(pages)*perPage*(0.5+rng.Float64()))
}

func boolLiteral(b bool) string {
	if b {
		return common.TrueLiteral
	}
	return "FALSE"
}
