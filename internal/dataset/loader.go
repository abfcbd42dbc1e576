// Package dataset reads the session table and partitions encoded sessions
// into training and test subsets.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"shopping-eval/internal/common"
	"shopping-eval/internal/features"

	"github.com/rs/zerolog/log"
)

var (
	ErrMissingColumn = errors.New("missing column")
	ErrEmptyDataset  = errors.New("dataset has no rows")
)

// RequiredColumns are the header names every session table must carry.
var RequiredColumns = []string{
	common.ColAdministrative,
	common.ColAdministrativeDuration,
	common.ColInformational,
	common.ColInformationalDuration,
	common.ColProductRelated,
	common.ColProductRelatedDuration,
	common.ColBounceRates,
	common.ColExitRates,
	common.ColPageValues,
	common.ColSpecialDay,
	common.ColMonth,
	common.ColOperatingSystems,
	common.ColBrowser,
	common.ColRegion,
	common.ColTrafficType,
	common.ColVisitorType,
	common.ColWeekend,
	common.ColRevenue,
}

// LoadCSV loads every session row from the CSV file at filePath.
func LoadCSV(filePath string) ([]features.RawRecord, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	records, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}

	log.Info().
		Str("file", filePath).
		Int("rows", len(records)).
		Msg("CSV data loaded successfully")

	return records, nil
}

// ReadCSV reads a header row followed by one session per line. Columns are
// matched by name, so their order in the file does not matter.
func ReadCSV(r io.Reader) ([]features.RawRecord, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyDataset
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	// Map header indices
	indices := make(map[string]int, len(header))
	for i, col := range header {
		indices[col] = i
	}
	for _, col := range RequiredColumns {
		if _, ok := indices[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	var records []features.RawRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", len(records), err)
		}

		record := make(features.RawRecord, len(indices))
		for col, idx := range indices {
			record[col] = row[idx]
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}

	return records, nil
}
