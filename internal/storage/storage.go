// Package storage keeps a history of evaluation runs.
// It uses BoltDB as the underlying storage engine; each run is stored as a JSON
// document keyed by dataset name and start time, so the runs of one dataset can
// be read back in chronological order with a single cursor scan.
package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

const (
	runsBucket = "runs" // Bucket name for storing evaluation runs
	dbFileName = "shopping-runs.db"

	keyTimeWidth = 20
)

// RunRecord is one completed evaluation. Rates are nil when the class they
// depend on was absent from the test subset.
type RunRecord struct {
	ID            string    `json:"id"`
	Dataset       string    `json:"dataset"`
	StartedAt     time.Time `json:"started_at"`
	Duration      float64   `json:"duration_seconds"`
	Seed          int64     `json:"seed"`
	Neighbors     int       `json:"neighbors"`
	TestFraction  float64   `json:"test_fraction"`
	TrainSize     int       `json:"train_size"`
	TestSize      int       `json:"test_size"`
	TruePositive  int       `json:"true_positive"`
	TrueNegative  int       `json:"true_negative"`
	TotalPositive int       `json:"total_positive"`
	TotalNegative int       `json:"total_negative"`
	Correct       int       `json:"correct"`
	Incorrect     int       `json:"incorrect"`
	Sensitivity   *float64  `json:"sensitivity"`
	Specificity   *float64  `json:"specificity"`
}

// Store provides persistent storage for evaluation runs using BoltDB.
type Store struct {
	db *bbolt.DB
}

// New creates a new storage instance under dataPath.
// It initializes the BoltDB database and creates the runs bucket.
func New(dataPath string) (*Store, error) {
	dbPath := filepath.Join(dataPath, dbFileName)

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(runsBucket)); err != nil {
			return fmt.Errorf("create runs bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database connection gracefully.
func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// StoreRun stores a run record, assigning an ID when it has none.
// Returns the stored record.
func (s *Store) StoreRun(run RunRecord) (RunRecord, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Dataset == "" {
		return RunRecord{}, fmt.Errorf("store run: dataset name is required")
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(runsBucket))

		data, err := json.Marshal(run)
		if err != nil {
			return fmt.Errorf("marshal run: %w", err)
		}

		return b.Put(runKey(run.Dataset, run.StartedAt), data)
	})
	if err != nil {
		return RunRecord{}, err
	}

	return run, nil
}

// GetRuns retrieves the runs of a dataset started within [start, end],
// ordered by start time.
func (s *Store) GetRuns(dataset string, start, end time.Time) ([]RunRecord, error) {
	var runs []RunRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(runsBucket)).Cursor()

		prefix := []byte(dataset + "_")
		endKey := runKey(dataset, end)

		for k, v := c.Seek(runKey(dataset, start)); k != nil && bytes.Compare(k, endKey) <= 0; k, v = c.Next() {
			if !bytes.HasPrefix(k, prefix) || len(k) != len(prefix)+keyTimeWidth {
				continue
			}

			var run RunRecord
			if err := json.Unmarshal(v, &run); err != nil {
				continue // Skip malformed records
			}
			runs = append(runs, run)
		}
		return nil
	})

	return runs, err
}

// LatestRun returns the most recent run of a dataset, or false if there is none.
func (s *Store) LatestRun(dataset string) (RunRecord, bool, error) {
	var (
		run   RunRecord
		found bool
	)

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(runsBucket)).Cursor()
		prefix := []byte(dataset + "_")

		var last []byte
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			if len(k) == len(prefix)+keyTimeWidth {
				last = v
			}
		}
		if last == nil {
			return nil
		}

		if err := json.Unmarshal(last, &run); err != nil {
			return fmt.Errorf("unmarshal run: %w", err)
		}
		found = true
		return nil
	})

	return run, found, err
}

// runKey zero-pads the timestamp so keys sort chronologically.
func runKey(dataset string, ts time.Time) []byte {
	return []byte(fmt.Sprintf("%s_%0*d", dataset, keyTimeWidth, ts.UnixNano()))
}
