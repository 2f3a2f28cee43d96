// Package storage persists the training run history. It uses BoltDB as
// the underlying engine to keep one record per completed training run,
// ordered by start time for newest-first listing.
//
// The package provides thread-safe operations; a Store can be shared
// between the training pipeline and the run listing command.
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"diarisk/internal/model"
)

const runsBucket = "runs" // Bucket name for completed training runs

// ErrRunNotFound reports a lookup for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// RunRecord is one completed training run.
type RunRecord struct {
	ID           string       `json:"id"`
	StartedAt    time.Time    `json:"started_at"`
	Variant      string       `json:"variant"`
	Params       model.Params `json:"params"`
	TestAccuracy float64      `json:"test_accuracy"`
	CVMean       float64      `json:"cv_mean"`
	CVStd        float64      `json:"cv_std"`
	AUC          float64      `json:"auc"`
	ArtifactPath string       `json:"artifact_path,omitempty"`
}

// Store provides persistent storage for run history using BoltDB.
type Store struct {
	db *bbolt.DB // BoltDB database instance
}

// Open opens (or creates) the run history database at the given file
// path and ensures the runs bucket exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
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
		return s.db.Close()
	}
	return nil
}

// SaveRun appends a run record. A zero StartedAt is stamped with the
// current time. Keys order chronologically, so cursor scans walk runs in
// start order.
func (s *Store) SaveRun(rec RunRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("run record needs an ID")
	}
	if rec.StartedAt.IsZero() {
		rec.StartedAt = time.Now().UTC()
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(runsBucket))

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal run: %w", err)
		}

		return b.Put(runKey(rec), data)
	})
}

// GetRun retrieves one run by ID. Returns ErrRunNotFound for unknown IDs.
func (s *Store) GetRun(id string) (*RunRecord, error) {
	var found *RunRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(runsBucket))
		c := b.Cursor()

		suffix := []byte("_" + id)
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if !bytes.HasSuffix(k, suffix) {
				continue
			}
			var rec RunRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				continue // Skip malformed records
			}
			if rec.ID == id {
				found = &rec
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return found, nil
}

// ListRuns returns run records newest first. A limit of zero or less
// returns everything.
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	var runs []RunRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(runsBucket))
		c := b.Cursor()

		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var rec RunRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				continue // Skip malformed records
			}
			runs = append(runs, rec)
			if limit > 0 && len(runs) >= limit {
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return runs, nil
}

// runKey orders records by start time, with the ID as a tiebreaker.
func runKey(rec RunRecord) []byte {
	return []byte(fmt.Sprintf("%020d_%s", rec.StartedAt.UTC().UnixNano(), rec.ID))
}
