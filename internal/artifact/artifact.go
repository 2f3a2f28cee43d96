// Package artifact bundles everything inference needs into a single JSON
// file: the winning variant with its parameters and encoded state, the
// fitted cleaner and scaler, the feature order, and run metadata. A saved
// artifact restores to a predictor that scores identically to the one
// that produced it.
package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"diarisk/internal/model"
	"diarisk/internal/preprocess"
)

// PersistenceError reports a failed artifact save or load.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("artifact %s %q: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Meta records provenance for a trained artifact.
type Meta struct {
	ID           string    `json:"id"`
	TrainedAt    time.Time `json:"trained_at"`
	TestAccuracy float64   `json:"test_accuracy"`
	CVMean       float64   `json:"cv_mean"`
	CVStd        float64   `json:"cv_std"`
}

// Artifact is the serialized form of a trained pipeline.
type Artifact struct {
	Variant  string              `json:"variant"`
	Params   model.Params        `json:"params"`
	Model    json.RawMessage     `json:"model"`
	Scaler   *preprocess.Scaler  `json:"scaler"`
	Cleaner  *preprocess.Cleaner `json:"cleaner"`
	Features []string            `json:"features"`
	Meta     Meta                `json:"meta"`

	scorer model.Scorer
}

// New builds an artifact from a trained scorer and its fitted transforms.
func New(variant string, params model.Params, s model.Scorer, features []string, cleaner *preprocess.Cleaner, scaler *preprocess.Scaler, meta Meta) (*Artifact, error) {
	raw, err := model.Encode(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s state: %w", variant, err)
	}
	return &Artifact{
		Variant:  variant,
		Params:   params.Clone(),
		Model:    raw,
		Scaler:   scaler,
		Cleaner:  cleaner,
		Features: append([]string{}, features...),
		Meta:     meta,
		scorer:   s,
	}, nil
}

// Scorer returns the live scorer behind the artifact.
func (a *Artifact) Scorer() model.Scorer {
	return a.scorer
}

// Save writes the artifact as indented JSON. The write goes to a temp
// file in the destination directory first and is renamed into place, so a
// watcher never observes a half-written artifact.
func Save(a *Artifact, path string) error {
	if err := a.validate(); err != nil {
		return &PersistenceError{Op: "save", Path: path, Err: err}
	}

	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return &PersistenceError{Op: "save", Path: path, Err: err}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &PersistenceError{Op: "save", Path: path, Err: err}
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return &PersistenceError{Op: "save", Path: tmp, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return &PersistenceError{Op: "save", Path: path, Err: err}
	}

	return nil
}

// Load reads an artifact and decodes its scorer through the variant
// registry. Missing files, corrupt JSON, unknown variants, and incomplete
// artifacts all come back as a PersistenceError.
func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &PersistenceError{Op: "load", Path: path, Err: err}
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, &PersistenceError{Op: "load", Path: path, Err: err}
	}
	if err := a.validate(); err != nil {
		return nil, &PersistenceError{Op: "load", Path: path, Err: err}
	}

	scorer, err := model.Decode(a.Variant, a.Model)
	if err != nil {
		return nil, &PersistenceError{Op: "load", Path: path, Err: err}
	}
	a.scorer = scorer

	return &a, nil
}

func (a *Artifact) validate() error {
	switch {
	case a.Variant == "":
		return errors.New("missing variant name")
	case len(a.Model) == 0:
		return errors.New("missing model state")
	case a.Scaler == nil || !a.Scaler.Fitted():
		return errors.New("missing fitted scaler")
	case a.Cleaner == nil || len(a.Cleaner.Medians) == 0:
		return errors.New("missing cleaner medians")
	case len(a.Features) == 0:
		return errors.New("missing feature order")
	}
	return nil
}
