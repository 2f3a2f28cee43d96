// Package preprocess cleans raw clinical records and scales features for
// training. Cleaning replaces medically implausible zeros with training-set
// medians; scaling standardizes each feature to zero mean and unit variance
// using parameters fit on the training split only.
package preprocess

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"

	"diarisk/internal/common"
	"diarisk/internal/dataset"
)

// Cleaner stores per-feature medians of non-zero training values for the
// features where a raw zero means "missing". Medians are computed once at
// fit time and reused for every later application.
type Cleaner struct {
	Medians map[string]float64 `json:"medians"`
}

// FitCleaner computes the replacement median for each implausible-zero
// feature over the non-zero values in the training data.
func FitCleaner(train *dataset.Dataset) *Cleaner {
	c := &Cleaner{Medians: make(map[string]float64, len(common.ZeroImplausible))}

	for _, name := range common.ZeroImplausible {
		j := columnIndex(train.Columns, name)
		if j < 0 {
			continue
		}

		nonZero := make([]float64, 0, train.Len())
		for _, row := range train.Features {
			if row[j] != 0 {
				nonZero = append(nonZero, row[j])
			}
		}
		if len(nonZero) == 0 {
			c.Medians[name] = 0
			continue
		}

		c.Medians[name] = median(nonZero)
	}

	log.Debug().Interface("medians", c.Medians).Msg("Cleaner fitted")
	return c
}

// Apply replaces zeros in the implausible-zero features with the stored
// medians, in place.
func (c *Cleaner) Apply(ds *dataset.Dataset) {
	for name, median := range c.Medians {
		j := columnIndex(ds.Columns, name)
		if j < 0 {
			continue
		}
		for _, row := range ds.Features {
			if row[j] == 0 {
				row[j] = median
			}
		}
	}
}

// Scaler standardizes features using mean and standard deviation learned
// from the training split. A Scaler fits exactly once; transforming never
// changes the fitted parameters.
type Scaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// Fitted reports whether the scaler has learned its parameters.
func (s *Scaler) Fitted() bool {
	return len(s.Mean) > 0
}

// Fit learns per-feature mean and standard deviation. Fitting an already
// fitted scaler is an error.
func (s *Scaler) Fit(train *dataset.Dataset) error {
	if s.Fitted() {
		return fmt.Errorf("scaler is already fitted and must not be re-fit")
	}
	if train.Len() == 0 {
		return fmt.Errorf("cannot fit scaler on empty dataset")
	}

	nFeatures := len(train.Columns)
	s.Mean = make([]float64, nFeatures)
	s.Std = make([]float64, nFeatures)

	for j := 0; j < nFeatures; j++ {
		col := train.Column(j)
		s.Mean[j] = stat.Mean(col, nil)
		s.Std[j] = stat.StdDev(col, nil)
		if s.Std[j] == 0 {
			s.Std[j] = 1
		}
	}
	return nil
}

// Transform standardizes every row in place using the fitted parameters.
func (s *Scaler) Transform(ds *dataset.Dataset) error {
	if !s.Fitted() {
		return fmt.Errorf("scaler is not fitted")
	}
	for _, row := range ds.Features {
		if len(row) != len(s.Mean) {
			return fmt.Errorf("row has %d features, scaler expects %d", len(row), len(s.Mean))
		}
		for j := range row {
			row[j] = (row[j] - s.Mean[j]) / s.Std[j]
		}
	}
	return nil
}

// TransformRow standardizes a single row, returning a new slice.
func (s *Scaler) TransformRow(row []float64) ([]float64, error) {
	if !s.Fitted() {
		return nil, fmt.Errorf("scaler is not fitted")
	}
	if len(row) != len(s.Mean) {
		return nil, fmt.Errorf("row has %d features, scaler expects %d", len(row), len(s.Mean))
	}
	out := make([]float64, len(row))
	for j := range row {
		out[j] = (row[j] - s.Mean[j]) / s.Std[j]
	}
	return out, nil
}

// Result carries the preprocessed splits plus the fitted transforms. Full
// is the entire cleaned and scaled dataset, used for whole-set
// cross-validation during model comparison.
type Result struct {
	Train   *dataset.Dataset
	Test    *dataset.Dataset
	Full    *dataset.Dataset
	Cleaner *Cleaner
	Scaler  *Scaler
}

// Run executes the preprocessing stage: stratified split, zero cleaning
// with training-set medians, and standardization with a training-fit
// scaler applied to both splits.
func Run(raw *dataset.Dataset, testFraction float64, seed int64) (*Result, error) {
	if raw == nil || raw.Len() == 0 {
		return nil, &dataset.DataError{Reason: "no data to preprocess"}
	}

	train, test := dataset.Split(raw, testFraction, seed)

	cleaner := FitCleaner(train)
	cleaner.Apply(train)
	cleaner.Apply(test)

	full := raw.Clone()
	cleaner.Apply(full)

	scaler := &Scaler{}
	if err := scaler.Fit(train); err != nil {
		return nil, err
	}
	if err := scaler.Transform(train); err != nil {
		return nil, err
	}
	if err := scaler.Transform(test); err != nil {
		return nil, err
	}
	if err := scaler.Transform(full); err != nil {
		return nil, err
	}

	log.Info().
		Int("train_rows", train.Len()).
		Int("test_rows", test.Len()).
		Float64("test_fraction", testFraction).
		Int64("seed", seed).
		Msg("Preprocessing complete")

	return &Result{Train: train, Test: test, Full: full, Cleaner: cleaner, Scaler: scaler}, nil
}

// median returns the middle value for an odd count and the mean of the two
// middle values for an even count. stat.Quantile has no cumulant kind that
// matches this at 0.5.
func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func columnIndex(columns []string, name string) int {
	for i, c := range columns {
		if c == name {
			return i
		}
	}
	return -1
}
