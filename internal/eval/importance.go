package eval

import (
	"math"
	"math/rand"
	"sort"

	"diarisk/internal/dataset"
	"diarisk/internal/model"
)

// Importance pairs a feature name with its weight.
type Importance struct {
	Feature string  `json:"feature"`
	Weight  float64 `json:"weight"`
}

// Importances ranks features by weight, descending. Scorers with built-in
// importances report those directly; for the rest each column is permuted
// in turn and the accuracy drop on ds becomes the feature's weight,
// floored at zero. Ties keep column order.
func Importances(s model.Scorer, ds *dataset.Dataset, seed int64) []Importance {
	var weights []float64
	if fi, ok := s.(model.FeatureImporter); ok {
		weights = fi.Importances()
	} else {
		weights = permutationWeights(s, ds, seed)
	}
	if len(weights) != len(ds.Columns) {
		return nil
	}

	out := make([]Importance, len(weights))
	for i, w := range weights {
		out[i] = Importance{Feature: ds.Columns[i], Weight: w}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Weight > out[b].Weight })
	return out
}

func permutationWeights(s model.Scorer, ds *dataset.Dataset, seed int64) []float64 {
	n := ds.Len()
	if n == 0 {
		return nil
	}

	baseline := model.Accuracy(s, ds.Features, ds.Labels)
	rng := rand.New(rand.NewSource(seed))

	weights := make([]float64, len(ds.Columns))
	shuffled := make([]float64, n)
	saved := make([]float64, n)
	for j := range ds.Columns {
		for i, row := range ds.Features {
			saved[i] = row[j]
			shuffled[i] = row[j]
		}
		rng.Shuffle(n, func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		for i, row := range ds.Features {
			row[j] = shuffled[i]
		}

		weights[j] = math.Max(0, baseline-model.Accuracy(s, ds.Features, ds.Labels))

		for i, row := range ds.Features {
			row[j] = saved[i]
		}
	}
	return weights
}
