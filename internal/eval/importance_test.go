package eval

import (
	"math/rand"
	"reflect"
	"testing"

	"diarisk/internal/dataset"
	"diarisk/internal/model"
)

// informativeData builds rows where the first feature separates the
// classes and the second is constant noise.
func informativeData(n int) *dataset.Dataset {
	rng := rand.New(rand.NewSource(11))
	features := make([][]float64, n)
	labels := make([]int, n)
	for i := range features {
		label := i % 2
		center := -1.5
		if label == 1 {
			center = 1.5
		}
		features[i] = []float64{center + rng.NormFloat64()*0.3, 0.0}
		labels[i] = label
	}
	return &dataset.Dataset{
		Features: features,
		Labels:   labels,
		Columns:  []string{"informative", "constant"},
	}
}

func TestImportancesBuiltIn(t *testing.T) {
	ds := informativeData(80)
	v, err := model.Lookup("Decision Tree")
	if err != nil {
		t.Fatal(err)
	}
	s := v.New(nil)
	if err := s.Fit(ds.Features, ds.Labels); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if _, ok := s.(model.FeatureImporter); !ok {
		t.Fatal("expected decision tree to report importances directly")
	}

	ranked := Importances(s, ds, 42)
	if len(ranked) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(ranked))
	}
	if ranked[0].Feature != "informative" {
		t.Errorf("expected informative feature ranked first, got %q", ranked[0].Feature)
	}
	if ranked[0].Weight <= ranked[1].Weight {
		t.Errorf("expected descending weights, got %f then %f", ranked[0].Weight, ranked[1].Weight)
	}
}

func TestImportancesPermutationFallback(t *testing.T) {
	ds := informativeData(80)
	v, err := model.Lookup("KNN")
	if err != nil {
		t.Fatal(err)
	}
	s := v.New(nil)
	if err := s.Fit(ds.Features, ds.Labels); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if _, ok := s.(model.FeatureImporter); ok {
		t.Fatal("expected KNN to take the permutation path")
	}

	ranked := Importances(s, ds, 42)
	if len(ranked) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(ranked))
	}
	if ranked[0].Feature != "informative" || ranked[0].Weight <= 0 {
		t.Errorf("expected positive weight for the informative feature, got %+v", ranked[0])
	}
	// Permuting a constant column changes nothing.
	if ranked[1].Feature != "constant" || ranked[1].Weight != 0 {
		t.Errorf("expected zero weight for the constant feature, got %+v", ranked[1])
	}
}

func TestImportancesPermutationRestoresData(t *testing.T) {
	ds := informativeData(40)
	original := ds.Clone()

	v, err := model.Lookup("SVM")
	if err != nil {
		t.Fatal(err)
	}
	s := v.New(nil)
	if err := s.Fit(ds.Features, ds.Labels); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	Importances(s, ds, 42)

	if !reflect.DeepEqual(ds.Features, original.Features) {
		t.Error("expected features restored after permutation")
	}
}

func TestImportancesDeterministicSeed(t *testing.T) {
	ds := informativeData(60)
	v, err := model.Lookup("KNN")
	if err != nil {
		t.Fatal(err)
	}
	s := v.New(nil)
	if err := s.Fit(ds.Features, ds.Labels); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	a := Importances(s, ds, 7)
	b := Importances(s, ds, 7)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("expected identical rankings for the same seed, got %v vs %v", a, b)
	}
}
