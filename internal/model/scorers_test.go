package model

import (
	"math/rand"
	"testing"
)

// blobs builds a deterministic, well-separated two-class dataset with four
// features. Even rows are negative around -1.5, odd rows positive around
// +1.5.
func blobs(n int) ([][]float64, []int) {
	rng := rand.New(rand.NewSource(42))
	X := make([][]float64, n)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		center := -1.5
		label := 0
		if i%2 == 1 {
			center = 1.5
			label = 1
		}
		row := make([]float64, 4)
		for j := range row {
			row[j] = center + rng.NormFloat64()*0.4
		}
		X[i] = row
		y[i] = label
	}
	return X, y
}

func TestEachVariantLearnsBlobs(t *testing.T) {
	X, y := blobs(80)

	for _, v := range Panel() {
		t.Run(v.Name, func(t *testing.T) {
			s := v.New(nil)
			if err := s.Fit(X, y); err != nil {
				t.Fatalf("fit failed: %v", err)
			}

			acc := Accuracy(s, X, y)
			if acc < 0.85 {
				t.Errorf("Expected training accuracy >= 0.85, got %f", acc)
			}
		})
	}
}

func TestProbaStrictBounds(t *testing.T) {
	X, y := blobs(60)

	for _, v := range Panel() {
		t.Run(v.Name, func(t *testing.T) {
			s := v.New(nil)
			if err := s.Fit(X, y); err != nil {
				t.Fatalf("fit failed: %v", err)
			}

			for _, x := range X {
				p := s.Proba(x)
				if p <= 0 || p >= 1 {
					t.Fatalf("Expected probability strictly inside (0,1), got %v", p)
				}
			}
		})
	}
}

func TestPredictMatchesProba(t *testing.T) {
	X, y := blobs(60)

	for _, v := range Panel() {
		t.Run(v.Name, func(t *testing.T) {
			s := v.New(nil)
			if err := s.Fit(X, y); err != nil {
				t.Fatalf("fit failed: %v", err)
			}

			for _, x := range X {
				p := s.Proba(x)
				pred := s.Predict(x)
				if p >= 0.5 && pred != 1 {
					t.Fatalf("probability %v but predicted %d", p, pred)
				}
				if p < 0.5 && pred != 0 {
					t.Fatalf("probability %v but predicted %d", p, pred)
				}
			}
		})
	}
}

func TestFitDeterminism(t *testing.T) {
	X, y := blobs(60)

	for _, v := range Panel() {
		t.Run(v.Name, func(t *testing.T) {
			a := v.New(nil)
			b := v.New(nil)
			if err := a.Fit(X, y); err != nil {
				t.Fatalf("fit failed: %v", err)
			}
			if err := b.Fit(X, y); err != nil {
				t.Fatalf("fit failed: %v", err)
			}

			for _, x := range X {
				if a.Proba(x) != b.Proba(x) {
					t.Fatal("Expected identical probabilities from two fits on identical data")
				}
			}
		})
	}
}

func TestFitRejectsEmptyData(t *testing.T) {
	for _, v := range Panel() {
		t.Run(v.Name, func(t *testing.T) {
			s := v.New(nil)
			if err := s.Fit(nil, nil); err == nil {
				t.Error("Expected error for empty training data")
			}
		})
	}
}

func TestFitRejectsLengthMismatch(t *testing.T) {
	X := [][]float64{{1, 2}, {3, 4}}
	y := []int{0}

	s := newTree(nil)
	if err := s.Fit(X, y); err == nil {
		t.Error("Expected error for mismatched features and labels")
	}
}

func TestTreeRespectsMaxDepth(t *testing.T) {
	X, y := blobs(100)

	s := newTree(Params{"max_depth": 1})
	if err := s.Fit(X, y); err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	// A depth-1 tree is a stump: root plus at most two leaves.
	if len(s.Nodes) > 3 {
		t.Errorf("Expected at most 3 nodes for depth 1, got %d", len(s.Nodes))
	}
}

func TestTreePureLeafStaysUncertain(t *testing.T) {
	X := [][]float64{{0}, {0.1}, {0.2}, {5}, {5.1}, {5.2}}
	y := []int{0, 0, 0, 1, 1, 1}

	s := newTree(Params{"max_depth": 3})
	if err := s.Fit(X, y); err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	p := s.Proba([]float64{5})
	if p >= 1 {
		t.Errorf("Expected smoothed probability below 1 on a pure leaf, got %v", p)
	}
	if p <= 0.5 {
		t.Errorf("Expected confident positive probability, got %v", p)
	}
}

func TestKNNVoteProbability(t *testing.T) {
	X := [][]float64{
		{0.1, 0}, {0, 0.2}, {0.3, 0}, // positives near origin
		{5, 5}, {6, 6}, // negatives far away
	}
	y := []int{1, 1, 1, 0, 0}

	s := newKNN(Params{"k": 3})
	if err := s.Fit(X, y); err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	want := 4.0 / 5.0 // three positive votes, Laplace smoothed
	if got := s.Proba([]float64{0, 0}); got != want {
		t.Errorf("Expected probability %v, got %v", want, got)
	}
	if s.Predict([]float64{0, 0}) != 1 {
		t.Error("Expected positive prediction near positive cluster")
	}
}

func TestImportancesRankInformativeFeature(t *testing.T) {
	// Feature 0 fully determines the label; feature 1 is noise.
	rng := rand.New(rand.NewSource(7))
	n := 120
	X := make([][]float64, n)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		label := i % 2
		X[i] = []float64{float64(label*2 - 1), rng.NormFloat64()}
		y[i] = label
	}

	for _, name := range []string{"Decision Tree", "Random Forest", "Gradient Boosting", "XGBoost"} {
		t.Run(name, func(t *testing.T) {
			v, err := Lookup(name)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			s := v.New(nil)
			if err := s.Fit(X, y); err != nil {
				t.Fatalf("fit failed: %v", err)
			}

			imp, ok := s.(FeatureImporter)
			if !ok {
				t.Fatalf("Expected %s to expose importances", name)
			}

			weights := imp.Importances()
			if len(weights) != 2 {
				t.Fatalf("Expected 2 importance weights, got %d", len(weights))
			}
			if weights[0] <= weights[1] {
				t.Errorf("Expected informative feature to dominate, got %v", weights)
			}

			sum := weights[0] + weights[1]
			if sum < 0.999 || sum > 1.001 {
				t.Errorf("Expected importances to sum to 1, got %f", sum)
			}
		})
	}
}

func TestClampProb(t *testing.T) {
	if p := clampProb(0); p <= 0 {
		t.Errorf("Expected clamped probability above 0, got %v", p)
	}
	if p := clampProb(1); p >= 1 {
		t.Errorf("Expected clamped probability below 1, got %v", p)
	}
	if p := clampProb(0.42); p != 0.42 {
		t.Errorf("Expected interior value unchanged, got %v", p)
	}
}

func BenchmarkForestFit(b *testing.B) {
	X, y := blobs(200)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s := newForest(Params{"n_estimators": 20, "max_depth": 5})
		if err := s.Fit(X, y); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTreeProba(b *testing.B) {
	X, y := blobs(200)
	s := newTree(nil)
	if err := s.Fit(X, y); err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Proba(X[i%len(X)])
	}
}
