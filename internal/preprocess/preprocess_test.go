package preprocess

import (
	"math"
	"reflect"
	"testing"

	"diarisk/internal/common"
	"diarisk/internal/dataset"
)

func makeClinical(rows [][]float64, labels []int) *dataset.Dataset {
	return &dataset.Dataset{
		Features: rows,
		Labels:   labels,
		Columns:  common.FeatureNames,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestFitCleaner(t *testing.T) {
	// Glucose is column 1; values 0,100,120,0,140 -> non-zero median 120.
	rows := [][]float64{
		{1, 0, 70, 20, 80, 25, 0.5, 30},
		{2, 100, 70, 20, 80, 25, 0.5, 30},
		{3, 120, 70, 20, 80, 25, 0.5, 30},
		{4, 0, 70, 20, 80, 25, 0.5, 30},
		{5, 140, 70, 20, 80, 25, 0.5, 30},
	}
	ds := makeClinical(rows, []int{0, 0, 1, 1, 0})

	c := FitCleaner(ds)

	if !almostEqual(c.Medians["Glucose"], 120) {
		t.Errorf("Expected Glucose median 120, got %f", c.Medians["Glucose"])
	}
	if !almostEqual(c.Medians["BloodPressure"], 70) {
		t.Errorf("Expected BloodPressure median 70, got %f", c.Medians["BloodPressure"])
	}
}

func TestFitCleanerEvenCount(t *testing.T) {
	// Non-zero Glucose values 100,120,140,160 -> interpolated median 130.
	rows := [][]float64{
		{1, 100, 70, 20, 80, 25, 0.5, 30},
		{2, 120, 70, 20, 80, 25, 0.5, 30},
		{3, 140, 70, 20, 80, 25, 0.5, 30},
		{4, 160, 70, 20, 80, 25, 0.5, 30},
	}
	ds := makeClinical(rows, []int{0, 0, 1, 1})

	c := FitCleaner(ds)

	if !almostEqual(c.Medians["Glucose"], 130) {
		t.Errorf("Expected Glucose median 130, got %f", c.Medians["Glucose"])
	}
}

func TestCleanerApply(t *testing.T) {
	rows := [][]float64{
		{0, 0, 70, 20, 80, 25, 0.5, 30},
		{2, 100, 0, 20, 80, 25, 0.5, 30},
		{3, 120, 70, 20, 80, 25, 0.5, 30},
	}
	ds := makeClinical(rows, []int{0, 0, 1})

	c := FitCleaner(ds)
	c.Apply(ds)

	if ds.Features[0][1] == 0 {
		t.Error("Expected zero Glucose to be replaced")
	}
	if ds.Features[1][2] == 0 {
		t.Error("Expected zero BloodPressure to be replaced")
	}
	// Pregnancies may legitimately be zero.
	if ds.Features[0][0] != 0 {
		t.Errorf("Expected Pregnancies zero to be kept, got %f", ds.Features[0][0])
	}
	// Non-zero values stay untouched.
	if ds.Features[2][1] != 120 {
		t.Errorf("Expected Glucose 120 to be untouched, got %f", ds.Features[2][1])
	}
}

func TestCleanerMediansComputedOnce(t *testing.T) {
	train := makeClinical([][]float64{
		{1, 100, 70, 20, 80, 25, 0.5, 30},
		{2, 140, 70, 20, 80, 25, 0.5, 30},
	}, []int{0, 1})

	c := FitCleaner(train)
	before := c.Medians["Glucose"]

	// Applying to other data must not change the fitted medians.
	other := makeClinical([][]float64{
		{1, 0, 70, 20, 80, 25, 0.5, 30},
		{2, 999, 70, 20, 80, 25, 0.5, 30},
	}, []int{0, 1})
	c.Apply(other)

	if c.Medians["Glucose"] != before {
		t.Errorf("Expected median to stay %f, got %f", before, c.Medians["Glucose"])
	}
	if other.Features[0][1] != before {
		t.Errorf("Expected zero replaced with fitted median %f, got %f", before, other.Features[0][1])
	}
}

func TestScalerFit(t *testing.T) {
	ds := &dataset.Dataset{
		Features: [][]float64{{1, 10}, {2, 20}, {3, 30}},
		Labels:   []int{0, 0, 1},
		Columns:  []string{"a", "b"},
	}

	s := &Scaler{}
	if err := s.Fit(ds); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !almostEqual(s.Mean[0], 2) {
		t.Errorf("Expected mean 2, got %f", s.Mean[0])
	}
	if !almostEqual(s.Std[0], 1) {
		t.Errorf("Expected std 1, got %f", s.Std[0])
	}
	if !almostEqual(s.Mean[1], 20) {
		t.Errorf("Expected mean 20, got %f", s.Mean[1])
	}
}

func TestScalerRefitRejected(t *testing.T) {
	ds := &dataset.Dataset{
		Features: [][]float64{{1}, {2}},
		Labels:   []int{0, 1},
		Columns:  []string{"a"},
	}

	s := &Scaler{}
	if err := s.Fit(ds); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Fit(ds); err == nil {
		t.Error("Expected error on second fit")
	}
}

func TestScalerTransformLeavesParametersUnchanged(t *testing.T) {
	train := &dataset.Dataset{
		Features: [][]float64{{1}, {2}, {3}},
		Labels:   []int{0, 0, 1},
		Columns:  []string{"a"},
	}
	test := &dataset.Dataset{
		Features: [][]float64{{100}, {200}},
		Labels:   []int{0, 1},
		Columns:  []string{"a"},
	}

	s := &Scaler{}
	if err := s.Fit(train); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	meanBefore := append([]float64(nil), s.Mean...)
	stdBefore := append([]float64(nil), s.Std...)

	if err := s.Transform(test); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(s.Mean, meanBefore) {
		t.Errorf("Expected mean unchanged %v, got %v", meanBefore, s.Mean)
	}
	if !reflect.DeepEqual(s.Std, stdBefore) {
		t.Errorf("Expected std unchanged %v, got %v", stdBefore, s.Std)
	}

	// Test rows must be scaled with training parameters, not their own.
	want := (100.0 - 2.0) / 1.0
	if !almostEqual(test.Features[0][0], want) {
		t.Errorf("Expected scaled value %f, got %f", want, test.Features[0][0])
	}
}

func TestScalerUnfitted(t *testing.T) {
	s := &Scaler{}
	ds := &dataset.Dataset{Features: [][]float64{{1}}, Labels: []int{0}, Columns: []string{"a"}}

	if err := s.Transform(ds); err == nil {
		t.Error("Expected error transforming with unfitted scaler")
	}
	if _, err := s.TransformRow([]float64{1}); err == nil {
		t.Error("Expected error transforming row with unfitted scaler")
	}
}

func TestScalerConstantColumn(t *testing.T) {
	ds := &dataset.Dataset{
		Features: [][]float64{{5}, {5}, {5}},
		Labels:   []int{0, 0, 1},
		Columns:  []string{"a"},
	}

	s := &Scaler{}
	if err := s.Fit(ds); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Std[0] != 1 {
		t.Errorf("Expected zero-variance guard std 1, got %f", s.Std[0])
	}

	if err := s.Transform(ds); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ds.Features[0][0] != 0 {
		t.Errorf("Expected constant column to scale to 0, got %f", ds.Features[0][0])
	}
}

func TestRun(t *testing.T) {
	var rows [][]float64
	var labels []int
	for i := 0; i < 50; i++ {
		glucose := float64(90 + i)
		if i%7 == 0 {
			glucose = 0 // implausible missing value
		}
		rows = append(rows, []float64{float64(i % 6), glucose, 60 + float64(i%20), 15, 80, 24 + float64(i%10), 0.4, 25 + float64(i%30)})
		labels = append(labels, i%3%2)
	}
	raw := makeClinical(rows, labels)

	res, err := Run(raw, 0.2, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Train.Len()+res.Test.Len() != raw.Len() {
		t.Errorf("Expected splits to cover %d rows, got %d+%d",
			raw.Len(), res.Train.Len(), res.Test.Len())
	}
	if res.Full.Len() != raw.Len() {
		t.Errorf("Expected full set of %d rows, got %d", raw.Len(), res.Full.Len())
	}

	// After cleaning and scaling, no implausible feature may sit at the raw
	// zero position. In scaled space raw zero maps to -mean/std, so check
	// that the cleaned values differ across formerly-zero rows vs the
	// scaled zero point only when medians are non-zero.
	glucoseIdx := 1
	scaledZero := (0 - res.Scaler.Mean[glucoseIdx]) / res.Scaler.Std[glucoseIdx]
	for _, ds := range []*dataset.Dataset{res.Train, res.Test} {
		for _, row := range ds.Features {
			if almostEqual(row[glucoseIdx], scaledZero) {
				t.Fatalf("found glucose value equal to raw zero after cleaning")
			}
		}
	}

	if !res.Scaler.Fitted() {
		t.Error("Expected fitted scaler")
	}

	// The raw input must not be mutated by the pipeline.
	zeroSeen := false
	for _, row := range raw.Features {
		if row[glucoseIdx] == 0 {
			zeroSeen = true
		}
	}
	if !zeroSeen {
		t.Error("Expected raw dataset to keep its zero values")
	}
}

func TestRunEmpty(t *testing.T) {
	_, err := Run(&dataset.Dataset{Columns: common.FeatureNames}, 0.2, 1)
	if err == nil {
		t.Error("Expected error for empty dataset")
	}
}
