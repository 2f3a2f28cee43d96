package train

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"diarisk/internal/dataset"
	"diarisk/internal/model"
)

func TestTunerSearch(t *testing.T) {
	full := blobDataset(100)
	train, test := dataset.Split(full, 0.2, 42)
	v := mustVariant(t, "KNN")

	tuner := NewTuner(2, 5)
	result, err := tuner.Search(context.Background(), v, train, test)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if result.Variant != "KNN" {
		t.Errorf("expected variant KNN, got %q", result.Variant)
	}
	if result.Evaluated != v.Space.Size() {
		t.Errorf("expected %d evaluated combinations, got %d", v.Space.Size(), result.Evaluated)
	}
	k := result.Params.Int("k", 0)
	valid := map[int]bool{3: true, 5: true, 7: true, 9: true, 11: true}
	if !valid[k] {
		t.Errorf("winning k=%d is outside the search space", k)
	}
	if result.CVMean < 0.9 {
		t.Errorf("expected high CV mean on separated blobs, got %f", result.CVMean)
	}
	if result.Scorer == nil {
		t.Fatal("expected a refit scorer")
	}
	if p := result.Scorer.Proba(test.Features[0]); p <= 0 || p >= 1 {
		t.Errorf("refit scorer probability %f outside (0, 1)", p)
	}
}

func TestTunerSearchDeterministicAcrossWorkers(t *testing.T) {
	full := blobDataset(100)
	train, test := dataset.Split(full, 0.2, 42)
	v := mustVariant(t, "Decision Tree")

	serial, err := NewTuner(1, 5).Search(context.Background(), v, train, test)
	if err != nil {
		t.Fatalf("serial search failed: %v", err)
	}
	parallel, err := NewTuner(8, 5).Search(context.Background(), v, train, test)
	if err != nil {
		t.Fatalf("parallel search failed: %v", err)
	}

	if !reflect.DeepEqual(serial.Params, parallel.Params) {
		t.Errorf("expected identical winning params, got %v vs %v", serial.Params, parallel.Params)
	}
	if serial.CVMean != parallel.CVMean || serial.CVStd != parallel.CVStd {
		t.Errorf("expected identical CV scores, got (%f, %f) vs (%f, %f)",
			serial.CVMean, serial.CVStd, parallel.CVMean, parallel.CVStd)
	}
	if serial.TestAccuracy != parallel.TestAccuracy {
		t.Errorf("expected identical test accuracy, got %f vs %f", serial.TestAccuracy, parallel.TestAccuracy)
	}
}

func TestTunerSearchEmptySpace(t *testing.T) {
	full := blobDataset(50)
	train, test := dataset.Split(full, 0.2, 42)
	v := mustVariant(t, "KNN")
	v.Space = nil

	_, err := NewTuner(1, 5).Search(context.Background(), v, train, test)
	if err == nil {
		t.Fatal("expected error on empty search space")
	}
	var tfe *TuningFailedError
	if !errors.As(err, &tfe) {
		t.Fatalf("expected TuningFailedError, got %T", err)
	}
	if tfe.Variant != "KNN" {
		t.Errorf("expected variant KNN in error, got %q", tfe.Variant)
	}
}

func TestTunerSearchAllCombinationsFail(t *testing.T) {
	// Fewer rows than folds makes every combination's cross-validation fail.
	tiny := blobDataset(3)
	v := mustVariant(t, "KNN")

	_, err := NewTuner(2, 5).Search(context.Background(), v, tiny, tiny)
	if err == nil {
		t.Fatal("expected error when every combination fails")
	}
	var tfe *TuningFailedError
	if !errors.As(err, &tfe) {
		t.Fatalf("expected TuningFailedError, got %T", err)
	}
}

func TestTunerSearchCancelledContext(t *testing.T) {
	full := blobDataset(100)
	train, test := dataset.Split(full, 0.2, 42)
	v := mustVariant(t, "Random Forest")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewTuner(1, 5).Search(ctx, v, train, test)
	if err == nil {
		t.Fatal("expected error with cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}
}

func BenchmarkTunerSearchKNN(b *testing.B) {
	full := blobDataset(100)
	train, test := dataset.Split(full, 0.2, 42)
	v, err := model.Lookup("KNN")
	if err != nil {
		b.Fatal(err)
	}

	tuner := NewTuner(4, 5)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := tuner.Search(context.Background(), v, train, test); err != nil {
			b.Fatal(err)
		}
	}
}
