package eval

import (
	"math"
	"testing"
)

func TestROCPerfectRanking(t *testing.T) {
	scores := []float64{0.9, 0.8, 0.7, 0.3, 0.2, 0.1}
	labels := []int{1, 1, 1, 0, 0, 0}

	tpr, fpr, auc, err := ROC(scores, labels)
	if err != nil {
		t.Fatalf("ROC failed: %v", err)
	}
	if math.Abs(auc-1.0) > 1e-9 {
		t.Errorf("expected AUC 1.0 for perfect ranking, got %f", auc)
	}
	if len(tpr) != len(fpr) {
		t.Errorf("curve length mismatch: %d vs %d", len(tpr), len(fpr))
	}
	if fpr[0] != 0 || tpr[0] != 0 {
		t.Errorf("expected curve to start at (0, 0), got (%f, %f)", fpr[0], tpr[0])
	}
	last := len(fpr) - 1
	if fpr[last] != 1 || tpr[last] != 1 {
		t.Errorf("expected curve to end at (1, 1), got (%f, %f)", fpr[last], tpr[last])
	}
}

func TestROCInvertedRanking(t *testing.T) {
	scores := []float64{0.1, 0.2, 0.8, 0.9}
	labels := []int{1, 1, 0, 0}

	_, _, auc, err := ROC(scores, labels)
	if err != nil {
		t.Fatalf("ROC failed: %v", err)
	}
	if math.Abs(auc) > 1e-9 {
		t.Errorf("expected AUC 0.0 for inverted ranking, got %f", auc)
	}
}

func TestROCUnsortedInput(t *testing.T) {
	// Callers pass scores in row order; ROC must sort internally.
	scores := []float64{0.3, 0.9, 0.1, 0.8}
	labels := []int{0, 1, 0, 1}

	_, _, auc, err := ROC(scores, labels)
	if err != nil {
		t.Fatalf("ROC failed: %v", err)
	}
	if math.Abs(auc-1.0) > 1e-9 {
		t.Errorf("expected AUC 1.0, got %f", auc)
	}
}

func TestROCSingleClass(t *testing.T) {
	if _, _, _, err := ROC([]float64{0.1, 0.2}, []int{1, 1}); err == nil {
		t.Error("expected error with only positives")
	}
	if _, _, _, err := ROC([]float64{0.1, 0.2}, []int{0, 0}); err == nil {
		t.Error("expected error with only negatives")
	}
}

func TestROCBadInput(t *testing.T) {
	if _, _, _, err := ROC(nil, nil); err == nil {
		t.Error("expected error on empty input")
	}
	if _, _, _, err := ROC([]float64{0.5}, []int{1, 0}); err == nil {
		t.Error("expected error on length mismatch")
	}
}
