package eval

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// ROC computes the receiver operating characteristic curve and its area
// from positive-class scores and true labels. Both classes must be
// present. The returned rates run from (0, 0) to (1, 1).
func ROC(scores []float64, labels []int) (tpr, fpr []float64, auc float64, err error) {
	if len(scores) == 0 {
		return nil, nil, 0, fmt.Errorf("no scores to rank")
	}
	if len(scores) != len(labels) {
		return nil, nil, 0, fmt.Errorf("scores and labels length mismatch: %d vs %d", len(scores), len(labels))
	}

	pos := 0
	for _, label := range labels {
		if label == 1 {
			pos++
		}
	}
	if pos == 0 || pos == len(labels) {
		return nil, nil, 0, fmt.Errorf("ROC needs both classes, got %d positives of %d rows", pos, len(labels))
	}

	// stat.ROC wants scores sorted ascending with classes aligned.
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return scores[order[a]] < scores[order[b]] })

	sorted := make([]float64, len(scores))
	classes := make([]bool, len(labels))
	for k, i := range order {
		sorted[k] = scores[i]
		classes[k] = labels[i] == 1
	}

	tpr, fpr, _ = stat.ROC(nil, sorted, classes, nil)

	// Trapezoidal wants ascending x.
	if len(fpr) > 1 && fpr[0] > fpr[len(fpr)-1] {
		reverse(fpr)
		reverse(tpr)
	}
	auc = integrate.Trapezoidal(fpr, tpr)

	return tpr, fpr, auc, nil
}

func reverse(v []float64) {
	for i, j := 0, len(v)-1; i < j; i, j = i+1, j-1 {
		v[i], v[j] = v[j], v[i]
	}
}
