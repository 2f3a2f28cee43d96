// Package eval computes evaluation metrics for a fitted scorer on a
// held-out split: accuracy, per-class precision/recall/F1, the confusion
// matrix, the ROC curve with its area, and feature importance rankings.
package eval

import (
	"fmt"

	"diarisk/internal/common"
	"diarisk/internal/dataset"
	"diarisk/internal/model"
)

// ClassStats holds one class's row of the classification table.
type ClassStats struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Confusion is the binary confusion matrix with diabetic as the positive
// class.
type Confusion struct {
	TP int `json:"tp"`
	TN int `json:"tn"`
	FP int `json:"fp"`
	FN int `json:"fn"`
}

// Report bundles every evaluation metric for one scorer on one split.
// Classes lists the negative class first.
type Report struct {
	Accuracy  float64      `json:"accuracy"`
	Confusion Confusion    `json:"confusion"`
	Classes   []ClassStats `json:"classes"`
	AUC       float64      `json:"auc"`
	TPR       []float64    `json:"tpr"`
	FPR       []float64    `json:"fpr"`
}

// Evaluate scores the fitted scorer on the dataset. The scorer and the
// dataset are not modified.
func Evaluate(s model.Scorer, ds *dataset.Dataset) (*Report, error) {
	if ds.Len() == 0 {
		return nil, fmt.Errorf("cannot evaluate on an empty dataset")
	}

	var cm Confusion
	scores := make([]float64, ds.Len())
	for i, row := range ds.Features {
		scores[i] = s.Proba(row)
		pred := s.Predict(row)
		switch {
		case pred == 1 && ds.Labels[i] == 1:
			cm.TP++
		case pred == 1 && ds.Labels[i] == 0:
			cm.FP++
		case pred == 0 && ds.Labels[i] == 0:
			cm.TN++
		default:
			cm.FN++
		}
	}

	report := &Report{
		Accuracy:  float64(cm.TP+cm.TN) / float64(ds.Len()),
		Confusion: cm,
		Classes: []ClassStats{
			{
				Label:     common.LabelNegative,
				Precision: ratio(cm.TN, cm.TN+cm.FN),
				Recall:    ratio(cm.TN, cm.TN+cm.FP),
				Support:   cm.TN + cm.FP,
			},
			{
				Label:     common.LabelPositive,
				Precision: ratio(cm.TP, cm.TP+cm.FP),
				Recall:    ratio(cm.TP, cm.TP+cm.FN),
				Support:   cm.TP + cm.FN,
			},
		},
	}
	for i := range report.Classes {
		c := &report.Classes[i]
		c.F1 = f1(c.Precision, c.Recall)
	}

	tpr, fpr, auc, err := ROC(scores, ds.Labels)
	if err != nil {
		return nil, fmt.Errorf("failed to compute ROC: %w", err)
	}
	report.TPR = tpr
	report.FPR = fpr
	report.AUC = auc

	return report, nil
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func f1(precision, recall float64) float64 {
	if precision+recall == 0 {
		return 0
	}
	return 2 * precision * recall / (precision + recall)
}
