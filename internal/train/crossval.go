package train

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"diarisk/internal/model"
)

// CrossValidate scores a variant configuration by k-fold cross-validation
// accuracy. Each fold fits a fresh scorer on the remaining folds and
// scores the held-out one. Returns the mean and population standard
// deviation of the per-fold accuracies.
func CrossValidate(v model.Variant, p model.Params, X [][]float64, y []int, folds int) (mean, std float64, err error) {
	if len(X) < folds {
		return 0, 0, fmt.Errorf("cannot run %d-fold cross-validation on %d rows", folds, len(X))
	}

	assignment := stratifiedFolds(y, folds)
	scores := make([]float64, 0, folds)

	for f := 0; f < folds; f++ {
		trainIdx, testIdx := foldSplit(assignment, f)
		if len(trainIdx) == 0 || len(testIdx) == 0 {
			continue
		}

		trainX, trainY := gather(X, y, trainIdx)
		testX, testY := gather(X, y, testIdx)

		s := v.New(p)
		if err := s.Fit(trainX, trainY); err != nil {
			return 0, 0, fmt.Errorf("fold %d fit failed for %s: %w", f, v.Name, err)
		}
		scores = append(scores, model.Accuracy(s, testX, testY))
	}

	if len(scores) == 0 {
		return 0, 0, fmt.Errorf("no usable folds for %s", v.Name)
	}

	return stat.Mean(scores, nil), stat.PopStdDev(scores, nil), nil
}

func gather(X [][]float64, y []int, indices []int) ([][]float64, []int) {
	outX := make([][]float64, len(indices))
	outY := make([]int, len(indices))
	for k, i := range indices {
		outX[k] = X[i]
		outY[k] = y[i]
	}
	return outX, outY
}
