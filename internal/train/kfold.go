// Package train runs the model-selection stage across the candidate panel
// and the exhaustive hyperparameter search for the selected variant.
package train

// stratifiedFolds assigns every row index to one of k folds, preserving
// class proportions. Rows of each class are dealt to folds in order, so
// the assignment is deterministic for a given label sequence.
func stratifiedFolds(y []int, k int) [][]int {
	if k < 2 {
		k = 2
	}

	byClass := map[int][]int{}
	for i, label := range y {
		byClass[label] = append(byClass[label], i)
	}

	folds := make([][]int, k)
	for _, class := range []int{0, 1} {
		indices := byClass[class]
		size := len(indices) / k
		extra := len(indices) % k

		start := 0
		for f := 0; f < k; f++ {
			end := start + size
			if f < extra {
				end++
			}
			folds[f] = append(folds[f], indices[start:end]...)
			start = end
		}
	}

	return folds
}

// foldSplit returns train and test row indices for one held-out fold.
func foldSplit(folds [][]int, holdOut int) (trainIdx, testIdx []int) {
	for f, fold := range folds {
		if f == holdOut {
			testIdx = append(testIdx, fold...)
		} else {
			trainIdx = append(trainIdx, fold...)
		}
	}
	return trainIdx, testIdx
}
