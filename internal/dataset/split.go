package dataset

import (
	"math"
	"math/rand"
	"sort"
)

// Split partitions the dataset into train and test subsets with a
// stratified split preserving class proportions. The same fraction and
// seed always produce the same partition.
func Split(ds *Dataset, testFraction float64, seed int64) (train, test *Dataset) {
	byClass := map[int][]int{}
	for i, y := range ds.Labels {
		byClass[y] = append(byClass[y], i)
	}

	classes := make([]int, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	rng := rand.New(rand.NewSource(seed))
	var trainIdx, testIdx []int

	for _, c := range classes {
		indices := byClass[c]
		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})

		nTest := int(math.Round(float64(len(indices)) * testFraction))
		if nTest >= len(indices) && len(indices) > 0 {
			nTest = len(indices) - 1
		}
		testIdx = append(testIdx, indices[:nTest]...)
		trainIdx = append(trainIdx, indices[nTest:]...)
	}

	// Keep original row order within each subset so results do not depend
	// on map iteration or shuffle artifacts downstream.
	sort.Ints(trainIdx)
	sort.Ints(testIdx)

	return ds.Subset(trainIdx), ds.Subset(testIdx)
}
