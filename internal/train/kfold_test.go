package train

import (
	"reflect"
	"sort"
	"testing"
)

func TestStratifiedFolds(t *testing.T) {
	// 60 negatives, 40 positives.
	y := make([]int, 100)
	for i := 60; i < 100; i++ {
		y[i] = 1
	}

	folds := stratifiedFolds(y, 5)
	if len(folds) != 5 {
		t.Fatalf("expected 5 folds, got %d", len(folds))
	}

	seen := make(map[int]int)
	for f, fold := range folds {
		if len(fold) != 20 {
			t.Errorf("fold %d: expected 20 rows, got %d", f, len(fold))
		}
		neg, pos := 0, 0
		for _, i := range fold {
			seen[i]++
			if y[i] == 1 {
				pos++
			} else {
				neg++
			}
		}
		if neg != 12 || pos != 8 {
			t.Errorf("fold %d: expected 12 neg / 8 pos, got %d / %d", f, neg, pos)
		}
	}

	if len(seen) != 100 {
		t.Errorf("expected every row assigned, got %d distinct rows", len(seen))
	}
	for i, count := range seen {
		if count != 1 {
			t.Errorf("row %d assigned %d times", i, count)
		}
	}
}

func TestStratifiedFoldsRemainder(t *testing.T) {
	// 7 negatives, 5 positives across 3 folds: earlier folds take the extras.
	y := []int{0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 1}

	folds := stratifiedFolds(y, 3)
	sizes := []int{len(folds[0]), len(folds[1]), len(folds[2])}
	want := []int{5, 4, 3}
	if !reflect.DeepEqual(sizes, want) {
		t.Errorf("expected fold sizes %v, got %v", want, sizes)
	}
}

func TestStratifiedFoldsDeterministic(t *testing.T) {
	y := make([]int, 50)
	for i := range y {
		y[i] = i % 2
	}

	a := stratifiedFolds(y, 5)
	b := stratifiedFolds(y, 5)
	if !reflect.DeepEqual(a, b) {
		t.Error("expected identical fold assignment across calls")
	}
}

func TestFoldSplit(t *testing.T) {
	y := make([]int, 30)
	for i := 20; i < 30; i++ {
		y[i] = 1
	}
	folds := stratifiedFolds(y, 3)

	trainIdx, testIdx := foldSplit(folds, 1)
	if len(testIdx) != len(folds[1]) {
		t.Errorf("expected %d test rows, got %d", len(folds[1]), len(testIdx))
	}
	if len(trainIdx)+len(testIdx) != 30 {
		t.Errorf("expected train+test to cover all rows, got %d", len(trainIdx)+len(testIdx))
	}

	all := append(append([]int{}, trainIdx...), testIdx...)
	sort.Ints(all)
	for i, idx := range all {
		if idx != i {
			t.Fatalf("expected contiguous coverage, got %v", all)
		}
	}
}
