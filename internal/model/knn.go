package model

import (
	"math"
	"sort"
)

// KNN is a k-nearest-neighbours classifier with Euclidean distance.
// Fitting stores the training rows; prediction votes among the k closest.
type KNN struct {
	K      int         `json:"k"`
	Rows   [][]float64 `json:"rows"`
	Labels []int       `json:"labels"`
}

func newKNN(p Params) *KNN {
	return &KNN{K: p.Int("k", 5)}
}

func (m *KNN) Fit(X [][]float64, y []int) error {
	if err := validateFit(X, y); err != nil {
		return err
	}

	m.Rows = make([][]float64, len(X))
	for i, x := range X {
		row := make([]float64, len(x))
		copy(row, x)
		m.Rows[i] = row
	}
	m.Labels = append([]int(nil), y...)
	return nil
}

func (m *KNN) Predict(x []float64) int {
	if m.Proba(x) >= 0.5 {
		return 1
	}
	return 0
}

func (m *KNN) Proba(x []float64) float64 {
	if len(m.Rows) == 0 {
		return clampProb(0.5)
	}

	k := m.K
	if k > len(m.Rows) {
		k = len(m.Rows)
	}

	type neighbour struct {
		dist float64
		idx  int
	}
	neighbours := make([]neighbour, len(m.Rows))
	for i, row := range m.Rows {
		neighbours[i] = neighbour{dist: euclidean(x, row), idx: i}
	}

	// Ties on distance resolve by training-row order so votes are
	// reproducible.
	sort.Slice(neighbours, func(i, j int) bool {
		if neighbours[i].dist != neighbours[j].dist {
			return neighbours[i].dist < neighbours[j].dist
		}
		return neighbours[i].idx < neighbours[j].idx
	})

	pos := 0
	for _, nb := range neighbours[:k] {
		if m.Labels[nb.idx] == 1 {
			pos++
		}
	}

	return clampProb(float64(pos+1) / float64(k+2))
}

func euclidean(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		if i >= len(b) {
			break
		}
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
