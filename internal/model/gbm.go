package model

import "math"

// GBM is a gradient-boosting classifier: shallow regression trees fit to
// log-loss residuals, combined additively on the logit scale.
type GBM struct {
	NEstimators  int       `json:"n_estimators"`
	LearningRate float64   `json:"learning_rate"`
	MaxDepth     int       `json:"max_depth"`
	Prior        float64   `json:"prior"`
	Trees        []RegTree `json:"trees"`
	Gains        []float64 `json:"gains,omitempty"`
}

func newGBM(p Params) *GBM {
	return &GBM{
		NEstimators:  p.Int("n_estimators", 100),
		LearningRate: p.Float("learning_rate", 0.1),
		MaxDepth:     p.Int("max_depth", 3),
	}
}

func (m *GBM) Fit(X [][]float64, y []int) error {
	if err := validateFit(X, y); err != nil {
		return err
	}

	n := len(X)
	pos := 0
	for _, label := range y {
		if label == 1 {
			pos++
		}
	}
	p0 := float64(pos+1) / float64(n+2)
	m.Prior = math.Log(p0 / (1 - p0))

	score := make([]float64, n)
	for i := range score {
		score[i] = m.Prior
	}

	grad := make([]float64, n)
	m.Trees = make([]RegTree, 0, m.NEstimators)
	m.Gains = make([]float64, len(X[0]))

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	for round := 0; round < m.NEstimators; round++ {
		for i := range X {
			grad[i] = float64(y[i]) - sigmoid(score[i])
		}

		b := &regBuilder{
			X:        X,
			grad:     grad,
			maxDepth: m.MaxDepth,
			minSplit: 2,
			gains:    make([]float64, len(X[0])),
		}
		b.build(indices, 0)

		tree := RegTree{Nodes: b.nodes}
		m.Trees = append(m.Trees, tree)
		for j, g := range b.gains {
			m.Gains[j] += g
		}

		for i, x := range X {
			score[i] += m.LearningRate * tree.Eval(x)
		}
	}

	return nil
}

func (m *GBM) Predict(x []float64) int {
	if m.Proba(x) >= 0.5 {
		return 1
	}
	return 0
}

func (m *GBM) Proba(x []float64) float64 {
	score := m.Prior
	for i := range m.Trees {
		score += m.LearningRate * m.Trees[i].Eval(x)
	}
	return clampProb(sigmoid(score))
}

// Importances returns accumulated split gain per feature, normalized.
func (m *GBM) Importances() []float64 {
	return normalizeGains(m.Gains)
}
