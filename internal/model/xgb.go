package model

import "math"

// XGB is a regularized gradient-boosting classifier in the XGBoost mold:
// second-order split gains, hessian-weighted leaf values, and L2 shrinkage
// on leaf weights via lambda.
type XGB struct {
	NEstimators  int       `json:"n_estimators"`
	LearningRate float64   `json:"learning_rate"`
	MaxDepth     int       `json:"max_depth"`
	Lambda       float64   `json:"lambda"`
	Prior        float64   `json:"prior"`
	Trees        []RegTree `json:"trees"`
	Gains        []float64 `json:"gains,omitempty"`
}

func newXGB(p Params) *XGB {
	return &XGB{
		NEstimators:  p.Int("n_estimators", 100),
		LearningRate: p.Float("learning_rate", 0.1),
		MaxDepth:     p.Int("max_depth", 3),
		Lambda:       p.Float("lambda", 1.0),
	}
}

func (m *XGB) Fit(X [][]float64, y []int) error {
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
	hess := make([]float64, n)
	m.Trees = make([]RegTree, 0, m.NEstimators)
	m.Gains = make([]float64, len(X[0]))

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	for round := 0; round < m.NEstimators; round++ {
		for i := range X {
			p := sigmoid(score[i])
			grad[i] = float64(y[i]) - p
			hess[i] = p * (1 - p)
		}

		b := &regBuilder{
			X:        X,
			grad:     grad,
			hess:     hess,
			lambda:   m.Lambda,
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

func (m *XGB) Predict(x []float64) int {
	if m.Proba(x) >= 0.5 {
		return 1
	}
	return 0
}

func (m *XGB) Proba(x []float64) float64 {
	score := m.Prior
	for i := range m.Trees {
		score += m.LearningRate * m.Trees[i].Eval(x)
	}
	return clampProb(sigmoid(score))
}

// Importances returns accumulated second-order split gain per feature,
// normalized.
func (m *XGB) Importances() []float64 {
	return normalizeGains(m.Gains)
}
