package model

import (
	"math"
	"math/rand"
)

// Forest is a bootstrap ensemble of CART trees with per-split feature
// subsampling. Tree seeds derive from a fixed base so training is
// reproducible on identical data.
type Forest struct {
	NEstimators int     `json:"n_estimators"`
	MaxDepth    int     `json:"max_depth"`
	Trees       []*Tree `json:"trees"`

	gains []float64
}

const forestBaseSeed = 1103

func newForest(p Params) *Forest {
	return &Forest{
		NEstimators: p.Int("n_estimators", 100),
		MaxDepth:    p.Int("max_depth", 10),
	}
}

func (m *Forest) Fit(X [][]float64, y []int) error {
	if err := validateFit(X, y); err != nil {
		return err
	}

	n := len(X)
	nFeatures := len(X[0])
	featureSub := int(math.Sqrt(float64(nFeatures)))
	if featureSub < 1 {
		featureSub = 1
	}

	m.Trees = make([]*Tree, 0, m.NEstimators)
	m.gains = make([]float64, nFeatures)

	for t := 0; t < m.NEstimators; t++ {
		rng := rand.New(rand.NewSource(forestBaseSeed + int64(t)))

		indices := make([]int, n)
		for i := range indices {
			indices[i] = rng.Intn(n)
		}

		b := &treeBuilder{
			X:          X,
			y:          y,
			maxDepth:   m.MaxDepth,
			minSplit:   2,
			total:      n,
			rng:        rng,
			featureSub: featureSub,
			gains:      make([]float64, nFeatures),
		}
		b.build(indices, 0)

		tree := &Tree{MaxDepth: m.MaxDepth, MinSamplesSplit: 2, Nodes: b.nodes, Gains: b.gains}
		m.Trees = append(m.Trees, tree)

		for j, g := range b.gains {
			m.gains[j] += g
		}
	}

	return nil
}

func (m *Forest) Predict(x []float64) int {
	if m.Proba(x) >= 0.5 {
		return 1
	}
	return 0
}

func (m *Forest) Proba(x []float64) float64 {
	if len(m.Trees) == 0 {
		return clampProb(0.5)
	}
	sum := 0.0
	for _, tree := range m.Trees {
		sum += tree.Proba(x)
	}
	return clampProb(sum / float64(len(m.Trees)))
}

// Importances averages impurity decrease across the ensemble.
func (m *Forest) Importances() []float64 {
	if m.gains == nil && len(m.Trees) > 0 {
		// Recompute after deserialization, where only the trees survive.
		nFeatures := len(m.Trees[0].Gains)
		m.gains = make([]float64, nFeatures)
		for _, tree := range m.Trees {
			for j, g := range tree.Gains {
				m.gains[j] += g
			}
		}
	}
	return normalizeGains(m.gains)
}
