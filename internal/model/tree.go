package model

import (
	"math/rand"
	"sort"
)

// TreeNode is one node in a flattened decision tree. Leaves carry the
// positive-class probability with Laplace smoothing; internal nodes route
// rows left when the feature value is <= the threshold.
type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	Prob       float64 `json:"prob"`
	IsLeaf     bool    `json:"is_leaf"`
}

// Tree is a CART classifier with gini-impurity splits at midpoints
// between distinct sorted feature values.
type Tree struct {
	MaxDepth        int        `json:"max_depth"`
	MinSamplesSplit int        `json:"min_samples_split"`
	Nodes           []TreeNode `json:"nodes"`
	Gains           []float64  `json:"gains,omitempty"`
}

func newTree(p Params) *Tree {
	return &Tree{
		MaxDepth:        p.Int("max_depth", 5),
		MinSamplesSplit: p.Int("min_samples_split", 2),
	}
}

func (m *Tree) Fit(X [][]float64, y []int) error {
	if err := validateFit(X, y); err != nil {
		return err
	}

	indices := make([]int, len(X))
	for i := range indices {
		indices[i] = i
	}

	b := &treeBuilder{
		X:        X,
		y:        y,
		maxDepth: m.MaxDepth,
		minSplit: m.MinSamplesSplit,
		total:    len(X),
		gains:    make([]float64, len(X[0])),
	}
	b.build(indices, 0)

	m.Nodes = b.nodes
	m.Gains = b.gains
	return nil
}

func (m *Tree) Predict(x []float64) int {
	if m.Proba(x) >= 0.5 {
		return 1
	}
	return 0
}

func (m *Tree) Proba(x []float64) float64 {
	if len(m.Nodes) == 0 {
		return clampProb(0.5)
	}
	idx := 0
	for {
		node := m.Nodes[idx]
		if node.IsLeaf {
			return clampProb(node.Prob)
		}
		if x[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(m.Nodes) {
			return clampProb(0.5)
		}
	}
}

// Importances returns per-feature impurity decrease, normalized to sum
// to one.
func (m *Tree) Importances() []float64 {
	return normalizeGains(m.Gains)
}

func normalizeGains(gains []float64) []float64 {
	out := make([]float64, len(gains))
	sum := 0.0
	for _, g := range gains {
		sum += g
	}
	if sum == 0 {
		return out
	}
	for i, g := range gains {
		out[i] = g / sum
	}
	return out
}

// treeBuilder grows a tree into a flat node slice with absolute child
// indices. A nil rng considers every feature at each split; otherwise a
// random subset of featureSub features is drawn per split.
type treeBuilder struct {
	X          [][]float64
	y          []int
	maxDepth   int
	minSplit   int
	total      int
	rng        *rand.Rand
	featureSub int
	gains      []float64
	nodes      []TreeNode
}

func (b *treeBuilder) build(indices []int, depth int) int {
	pos := 0
	for _, i := range indices {
		if b.y[i] == 1 {
			pos++
		}
	}
	n := len(indices)

	node := TreeNode{
		FeatureIdx: -1,
		LeftChild:  -1,
		RightChild: -1,
		Prob:       float64(pos+1) / float64(n+2),
		IsLeaf:     true,
	}
	idx := len(b.nodes)
	b.nodes = append(b.nodes, node)

	if depth >= b.maxDepth || n < b.minSplit || pos == 0 || pos == n {
		return idx
	}

	feat, thr, gain, ok := b.bestSplit(indices)
	if !ok {
		return idx
	}

	var left, right []int
	for _, i := range indices {
		if b.X[i][feat] <= thr {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return idx
	}

	b.gains[feat] += gain * float64(n) / float64(b.total)

	leftIdx := b.build(left, depth+1)
	rightIdx := b.build(right, depth+1)

	b.nodes[idx].IsLeaf = false
	b.nodes[idx].FeatureIdx = feat
	b.nodes[idx].Threshold = thr
	b.nodes[idx].LeftChild = leftIdx
	b.nodes[idx].RightChild = rightIdx
	return idx
}

// bestSplit sweeps sorted feature values and scores midpoints between
// distinct neighbours by weighted gini impurity. The first strictly best
// candidate wins, keeping split choice deterministic.
func (b *treeBuilder) bestSplit(indices []int) (int, float64, float64, bool) {
	nFeatures := len(b.X[0])
	features := b.splitFeatures(nFeatures)

	n := len(indices)
	posTotal := 0
	for _, i := range indices {
		if b.y[i] == 1 {
			posTotal++
		}
	}
	parent := giniFromCounts(posTotal, n-posTotal)

	bestFeat := -1
	bestThr := 0.0
	bestImpurity := parent

	type sample struct {
		v   float64
		pos int
	}
	samples := make([]sample, n)

	for _, f := range features {
		for k, i := range indices {
			p := 0
			if b.y[i] == 1 {
				p = 1
			}
			samples[k] = sample{v: b.X[i][f], pos: p}
		}
		sort.Slice(samples, func(a, c int) bool { return samples[a].v < samples[c].v })

		leftPos, leftN := 0, 0
		for k := 0; k < n-1; k++ {
			leftPos += samples[k].pos
			leftN++
			if samples[k].v == samples[k+1].v {
				continue
			}
			rightPos := posTotal - leftPos
			rightN := n - leftN

			impurity := (float64(leftN)*giniFromCounts(leftPos, leftN-leftPos) +
				float64(rightN)*giniFromCounts(rightPos, rightN-rightPos)) / float64(n)
			if impurity < bestImpurity {
				bestImpurity = impurity
				bestFeat = f
				bestThr = (samples[k].v + samples[k+1].v) / 2
			}
		}
	}

	if bestFeat == -1 {
		return -1, 0, 0, false
	}
	return bestFeat, bestThr, parent - bestImpurity, true
}

func (b *treeBuilder) splitFeatures(nFeatures int) []int {
	if b.rng == nil || b.featureSub <= 0 || b.featureSub >= nFeatures {
		all := make([]int, nFeatures)
		for i := range all {
			all[i] = i
		}
		return all
	}
	perm := b.rng.Perm(nFeatures)[:b.featureSub]
	sort.Ints(perm)
	return perm
}

func giniFromCounts(pos, neg int) float64 {
	n := pos + neg
	if n == 0 {
		return 0
	}
	pPos := float64(pos) / float64(n)
	pNeg := float64(neg) / float64(n)
	return 1 - pPos*pPos - pNeg*pNeg
}
