package model

import "sort"

// RegNode is one node in a flattened regression tree used by the boosting
// ensembles. Leaf values are additive contributions to the ensemble score.
type RegNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	Value      float64 `json:"value"`
	IsLeaf     bool    `json:"is_leaf"`
}

// RegTree is a shallow regression tree fit to gradient targets.
type RegTree struct {
	Nodes []RegNode `json:"nodes"`
}

// Eval returns the leaf value for a row.
func (t *RegTree) Eval(x []float64) float64 {
	if len(t.Nodes) == 0 {
		return 0
	}
	idx := 0
	for {
		node := t.Nodes[idx]
		if node.IsLeaf {
			return node.Value
		}
		if x[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(t.Nodes) {
			return 0
		}
	}
}

// regBuilder grows a regression tree on gradient/hessian statistics. With
// a nil hessian slice, splits maximize variance reduction and leaves hold
// the mean gradient divided by the mean hessian weight of one. With
// hessians, splits use the second-order gain and leaves are
// sum(grad)/(sum(hess)+lambda).
type regBuilder struct {
	X        [][]float64
	grad     []float64
	hess     []float64
	lambda   float64
	maxDepth int
	minSplit int
	gains    []float64
	nodes    []RegNode
}

func (b *regBuilder) build(indices []int, depth int) int {
	idx := len(b.nodes)
	b.nodes = append(b.nodes, RegNode{
		FeatureIdx: -1,
		LeftChild:  -1,
		RightChild: -1,
		Value:      b.leafValue(indices),
		IsLeaf:     true,
	})

	if depth >= b.maxDepth || len(indices) < b.minSplit {
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

	b.gains[feat] += gain

	leftIdx := b.build(left, depth+1)
	rightIdx := b.build(right, depth+1)

	b.nodes[idx].IsLeaf = false
	b.nodes[idx].FeatureIdx = feat
	b.nodes[idx].Threshold = thr
	b.nodes[idx].LeftChild = leftIdx
	b.nodes[idx].RightChild = rightIdx
	return idx
}

func (b *regBuilder) leafValue(indices []int) float64 {
	sumG, sumH := 0.0, 0.0
	for _, i := range indices {
		sumG += b.grad[i]
		if b.hess != nil {
			sumH += b.hess[i]
		} else {
			sumH++
		}
	}
	if sumH+b.lambda == 0 {
		return 0
	}
	return sumG / (sumH + b.lambda)
}

func (b *regBuilder) bestSplit(indices []int) (int, float64, float64, bool) {
	n := len(indices)
	nFeatures := len(b.X[0])

	totalG, totalH := 0.0, 0.0
	for _, i := range indices {
		totalG += b.grad[i]
		if b.hess != nil {
			totalH += b.hess[i]
		} else {
			totalH++
		}
	}
	parentScore := totalG * totalG / (totalH + b.lambda)

	bestFeat := -1
	bestThr := 0.0
	bestGain := 1e-12

	type sample struct {
		v, g, h float64
	}
	samples := make([]sample, n)

	for f := 0; f < nFeatures; f++ {
		for k, i := range indices {
			h := 1.0
			if b.hess != nil {
				h = b.hess[i]
			}
			samples[k] = sample{v: b.X[i][f], g: b.grad[i], h: h}
		}
		sort.Slice(samples, func(a, c int) bool { return samples[a].v < samples[c].v })

		leftG, leftH := 0.0, 0.0
		for k := 0; k < n-1; k++ {
			leftG += samples[k].g
			leftH += samples[k].h
			if samples[k].v == samples[k+1].v {
				continue
			}
			rightG := totalG - leftG
			rightH := totalH - leftH

			gain := leftG*leftG/(leftH+b.lambda) +
				rightG*rightG/(rightH+b.lambda) -
				parentScore
			if gain > bestGain {
				bestGain = gain
				bestFeat = f
				bestThr = (samples[k].v + samples[k+1].v) / 2
			}
		}
	}

	if bestFeat == -1 {
		return -1, 0, 0, false
	}
	return bestFeat, bestThr, bestGain, true
}
