package model

// SVM is a linear support-vector machine trained with Pegasos-style
// subgradient descent on the hinge loss. Samples are visited in a fixed
// order so repeated fits on the same data produce the same weights.
// Probabilities come from a sigmoid over the signed margin.
type SVM struct {
	C       float64   `json:"c"`
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

const svmEpochs = 100

func newSVM(p Params) *SVM {
	return &SVM{C: p.Float("c", 1.0)}
}

func (m *SVM) Fit(X [][]float64, y []int) error {
	if err := validateFit(X, y); err != nil {
		return err
	}

	n := len(X)
	nFeatures := len(X[0])
	m.Weights = make([]float64, nFeatures)
	m.Bias = 0

	lambda := 1 / (m.C * float64(n))
	t := 0

	for epoch := 0; epoch < svmEpochs; epoch++ {
		for i, x := range X {
			t++
			eta := 1 / (lambda * float64(t+n))

			label := float64(y[i])*2 - 1 // {0,1} -> {-1,+1}
			margin := m.Bias
			for j, v := range x {
				margin += m.Weights[j] * v
			}

			shrink := 1 - eta*lambda
			for j := range m.Weights {
				m.Weights[j] *= shrink
			}
			if label*margin < 1 {
				for j, v := range x {
					m.Weights[j] += eta * label * v
				}
				m.Bias += eta * label
			}
		}
	}

	return nil
}

func (m *SVM) Predict(x []float64) int {
	if m.margin(x) >= 0 {
		return 1
	}
	return 0
}

func (m *SVM) Proba(x []float64) float64 {
	return clampProb(sigmoid(m.margin(x)))
}

func (m *SVM) margin(x []float64) float64 {
	z := m.Bias
	for j, v := range x {
		if j >= len(m.Weights) {
			break
		}
		z += m.Weights[j] * v
	}
	return z
}
