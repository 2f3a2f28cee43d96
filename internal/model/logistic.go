package model

// Logistic is an L2-regularized logistic regression trained with
// full-batch gradient descent. The c parameter is the inverse
// regularization strength; larger c means weaker regularization.
type Logistic struct {
	C       float64   `json:"c"`
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

const (
	logisticEpochs = 300
	logisticRate   = 0.5
)

func newLogistic(p Params) *Logistic {
	return &Logistic{C: p.Float("c", 1.0)}
}

func (m *Logistic) Fit(X [][]float64, y []int) error {
	if err := validateFit(X, y); err != nil {
		return err
	}

	n := len(X)
	nFeatures := len(X[0])
	m.Weights = make([]float64, nFeatures)
	m.Bias = 0

	lambda := 1 / (m.C * float64(n))
	grad := make([]float64, nFeatures)

	for epoch := 0; epoch < logisticEpochs; epoch++ {
		for j := range grad {
			grad[j] = 0
		}
		gradBias := 0.0

		for i, x := range X {
			z := m.Bias
			for j, v := range x {
				z += m.Weights[j] * v
			}
			diff := sigmoid(z) - float64(y[i])
			for j, v := range x {
				grad[j] += diff * v
			}
			gradBias += diff
		}

		for j := range m.Weights {
			m.Weights[j] -= logisticRate * (grad[j]/float64(n) + lambda*m.Weights[j])
		}
		m.Bias -= logisticRate * gradBias / float64(n)
	}

	return nil
}

func (m *Logistic) Predict(x []float64) int {
	if m.Proba(x) >= 0.5 {
		return 1
	}
	return 0
}

func (m *Logistic) Proba(x []float64) float64 {
	z := m.Bias
	for j, v := range x {
		if j >= len(m.Weights) {
			break
		}
		z += m.Weights[j] * v
	}
	return clampProb(sigmoid(z))
}
