// Package model holds the fixed panel of candidate classifier variants,
// their hyperparameter search spaces, and the trainable scorer
// implementations behind them.
package model

import (
	"encoding/json"
	"fmt"
	"math"
)

// Scorer is the capability interface every classifier variant implements.
// Fit trains on feature rows with binary labels; Predict returns the class
// for a single row; Proba returns the positive-class probability.
type Scorer interface {
	Fit(X [][]float64, y []int) error
	Predict(x []float64) int
	Proba(x []float64) float64
}

// FeatureImporter is implemented by scorers that expose per-feature
// importance weights.
type FeatureImporter interface {
	Importances() []float64
}

// Params maps hyperparameter names to values. Integer-valued parameters
// are stored as float64 and truncated on access.
type Params map[string]float64

// Float returns the named parameter or def when absent.
func (p Params) Float(name string, def float64) float64 {
	if v, ok := p[name]; ok {
		return v
	}
	return def
}

// Int returns the named parameter as an int or def when absent.
func (p Params) Int(name string, def int) int {
	if v, ok := p[name]; ok {
		return int(v)
	}
	return def
}

// Clone returns an independent copy.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Dimension is one hyperparameter axis of a search space: a name and the
// ordered values to try.
type Dimension struct {
	Name   string
	Values []float64
}

// SearchSpace is an ordered list of dimensions. Enumeration order of the
// Cartesian product is fixed by the dimension order and the value order
// within each dimension.
type SearchSpace []Dimension

// Size returns the number of combinations in the Cartesian product.
func (s SearchSpace) Size() int {
	if len(s) == 0 {
		return 0
	}
	n := 1
	for _, d := range s {
		n *= len(d.Values)
	}
	return n
}

// Combinations enumerates the full Cartesian product in deterministic
// order: the last dimension varies fastest.
func (s SearchSpace) Combinations() []Params {
	if s.Size() == 0 {
		return nil
	}

	out := make([]Params, 0, s.Size())
	current := make(Params, len(s))

	var expand func(depth int)
	expand = func(depth int) {
		if depth == len(s) {
			out = append(out, current.Clone())
			return
		}
		for _, v := range s[depth].Values {
			current[s[depth].Name] = v
			expand(depth + 1)
		}
	}
	expand(0)

	return out
}

// UnknownVariantError reports a registry lookup with a name outside the
// fixed panel.
type UnknownVariantError struct {
	Name string
}

func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("unknown model variant %q", e.Name)
}

// Variant is one candidate entry in the panel: a named scorer factory with
// default parameters and a hyperparameter search space.
type Variant struct {
	Name     string
	Defaults Params
	Space    SearchSpace

	factory func(Params) Scorer
	decode  func(json.RawMessage) (Scorer, error)
}

// New returns an untrained scorer configured with the given parameters.
// Missing parameters fall back to the variant defaults.
func (v Variant) New(p Params) Scorer {
	merged := v.Defaults.Clone()
	for k, val := range p {
		merged[k] = val
	}
	return v.factory(merged)
}

var panel = []Variant{
	{
		Name:     "Logistic Regression",
		Defaults: Params{"c": 1.0},
		Space: SearchSpace{
			{Name: "c", Values: []float64{0.01, 0.1, 1, 10}},
		},
		factory: func(p Params) Scorer { return newLogistic(p) },
		decode:  decodeInto(func() Scorer { return &Logistic{} }),
	},
	{
		Name:     "KNN",
		Defaults: Params{"k": 5},
		Space: SearchSpace{
			{Name: "k", Values: []float64{3, 5, 7, 9, 11}},
		},
		factory: func(p Params) Scorer { return newKNN(p) },
		decode:  decodeInto(func() Scorer { return &KNN{} }),
	},
	{
		Name:     "SVM",
		Defaults: Params{"c": 1.0},
		Space: SearchSpace{
			{Name: "c", Values: []float64{0.1, 1, 10, 100}},
		},
		factory: func(p Params) Scorer { return newSVM(p) },
		decode:  decodeInto(func() Scorer { return &SVM{} }),
	},
	{
		Name:     "Decision Tree",
		Defaults: Params{"max_depth": 5, "min_samples_split": 2},
		Space: SearchSpace{
			{Name: "max_depth", Values: []float64{3, 5, 7, 10}},
			{Name: "min_samples_split", Values: []float64{2, 5, 10}},
		},
		factory: func(p Params) Scorer { return newTree(p) },
		decode:  decodeInto(func() Scorer { return &Tree{} }),
	},
	{
		Name:     "Random Forest",
		Defaults: Params{"n_estimators": 100, "max_depth": 10},
		Space: SearchSpace{
			{Name: "n_estimators", Values: []float64{50, 100, 200}},
			{Name: "max_depth", Values: []float64{5, 10}},
		},
		factory: func(p Params) Scorer { return newForest(p) },
		decode:  decodeInto(func() Scorer { return &Forest{} }),
	},
	{
		Name:     "Gradient Boosting",
		Defaults: Params{"n_estimators": 100, "learning_rate": 0.1, "max_depth": 3},
		Space: SearchSpace{
			{Name: "n_estimators", Values: []float64{50, 100}},
			{Name: "learning_rate", Values: []float64{0.05, 0.1, 0.2}},
			{Name: "max_depth", Values: []float64{2, 3}},
		},
		factory: func(p Params) Scorer { return newGBM(p) },
		decode:  decodeInto(func() Scorer { return &GBM{} }),
	},
	{
		Name:     "XGBoost",
		Defaults: Params{"n_estimators": 100, "learning_rate": 0.1, "max_depth": 3, "lambda": 1.0},
		Space: SearchSpace{
			{Name: "n_estimators", Values: []float64{50, 100}},
			{Name: "learning_rate", Values: []float64{0.05, 0.1}},
			{Name: "max_depth", Values: []float64{3, 5}},
			{Name: "lambda", Values: []float64{1, 10}},
		},
		factory: func(p Params) Scorer { return newXGB(p) },
		decode:  decodeInto(func() Scorer { return &XGB{} }),
	},
}

// Panel returns the fixed candidate panel in its canonical order.
func Panel() []Variant {
	out := make([]Variant, len(panel))
	copy(out, panel)
	return out
}

// Lookup returns the named variant.
func Lookup(name string) (Variant, error) {
	for _, v := range panel {
		if v.Name == name {
			return v, nil
		}
	}
	return Variant{}, &UnknownVariantError{Name: name}
}

// Space returns the search space for the named variant.
func Space(name string) (SearchSpace, error) {
	v, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return v.Space, nil
}

// Encode serializes a fitted scorer's state for persistence.
func Encode(s Scorer) (json.RawMessage, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode scorer: %w", err)
	}
	return raw, nil
}

// Decode reconstructs a fitted scorer of the named variant from its
// serialized state.
func Decode(name string, raw json.RawMessage) (Scorer, error) {
	v, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return v.decode(raw)
}

func decodeInto(blank func() Scorer) func(json.RawMessage) (Scorer, error) {
	return func(raw json.RawMessage) (Scorer, error) {
		s := blank()
		if err := json.Unmarshal(raw, s); err != nil {
			return nil, fmt.Errorf("failed to decode scorer state: %w", err)
		}
		return s, nil
	}
}

// Accuracy scores a fitted scorer on labeled rows.
func Accuracy(s Scorer, X [][]float64, y []int) float64 {
	if len(X) == 0 {
		return 0
	}
	correct := 0
	for i, x := range X {
		if s.Predict(x) == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(X))
}

// sigmoid maps a margin to (0, 1).
func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// clampProb keeps probabilities strictly inside (0, 1) so downstream
// confidence values never report absolute certainty.
func clampProb(p float64) float64 {
	const eps = 1e-9
	if p < eps {
		return eps
	}
	if p > 1-eps {
		return 1 - eps
	}
	return p
}

func validateFit(X [][]float64, y []int) error {
	if len(X) == 0 || len(y) == 0 {
		return fmt.Errorf("empty training data")
	}
	if len(X) != len(y) {
		return fmt.Errorf("feature rows and labels differ in length: %d vs %d", len(X), len(y))
	}
	return nil
}
