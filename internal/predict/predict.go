// Package predict serves single-record inference from a loaded model
// artifact: feature reordering, scaling with the artifact's fitted
// parameters, probability scoring, and a TTL-bounded result cache.
package predict

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog/log"

	"diarisk/internal/artifact"
	"diarisk/internal/common"
	"diarisk/internal/metrics"
)

// NotLoadedError indicates a prediction was requested before any model
// artifact was loaded.
type NotLoadedError struct{}

func (e *NotLoadedError) Error() string {
	return "no model artifact loaded"
}

// FeatureOrderError reports a feature vector whose length does not match
// the artifact's stored feature order.
type FeatureOrderError struct {
	Expected int
	Got      int
}

func (e *FeatureOrderError) Error() string {
	return fmt.Sprintf("expected %d features in artifact order, got %d", e.Expected, e.Got)
}

// Result is one prediction with its risk label and confidence. Confidence
// is the model's probability for the predicted class; Probability is
// always the positive (diabetic) class.
type Result struct {
	Prediction  int      `json:"prediction"`
	Label       string   `json:"label"`
	Probability float64  `json:"probability"`
	Confidence  float64  `json:"confidence"`
	Warnings    []string `json:"warnings,omitempty"`
}

// Predictor scores records against one immutable artifact. Safe for
// concurrent use.
type Predictor struct {
	Metrics *metrics.Metrics

	art   *artifact.Artifact
	cache *expirable.LRU[string, Result]
}

// New wraps a loaded artifact. cacheSize <= 0 disables the result cache.
func New(art *artifact.Artifact, cacheSize int, ttl time.Duration) *Predictor {
	p := &Predictor{art: art}
	if cacheSize > 0 {
		p.cache = expirable.NewLRU[string, Result](cacheSize, nil, ttl)
	}
	return p
}

// NewFromFile loads the artifact at path and wraps it.
func NewFromFile(path string, cacheSize int, ttl time.Duration) (*Predictor, error) {
	art, err := artifact.Load(path)
	if err != nil {
		return nil, err
	}
	return New(art, cacheSize, ttl), nil
}

// Artifact returns the artifact behind this predictor.
func (p *Predictor) Artifact() *artifact.Artifact {
	return p.art
}

// PredictRow scores a feature vector already in the artifact's feature
// order. The input slice is not modified.
func (p *Predictor) PredictRow(row []float64) (Result, error) {
	return p.predict(row, nil)
}

// PredictMap scores a named-feature record. Features are reordered to the
// artifact's stored order; absent features substitute zero and add a
// warning to the result rather than failing the call.
func (p *Predictor) PredictMap(record map[string]float64) (Result, error) {
	if p == nil || p.art == nil {
		return Result{}, &NotLoadedError{}
	}

	row := make([]float64, len(p.art.Features))
	var warnings []string
	for i, name := range p.art.Features {
		v, ok := record[name]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("feature %q absent, substituted 0", name))
			log.Warn().Str("feature", name).Msg("Feature absent from record, substituting zero")
			continue
		}
		row[i] = v
	}
	return p.predict(row, warnings)
}

func (p *Predictor) predict(row []float64, warnings []string) (Result, error) {
	started := time.Now()

	if p == nil || p.art == nil {
		return Result{}, &NotLoadedError{}
	}
	if len(row) != len(p.art.Features) {
		p.countFailure()
		return Result{}, &FeatureOrderError{Expected: len(p.art.Features), Got: len(row)}
	}
	for i, v := range row {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			p.countFailure()
			return Result{}, fmt.Errorf("feature %q is not finite", p.art.Features[i])
		}
	}

	scaled, err := p.art.Scaler.TransformRow(row)
	if err != nil {
		p.countFailure()
		return Result{}, fmt.Errorf("failed to scale record: %w", err)
	}

	key := cacheKey(scaled)
	if p.cache != nil {
		if cached, ok := p.cache.Get(key); ok {
			if p.Metrics != nil {
				p.Metrics.CacheHits.Inc()
			}
			cached.Warnings = warnings
			return cached, nil
		}
		if p.Metrics != nil {
			p.Metrics.CacheMisses.Inc()
		}
	}

	proba := p.art.Scorer().Proba(scaled)
	res := Result{
		Prediction:  p.art.Scorer().Predict(scaled),
		Probability: proba,
	}
	if res.Prediction == 1 {
		res.Label = common.LabelPositive
		res.Confidence = proba
	} else {
		res.Label = common.LabelNegative
		res.Confidence = 1 - proba
	}

	if p.cache != nil {
		p.cache.Add(key, res)
	}
	res.Warnings = warnings

	if p.Metrics != nil {
		p.Metrics.ObservePrediction(res.Label, res.Confidence, time.Since(started).Seconds())
	}
	return res, nil
}

func (p *Predictor) countFailure() {
	if p.Metrics != nil {
		p.Metrics.PredictionFailures.Inc()
	}
}

// cacheKey packs the scaled vector's exact bit pattern, so only identical
// post-scaling inputs share a cache entry.
func cacheKey(row []float64) string {
	buf := make([]byte, 8*len(row))
	for i, v := range row {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return string(buf)
}
