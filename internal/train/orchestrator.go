package train

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"diarisk/internal/dataset"
	"diarisk/internal/metrics"
	"diarisk/internal/model"
)

// TrainingFailedError reports that no candidate variant could be fitted.
type TrainingFailedError struct {
	Attempted int
}

func (e *TrainingFailedError) Error() string {
	return fmt.Sprintf("training failed: none of %d candidate variants could be fitted", e.Attempted)
}

// VariantResult records one candidate's scores from a selection run.
type VariantResult struct {
	Name          string       `json:"name"`
	TrainAccuracy float64      `json:"train_accuracy"`
	TestAccuracy  float64      `json:"test_accuracy"`
	CVMean        float64      `json:"cv_mean"`
	CVStd         float64      `json:"cv_std"`
	Scorer        model.Scorer `json:"-"`
}

// Orchestrator fits every panel variant, scores each on the training
// split, the held-out test split, and whole-dataset cross-validation, and
// selects the best by test accuracy.
type Orchestrator struct {
	Panel   []model.Variant
	Folds   int
	Metrics *metrics.Metrics
}

// NewOrchestrator returns an orchestrator over the full candidate panel.
func NewOrchestrator(folds int) *Orchestrator {
	return &Orchestrator{Panel: model.Panel(), Folds: folds}
}

// Run trains the panel and returns every successfully fitted variant's
// result plus the best one. Selection takes the strictly highest test
// accuracy; on a tie the variant trained earlier keeps the spot. A
// variant whose fit or cross-validation fails is excluded with a warning
// rather than failing the stage.
//
// Cross-validation deliberately runs over the full dataset rather than
// the training split alone. The test rows therefore contribute to the CV
// estimate as well as the selection score, which overstates
// generalization; the behavior is kept for compatibility with the
// original pipeline.
func (o *Orchestrator) Run(train, test, full *dataset.Dataset) ([]VariantResult, *VariantResult, error) {
	results := make([]VariantResult, 0, len(o.Panel))
	bestIdx := -1
	started := time.Now()

	for _, v := range o.Panel {
		s := v.New(nil)
		if err := s.Fit(train.Features, train.Labels); err != nil {
			log.Warn().Err(err).Str("variant", v.Name).Msg("Variant fit failed, excluding from comparison")
			continue
		}

		cvMean, cvStd, err := CrossValidate(v, nil, full.Features, full.Labels, o.Folds)
		if err != nil {
			log.Warn().Err(err).Str("variant", v.Name).Msg("Cross-validation failed, excluding from comparison")
			continue
		}

		result := VariantResult{
			Name:          v.Name,
			TrainAccuracy: model.Accuracy(s, train.Features, train.Labels),
			TestAccuracy:  model.Accuracy(s, test.Features, test.Labels),
			CVMean:        cvMean,
			CVStd:         cvStd,
			Scorer:        s,
		}
		results = append(results, result)

		log.Info().
			Str("variant", v.Name).
			Float64("train_acc", result.TrainAccuracy).
			Float64("test_acc", result.TestAccuracy).
			Float64("cv_mean", result.CVMean).
			Float64("cv_std", result.CVStd).
			Msg("Variant trained")

		if o.Metrics != nil {
			o.Metrics.VariantTestAccuracy.WithLabelValues(v.Name).Set(result.TestAccuracy)
		}

		if bestIdx == -1 || result.TestAccuracy > results[bestIdx].TestAccuracy {
			bestIdx = len(results) - 1
		}
	}

	if bestIdx == -1 {
		return nil, nil, &TrainingFailedError{Attempted: len(o.Panel)}
	}

	if o.Metrics != nil {
		o.Metrics.TrainingDuration.Observe(time.Since(started).Seconds())
	}

	best := &results[bestIdx]
	log.Info().
		Str("variant", best.Name).
		Float64("test_acc", best.TestAccuracy).
		Msg("Best variant selected")

	return results, best, nil
}
