package train

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"diarisk/internal/dataset"
	"diarisk/internal/metrics"
	"diarisk/internal/model"
)

// TuningFailedError indicates that a grid search produced no usable model,
// either because the search space was empty or every combination failed.
type TuningFailedError struct {
	Variant string
	Reason  string
}

func (e *TuningFailedError) Error() string {
	return fmt.Sprintf("tuning failed for %q: %s", e.Variant, e.Reason)
}

// TunedResult holds the winning configuration of a grid search together
// with its cross-validation score and held-out test accuracy.
type TunedResult struct {
	Variant      string       `json:"variant"`
	Params       model.Params `json:"params"`
	CVMean       float64      `json:"cv_mean"`
	CVStd        float64      `json:"cv_std"`
	TestAccuracy float64      `json:"test_accuracy"`
	Evaluated    int          `json:"evaluated"`
	Scorer       model.Scorer `json:"-"`
}

// Tuner runs an exhaustive grid search over a variant's hyperparameter
// space, scoring each combination by k-fold cross-validation on the
// training split only.
type Tuner struct {
	Workers int
	Folds   int
	Metrics *metrics.Metrics
}

// NewTuner returns a tuner with the given worker and fold counts.
// Workers <= 0 selects one worker per CPU.
func NewTuner(workers, folds int) *Tuner {
	return &Tuner{Workers: workers, Folds: folds}
}

type comboScore struct {
	mean float64
	std  float64
	err  error
}

// Search evaluates every combination in the variant's search space and
// returns the one with the highest mean cross-validation accuracy. Ties
// are broken toward the combination generated first, so results do not
// depend on worker count or scheduling. The winner is refit on the full
// training split and scored once on the test split.
func (t *Tuner) Search(ctx context.Context, v model.Variant, train, test *dataset.Dataset) (*TunedResult, error) {
	combos := v.Space.Combinations()
	if len(combos) == 0 {
		return nil, &TuningFailedError{Variant: v.Name, Reason: "empty search space"}
	}

	workers := t.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	started := time.Now()
	log.Info().
		Str("variant", v.Name).
		Int("combinations", len(combos)).
		Int("folds", t.Folds).
		Int("workers", workers).
		Msg("starting grid search")

	scores := make([]comboScore, len(combos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range combos {
		i := i
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			mean, std, err := CrossValidate(v, combos[i], train.Features, train.Labels, t.Folds)
			scores[i] = comboScore{mean: mean, std: std, err: err}
			if t.Metrics != nil {
				t.Metrics.TuningEvaluations.Inc()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("grid search aborted: %w", err)
	}

	best := -1
	evaluated := 0
	for i, s := range scores {
		if s.err != nil {
			log.Warn().
				Err(s.err).
				Str("variant", v.Name).
				Interface("params", combos[i]).
				Msg("combination failed, excluding from search")
			continue
		}
		evaluated++
		if best < 0 || s.mean > scores[best].mean {
			best = i
		}
	}
	if best < 0 {
		return nil, &TuningFailedError{
			Variant: v.Name,
			Reason:  fmt.Sprintf("all %d combinations failed", len(combos)),
		}
	}

	scorer := v.New(combos[best])
	if err := scorer.Fit(train.Features, train.Labels); err != nil {
		return nil, fmt.Errorf("failed to refit best combination: %w", err)
	}
	testAcc := model.Accuracy(scorer, test.Features, test.Labels)

	if t.Metrics != nil {
		t.Metrics.TuningDuration.Observe(time.Since(started).Seconds())
	}
	log.Info().
		Str("variant", v.Name).
		Interface("params", combos[best]).
		Float64("cv_mean", scores[best].mean).
		Float64("cv_std", scores[best].std).
		Float64("test_accuracy", testAcc).
		Int("evaluated", evaluated).
		Dur("elapsed", time.Since(started)).
		Msg("grid search complete")

	return &TunedResult{
		Variant:      v.Name,
		Params:       combos[best].Clone(),
		CVMean:       scores[best].mean,
		CVStd:        scores[best].std,
		TestAccuracy: testAcc,
		Evaluated:    evaluated,
		Scorer:       scorer,
	}, nil
}
