package main

import (
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"diarisk/internal/artifact"
	"diarisk/internal/dataset"
	"diarisk/internal/eval"
	"diarisk/internal/metrics"
	"diarisk/internal/model"
	"diarisk/internal/preprocess"
	"diarisk/internal/report"
	"diarisk/internal/storage"
	"diarisk/internal/train"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Run the full selection and tuning pipeline",
	Long: `train loads the dataset, preprocesses it, compares every candidate
variant, tunes the winner's hyperparameters, evaluates the refitted model,
and saves the resulting artifact.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTrain(cmd)
	},
}

func init() {
	trainCmd.Flags().String("data", "", "Path to the dataset CSV (defaults to configured data path)")
	trainCmd.Flags().String("out", "", "Path for the saved model artifact (defaults to configured artifact path)")
	trainCmd.Flags().String("report", "", "Optional path for a JSON copy of the run report")
}

func runTrain(cmd *cobra.Command) error {
	dataPath, _ := cmd.Flags().GetString("data")
	if dataPath == "" {
		dataPath = settings.DataPath
	}
	outPath, _ := cmd.Flags().GetString("out")
	if outPath == "" {
		outPath = settings.ArtifactPath
	}
	reportPath, _ := cmd.Flags().GetString("report")

	runID := uuid.NewString()
	startedAt := time.Now().UTC()
	m := metrics.New()

	log.Info().
		Str("run_id", runID).
		Str("data", dataPath).
		Int64("seed", settings.Seed).
		Msg("Training pipeline started")

	raw, err := dataset.Load(dataPath)
	if err != nil {
		return err
	}

	prep, err := preprocess.Run(raw, settings.TestFraction, settings.Seed)
	if err != nil {
		return err
	}

	orch := train.NewOrchestrator(settings.Folds)
	orch.Metrics = m
	results, best, err := orch.Run(prep.Train, prep.Test, prep.Full)
	if err != nil {
		return err
	}

	variant, err := model.Lookup(best.Name)
	if err != nil {
		return err
	}

	tuner := train.NewTuner(settings.TuneWorkers, settings.Folds)
	tuner.Metrics = m
	tuned, err := tuner.Search(cmd.Context(), variant, prep.Train, prep.Test)
	if err != nil {
		return err
	}

	evaluation, err := eval.Evaluate(tuned.Scorer, prep.Test)
	if err != nil {
		return err
	}
	importances := eval.Importances(tuned.Scorer, prep.Test, settings.Seed)

	art, err := artifact.New(best.Name, tuned.Params, tuned.Scorer, prep.Train.Columns,
		prep.Cleaner, prep.Scaler, artifact.Meta{
			ID:           runID,
			TrainedAt:    startedAt,
			TestAccuracy: tuned.TestAccuracy,
			CVMean:       tuned.CVMean,
			CVStd:        tuned.CVStd,
		})
	if err != nil {
		return err
	}
	if err := artifact.Save(art, outPath); err != nil {
		return err
	}

	recordRun(storage.RunRecord{
		ID:           runID,
		StartedAt:    startedAt,
		Variant:      best.Name,
		Params:       tuned.Params,
		TestAccuracy: tuned.TestAccuracy,
		CVMean:       tuned.CVMean,
		CVStd:        tuned.CVStd,
		AUC:          evaluation.AUC,
		ArtifactPath: outPath,
	})

	summary := &report.Summary{
		RunID:        runID,
		StartedAt:    startedAt,
		DataRows:     raw.Len(),
		TrainRows:    prep.Train.Len(),
		TestRows:     prep.Test.Len(),
		Variants:     results,
		Best:         *best,
		Tuned:        tuned,
		Evaluation:   evaluation,
		Importances:  importances,
		ArtifactPath: outPath,
	}
	reporter := report.NewReporter(summary, os.Stdout)
	reporter.PrintSummary()
	if reportPath != "" {
		if err := reporter.WriteJSON(reportPath); err != nil {
			return err
		}
	}

	log.Info().
		Str("run_id", runID).
		Dur("elapsed", time.Since(startedAt)).
		Msg("Training pipeline complete")

	return nil
}

// recordRun appends to the run history. History is secondary output, so a
// storage failure logs a warning instead of failing the pipeline.
func recordRun(rec storage.RunRecord) {
	store, err := storage.Open(settings.StorePath)
	if err != nil {
		log.Warn().Err(err).Str("path", settings.StorePath).Msg("Run history unavailable, skipping record")
		return
	}
	defer store.Close()

	if err := store.SaveRun(rec); err != nil {
		log.Warn().Err(err).Msg("Failed to record run")
	}
}
