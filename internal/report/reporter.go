// Package report renders a training run for people and for the record: a
// console summary of the selection table, tuning outcome, and evaluation,
// plus a JSON report file with the same content.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"diarisk/internal/eval"
	"diarisk/internal/train"
)

// Summary collects everything a training run produced.
type Summary struct {
	RunID        string                `json:"run_id"`
	StartedAt    time.Time             `json:"started_at"`
	DataRows     int                   `json:"data_rows"`
	TrainRows    int                   `json:"train_rows"`
	TestRows     int                   `json:"test_rows"`
	Variants     []train.VariantResult `json:"variants"`
	Best         train.VariantResult   `json:"best"`
	Tuned        *train.TunedResult    `json:"tuned,omitempty"`
	Evaluation   *eval.Report          `json:"evaluation,omitempty"`
	Importances  []eval.Importance     `json:"importances,omitempty"`
	ArtifactPath string                `json:"artifact_path,omitempty"`
}

// Reporter writes a run summary to a console writer and to disk.
type Reporter struct {
	summary *Summary
	out     io.Writer
}

// NewReporter wraps a summary for printing to out.
func NewReporter(summary *Summary, out io.Writer) *Reporter {
	return &Reporter{summary: summary, out: out}
}

// PrintSummary writes the human-readable run report.
func (r *Reporter) PrintSummary() {
	s := r.summary

	fmt.Fprintf(r.out, "\n=== MODEL SELECTION RESULTS ===\n")
	fmt.Fprintf(r.out, "Run: %s  started %s\n", s.RunID, s.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(r.out, "Rows: %d total, %d train, %d test\n\n", s.DataRows, s.TrainRows, s.TestRows)

	fmt.Fprintf(r.out, "%-22s %10s %10s %10s %10s\n", "Variant", "Train Acc", "Test Acc", "CV Mean", "CV Std")
	for _, v := range s.Variants {
		fmt.Fprintf(r.out, "%-22s %10.4f %10.4f %10.4f %10.4f\n",
			v.Name, v.TrainAccuracy, v.TestAccuracy, v.CVMean, v.CVStd)
	}
	fmt.Fprintf(r.out, "\nBest variant: %s (test accuracy %.4f)\n", s.Best.Name, s.Best.TestAccuracy)

	if s.Tuned != nil {
		fmt.Fprintf(r.out, "\n=== TUNED HYPERPARAMETERS ===\n")
		fmt.Fprintf(r.out, "Variant: %s\n", s.Tuned.Variant)
		for _, name := range sortedParamNames(s.Tuned.Params) {
			fmt.Fprintf(r.out, "  %s: %g\n", name, s.Tuned.Params[name])
		}
		fmt.Fprintf(r.out, "CV mean %.4f (std %.4f) over %d combinations\n",
			s.Tuned.CVMean, s.Tuned.CVStd, s.Tuned.Evaluated)
		fmt.Fprintf(r.out, "Test accuracy after refit: %.4f\n", s.Tuned.TestAccuracy)
	}

	if s.Evaluation != nil {
		e := s.Evaluation
		fmt.Fprintf(r.out, "\n=== EVALUATION ===\n")
		fmt.Fprintf(r.out, "Accuracy: %.4f  AUC: %.4f\n\n", e.Accuracy, e.AUC)

		fmt.Fprintf(r.out, "%-14s %10s %10s %10s %10s\n", "Class", "Precision", "Recall", "F1", "Support")
		for _, c := range e.Classes {
			fmt.Fprintf(r.out, "%-14s %10.4f %10.4f %10.4f %10d\n",
				c.Label, c.Precision, c.Recall, c.F1, c.Support)
		}

		fmt.Fprintf(r.out, "\nConfusion matrix:\n")
		fmt.Fprintf(r.out, "%-12s %12s %12s\n", "", "predicted 0", "predicted 1")
		fmt.Fprintf(r.out, "%-12s %12d %12d\n", "actual 0", e.Confusion.TN, e.Confusion.FP)
		fmt.Fprintf(r.out, "%-12s %12d %12d\n", "actual 1", e.Confusion.FN, e.Confusion.TP)
	}

	if len(s.Importances) > 0 {
		fmt.Fprintf(r.out, "\n=== FEATURE IMPORTANCE ===\n")
		for _, imp := range s.Importances {
			fmt.Fprintf(r.out, "%-26s %.4f\n", imp.Feature, imp.Weight)
		}
	}

	if s.ArtifactPath != "" {
		fmt.Fprintf(r.out, "\nArtifact saved to %s\n", s.ArtifactPath)
	}
	fmt.Fprintf(r.out, "===============================\n")
}

// WriteJSON persists the summary next to the run artifacts.
func (r *Reporter) WriteJSON(path string) error {
	data, err := json.MarshalIndent(r.summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	log.Info().Str("file", path).Msg("JSON report generated")
	return nil
}

func sortedParamNames(p map[string]float64) []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
