package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"diarisk/internal/predict"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Score feature vectors with the trained model",
	Long: `predict loads the saved artifact and scores feature vectors. With
--features it scores once and exits; without it, an interactive prompt
reads one vector per line until the operator enters q.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPredict(cmd)
	},
}

func init() {
	predictCmd.Flags().String("features", "", `Comma-separated feature values, e.g. "6,148,72,35,0,33.6,0.627,50"`)
	predictCmd.Flags().String("artifact", "", "Path to the model artifact (defaults to configured artifact path)")
}

func runPredict(cmd *cobra.Command) error {
	artifactPath, _ := cmd.Flags().GetString("artifact")
	if artifactPath == "" {
		artifactPath = settings.ArtifactPath
	}

	pred, err := predict.NewFromFile(artifactPath, settings.CacheSize, settings.CacheTTL)
	if err != nil {
		return err
	}

	if raw, _ := cmd.Flags().GetString("features"); raw != "" {
		row, err := parseFeatures(raw)
		if err != nil {
			return err
		}
		result, err := pred.PredictRow(row)
		if err != nil {
			return err
		}
		printResult(cmd.OutOrStdout(), result)
		return nil
	}

	return interactiveLoop(cmd.InOrStdin(), cmd.OutOrStdout(), pred)
}

// interactiveLoop prompts for one feature vector per line and echoes the
// prediction. Invalid input re-prompts; q quits.
func interactiveLoop(in io.Reader, out io.Writer, pred *predict.Predictor) error {
	features := pred.Artifact().Features
	fmt.Fprintf(out, "Interactive prediction. Enter %d comma-separated values, or q to quit.\n", len(features))
	fmt.Fprintf(out, "Feature order: %s\n", strings.Join(features, ", "))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "q") {
			return nil
		}

		row, err := parseFeatures(line)
		if err != nil {
			fmt.Fprintf(out, "Invalid input: %v\n", err)
			continue
		}

		result, err := pred.PredictRow(row)
		if err != nil {
			fmt.Fprintf(out, "Prediction failed: %v\n", err)
			continue
		}
		printResult(out, result)
	}
}

func parseFeatures(raw string) ([]float64, error) {
	parts := strings.Split(raw, ",")
	row := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("not a number: %q", strings.TrimSpace(part))
		}
		row = append(row, v)
	}
	return row, nil
}

func printResult(out io.Writer, r predict.Result) {
	fmt.Fprintf(out, "Prediction:  %s\n", r.Label)
	fmt.Fprintf(out, "Probability: %.4f\n", r.Probability)
	fmt.Fprintf(out, "Confidence:  %.1f%%\n", r.Confidence*100)
	for _, w := range r.Warnings {
		fmt.Fprintf(out, "Warning:     %s\n", w)
	}
	if r.Prediction == 1 {
		fmt.Fprintln(out, "Recommendation: elevated diabetes risk, a clinical follow-up is advisable.")
	} else {
		fmt.Fprintln(out, "Recommendation: low diabetes risk on these measurements.")
	}
}
