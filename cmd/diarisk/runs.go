package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"diarisk/internal/storage"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded training runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRuns(cmd)
	},
}

func init() {
	runsCmd.Flags().Int("limit", 10, "Maximum number of runs to show (0 for all)")
}

func runRuns(cmd *cobra.Command) error {
	store, err := storage.Open(settings.StorePath)
	if err != nil {
		return fmt.Errorf("failed to open run history: %w", err)
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.ListRuns(limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		return nil
	}

	fmt.Fprintf(out, "%-38s %-20s %-22s %10s %10s %8s\n",
		"ID", "Started", "Variant", "Test Acc", "CV Mean", "AUC")
	for _, r := range runs {
		fmt.Fprintf(out, "%-38s %-20s %-22s %10.4f %10.4f %8.4f\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Variant,
			r.TestAccuracy, r.CVMean, r.AUC)
	}

	return nil
}
