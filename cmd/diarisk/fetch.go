package main

import (
	"github.com/spf13/cobra"

	"diarisk/internal/dataset"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the dataset CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		url, _ := cmd.Flags().GetString("url")
		if url == "" {
			url = settings.DataURL
		}
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = settings.DataPath
		}
		return dataset.Fetch(cmd.Context(), url, out)
	},
}

func init() {
	fetchCmd.Flags().String("url", "", "Source URL (defaults to configured data URL)")
	fetchCmd.Flags().String("out", "", "Destination path for the CSV (defaults to configured data path)")
}
