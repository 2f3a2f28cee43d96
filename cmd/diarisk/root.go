package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"diarisk/internal/cfg"
)

// settings is loaded once in the root PersistentPreRunE and read by every
// subcommand.
var settings cfg.Settings

var rootCmd = &cobra.Command{
	Use:   "diarisk",
	Short: "Diabetes risk model selection, tuning, and serving",
	Long: `diarisk trains a panel of binary classifiers on the Pima diabetes
dataset, tunes the best one, and serves its predictions over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath, _ := cmd.Flags().GetString("config"); configPath != "" {
			os.Setenv("CONFIG_FILE", configPath)
		}

		var err error
		settings, err = cfg.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			settings.LogLevel = level
		}
		setupLogging(settings)

		return nil
	},
}

// Execute runs the root command tree.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (overrides CONFIG_FILE env var)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(runsCmd)
}

func setupLogging(s cfg.Settings) {
	level, err := zerolog.ParseLevel(s.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}
	if s.LogFile != "" {
		rotated := &lumberjack.Logger{
			Filename:   s.LogFile,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		out = zerolog.MultiLevelWriter(out, rotated)
	}
	log.Logger = log.Output(out)
}
