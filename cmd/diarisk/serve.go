package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"diarisk/internal/metrics"
	"diarisk/internal/predict"
	"diarisk/internal/serve"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve predictions over HTTP",
	Long: `serve starts the prediction HTTP server. The artifact file is
watched for changes and swapped in without dropping in-flight requests.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "HTTP port (defaults to configured server port)")
	serveCmd.Flags().String("artifact", "", "Path to the model artifact (defaults to configured artifact path)")
}

func runServe(cmd *cobra.Command) error {
	port, _ := cmd.Flags().GetInt("port")
	if port == 0 {
		port = settings.ServerPort
	}
	artifactPath, _ := cmd.Flags().GetString("artifact")
	if artifactPath == "" {
		artifactPath = settings.ArtifactPath
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	pred, err := predict.NewFromFile(artifactPath, settings.CacheSize, settings.CacheTTL)
	if err != nil {
		log.Warn().Err(err).Str("artifact", artifactPath).
			Msg("No artifact loaded, serving 503 until one appears")
		pred = nil
	} else {
		pred.Metrics = m
	}

	srv := serve.New(pred, serve.Config{
		Port:         port,
		ArtifactPath: artifactPath,
		CacheSize:    settings.CacheSize,
		CacheTTL:     settings.CacheTTL,
	}, m)

	if err := srv.WatchArtifact(ctx); err != nil {
		log.Warn().Err(err).Msg("Artifact watcher unavailable, hot reload disabled")
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	log.Info().
		Int("port", port).
		Str("artifact", artifactPath).
		Msg("HTTP server started")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	log.Info().Msg("Server stopped")
	return nil
}
