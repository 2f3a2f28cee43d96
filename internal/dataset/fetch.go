package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// Fetch downloads the dataset CSV from url and writes it to dest
// atomically. Existing files are replaced.
func Fetch(ctx context.Context, url, dest string) error {
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetRetryCount(3)
	client.SetRetryWaitTime(5 * time.Second)

	log.Info().Str("url", url).Str("dest", dest).Msg("Fetching dataset")

	resp, err := client.R().SetContext(ctx).Get(url)
	if err != nil {
		return fmt.Errorf("failed to fetch dataset: %w", err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("dataset fetch returned status %d", resp.StatusCode())
	}

	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create dataset directory: %w", err)
		}
	}

	tmp := dest + ".tmp"
	if err := os.WriteFile(tmp, resp.Body(), 0o644); err != nil {
		return fmt.Errorf("failed to write dataset file: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move dataset file into place: %w", err)
	}

	log.Info().Int("bytes", len(resp.Body())).Msg("Dataset fetched")
	return nil
}
