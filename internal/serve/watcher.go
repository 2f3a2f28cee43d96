package serve

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// WatchArtifact reloads the predictor whenever the artifact file is
// rewritten. The watch covers the artifact's directory because saves go
// through a temp file and rename, which replaces the watched inode.
// Returns after the watcher is installed; watching stops when ctx ends.
func (s *Server) WatchArtifact(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create artifact watcher: %w", err)
	}

	dir := filepath.Dir(s.cfg.ArtifactPath)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	target := filepath.Clean(s.cfg.ArtifactPath)
	log.Info().Str("path", target).Msg("Watching artifact for changes")

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if err := s.Reload(); err != nil {
					log.Error().Err(err).Msg("Artifact reload failed, keeping current model")
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("Artifact watcher error")
			}
		}
	}()

	return nil
}
