package http

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchArtifact reloads the pipeline whenever a new artifact lands at the
// configured path. Training writes the file with a temp-and-rename, so a
// rename or create on the watched directory signals a complete new artifact.
func (s *ServiceState) WatchArtifact(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(s.modelPath)
	if err := watcher.Add(dir); err != nil {
		return err
	}
	base := filepath.Base(s.modelPath)
	s.logger.Info("watching artifact directory", zap.String("dir", dir), zap.String("artifact", base))

	// Debounce: editors and renames can fire several events per swap.
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(200 * time.Millisecond)

		case <-pending:
			pending = nil
			if err := s.LoadArtifact(); err != nil {
				s.logger.Warn("artifact reload failed, keeping previous model", zap.Error(err))
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("artifact watcher error", zap.Error(err))
		}
	}
}
