package file

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/starsync/internal/logger"
)

// reloadOps are the events that can change the file's content.
const reloadOps = fsnotify.Create | fsnotify.Write | fsnotify.Rename | fsnotify.Remove

// Watch reloads the configuration whenever the file changes on disk, so
// settings changed by another process reach a long-running one. It blocks
// until ctx is done. onReload, if set, runs after each successful reload.
func (s *ConfigStore) Watch(ctx context.Context, onReload func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// save replaces the file by rename, which drops a watch on the file itself.
	dir := filepath.Dir(s.filePath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != s.filePath || ev.Op&reloadOps == 0 {
				continue
			}
			if err := s.Load(); err != nil {
				logger.Warn("Reloading %s: %v", s.filePath, err)
				continue
			}
			logger.Debug("Reloaded %s", s.filePath)
			if onReload != nil {
				onReload()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watching %s: %v", s.filePath, err)
		}
	}
}
