package datastore

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ownFlushWindow is how recently a flush must have happened for a file event
// to be attributed to the store itself rather than an external editor.
const ownFlushWindow = 2 * time.Second

// Watch reloads the document when the file changes on disk outside our own
// flushes, so the store can be edited by hand while the server runs. The
// parent directory is watched because atomic flushes replace the file inode.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()

		var debounce *time.Timer
		reload := func() {
			if s.sinceLastFlush() < ownFlushWindow {
				return
			}
			if err := s.Reload(); err != nil {
				s.logger.Error("store reload failed", "error", err)
			}
		}

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != filepath.Base(s.path) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				// editors fire several events per save, collapse them
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(100*time.Millisecond, reload)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Error("store watcher error", "error", err)
			case <-ctx.Done():
				return
			}
		}
	}()

	s.logger.Info("watching store file for external changes", "path", s.path)
	return nil
}
