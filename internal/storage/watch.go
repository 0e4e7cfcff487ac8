package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
)

// ErrWatchUnsupported is returned when the store is not backed by the OS
// filesystem.
var ErrWatchUnsupported = errors.New("storage: watch requires the os filesystem")

// Watch publishes external edits to the store directory until ctx is done.
// Writes made through this store are not re-published.
func (s *FileStore) Watch(ctx context.Context) error {
	if _, ok := s.fs.(*afero.OsFs); !ok {
		return ErrWatchUnsupported
	}
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("storage: ensure %s: %w", s.dir, err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("storage: create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(s.dir); err != nil {
		return fmt.Errorf("storage: watch %s: %w", s.dir, err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			s.handleFSEvent(event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("storage: watcher: %w", err)
		}
	}
}

func (s *FileStore) handleFSEvent(event fsnotify.Event) {
	key, ok := keyFromName(filepath.Base(event.Name))
	if !ok {
		return
	}
	switch {
	case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
		data, err := afero.ReadFile(s.fs, event.Name)
		if err != nil {
			return
		}
		if s.wroteLast(key, data) {
			return
		}
		s.Publish(Event{Key: key, Op: OpSet, External: true})
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		if _, err := s.fs.Stat(event.Name); !errors.Is(err, fs.ErrNotExist) {
			return
		}
		if s.deletedLast(key) {
			return
		}
		s.Publish(Event{Key: key, Op: OpDelete, External: true})
	}
}
