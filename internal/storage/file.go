package storage

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

const blobExt = ".json"

// FileStore keeps one JSON file per key inside a directory.
type FileStore struct {
	Broadcaster

	fs  afero.Fs
	dir string

	mu      sync.Mutex
	written map[string]lastWrite
}

type lastWrite struct {
	sum     [sha256.Size]byte
	deleted bool
}

// NewFileStore creates a store rooted at dir on the given filesystem.
func NewFileStore(fsys afero.Fs, dir string) *FileStore {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &FileStore{fs: fsys, dir: dir, written: make(map[string]lastWrite)}
}

// Dir returns the directory holding the blobs.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+blobExt)
}

// Get implements KV.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("storage: read %s: %w", key, err)
	}
	return data, nil
}

// Set implements KV.
func (s *FileStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	err := WriteFileAtomic(s.fs, s.path(key), value)
	if err == nil {
		s.written[key] = lastWrite{sum: sha256.Sum256(value)}
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.Publish(Event{Key: key, Op: OpSet})
	return nil
}

// Delete implements KV.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	err := s.fs.Remove(s.path(key))
	if err == nil {
		s.written[key] = lastWrite{deleted: true}
	}
	s.mu.Unlock()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("storage: delete %s: %w", key, err)
	}
	s.Publish(Event{Key: key, Op: OpDelete})
	return nil
}

// Keys implements KV.
func (s *FileStore) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("storage: list %s: %w", s.dir, err)
	}
	var keys []string
	for _, entry := range entries {
		if key, ok := keyFromName(entry.Name()); ok && !entry.IsDir() {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// wroteLast reports whether data is exactly what this store last wrote for
// key. The watcher uses it to suppress echoes of its own writes.
func (s *FileStore) wroteLast(key string, data []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.written[key]
	return ok && !last.deleted && last.sum == sha256.Sum256(data)
}

// deletedLast reports whether the last change this store made to key was a
// delete.
func (s *FileStore) deletedLast(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.written[key]
	return ok && last.deleted
}

func keyFromName(name string) (string, bool) {
	if !strings.HasSuffix(name, blobExt) {
		return "", false
	}
	key := strings.TrimSuffix(name, blobExt)
	if ValidateKey(key) != nil {
		return "", false
	}
	return key, true
}
