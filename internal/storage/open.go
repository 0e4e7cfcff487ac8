package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/afero"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open returns the KV backend named by backend rooted at path, plus a closer
// for any handle it holds.
func Open(ctx context.Context, backend, path string) (KV, io.Closer, error) {
	switch backend {
	case "", BackendFile:
		return NewFileStore(afero.NewOsFs(), path), nopCloser{}, nil
	case BackendSQLite:
		store, err := OpenSQLite(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("storage: unknown backend %q", backend)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
