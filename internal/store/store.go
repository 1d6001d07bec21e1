// Package store provides the durable key-value storage the statistics cache
// persists its single entry in.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Store is a string key-value store. Get reports ok=false for a missing key
// rather than returning an error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Supported backend names.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown store backend")

// Open creates the store selected by backend. An empty path selects a
// location under the user cache directory.
func Open(backend, path string) (Store, error) {
	switch backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile:
		if path == "" {
			dir, err := defaultDir()
			if err != nil {
				return nil, err
			}
			path = dir
		}
		return NewFileStore(path)
	case BackendSQLite:
		if path == "" {
			dir, err := defaultDir()
			if err != nil {
				return nil, err
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create cache directory: %w", err)
			}
			path = filepath.Join(dir, "stats.db")
		}
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

func defaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve user cache directory: %w", err)
	}
	return filepath.Join(base, "pvetui-stats"), nil
}
