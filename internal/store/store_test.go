package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStores runs the same contract against every backend.
func TestStores(t *testing.T) {
	backends := []struct {
		name string
		open func(t *testing.T) Store
	}{
		{
			name: "memory",
			open: func(t *testing.T) Store { return NewMemoryStore() },
		},
		{
			name: "file",
			open: func(t *testing.T) Store {
				s, err := NewFileStore(filepath.Join(t.TempDir(), "cache"))
				require.NoError(t, err)
				return s
			},
		},
		{
			name: "sqlite in memory",
			open: func(t *testing.T) Store {
				s, err := NewSQLiteStore(":memory:")
				require.NoError(t, err)
				return s
			},
		},
		{
			name: "sqlite on disk",
			open: func(t *testing.T) Store {
				s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "stats.db"))
				require.NoError(t, err)
				return s
			},
		},
	}

	for _, backend := range backends {
		t.Run(backend.name, func(t *testing.T) {
			ctx := context.Background()
			s := backend.open(t)
			defer s.Close()

			_, ok, err := s.Get(ctx, "pvetui_github_stats")
			require.NoError(t, err)
			assert.False(t, ok, "empty store should miss")

			require.NoError(t, s.Set(ctx, "pvetui_github_stats", `{"timestamp":1}`))
			value, ok, err := s.Get(ctx, "pvetui_github_stats")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `{"timestamp":1}`, value)

			// A second write overwrites the first.
			require.NoError(t, s.Set(ctx, "pvetui_github_stats", `{"timestamp":2}`))
			value, _, err = s.Get(ctx, "pvetui_github_stats")
			require.NoError(t, err)
			assert.Equal(t, `{"timestamp":2}`, value)

			require.NoError(t, s.Delete(ctx, "pvetui_github_stats"))
			_, ok, err = s.Get(ctx, "pvetui_github_stats")
			require.NoError(t, err)
			assert.False(t, ok)

			// Deleting a missing key is not an error.
			assert.NoError(t, s.Delete(ctx, "pvetui_github_stats"))
		})
	}
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "key/with/slashes", "value"))

	second, err := NewFileStore(dir)
	require.NoError(t, err)
	value, ok, err := second.Get(ctx, "key/with/slashes")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "value", value)

	matches, err := filepath.Glob(filepath.Join(dir, "*"))
	require.NoError(t, err)
	assert.Len(t, matches, 1, "escaped key stays inside the directory and no temp files remain")
}

func TestOpen(t *testing.T) {
	testCases := []struct {
		name        string
		backend     string
		path        func(t *testing.T) string
		expectError error
	}{
		{name: "memory", backend: BackendMemory, path: func(t *testing.T) string { return "" }},
		{name: "file", backend: BackendFile, path: func(t *testing.T) string { return t.TempDir() }},
		{name: "sqlite", backend: BackendSQLite, path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "s.db") }},
		{name: "unknown", backend: "redis", path: func(t *testing.T) string { return "" }, expectError: ErrUnknownBackend},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := Open(tc.backend, tc.path(t))
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, s.Close())
		})
	}
}
