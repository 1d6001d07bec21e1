package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheEntry_IsFresh(t *testing.T) {
	stamped := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	entry := NewCacheEntry(stamped, DefaultStats())

	testCases := []struct {
		name     string
		now      time.Time
		expected bool
	}{
		{name: "just written", now: stamped, expected: true},
		{name: "one second before expiry", now: stamped.Add(DefaultTTL - time.Second), expected: true},
		{name: "exactly at ttl", now: stamped.Add(DefaultTTL), expected: false},
		{name: "one hour and one second", now: stamped.Add(DefaultTTL + time.Second), expected: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, entry.IsFresh(tc.now, DefaultTTL))
		})
	}
}

func TestCacheEntry_JSONShape(t *testing.T) {
	entry := NewCacheEntry(time.UnixMilli(1700000000000), RepositoryStats{
		Stars: 100, Version: "v1.0.0", TotalReleases: 2, Contributors: 3, Language: "TypeScript",
	})

	raw, err := json.Marshal(entry)
	require.NoError(t, err)
	assert.JSONEq(t, `{"timestamp":1700000000000,"data":{"stars":100,"version":"v1.0.0","totalReleases":2,"contributors":3,"language":"TypeScript","loading":false,"error":false}}`, string(raw))
}
