// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

// CacheKey is the single storage key the statistics are persisted under.
const CacheKey = "pvetui_github_stats"

// DefaultTTL is how long a cache entry is served without refreshing it.
const DefaultTTL = time.Hour

// RepositoryStats holds the public statistics of the tracked repository.
// It is the core domain entity of this application.
type RepositoryStats struct {
	Stars         int    `json:"stars"`
	Version       string `json:"version"`
	TotalReleases int    `json:"totalReleases"`
	Contributors  int    `json:"contributors"`
	Language      string `json:"language"`
	Loading       bool   `json:"loading"`
	Error         bool   `json:"error"`
}

// DefaultStats returns the static fallback values shown before (or instead of)
// live data. Loading is true because this is the value a fresh mount starts with.
func DefaultStats() RepositoryStats {
	return RepositoryStats{
		Stars:         549,
		Version:       "v1.0.16",
		TotalReleases: 31,
		Contributors:  6,
		Language:      "Go",
		Loading:       true,
		Error:         false,
	}
}

// CacheEntry is the persisted form of RepositoryStats.
// Timestamp is milliseconds since the Unix epoch.
type CacheEntry struct {
	Timestamp int64           `json:"timestamp"`
	Data      RepositoryStats `json:"data"`
}

// NewCacheEntry stamps stats with the given time.
func NewCacheEntry(now time.Time, data RepositoryStats) CacheEntry {
	return CacheEntry{Timestamp: now.UnixMilli(), Data: data}
}

// Age reports how old the entry is relative to now.
func (e CacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(time.UnixMilli(e.Timestamp))
}

// IsFresh reports whether the entry is younger than ttl.
func (e CacheEntry) IsFresh(now time.Time, ttl time.Duration) bool {
	return e.Age(now) < ttl
}
