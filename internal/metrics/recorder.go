// Package metrics records what the statistics cache does on each resolution.
package metrics

import "time"

// CacheResult is the way a resolution was satisfied.
type CacheResult string

const (
	// CacheHit means a fresh entry was served without a network call.
	CacheHit CacheResult = "hit"
	// CacheRefreshed means the entry was missing or stale and a fetch succeeded.
	CacheRefreshed CacheResult = "refreshed"
	// CacheStaleFallback means the fetch failed and a stale entry was served.
	CacheStaleFallback CacheResult = "stale_fallback"
	// CacheDefaultFallback means the fetch failed with no entry at all.
	CacheDefaultFallback CacheResult = "default_fallback"
)

// Recorder receives statistics cache events.
type Recorder interface {
	ObserveResolve(result CacheResult, d time.Duration)
	IncRequest(endpoint string, ok bool)
	IncCacheError(op string)
}

// NoopRecorder discards everything.
type NoopRecorder struct{}

func (NoopRecorder) ObserveResolve(CacheResult, time.Duration) {}
func (NoopRecorder) IncRequest(string, bool) {}
func (NoopRecorder) IncCacheError(string) {}
