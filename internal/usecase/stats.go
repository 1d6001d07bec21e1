// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/devnullvoid/pvetui-stats/internal/domain"
	"github.com/devnullvoid/pvetui-stats/internal/gateway"
	"github.com/devnullvoid/pvetui-stats/internal/metrics"
	"github.com/devnullvoid/pvetui-stats/internal/store"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

// StatsService is the use case for serving repository statistics.
// It keeps a single cached entry fresh for TTL and falls back to stale data
// or static defaults when GitHub cannot be reached.
type StatsService struct {
	fetcher  gateway.Fetcher
	store    store.Store
	owner    string
	repo     string
	ttl      time.Duration
	clock    clockwork.Clock
	recorder metrics.Recorder
	logger   *log.Logger
}

// Option customizes a StatsService.
type Option func(*StatsService)

// WithTTL overrides domain.DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(s *StatsService) { s.ttl = ttl }
}

// WithClock replaces the real clock, mainly for tests.
func WithClock(clock clockwork.Clock) Option {
	return func(s *StatsService) { s.clock = clock }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(recorder metrics.Recorder) Option {
	return func(s *StatsService) {
		if recorder != nil {
			s.recorder = recorder
		}
	}
}

// NewStatsService creates a new StatsService instance.
func NewStatsService(fetcher gateway.Fetcher, st store.Store, owner, repo string, logger *log.Logger, opts ...Option) *StatsService {
	s := &StatsService{
		fetcher:  fetcher,
		store:    st,
		owner:    owner,
		repo:     repo,
		ttl:      domain.DefaultTTL,
		clock:    clockwork.NewRealClock(),
		recorder: metrics.NoopRecorder{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// errRepositoryUnavailable marks the batch as failed when the metadata request did not succeed.
var errRepositoryUnavailable = errors.New("repository metadata unavailable")

// Resolve returns the statistics, preferring a fresh cache entry, then live
// data, then a stale entry, then the defaults. It never fails; Error is set
// on the result when only the defaults were available.
func (s *StatsService) Resolve(ctx context.Context) domain.RepositoryStats {
	start := s.clock.Now()

	cached := s.readCache(ctx)
	if cached != nil && cached.IsFresh(start, s.ttl) {
		s.logger.Printf("Usecase: Serving cached stats (age %s).", cached.Age(start).Truncate(time.Second))
		data := cached.Data
		data.Loading = false
		s.recorder.ObserveResolve(metrics.CacheHit, s.clock.Since(start))
		return data
	}

	fresh, err := s.fetch(ctx)
	if err != nil {
		s.logger.Printf("Usecase: Error fetching GitHub stats: %v", err)
		if cached != nil {
			s.logger.Println("Usecase: Falling back to stale cache.")
			s.recorder.ObserveResolve(metrics.CacheStaleFallback, s.clock.Since(start))
			return cached.Data
		}
		fallback := domain.DefaultStats()
		fallback.Loading = false
		fallback.Error = true
		s.recorder.ObserveResolve(metrics.CacheDefaultFallback, s.clock.Since(start))
		return fallback
	}

	s.writeCache(ctx, fresh)
	s.recorder.ObserveResolve(metrics.CacheRefreshed, s.clock.Since(start))
	return fresh
}

// Entry returns the raw cache entry, or nil when there is none or it cannot be decoded.
func (s *StatsService) Entry(ctx context.Context) *domain.CacheEntry {
	return s.readCache(ctx)
}

// Invalidate removes the cache entry so the next Resolve fetches.
func (s *StatsService) Invalidate(ctx context.Context) error {
	if err := s.store.Delete(ctx, domain.CacheKey); err != nil {
		return fmt.Errorf("failed to clear cached stats: %w", err)
	}
	return nil
}

// TTL reports how long entries are considered fresh.
func (s *StatsService) TTL() time.Duration { return s.ttl }

// Now reports the service clock's current time.
func (s *StatsService) Now() time.Time { return s.clock.Now() }

func (s *StatsService) readCache(ctx context.Context) *domain.CacheEntry {
	raw, ok, err := s.store.Get(ctx, domain.CacheKey)
	if err != nil {
		s.logger.Printf("Usecase: Failed to read cached stats: %v", err)
		s.recorder.IncCacheError("read")
		return nil
	}
	if !ok {
		return nil
	}
	var entry domain.CacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		s.logger.Printf("Usecase: Failed to parse cached stats: %v", err)
		s.recorder.IncCacheError("decode")
		return nil
	}
	return &entry
}

func (s *StatsService) writeCache(ctx context.Context, data domain.RepositoryStats) {
	raw, err := json.Marshal(domain.NewCacheEntry(s.clock.Now(), data))
	if err != nil {
		s.logger.Printf("Usecase: Failed to encode stats for cache: %v", err)
		s.recorder.IncCacheError("encode")
		return
	}
	if err := s.store.Set(ctx, domain.CacheKey, string(raw)); err != nil {
		s.logger.Printf("Usecase: Failed to write cached stats: %v", err)
		s.recorder.IncCacheError("write")
	}
}

// fetch issues the four GitHub requests concurrently and derives the stats once all of them have settled.
func (s *StatsService) fetch(ctx context.Context) (domain.RepositoryStats, error) {
	s.logger.Printf("Usecase: Fetching stats for %s/%s...", s.owner, s.repo)

	var (
		info                                *gateway.RepositoryInfo
		tag                                 string
		contributorCount, releaseCount      *gateway.Count
		infoErr, tagErr, contribErr, relErr error
	)

	// A plain errgroup: no shared context, so one failing request never cancels the others.
	// Only the metadata request fails the batch; the others fall back field by field.
	var eg errgroup.Group

	eg.Go(func() error {
		info, infoErr = s.fetcher.FetchRepository(ctx, s.owner, s.repo)
		s.recorder.IncRequest("repository", infoErr == nil)
		return infoErr
	})

	eg.Go(func() error {
		tag, tagErr = s.fetcher.FetchLatestRelease(ctx, s.owner, s.repo)
		s.recorder.IncRequest("latest_release", tagErr == nil)
		return nil
	})

	eg.Go(func() error {
		contributorCount, contribErr = s.fetcher.FetchContributorCount(ctx, s.owner, s.repo)
		s.recorder.IncRequest("contributors", contribErr == nil)
		return nil
	})

	eg.Go(func() error {
		releaseCount, relErr = s.fetcher.FetchReleaseCount(ctx, s.owner, s.repo)
		s.recorder.IncRequest("releases", relErr == nil)
		return nil
	})

	if err := eg.Wait(); err != nil {
		return domain.RepositoryStats{}, fmt.Errorf("%w: %w", errRepositoryUnavailable, err)
	}
	if info == nil {
		return domain.RepositoryStats{}, errRepositoryUnavailable
	}

	defaults := domain.DefaultStats()
	stats := domain.RepositoryStats{
		Stars:         info.Stars,
		Version:       defaults.Version,
		TotalReleases: deriveCount(releaseCount, relErr, defaults.TotalReleases),
		Contributors:  deriveCount(contributorCount, contribErr, defaults.Contributors),
		Language:      info.Language,
	}
	if stats.Language == "" {
		stats.Language = defaults.Language
	}
	if tagErr == nil && tag != "" {
		stats.Version = tag
	} else if tagErr != nil {
		s.logger.Printf("Usecase: Keeping default version: %v", tagErr)
	}
	if contribErr != nil {
		s.logger.Printf("Usecase: Keeping default contributor count: %v", contribErr)
	}
	if relErr != nil {
		s.logger.Printf("Usecase: Keeping default release count: %v", relErr)
	}

	s.logger.Println("Usecase: All stats fetched successfully.")
	return stats, nil
}

// deriveCount prefers the rel="last" page number, since one item is requested per page.
// Without it the returned list is the whole list. A failed request keeps fallback.
func deriveCount(count *gateway.Count, err error, fallback int) int {
	if err != nil || count == nil {
		return fallback
	}
	if count.LastPage > 0 {
		return count.LastPage
	}
	return count.Items
}
