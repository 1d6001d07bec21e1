package usecase

import (
	"context"
	"sync"

	"github.com/devnullvoid/pvetui-stats/internal/domain"
)

// Tracker holds the statistics for one mount. It starts at the defaults with
// Loading set and is replaced exactly once, when the resolution finishes.
type Tracker struct {
	mu    sync.RWMutex
	stats domain.RepositoryStats
	done  chan struct{}
}

// Mount returns immediately with a loading Tracker and resolves in the background.
// Cancelling ctx does not abort the in-flight requests; they run to completion.
func (s *StatsService) Mount(ctx context.Context) *Tracker {
	t := &Tracker{
		stats: domain.DefaultStats(),
		done:  make(chan struct{}),
	}
	resolveCtx := context.WithoutCancel(ctx)
	go func() {
		stats := s.Resolve(resolveCtx)
		t.mu.Lock()
		t.stats = stats
		t.mu.Unlock()
		close(t.done)
	}()
	return t
}

// Current returns the latest value.
func (t *Tracker) Current() domain.RepositoryStats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.stats
}

// Done is closed once the value has been resolved.
func (t *Tracker) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the value is resolved or ctx ends, and returns the current value either way.
func (t *Tracker) Wait(ctx context.Context) (domain.RepositoryStats, error) {
	select {
	case <-t.done:
		return t.Current(), nil
	case <-ctx.Done():
		return t.Current(), ctx.Err()
	}
}
