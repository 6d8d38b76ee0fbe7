// Package history owns the process-wide cache of the user's quiz list,
// shared by the generate and browse surfaces without duplicate fetches.
package history

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/gokatarajesh/wikiquiz/internal/metrics"
	"github.com/gokatarajesh/wikiquiz/internal/quiz"
)

// Fetcher retrieves the full quiz list from the external store.
type Fetcher interface {
	GetHistory(ctx context.Context) ([]quiz.Quiz, error)
}

const flightKey = "quiz-history"

// Coordinator is a lazily populated, invalidate-on-mutation cache of the
// quiz list. Consumers see either the previous complete list or the new
// complete list; the slice is always replaced whole, never patched in place.
type Coordinator struct {
	fetcher Fetcher
	logger  zerolog.Logger
	group   singleflight.Group

	mu     sync.RWMutex
	items  []quiz.Quiz
	loaded bool
	// gen is bumped by Invalidate; a fetch that started under an older
	// generation must not re-mark the cache loaded.
	gen uint64
}

// NewCoordinator builds a coordinator over the given fetcher.
func NewCoordinator(fetcher Fetcher, logger zerolog.Logger) *Coordinator {
	return &Coordinator{
		fetcher: fetcher,
		logger:  logger.With().Str("component", "history").Logger(),
	}
}

// EnsureLoaded populates the cache on first need and is a no-op once
// loaded, so every consumer can call it on mount. Concurrent callers before
// the first fetch resolves share a single in-flight fetch.
func (c *Coordinator) EnsureLoaded(ctx context.Context) ([]quiz.Quiz, error) {
	c.mu.RLock()
	if c.loaded {
		items := c.items
		c.mu.RUnlock()
		return items, nil
	}
	c.mu.RUnlock()
	return c.refresh(ctx)
}

// InvalidateAndReload forces a re-fetch regardless of loaded state. Called
// after any attempt is saved or quiz generated so scores and timestamps in
// history stay current.
func (c *Coordinator) InvalidateAndReload(ctx context.Context) error {
	c.Invalidate()
	_, err := c.refresh(ctx)
	return err
}

// Invalidate marks the cache stale without fetching; the next EnsureLoaded
// re-fetches.
func (c *Coordinator) Invalidate() {
	c.mu.Lock()
	c.loaded = false
	c.gen++
	c.mu.Unlock()
	// A lazy fetch already in flight predates this invalidation. Forget
	// it so a forced reload starts a fresh fetch instead of joining the
	// stale one.
	c.group.Forget(flightKey)
}

// refresh funnels all fetches through one singleflight key so duplicate
// requests collapse onto the same outcome.
func (c *Coordinator) refresh(ctx context.Context) ([]quiz.Quiz, error) {
	result, err, _ := c.group.Do(flightKey, func() (interface{}, error) {
		// A caller that raced a just-finished load does not fetch again.
		c.mu.RLock()
		if c.loaded {
			items := c.items
			c.mu.RUnlock()
			return items, nil
		}
		gen := c.gen
		c.mu.RUnlock()

		metrics.HistoryRefreshes.Inc()
		items, err := c.fetcher.GetHistory(ctx)
		if err != nil {
			// Cache keeps its previous state; loaded stays false so
			// the next consumer retries.
			metrics.HistoryFetchFailures.Inc()
			c.logger.Error().Err(err).Msg("history fetch failed")
			return nil, fmt.Errorf("fetch history: %w", err)
		}
		c.mu.Lock()
		// An invalidation that arrived mid-fetch outranks this result:
		// callers of the old flight still get their list, but the cache
		// stays stale until the post-invalidation fetch lands.
		if gen == c.gen {
			c.items = items
			c.loaded = true
		}
		c.mu.Unlock()
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	items, _ := result.([]quiz.Quiz)
	return items, nil
}

// Items returns the current snapshot without triggering a fetch.
func (c *Coordinator) Items() []quiz.Quiz {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.items
}

// Loaded reports whether the cache holds a successfully fetched list.
func (c *Coordinator) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}
