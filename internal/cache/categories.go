// Package cache holds the TTL-bounded category cache that sits between
// derivations and the store.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/digibook/digibook/internal/common"
	"github.com/digibook/digibook/internal/model"
)

// DefaultCategoryTTL is how long a cached category list stays fresh.
const DefaultCategoryTTL = 30 * time.Second

// Fetcher loads categories from the store on a cache miss.
type Fetcher func(ctx context.Context) ([]model.Category, error)

// ChangeKind labels a cache change notification.
type ChangeKind string

const (
	// ChangeSet means a fresh value was stored.
	ChangeSet ChangeKind = "set"
	// ChangeInvalidate means the cached value was dropped.
	ChangeInvalidate ChangeKind = "invalidate"
)

// ChangeListener receives synchronous cache change notifications.
// Listeners must not trigger further writes during notification.
type ChangeListener func(ChangeKind)

// CategoryCache caches the category list with a TTL. On fetch failure a
// stale value is returned if one exists; the error is logged, not returned.
type CategoryCache struct {
	fetchedAt time.Time
	entries   []model.Category
	listeners []ChangeListener
	ttl       time.Duration
	mu        sync.Mutex
}

// NewCategoryCache creates a cache with the given TTL; zero means the default.
func NewCategoryCache(ttl time.Duration) *CategoryCache {
	if ttl == 0 {
		ttl = DefaultCategoryTTL
	}
	return &CategoryCache{ttl: ttl}
}

// Subscribe registers a listener for set and invalidate notifications.
func (c *CategoryCache) Subscribe(l ChangeListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// Get returns the cached categories when fresh, otherwise fetches and
// stores. When the fetch fails and a stale value exists, the stale value is
// returned and the error logged; with no stale value the error surfaces.
func (c *CategoryCache) Get(ctx context.Context, fetch Fetcher) ([]model.Category, error) {
	c.mu.Lock()

	if c.entries != nil && time.Since(c.fetchedAt) < c.ttl {
		out := c.entries
		c.mu.Unlock()
		return out, nil
	}
	stale := c.entries
	c.mu.Unlock()

	fresh, err := fetch(ctx)
	if err != nil {
		if stale != nil {
			common.LogError(err, "Category fetch failed, serving stale cache", common.Fields{
				"stale_count": len(stale),
			})
			return stale, nil
		}
		return nil, err
	}

	c.mu.Lock()
	c.entries = fresh
	c.fetchedAt = time.Now()
	listeners := append([]ChangeListener(nil), c.listeners...)
	c.mu.Unlock()

	for _, l := range listeners {
		l(ChangeSet)
	}
	return fresh, nil
}

// Invalidate drops the cached value. Every write path that touches
// categories must call this.
func (c *CategoryCache) Invalidate() {
	c.mu.Lock()
	c.entries = nil
	c.fetchedAt = time.Time{}
	listeners := append([]ChangeListener(nil), c.listeners...)
	c.mu.Unlock()

	for _, l := range listeners {
		l(ChangeInvalidate)
	}
}
