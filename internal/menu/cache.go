package menu

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Source loads a complete menu tree from a backend. Load either returns a
// fully resolved tree or an error, never a partial tree.
type Source interface {
	// Name identifies the backend in logs and errors.
	Name() string
	// Load builds a fresh tree. It must not retain or mutate the result
	// after returning.
	Load(ctx context.Context) (*Tree, error)
}

// Cache wraps a Source with a time-to-live. It is read-mostly and shared by
// all user handlers; refresh replaces the tree reference under the lock only
// after the new tree is fully built, so no reader sees partial state.
type Cache struct {
	source Source
	ttl    time.Duration
	now    func() time.Time
	log    *logrus.Entry

	group singleflight.Group

	mu       sync.RWMutex
	tree     *Tree
	loadedAt time.Time
}

// NewCache creates a lazily populated cache. The first Tree call triggers
// a load.
func NewCache(source Source, ttl time.Duration) *Cache {
	return &Cache{
		source: source,
		ttl:    ttl,
		now:    time.Now,
		log:    logrus.WithField("component", "menucache").WithField("source", source.Name()),
	}
}

// Tree returns the current menu tree, refreshing from the source when the
// cached copy is older than the TTL. It never fails: a failed refresh serves
// the stale tree, and an empty root is served when no load ever succeeded.
func (c *Cache) Tree(ctx context.Context) *Tree {
	c.mu.RLock()
	tree, loadedAt := c.tree, c.loadedAt
	c.mu.RUnlock()

	if tree != nil && c.now().Sub(loadedAt) <= c.ttl {
		return tree
	}

	if err := c.refresh(ctx); err != nil {
		c.log.WithError(err).Error("menu refresh failed")
	}

	c.mu.RLock()
	tree = c.tree
	c.mu.RUnlock()

	if tree == nil {
		return Empty()
	}
	return tree
}

// Reload forces a refresh regardless of age. Privileged callers only; the
// error is returned so the caller can tell the user whether it worked.
func (c *Cache) Reload(ctx context.Context) error {
	return c.refresh(ctx)
}

// Invalidate marks the cached tree as expired without dropping it. The next
// Tree call refreshes; until then readers keep the old tree.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.loadedAt = time.Time{}
	c.mu.Unlock()
}

// Loaded reports whether any load has succeeded yet.
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tree != nil
}

// refresh loads a new tree and swaps it in. Concurrent callers share one
// backend load via singleflight.
func (c *Cache) refresh(ctx context.Context) error {
	_, err, _ := c.group.Do("refresh", func() (interface{}, error) {
		tree, err := c.source.Load(ctx)
		if err != nil {
			return nil, NewLoadError(c.source.Name(), err)
		}
		c.mu.Lock()
		c.tree = tree
		c.loadedAt = c.now()
		c.mu.Unlock()
		c.log.Debug("menu tree refreshed")
		return nil, nil
	})
	return err
}
