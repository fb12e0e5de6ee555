package menu

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource counts loads and can be switched to failing.
type fakeSource struct {
	mu    sync.Mutex
	loads int
	fail  bool
	tree  func() *Tree
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Load(ctx context.Context) (*Tree, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.fail {
		return nil, errors.New("backend down")
	}
	if f.tree != nil {
		return f.tree(), nil
	}
	root := NewNode()
	root.AddChild("Math", NewNode())
	return New(root), nil
}

func (f *fakeSource) setFail(fail bool) {
	f.mu.Lock()
	f.fail = fail
	f.mu.Unlock()
}

func (f *fakeSource) loadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}

func TestCacheLazyLoadAndTTL(t *testing.T) {
	src := &fakeSource{}
	cache := NewCache(src, 5*time.Minute)

	now := time.Now()
	cache.now = func() time.Time { return now }

	assert.False(t, cache.Loaded())

	tree := cache.Tree(context.Background())
	require.NotNil(t, tree)
	assert.Equal(t, 1, src.loadCount())
	assert.True(t, cache.Loaded())

	// within TTL: no new load
	now = now.Add(4 * time.Minute)
	cache.Tree(context.Background())
	assert.Equal(t, 1, src.loadCount())

	// past TTL: refresh
	now = now.Add(2 * time.Minute)
	cache.Tree(context.Background())
	assert.Equal(t, 2, src.loadCount())
}

func TestCacheServesStaleOnFailure(t *testing.T) {
	src := &fakeSource{}
	cache := NewCache(src, 5*time.Minute)

	now := time.Now()
	cache.now = func() time.Time { return now }

	fresh := cache.Tree(context.Background())
	require.NotNil(t, fresh)

	// 4 minutes later the source starts failing; cached tree from before
	// keeps serving unchanged once it expires
	now = now.Add(4 * time.Minute)
	src.setFail(true)

	assert.Equal(t, fresh, cache.Tree(context.Background()))

	now = now.Add(2 * time.Minute) // past TTL, refresh fails
	got := cache.Tree(context.Background())
	assert.Equal(t, fresh, got)
	assert.GreaterOrEqual(t, src.loadCount(), 2)
}

func TestCacheEmptyRootWhenNeverLoaded(t *testing.T) {
	src := &fakeSource{fail: true}
	cache := NewCache(src, time.Minute)

	tree := cache.Tree(context.Background())
	require.NotNil(t, tree)
	assert.Empty(t, tree.Root().Labels())
	assert.False(t, cache.Loaded())
}

func TestCacheForceReload(t *testing.T) {
	src := &fakeSource{}
	cache := NewCache(src, time.Hour)

	cache.Tree(context.Background())
	require.Equal(t, 1, src.loadCount())

	require.NoError(t, cache.Reload(context.Background()))
	assert.Equal(t, 2, src.loadCount())

	src.setFail(true)
	err := cache.Reload(context.Background())
	require.Error(t, err)
	var loadErr *LoadError
	assert.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "fake", loadErr.Source)
}

func TestCacheInvalidate(t *testing.T) {
	src := &fakeSource{}
	cache := NewCache(src, time.Hour)

	cache.Tree(context.Background())
	require.Equal(t, 1, src.loadCount())

	cache.Invalidate()
	cache.Tree(context.Background())
	assert.Equal(t, 2, src.loadCount())
}

func TestCacheConcurrentReadersSeeWholeTrees(t *testing.T) {
	src := &fakeSource{tree: func() *Tree {
		// every load produces a complete two-entry tree
		root := NewNode()
		root.AddChild("A", NewNode())
		root.AddChild("B", NewNode())
		return New(root)
	}}
	cache := NewCache(src, 0) // always stale, refresh on every call

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				tree := cache.Tree(context.Background())
				// atomic swap: never a partially built tree
				assert.Len(t, tree.Root().Labels(), 2)
			}
		}()
	}
	wg.Wait()
}
