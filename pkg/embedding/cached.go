package embedding

import (
	"container/list"
	"context"
	"hash/fnv"
	"sync"
)

type lruEntry struct {
	key uint64
	vec []float32
}

// CachedProvider wraps a Provider with an LRU cache keyed on the exact
// text of single-item Embed calls. Batch calls pass through uncached, on
// the theory that batch-embedded content (bulk ingest) is rarely
// repeated while single Embed calls (recall queries) often are.
// Grounded on hieuntg81-alfred-ai's internal/adapter/embedding/cached.go.
type CachedProvider struct {
	inner   Provider
	maxSize int

	mu    sync.RWMutex
	cache map[uint64]*list.Element
	order *list.List
}

// NewCachedProvider wraps inner with an LRU cache of maxSize entries. If
// maxSize <= 0, inner is returned unwrapped.
func NewCachedProvider(inner Provider, maxSize int) Provider {
	if maxSize <= 0 {
		return inner
	}
	return &CachedProvider{
		inner:   inner,
		maxSize: maxSize,
		cache:   make(map[uint64]*list.Element, maxSize),
		order:   list.New(),
	}
}

// Embed implements Provider.
func (c *CachedProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	key := hashText(text)

	c.mu.RLock()
	elem, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		c.mu.Lock()
		c.order.MoveToBack(elem)
		c.mu.Unlock()
		return elem.Value.(*lruEntry).vec, nil
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.put(key, vec)
	c.mu.Unlock()
	return vec, nil
}

// EmbedBatch implements Provider. Batch calls bypass the cache entirely.
func (c *CachedProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return c.inner.EmbedBatch(ctx, texts)
}

// ModelName implements Provider.
func (c *CachedProvider) ModelName() string { return c.inner.ModelName() }

// Dimensions implements Provider.
func (c *CachedProvider) Dimensions() int { return c.inner.Dimensions() }

func hashText(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

// put inserts key/vec, evicting the least-recently-used entry at
// capacity. Caller must hold c.mu for writing.
func (c *CachedProvider) put(key uint64, vec []float32) {
	if elem, exists := c.cache[key]; exists {
		c.order.MoveToBack(elem)
		elem.Value.(*lruEntry).vec = vec
		return
	}
	if c.order.Len() >= c.maxSize {
		oldest := c.order.Front()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.cache, oldest.Value.(*lruEntry).key)
		}
	}
	elem := c.order.PushBack(&lruEntry{key: key, vec: vec})
	c.cache[key] = elem
}
