package oracle

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"
)

type pairKey struct {
	a, b string
}

type cacheNode struct {
	key  pairKey
	next *cacheNode
}

// Cached wraps an Oracle with a bounded, FIFO-evicted cache of Cmp
// results. Comparisons a given range query makes against a node's
// pivots recur across nearby queries, so a small comparison cache in
// front of any oracle cuts real round-trip traffic without the tree
// itself needing to know caching happened. Sort and Partition are bulk
// operations already expected to amortize their own round trips and are
// passed straight through to the underlying oracle.
type Cached struct {
	mtx    sync.RWMutex
	target int
	under  Oracle

	items map[pairKey]Ordering
	head  *cacheNode
	tail  *cacheNode
	size  int

	hits   atomic.Uint64
	misses atomic.Uint64

	metricsOnce sync.Once
}

// NewCached wraps under with a comparison cache holding up to target
// entries.
func NewCached(under Oracle, target int) *Cached {
	return &Cached{
		target: target,
		under:  under,
		items:  make(map[pairKey]Ordering, target),
	}
}

// normalize returns a canonical (key, flip) pair for comparing a and b:
// flip reports whether the caller's (a, b) order is the reverse of the
// cached (key.a, key.b) order, so the cached Ordering must be negated.
func normalize(a, b CT) (pairKey, bool) {
	if bytes.Compare(a, b) <= 0 {
		return pairKey{string(a), string(b)}, false
	}
	return pairKey{string(b), string(a)}, true
}

func flip(o Ordering) Ordering {
	switch o {
	case Less:
		return Greater
	case Greater:
		return Less
	default:
		return Equal
	}
}

func (c *Cached) Cmp(ctx context.Context, a, b CT) (Ordering, error) {
	key, flipped := normalize(a, b)

	c.mtx.RLock()
	ord, ok := c.items[key]
	c.mtx.RUnlock()

	if ok {
		c.hits.Add(1)
		if flipped {
			return flip(ord), nil
		}
		return ord, nil
	}
	c.misses.Add(1)

	canonA, canonB := a, b
	if flipped {
		canonA, canonB = b, a
	}
	ord, err := c.under.Cmp(ctx, canonA, canonB)
	if err != nil {
		return 0, err
	}

	c.put(key, ord)
	if flipped {
		return flip(ord), nil
	}
	return ord, nil
}

func (c *Cached) put(key pairKey, ord Ordering) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if _, ok := c.items[key]; ok {
		c.items[key] = ord
		return
	}

	if c.size == c.target && c.head != nil {
		delete(c.items, c.head.key)
		c.head = c.head.next
		c.size--
	}

	n := &cacheNode{key: key}
	if c.head == nil {
		c.head = n
		c.tail = n
	} else {
		c.tail.next = n
		c.tail = n
	}
	c.items[key] = ord
	c.size++
}

func (c *Cached) Sort(ctx context.Context, items []CT) ([]CT, error) {
	return c.under.Sort(ctx, items)
}

func (c *Cached) Partition(ctx context.Context, items []CT, pivots []CT) ([]int, error) {
	return c.under.Partition(ctx, items, pivots)
}

// Stats returns the cache's hit/miss/current-size counters.
func (c *Cached) Stats() (hits, misses uint64, size int) {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return c.hits.Load(), c.misses.Load(), c.size
}
