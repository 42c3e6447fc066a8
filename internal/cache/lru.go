// Package cache provides the small bounded cache used for per-video subtitle
// manifests. Capacity is fixed at construction; the least-recently-used entry
// is evicted when the cache grows past it.
package cache

import "container/list"

// DefaultCapacity bounds the manifest cache of one content session.
const DefaultCapacity = 10

type entry[K comparable, V any] struct {
	key K
	val V
}

// LRU is a capacity-bounded map with least-recently-used eviction.
// It is not safe for concurrent use; the owning session is single-threaded.
type LRU[K comparable, V any] struct {
	cap   int
	order *list.List
	items map[K]*list.Element
}

// NewLRU returns an empty cache holding at most capacity entries.
// A capacity below one falls back to DefaultCapacity.
func NewLRU[K comparable, V any](capacity int) *LRU[K, V] {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &LRU[K, V]{
		cap:   capacity,
		order: list.New(),
		items: make(map[K]*list.Element, capacity),
	}
}

// Get returns the cached value and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		return el.Value.(entry[K, V]).val, true
	}
	var zero V
	return zero, false
}

// Put stores a value, replacing any existing entry for the key and evicting
// the least-recently-used entry when over capacity.
func (c *LRU[K, V]) Put(key K, val V) {
	if el, ok := c.items[key]; ok {
		el.Value = entry[K, V]{key: key, val: val}
		c.order.MoveToFront(el)
		return
	}

	c.items[key] = c.order.PushFront(entry[K, V]{key: key, val: val})

	if c.order.Len() > c.cap {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(entry[K, V]).key)
	}
}

// Delete removes an entry if present.
func (c *LRU[K, V]) Delete(key K) {
	if el, ok := c.items[key]; ok {
		c.order.Remove(el)
		delete(c.items, key)
	}
}

// Len reports the number of cached entries.
func (c *LRU[K, V]) Len() int {
	return c.order.Len()
}
