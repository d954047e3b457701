// Package lru is a fixed size cache of computed results keyed by 64-bit
// hashes.
package lru

import (
	"container/list"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Key hashes parts into a cache key. Parts are separated, so ("ab", "c") and
// ("a", "bc") give different keys.
func Key(parts ...string) uint64 {
	d := xxhash.New()
	for _, p := range parts {
		d.WriteString(p)
		d.Write([]byte{0})
	}
	return d.Sum64()
}

// Cache is an LRU cache. It is safe for concurrent use. A cache with no
// capacity stores nothing.
type Cache struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	items    map[uint64]*list.Element

	hits, misses int64
}

type entry struct {
	key   uint64
	value interface{}
}

// New returns a cache holding at most capacity entries.
func New(capacity int) *Cache {
	return &Cache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[uint64]*list.Element),
	}
}

// Get returns the value for key and marks it recently used.
func (c *Cache) Get(key uint64) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	c.ll.MoveToFront(el)
	return el.Value.(*entry).value, true
}

// Add stores value under key, evicting the least recently used entry when
// the cache is full.
func (c *Cache) Add(key uint64, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capacity <= 0 {
		return
	}
	if el, ok := c.items[key]; ok {
		el.Value.(*entry).value = value
		c.ll.MoveToFront(el)
		return
	}
	c.items[key] = c.ll.PushFront(&entry{key: key, value: value})
	for c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		c.ll.Remove(oldest)
		delete(c.items, oldest.Value.(*entry).key)
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// Stats is the cache hit ratio.
type Stats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// Stats returns the current hit and miss counts.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Entries: c.ll.Len(), Hits: c.hits, Misses: c.misses}
}
