// Package cache provides the key-addressed retrieval result cache: entries
// expire after a TTL and the oldest-inserted entry is evicted at capacity.
// Eviction is insertion-ordered, not access-ordered; the access pattern of
// retrieval queries within one session is uniform enough that tracking
// recency would buy nothing.
package cache

import (
	"container/list"
	"encoding/binary"
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"github.com/promptctx/promptctx/schema"
)

const (
	DefaultCapacity = 128
	DefaultTTL      = 5 * time.Minute
)

// Key derives a cache key from the retrieval inputs. Tags are copied and
// sorted first so tag order never affects cache identity. Only hashable
// primitives go in.
func Key(strategy string, tags []string, description string, maxResults int) uint64 {
	sorted := make([]string, len(tags))
	copy(sorted, tags)
	sort.Strings(sorted)

	h := fnv.New64a()
	h.Write([]byte(strategy))
	h.Write([]byte{0})
	for _, t := range sorted {
		h.Write([]byte(t))
		h.Write([]byte{0})
	}
	h.Write([]byte(description))
	h.Write([]byte{0})

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(maxResults))
	h.Write(buf[:])

	return h.Sum64()
}

type entry struct {
	key        uint64
	results    []schema.ScoredItem
	insertedAt time.Time
}

// Cache is a TTL-expiring, capacity-bounded result cache. Each retriever
// owns its own instance; instances are safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	now      func() time.Time

	entries map[uint64]*list.Element
	order   *list.List // front = oldest inserted
}

// New creates a cache with the given TTL.
func New(ttl time.Duration, opts ...Option) *Cache {
	o := applyOptions(opts...)
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		capacity: o.capacity,
		ttl:      ttl,
		now:      o.now,
		entries:  make(map[uint64]*list.Element),
		order:    list.New(),
	}
}

// Get returns the cached results for key. An entry older than the TTL is
// removed on the way out and reported as a miss.
func (c *Cache) Get(key uint64) ([]schema.ScoredItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	e := el.Value.(*entry)
	if c.now().Sub(e.insertedAt) > c.ttl {
		c.removeLocked(el)
		return nil, false
	}
	return e.results, true
}

// Put stores results under key. At capacity the oldest-inserted entry is
// evicted first. Re-putting an existing key refreshes its insertion time.
func (c *Cache) Put(key uint64, results []schema.ScoredItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		c.removeLocked(el)
	}
	for len(c.entries) >= c.capacity {
		oldest := c.order.Front()
		if oldest == nil {
			break
		}
		c.removeLocked(oldest)
	}

	e := &entry{key: key, results: results, insertedAt: c.now()}
	c.entries[key] = c.order.PushBack(e)
}

// Len returns the number of live entries, expired ones included until they
// are lazily collected.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Purge drops every entry.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[uint64]*list.Element)
	c.order.Init()
}

func (c *Cache) removeLocked(el *list.Element) {
	e := el.Value.(*entry)
	delete(c.entries, e.key)
	c.order.Remove(el)
}
