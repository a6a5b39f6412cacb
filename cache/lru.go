package cache

import (
	"container/list"
	"context"
	"sync"

	"go.opentelemetry.io/otel/metric"

	"github.com/cerno-sec/cerno/endpoint"
)

// DefaultCapacity is the entry limit used when no capacity is configured.
const DefaultCapacity = 128

// LRU is an in-memory parse-result cache with exact least-recently-used
// eviction: the most recently accessed entry is never evicted while older
// unused entries exist. It implements endpoint.Cache and is safe for
// concurrent use.
type LRU struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front = most recently used
	entries  map[string]*list.Element

	hits   metric.Int64Counter
	misses metric.Int64Counter
}

// lruEntry is the value stored in each list element.
type lruEntry struct {
	key string
	res endpoint.Result
}

// LRUOption configures an LRU cache.
type LRUOption func(*LRU)

// WithMeter attaches OpenTelemetry hit/miss counters to the cache.
// Instrument creation errors are ignored; the cache works without metrics.
func WithMeter(meter metric.Meter) LRUOption {
	return func(c *LRU) {
		if meter == nil {
			return
		}
		c.hits, _ = meter.Int64Counter(
			"endpoint.cache.hits",
			metric.WithDescription("Parse results served from cache"),
			metric.WithUnit("1"),
		)
		c.misses, _ = meter.Int64Counter(
			"endpoint.cache.misses",
			metric.WithDescription("Parse cache lookups that missed"),
			metric.WithUnit("1"),
		)
	}
}

// NewLRU creates a cache holding at most capacity entries. A capacity of
// zero or less falls back to DefaultCapacity.
func NewLRU(capacity int, opts ...LRUOption) *LRU {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &LRU{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element, capacity),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached result for key and marks it most recently used.
func (c *LRU) Get(key string) (endpoint.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		if c.misses != nil {
			c.misses.Add(context.Background(), 1)
		}
		return endpoint.Result{}, false
	}
	c.order.MoveToFront(elem)
	if c.hits != nil {
		c.hits.Add(context.Background(), 1)
	}
	return elem.Value.(*lruEntry).res, true
}

// Put stores the result for key, evicting the least recently used entry
// when the cache is full. Storing an existing key refreshes its value and
// recency.
func (c *LRU) Put(key string, res endpoint.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		elem.Value.(*lruEntry).res = res
		c.order.MoveToFront(elem)
		return
	}

	if c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*lruEntry).key)
		}
	}
	c.entries[key] = c.order.PushFront(&lruEntry{key: key, res: res})
}

// Len returns the current number of cached entries.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Capacity returns the configured entry limit.
func (c *LRU) Capacity() int { return c.capacity }
