package ecs

import (
	"cmp"
	"encoding/binary"
	"iter"
	"slices"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// DefaultQueryTTL is how long a cached query result may be served.
const DefaultQueryTTL = time.Second

// QueryKey identifies a cached query. A single-kind query is keyed by the kind itself.
type QueryKey uint64

// KeyOf returns the cache key for a query over the given kinds. Order does not matter.
func KeyOf(kinds ...ComponentKind) QueryKey {
	if len(kinds) == 1 {
		return QueryKey(kinds[0])
	}

	sorted := slices.Clone(kinds)
	slices.Sort(sorted)

	d := xxhash.New()
	var buf [8]byte
	for _, k := range sorted {
		binary.LittleEndian.PutUint64(buf[:], uint64(k))
		_, _ = d.Write(buf[:])
	}
	return QueryKey(d.Sum64())
}

// QueryResult is an immutable snapshot of the entities matching a query.
type QueryResult struct {
	key        QueryKey
	kinds      []ComponentKind
	entities   []EntityId
	capturedAt time.Time
}

// NewQueryResult wraps a list of entities matching kinds, captured at the given time.
// The result takes ownership of entities.
func NewQueryResult(entities []EntityId, capturedAt time.Time, kinds ...ComponentKind) QueryResult {
	return QueryResult{
		key:        KeyOf(kinds...),
		kinds:      slices.Clone(kinds),
		entities:   entities,
		capturedAt: capturedAt,
	}
}

func (r QueryResult) Key() QueryKey { return r.key }

// Kind returns the primary (first) kind of the query.
func (r QueryResult) Kind() ComponentKind {
	if len(r.kinds) == 0 {
		return 0
	}
	return r.kinds[0]
}

func (r QueryResult) Kinds() []ComponentKind { return slices.Clone(r.kinds) }

// Entities returns a copy of the matching entity ids.
func (r QueryResult) Entities() []EntityId { return slices.Clone(r.entities) }

// All iterates the matching entity ids without copying.
func (r QueryResult) All() iter.Seq[EntityId] { return slices.Values(r.entities) }

func (r QueryResult) Len() int { return len(r.entities) }

func (r QueryResult) Contains(entity EntityId) bool { return slices.Contains(r.entities, entity) }

func (r QueryResult) CapturedAt() time.Time { return r.capturedAt }

// CacheStats counts query cache activity.
type CacheStats struct {
	Entries       int
	Hits          int64
	Misses        int64
	Invalidations int64
}

// QueryCache memoizes query results until they expire or one of their kinds changes.
// It is safe for concurrent use.
type QueryCache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[QueryKey]QueryResult
	links   map[ComponentKind]map[QueryKey]struct{}
	stats   CacheStats
}

// NewQueryCache creates a cache whose entries live for ttl.
func NewQueryCache(ttl time.Duration, now func() time.Time) *QueryCache {
	if now == nil {
		now = time.Now
	}
	return &QueryCache{
		ttl:     ttl,
		now:     now,
		entries: make(map[QueryKey]QueryResult),
		links:   make(map[ComponentKind]map[QueryKey]struct{}),
	}
}

// Get returns the cached result for key if it is younger than the TTL.
func (c *QueryCache) Get(key QueryKey) (QueryResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	result, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		return QueryResult{}, false
	}
	if c.now().Sub(result.capturedAt) >= c.ttl {
		delete(c.entries, key)
		c.stats.Misses++
		return QueryResult{}, false
	}
	c.stats.Hits++
	return result, true
}

// Store caches result, replacing any previous entry with the same key,
// and links every kind of the result to it for invalidation.
func (c *QueryCache) Store(result QueryResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[result.key] = result
	for _, kind := range result.kinds {
		keys, ok := c.links[kind]
		if !ok {
			keys = make(map[QueryKey]struct{}, 1)
			c.links[kind] = keys
		}
		keys[result.key] = struct{}{}
	}
}

// InvalidateKind drops every cached result that depends on kind.
func (c *QueryCache) InvalidateKind(kind ComponentKind) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.links[kind] {
		if _, ok := c.entries[key]; ok {
			delete(c.entries, key)
			c.stats.Invalidations++
		}
	}
	delete(c.links, kind)
}

// InvalidateAll drops every cached result.
func (c *QueryCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.Invalidations += int64(len(c.entries))
	clear(c.entries)
	clear(c.links)
}

func (c *QueryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *QueryCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.stats
	stats.Entries = len(c.entries)
	return stats
}

// Results returns the cached results, fresh or not, ordered by key.
func (c *QueryCache) Results() []QueryResult {
	c.mu.Lock()
	results := make([]QueryResult, 0, len(c.entries))
	for _, r := range c.entries {
		results = append(results, r)
	}
	c.mu.Unlock()

	slices.SortFunc(results, func(a, b QueryResult) int { return cmp.Compare(a.key, b.key) })
	return results
}
