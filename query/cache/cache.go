// Package cache provides LRU result caching keyed by query fingerprints.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/satishbabariya/querykit/query/ast"
)

// Cache stores query results under fingerprint keys.
type Cache interface {
	// Get retrieves a value. The second return reports a fresh hit.
	Get(key string) (any, bool)
	// Set stores a value. A zero ttl applies the cache default; a
	// negative ttl stores without expiry.
	Set(key string, value any, ttl time.Duration)
	// Invalidate removes one key.
	Invalidate(key string)
	// InvalidatePattern removes every key matching a segment pattern,
	// e.g. "employees:*".
	InvalidatePattern(pattern string)
	// Clear removes all entries and resets statistics.
	Clear()
	// Stats returns a snapshot of cache statistics.
	Stats() Stats
}

// Stats is a point-in-time view of cache behavior.
type Stats struct {
	Hits      int64
	Misses    int64
	Size      int
	MaxSize   int
	Evictions int64
	HitRate   float64
}

// LRUCache is a fixed-capacity cache with per-entry TTL. Entries are
// evicted least-recently-used first. Safe for concurrent use.
type LRUCache struct {
	mu         sync.Mutex
	data       map[string]*node
	maxSize    int
	defaultTTL time.Duration
	head       *node
	tail       *node
	hits       int64
	misses     int64
	evictions  int64
}

type node struct {
	key       string
	value     any
	expiresAt time.Time
	prev      *node
	next      *node
}

// NewLRU returns a cache holding at most maxSize entries, each expiring
// after defaultTTL unless Set overrides it.
func NewLRU(maxSize int, defaultTTL time.Duration) *LRUCache {
	if maxSize < 1 {
		maxSize = 1
	}
	return &LRUCache{
		data:       make(map[string]*node),
		maxSize:    maxSize,
		defaultTTL: defaultTTL,
	}
}

// Get retrieves a live value and marks it most recently used.
func (c *LRUCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.data[key]
	if !ok {
		c.misses++
		return nil, false
	}
	if !n.expiresAt.IsZero() && time.Now().After(n.expiresAt) {
		c.remove(n)
		c.misses++
		return nil, false
	}

	c.moveToFront(n)
	c.hits++
	return n.value, true
}

// Set stores value under key, evicting the least recently used entry
// when the cache is full.
func (c *LRUCache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl == 0 {
		ttl = c.defaultTTL
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	if n, ok := c.data[key]; ok {
		n.value = value
		n.expiresAt = expiresAt
		c.moveToFront(n)
		return
	}

	if len(c.data) >= c.maxSize && c.tail != nil {
		c.remove(c.tail)
		c.evictions++
	}

	n := &node{key: key, value: value, expiresAt: expiresAt}
	c.addToFront(n)
	c.data[key] = n
}

// Invalidate removes key if present.
func (c *LRUCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.data[key]; ok {
		c.remove(n)
	}
}

// InvalidatePattern removes every key whose ":"-separated segments match
// pattern, where "*" matches one whole segment.
func (c *LRUCache) InvalidatePattern(pattern string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var doomed []*node
	for key, n := range c.data {
		if matchesPattern(key, pattern) {
			doomed = append(doomed, n)
		}
	}
	for _, n := range doomed {
		c.remove(n)
	}
}

// Clear drops every entry and resets statistics.
func (c *LRUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data = make(map[string]*node)
	c.head = nil
	c.tail = nil
	c.hits = 0
	c.misses = 0
	c.evictions = 0
}

// Stats returns a snapshot of the cache counters.
func (c *LRUCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Size:      len(c.data),
		MaxSize:   c.maxSize,
		Evictions: c.evictions,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total) * 100
	}
	return s
}

func (c *LRUCache) addToFront(n *node) {
	if c.head == nil {
		c.head = n
		c.tail = n
		return
	}
	n.next = c.head
	c.head.prev = n
	c.head = n
}

func (c *LRUCache) moveToFront(n *node) {
	if n == c.head {
		return
	}
	c.unlink(n)
	n.prev = nil
	n.next = nil
	c.addToFront(n)
}

func (c *LRUCache) remove(n *node) {
	c.unlink(n)
	delete(c.data, n.key)
}

func (c *LRUCache) unlink(n *node) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.tail = n.prev
	}
}

func matchesPattern(key, pattern string) bool {
	if pattern == "*" {
		return true
	}
	want := strings.Split(pattern, ":")
	have := strings.Split(key, ":")
	if len(want) != len(have) {
		return false
	}
	for i, part := range want {
		if part != "*" && part != have[i] {
			return false
		}
	}
	return true
}

// Fingerprint derives the cache key for a query against a table. The
// key is "table:hash", where the hash covers the query's deterministic
// rendering, so structurally equal queries share an entry and a table's
// entries can be wiped with InvalidatePattern(table + ":*").
func Fingerprint[T any](table string, q ast.Query[T]) string {
	h := sha256.New()
	h.Write([]byte(table))
	h.Write([]byte{0})
	h.Write([]byte(q.String()))
	return table + ":" + hex.EncodeToString(h.Sum(nil))[:16]
}
