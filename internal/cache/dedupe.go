// Tickwatch - Galaxy Telemetry Ingestion and Conflict Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tickwatch

// Package cache provides the duplicate-suppression cache used by the
// ingestion client. The upstream feed is duplicate-tolerant by design, so
// the same message may arrive more than once within a short window; the
// cache remembers recently seen payload digests and lets the ingester skip
// re-decoding them.
package cache

import (
	"sync"
	"time"
)

// dedupeEntry is a node in the doubly-linked recency list.
type dedupeEntry struct {
	key       string
	prev      *dedupeEntry
	next      *dedupeEntry
	expiresAt time.Time
}

// DedupeCache is a thread-safe LRU set with TTL support.
// It provides O(1) lookup, insert, and eviction: a hashmap for membership
// and a doubly-linked list for recency ordering.
type DedupeCache struct {
	mu sync.RWMutex

	// capacity is the maximum number of remembered keys
	capacity int

	// ttl is how long a key counts as "recently seen"
	ttl time.Duration

	// items maps keys to list nodes for O(1) lookup
	items map[string]*dedupeEntry

	// head and tail are sentinel nodes; head.next is most recently used
	head *dedupeEntry
	tail *dedupeEntry

	// stats
	hits   int64
	misses int64
}

// NewDedupeCache creates a cache with the given capacity and TTL.
func NewDedupeCache(capacity int, ttl time.Duration) *DedupeCache {
	if capacity <= 0 {
		capacity = 10000
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	c := &DedupeCache{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*dedupeEntry, capacity),
		head:     &dedupeEntry{},
		tail:     &dedupeEntry{},
	}

	c.head.next = c.tail
	c.tail.prev = c.head

	return c
}

// IsDuplicate reports whether the key was seen within the TTL window.
// A key that is not a duplicate is recorded as seen, so the check-and-record
// is a single atomic operation from the caller's point of view.
func (c *DedupeCache) IsDuplicate(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()

	if entry, exists := c.items[key]; exists {
		if !now.After(entry.expiresAt) {
			c.moveToFront(entry)
			c.hits++
			return true
		}
		// Expired, remove and treat as new
		c.removeEntry(entry)
	}

	entry := &dedupeEntry{
		key:       key,
		expiresAt: now.Add(c.ttl),
	}
	c.addToFront(entry)
	c.items[key] = entry

	for len(c.items) > c.capacity {
		c.evictOldest()
	}

	c.misses++
	return false
}

// Contains checks membership without recording or touching recency order.
func (c *DedupeCache) Contains(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if entry, exists := c.items[key]; exists {
		return !time.Now().After(entry.expiresAt)
	}
	return false
}

// Len returns the current number of remembered keys, including any that
// have expired but not yet been cleaned up.
func (c *DedupeCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// CleanupExpired removes all expired entries and returns the count removed.
// Expiry is otherwise handled lazily on lookup; this exists so a periodic
// sweep can bound memory when the key stream goes quiet.
func (c *DedupeCache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0

	for entry := c.tail.prev; entry != c.head; {
		prev := entry.prev
		if now.After(entry.expiresAt) {
			c.removeEntry(entry)
			removed++
		}
		entry = prev
	}

	return removed
}

// Stats returns hit/miss counters and the current size.
func (c *DedupeCache) Stats() (hits, misses int64, size int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses, len(c.items)
}

// addToFront inserts the entry right after the head sentinel.
func (c *DedupeCache) addToFront(entry *dedupeEntry) {
	entry.prev = c.head
	entry.next = c.head.next
	c.head.next.prev = entry
	c.head.next = entry
}

// moveToFront relinks an existing entry as most recently used.
func (c *DedupeCache) moveToFront(entry *dedupeEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	c.addToFront(entry)
}

// removeEntry unlinks the entry and deletes it from the map.
func (c *DedupeCache) removeEntry(entry *dedupeEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	delete(c.items, entry.key)
}

// evictOldest removes the least recently used entry.
func (c *DedupeCache) evictOldest() {
	oldest := c.tail.prev
	if oldest != c.head {
		c.removeEntry(oldest)
	}
}
