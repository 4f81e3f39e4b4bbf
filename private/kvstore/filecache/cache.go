// Copyright (C) 2026 FlowTune Labs, Inc.
// See LICENSE for copying information.

package filecache

import (
	"container/list"
	"sync"
	"time"

	"github.com/flowtune/flowtune/private/kvstore"
)

// cacheEntry contains all of the state for a cached key.
type cacheEntry struct {
	value    kvstore.Value
	deadline time.Time
	order    *list.Element
}

// memcache caches values for string keys with a per-entry expiration and an
// LRU based eviction policy. It is the in-process tier in front of the file
// mirror.
type memcache struct {
	mu       sync.Mutex
	capacity int
	data     map[string]*cacheEntry
	order    *list.List
}

func newMemcache(capacity int) *memcache {
	return &memcache{
		capacity: capacity,
		data:     make(map[string]*cacheEntry, capacity),
		order:    list.New(),
	}
}

// Get returns the cached value for key if it exists and has not expired.
func (cache *memcache) Get(key string) (kvstore.Value, bool) {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	entry, ok := cache.data[key]
	if !ok {
		return nil, false
	}
	if !entry.deadline.IsZero() && time.Now().After(entry.deadline) {
		delete(cache.data, key)
		cache.order.Remove(entry.order)
		return nil, false
	}

	cache.order.MoveToFront(entry.order)
	return entry.value, true
}

// Put stores value under key for ttl. A non-positive ttl means no expiry.
func (cache *memcache) Put(key string, value kvstore.Value, ttl time.Duration) {
	if cache.capacity <= 0 {
		return
	}

	cache.mu.Lock()
	defer cache.mu.Unlock()

	var deadline time.Time
	if ttl > 0 {
		deadline = time.Now().Add(ttl)
	}

	if entry, ok := cache.data[key]; ok {
		entry.value = kvstore.CloneValue(value)
		entry.deadline = deadline
		cache.order.MoveToFront(entry.order)
		return
	}

	for len(cache.data) >= cache.capacity {
		back := cache.order.Back()
		delete(cache.data, back.Value.(string))
		cache.order.Remove(back)
	}

	cache.data[key] = &cacheEntry{
		value:    kvstore.CloneValue(value),
		deadline: deadline,
		order:    cache.order.PushFront(key),
	}
}

// Delete removes key from the cache.
func (cache *memcache) Delete(key string) {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	if entry, ok := cache.data[key]; ok {
		delete(cache.data, key)
		cache.order.Remove(entry.order)
	}
}

// Flush removes all entries.
func (cache *memcache) Flush() {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	cache.data = make(map[string]*cacheEntry, cache.capacity)
	cache.order.Init()
}
