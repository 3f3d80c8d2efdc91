// Copyright 2025 Alexander Alten (novatechflow), NovaTechflow (novatechflow.com).
// This project is supported and financed by Scalytics, Inc. (www.scalytics.io).
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cache

import (
	"container/list"
	"sync"
)

// BlockCache is a byte-capacity LRU of fixed-size blocks read from remote
// objects. Cached slices are shared and must not be modified by callers.
type BlockCache struct {
	mu       sync.Mutex
	capacity int
	size     int
	ll       *list.List
	items    map[blockKey]*list.Element
	hits     uint64
	misses   uint64
}

type blockKey struct {
	object string
	block  int64
}

type cacheEntry struct {
	key  blockKey
	data []byte
}

// NewBlockCache creates a cache holding at most capacityBytes of block data.
func NewBlockCache(capacityBytes int) *BlockCache {
	if capacityBytes <= 0 {
		capacityBytes = 1
	}
	return &BlockCache{
		capacity: capacityBytes,
		ll:       list.New(),
		items:    make(map[blockKey]*list.Element),
	}
}

// Get returns the cached block of object, if present.
func (c *BlockCache) Get(object string, block int64) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[blockKey{object, block}]; ok {
		c.ll.MoveToFront(elem)
		c.hits++
		return elem.Value.(*cacheEntry).data, true
	}
	c.misses++
	return nil, false
}

// Set stores a copy of data as the given block of object.
func (c *BlockCache) Set(object string, block int64, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := blockKey{object, block}
	if elem, ok := c.items[key]; ok {
		entry := elem.Value.(*cacheEntry)
		c.size -= len(entry.data)
		entry.data = append([]byte(nil), data...)
		c.size += len(entry.data)
		c.ll.MoveToFront(elem)
		c.evictIfNeeded()
		return
	}
	entry := &cacheEntry{key: key, data: append([]byte(nil), data...)}
	c.items[key] = c.ll.PushFront(entry)
	c.size += len(entry.data)
	c.evictIfNeeded()
}

// Drop removes every block of object.
func (c *BlockCache) Drop(object string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, elem := range c.items {
		if key.object != object {
			continue
		}
		c.size -= len(elem.Value.(*cacheEntry).data)
		c.ll.Remove(elem)
		delete(c.items, key)
	}
}

// Stats returns the hit and miss counts and the bytes held.
func (c *BlockCache) Stats() (hits, misses uint64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, c.size
}

func (c *BlockCache) evictIfNeeded() {
	for c.size > c.capacity && c.ll.Len() > 0 {
		elem := c.ll.Back()
		entry := elem.Value.(*cacheEntry)
		delete(c.items, entry.key)
		c.ll.Remove(elem)
		c.size -= len(entry.data)
	}
}
