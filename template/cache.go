/*
Copyright 2025 eatmoreapple

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package template

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/augsql/augsql/dialect"
)

const (
	// DefaultShardCount is the default number of cache shards (§4.C).
	DefaultShardCount = 8
	// DefaultShardCapacity is the default bounded LRU capacity per shard
	// (§4.C).
	DefaultShardCapacity = 256
)

// Cache is a sharded, bounded LRU AST cache keyed by the 64-bit
// (dialect, source text) fingerprint (§4.C). Each shard is guarded by its
// own lock so that lookups against different shards never contend.
//
// The cache is safe for concurrent use and is meant to be shared
// process-wide: construct one with NewCache and hand it to every
// coordinator/engine instance that should share parsed ASTs.
type Cache struct {
	shards []*shard
	mask   uint64
}

type shard struct {
	mu  sync.Mutex
	lru *lru.Cache[uint64, *AST]
}

// NewCache creates a Cache with the given shard count and per-shard
// capacity. shardCount is rounded up to the next power of two so that
// shard selection can use a cheap bitmask of the fingerprint's low bits.
// A zero or negative argument falls back to the package defaults.
func NewCache(shardCount, shardCapacity int) *Cache {
	if shardCount <= 0 {
		shardCount = DefaultShardCount
	}
	if shardCapacity <= 0 {
		shardCapacity = DefaultShardCapacity
	}
	shardCount = nextPowerOfTwo(shardCount)

	c := &Cache{
		shards: make([]*shard, shardCount),
		mask:   uint64(shardCount - 1),
	}
	for i := range c.shards {
		l, err := lru.New[uint64, *AST](shardCapacity)
		if err != nil {
			// lru.New only fails for size <= 0, which can't happen here.
			panic(err)
		}
		c.shards[i] = &shard{lru: l}
	}
	return c
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func (c *Cache) shardFor(fingerprint uint64) *shard {
	return c.shards[fingerprint&c.mask]
}

// Get returns the cached AST for (dialect, source) if present.
func (c *Cache) Get(d dialect.Dialect, source string) (*AST, bool) {
	fp := Fingerprint(d, source)
	s := c.shardFor(fp)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.Get(fp)
}

// GetOrParse returns the cached AST for (dialect, source), parsing and
// inserting it on a miss. If two goroutines race to parse the same
// (dialect, source) pair, the second insert is discarded and the first
// caller's AST is returned to every caller (§4.C).
func (c *Cache) GetOrParse(d dialect.Dialect, source string) (*AST, error) {
	fp := Fingerprint(d, source)
	s := c.shardFor(fp)

	s.mu.Lock()
	if ast, ok := s.lru.Get(fp); ok {
		s.mu.Unlock()
		return ast, nil
	}
	s.mu.Unlock()

	ast, err := Parse(d, source)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.lru.Get(fp); ok {
		// Someone else inserted first; discard our parse and converge on
		// their AST so repeated parses of the same pair are pointer-equal
		// for the lifetime of cache residency.
		return existing, nil
	}
	s.lru.Add(fp, ast)
	return ast, nil
}

// Len returns the number of resident entries across all shards.
func (c *Cache) Len() int {
	total := 0
	for _, s := range c.shards {
		s.mu.Lock()
		total += s.lru.Len()
		s.mu.Unlock()
	}
	return total
}

// defaultCache is the process-wide cache instance returned by DefaultCache
// (§4.C: "the cache is process-wide"). Render takes an already-parsed AST
// and does not read it.
var defaultCache = NewCache(DefaultShardCount, DefaultShardCapacity)

// DefaultCache returns the process-wide AST cache.
func DefaultCache() *Cache {
	return defaultCache
}
