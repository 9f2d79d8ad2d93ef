// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package incremental implements the two-tier transform cache and the
// dependency graph that drives its invalidation.
//
// The preprocessed tier maps raw text to syntactically valid text; the
// transformed tier maps valid text to fully macro-expanded output plus the
// set of files the expansion depended on. Both are keyed by filename and
// validated by content hash. A [Cache] is an explicit object owned by a
// build session, never a hidden global, so multiple sessions do not bleed
// state into one another.
package incremental

import (
	"sync"

	"github.com/tidwall/btree"

	"github.com/bufbuild/retrofit/report"
	"github.com/bufbuild/retrofit/sourcemap"
)

// PreprocessedEntry caches the result of preprocessing one file.
type PreprocessedEntry struct {
	// The syntactically valid text preprocessing produced.
	Code string
	// Maps offsets in Code back to the raw text; nil when preprocessing
	// changed nothing.
	Map *sourcemap.Map
	// The digest of the raw text this entry was computed from.
	Hash Hash
}

// TransformedEntry caches the result of fully transforming one file.
type TransformedEntry struct {
	// The macro-expanded output.
	Output string
	// Diagnostics macro expansion accumulated for the file.
	Diagnostics []*report.Diagnostic
	// The digest of the file's own raw text.
	Hash Hash
	// The digest each dependency had when this entry was written. The key
	// set is the dependency set.
	DependencyHashes map[string]Hash
}

// Dependencies returns the entry's dependency set, sorted.
func (e *TransformedEntry) Dependencies() []string {
	return sortedKeys(e.DependencyHashes)
}

// HashLookup resolves the current content hash of a file, typically by
// reading it through the session's opener. Returning ok = false marks any
// entry depending on the file as invalid.
type HashLookup func(path string) (Hash, bool)

// Cache is the two-tier incremental transform cache.
//
// Entries live for the lifetime of a build session and are invalidated by
// content-hash mismatch, by explicit [Cache.Invalidate] calls, or by LRU
// eviction of transformed entries. The cache is mutex-guarded so that a
// session processing files in parallel may share it.
type Cache struct {
	mu sync.Mutex

	preprocessed map[string]PreprocessedEntry
	transformed  map[string]*TransformedEntry
	graph        *Graph

	// LRU bound for the transformed tier; non-positive means unbounded.
	maxSize int
	// Access order: tick of last use per path, and the inverse index
	// ordered by tick, whose minimum is the eviction victim.
	ticks  uint64
	tickOf map[string]uint64
	byTick btree.Map[uint64, string]
}

// NewCache returns an empty cache whose transformed tier holds at most
// maxSize entries; non-positive means unbounded. The preprocessed tier is
// never LRU-bounded.
func NewCache(maxSize int) *Cache {
	return &Cache{
		preprocessed: make(map[string]PreprocessedEntry),
		transformed:  make(map[string]*TransformedEntry),
		graph:        NewGraph(),
		maxSize:      maxSize,
		tickOf:       make(map[string]uint64),
	}
}

// Graph exposes the cache's dependency graph for read-only inspection.
// Callers must not mutate it; use [Cache.PutTransformed].
func (c *Cache) Graph() *Graph {
	return c.graph
}

// GetPreprocessed returns the preprocessed entry for path if its recorded
// hash matches hash. A stale entry is dropped and reported as a miss.
func (c *Cache) GetPreprocessed(path string, hash Hash) (PreprocessedEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.preprocessed[path]
	if !ok {
		return PreprocessedEntry{}, false
	}
	if entry.Hash != hash {
		delete(c.preprocessed, path)
		return PreprocessedEntry{}, false
	}
	return entry, true
}

// PutPreprocessed stores a preprocessed entry for path.
func (c *Cache) PutPreprocessed(path string, entry PreprocessedEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.preprocessed[path] = entry
}

// GetTransformed returns the transformed entry for path if it is still
// valid: the file's own hash is unchanged, and every recorded dependency's
// current hash (per deps) matches the hash recorded at write time.
//
// A dependency whose hash cannot be resolved fails closed: the entry is
// treated as invalid. Invalid entries are dropped. A hit refreshes the
// entry's LRU position.
func (c *Cache) GetTransformed(path string, hash Hash, deps HashLookup) (*TransformedEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.transformed[path]
	if !ok {
		return nil, false
	}

	valid := entry.Hash == hash
	for dep, recorded := range entry.DependencyHashes {
		if !valid {
			break
		}
		current, ok := deps(dep)
		valid = ok && current == recorded
	}
	if !valid {
		c.dropTransformed(path)
		return nil, false
	}

	c.touch(path)
	return entry, true
}

// PutTransformed stores a transformed entry for path, records its
// dependency edges in the graph, refreshes its LRU position, and evicts
// the least-recently-used transformed entry if the bound is now exceeded.
func (c *Cache) PutTransformed(path string, entry *TransformedEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.transformed[path] = entry
	c.graph.SetDependencies(path, entry.Dependencies())
	c.touch(path)

	if c.maxSize > 0 && len(c.transformed) > c.maxSize {
		c.evictLRU()
	}
}

// Invalidate removes path from both tiers, and removes the transformed
// entries of every transitive dependent of path. The traversal follows the
// graph's reverse edges and is cycle-safe.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.preprocessed, path)
	c.dropTransformed(path)
	for _, dependent := range c.graph.TransitiveDependents(path) {
		c.dropTransformed(dependent)
	}
}

// HasTransformed reports whether a transformed entry for path is present,
// without refreshing its LRU position.
func (c *Cache) HasTransformed(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.transformed[path]
	return ok
}

// Len returns the number of entries in each tier.
func (c *Cache) Len() (preprocessed, transformed int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.preprocessed), len(c.transformed)
}

// Clear atomically resets both tiers and the dependency graph.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.preprocessed)
	clear(c.transformed)
	clear(c.tickOf)
	c.byTick = btree.Map[uint64, string]{}
	c.graph.Clear()
}

// touch moves path to the most-recently-used position. Called with the
// mutex held.
func (c *Cache) touch(path string) {
	if old, ok := c.tickOf[path]; ok {
		c.byTick.Delete(old)
	}
	c.ticks++
	c.tickOf[path] = c.ticks
	c.byTick.Set(c.ticks, path)
}

// dropTransformed removes path's transformed entry and its LRU index
// entries. Graph edges are kept: they describe the last known shape of the
// dependency graph, which future invalidations still need. Called with the
// mutex held.
func (c *Cache) dropTransformed(path string) {
	delete(c.transformed, path)
	if tick, ok := c.tickOf[path]; ok {
		delete(c.tickOf, path)
		c.byTick.Delete(tick)
	}
}

// evictLRU removes the least-recently-used transformed entry. Called with
// the mutex held.
func (c *Cache) evictLRU() {
	iter := c.byTick.Iter()
	if !iter.First() {
		return
	}
	c.dropTransformed(iter.Value())
}
