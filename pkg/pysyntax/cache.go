// SPDX-License-Identifier: MPL-2.0

package pysyntax

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the number of analyses kept in memory per session.
const DefaultCacheSize = 512

// Cache memoizes successful analyses keyed by source location, so repeated
// traversals of the same tree parse each module at most once. Failures are
// not cached: a module may be fixed between inspections.
type Cache struct {
	entries *lru.Cache[string, *Info]
}

// NewCache creates a Cache holding at most size analyses. A non-positive
// size falls back to DefaultCacheSize.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[string, *Info](size)
	if err != nil {
		// lru.New only fails on a non-positive size, which is guarded above.
		panic(err)
	}
	return &Cache{entries: entries}
}

// Analyze returns the cached analysis for key, reading and analyzing the
// source via read on a miss.
func (c *Cache) Analyze(key string, read func() ([]byte, error)) (*Info, error) {
	if info, ok := c.entries.Get(key); ok {
		return info, nil
	}
	src, err := read()
	if err != nil {
		return nil, err
	}
	info, err := Analyze(src, key)
	if err != nil {
		return nil, err
	}
	c.entries.Add(key, info)
	return info, nil
}
