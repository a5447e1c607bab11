// SPDX-License-Identifier: MPL-2.0

package core

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// QueryCache memoizes query results keyed by (query id, serialized parameter
// set). Entries never expire on their own; they are replaced by Refresh and
// removed by Invalidate. Get is a pure lookup and never triggers execution.
//
// Concurrent refreshes for the same key are coalesced through singleflight,
// so two racing refresh calls execute the query once and both observe the
// same result.
type QueryCache struct {
	mu      sync.RWMutex
	entries map[string]CacheEntry
	group   singleflight.Group
}

type CacheEntry struct {
	Result   *QueryResult
	CachedAt time.Time
}

func NewQueryCache() *QueryCache {
	return &QueryCache{
		entries: map[string]CacheEntry{},
	}
}

// CacheKey serializes the parameter set canonically (JSON object with sorted
// keys; nil and empty both serialize to "{}") and joins it to the query id.
func CacheKey(queryID string, params map[string]any) string {
	if params == nil {
		params = map[string]any{}
	}
	serialized, err := json.Marshal(params)
	if err != nil {
		// Parameter values always come from decoded JSON, so this only
		// happens for programmatic misuse. Fall back to an unshared key.
		serialized = []byte("!unserializable")
	}
	return queryID + "|" + string(serialized)
}

// Get returns the cached entry for (queryID, params), or nil on miss.
func (c *QueryCache) Get(queryID string, params map[string]any) *CacheEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if entry, ok := c.entries[CacheKey(queryID, params)]; ok {
		return &entry
	}
	return nil
}

// Refresh executes the query via exec, overwrites the cache entry and
// returns the fresh result. In-flight refreshes for the same key share one
// execution.
func (c *QueryCache) Refresh(ctx context.Context, queryID string, params map[string]any, exec func(ctx context.Context) (*QueryResult, error)) (*QueryResult, error) {
	key := CacheKey(queryID, params)
	result, err, _ := c.group.Do(key, func() (any, error) {
		result, err := exec(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = CacheEntry{Result: result, CachedAt: time.Now()}
		c.mu.Unlock()
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*QueryResult), nil
}

// Invalidate removes all entries for the given query ids, or every entry
// when none are given.
func (c *QueryCache) Invalidate(queryIDs ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(queryIDs) == 0 {
		c.entries = map[string]CacheEntry{}
		return
	}
	for _, id := range queryIDs {
		prefix := id + "|"
		for key := range c.entries {
			if strings.HasPrefix(key, prefix) {
				delete(c.entries, key)
			}
		}
	}
}

// Len reports the number of cached entries.
func (c *QueryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
