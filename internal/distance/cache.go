package distance

import (
	"context"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

const DefaultCacheSize = 512

// CachedLookup memoizes successful lookups. Concurrent misses for the same
// pair share one upstream call. Failures are never cached.
type CachedLookup struct {
	next  Lookup
	cache *lru.Cache[string, Result]
	group singleflight.Group
}

// NewCachedLookup wraps next with an LRU of the given size.
func NewCachedLookup(next Lookup, size int) *CachedLookup {
	if next == nil {
		panic("distance: lookup required")
	}
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, Result](size)
	if err != nil {
		panic("distance: " + err.Error())
	}
	return &CachedLookup{next: next, cache: cache}
}

func cacheKey(origin, dest string) string {
	return normalizeKey(origin) + "|" + normalizeKey(dest)
}

func normalizeKey(postal string) string {
	return strings.ToUpper(strings.Join(strings.Fields(postal), ""))
}

func (c *CachedLookup) Lookup(ctx context.Context, origin, dest string) Result {
	key := cacheKey(origin, dest)
	if res, ok := c.cache.Get(key); ok {
		return res
	}
	v, _, _ := c.group.Do(key, func() (interface{}, error) {
		res := c.next.Lookup(ctx, origin, dest)
		if res.OK {
			c.cache.Add(key, res)
		}
		return res, nil
	})
	return v.(Result)
}

// Len returns the number of cached pairs.
func (c *CachedLookup) Len() int {
	return c.cache.Len()
}
