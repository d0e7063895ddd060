package server

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/abelbrown/newshub/internal/fetch"
	"github.com/abelbrown/newshub/internal/model"
)

// articleCache keeps successful GNews pages for a short time so many clients
// browsing the same category share one upstream request.
type articleCache struct {
	lru *expirable.LRU[string, fetch.Result]
}

func newArticleCache(size int, ttl time.Duration) *articleCache {
	if ttl <= 0 {
		return &articleCache{}
	}
	if size <= 0 {
		size = 256
	}
	return &articleCache{lru: expirable.NewLRU[string, fetch.Result](size, nil, ttl)}
}

func cacheKey(f model.Filters, page int) string {
	return fmt.Sprintf("%s|%s|%s|%d", f.Category, f.Country, f.Query, page)
}

// fetch returns a cached result or asks f. Failures are never cached.
func (c *articleCache) fetch(ctx context.Context, f fetch.Fetcher, filters model.Filters, page int) (fetch.Result, bool) {
	filters = filters.Normalize()
	key := cacheKey(filters, page)
	if c.lru != nil {
		if res, ok := c.lru.Get(key); ok {
			return res, true
		}
	}

	res := f.Fetch(ctx, filters, page)
	if res.Success && c.lru != nil {
		c.lru.Add(key, res)
	}
	return res, false
}

func (c *articleCache) len() int {
	if c.lru == nil {
		return 0
	}
	return c.lru.Len()
}
