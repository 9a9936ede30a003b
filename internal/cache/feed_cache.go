package cache

import (
	"context"
	"encoding/json"
	"time"

	dom "Feedgram/internal/domain"

	"github.com/redis/go-redis/v9"
)

const keyFeed = "feed:posts"

// FeedCache caches the viewer-independent feed rows in Redis. Viewer-relative
// fields (likedByMe) are computed per request, never cached, so one viewer's
// personalization can never leak to another.
type FeedCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewFeedCache returns a new FeedCache.
func NewFeedCache(rdb *redis.Client, ttl time.Duration) *FeedCache {
	return &FeedCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached feed or nil on miss.
func (c *FeedCache) Get(ctx context.Context) ([]dom.FeedPost, error) {
	b, err := c.rdb.Get(ctx, keyFeed).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var feed []dom.FeedPost
	if err := json.Unmarshal(b, &feed); err != nil {
		return nil, err
	}
	return feed, nil
}

// Set stores the feed in cache.
func (c *FeedCache) Set(ctx context.Context, feed []dom.FeedPost) error {
	b, err := json.Marshal(feed)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, keyFeed, b, c.ttl).Err()
}

// Invalidate drops the cached feed. Called on every write (post, like,
// comment) so readers never see a stale like-set or comment list past the TTL
// of a single request.
func (c *FeedCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, keyFeed).Err()
}
