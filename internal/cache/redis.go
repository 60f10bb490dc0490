// Package cache holds the Redis-backed page state cache. Question and
// recipient data rarely changes within a submission window, so the loaded
// page state is kept for a short TTL and dropped after every save.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"submission_service/internal/api"
)

type PageCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewPageCache(rdb *redis.Client, ttl time.Duration) *PageCache {
	return &PageCache{rdb: rdb, ttl: ttl}
}

func PageKey(courseID, feedbackSessionName string, intent api.Intent, params api.CallParams) string {
	return fmt.Sprintf("submission:page:%s:%s:%s:%s:%s", courseID, feedbackSessionName, intent, params.Key, params.ModeratedPerson)
}

func (c *PageCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) || err != nil {
		return nil, false
	}
	return val, true
}

func (c *PageCache) Set(ctx context.Context, key string, data []byte) {
	c.rdb.Set(ctx, key, data, c.ttl)
}

func (c *PageCache) Delete(ctx context.Context, key string) {
	c.rdb.Del(ctx, key)
}
