package trivia

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	categoryCacheKey   = "trivia:categories"
	defaultCategoryTTL = 5 * time.Minute
)

// CategoryCache holds the category lookup table between requests. A nil
// cache, and any cache failure, degrades to the category store.
type CategoryCache interface {
	Get(ctx context.Context) (map[int64]string, error)
	Set(ctx context.Context, categories map[int64]string) error
}

// RedisCategoryCache is the Redis-backed CategoryCache used in production.
type RedisCategoryCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ CategoryCache = (*RedisCategoryCache)(nil)

func NewRedisCategoryCache(client *redis.Client, ttl time.Duration) *RedisCategoryCache {
	if ttl <= 0 {
		ttl = defaultCategoryTTL
	}
	return &RedisCategoryCache{client: client, ttl: ttl}
}

// Get returns the cached lookup table, or (nil, nil) on a miss.
func (c *RedisCategoryCache) Get(ctx context.Context) (map[int64]string, error) {
	data, err := c.client.Get(ctx, categoryCacheKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var categories map[int64]string
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *RedisCategoryCache) Set(ctx context.Context, categories map[int64]string) error {
	data, err := json.Marshal(categories)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, categoryCacheKey, data, c.ttl).Err()
}
