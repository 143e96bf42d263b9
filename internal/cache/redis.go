package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tablette/catalog/internal/domain"
)

// PageCache stores paginated catalog results for a short time. Entries are
// never invalidated: a cached total may lag the source by up to the TTL.
type PageCache interface {
	Get(ctx context.Context, key string) (*domain.Page, bool, error)
	Set(ctx context.Context, key string, page *domain.Page) error
}

type redisPageCache struct {
	redisClient *redis.Client
	keyPrefix   string
	ttl         time.Duration
}

func NewRedisPageCache(redisClient *redis.Client, keyPrefix string, ttl time.Duration) PageCache {
	return &redisPageCache{
		redisClient: redisClient,
		keyPrefix:   keyPrefix,
		ttl:         ttl,
	}
}

func (c *redisPageCache) Get(ctx context.Context, key string) (*domain.Page, bool, error) {
	val, err := c.redisClient.Get(ctx, c.keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get cached page %s: %w", key, err)
	}

	var page domain.Page
	if err := json.Unmarshal(val, &page); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached page %s: %w", key, err)
	}
	return &page, true, nil
}

func (c *redisPageCache) Set(ctx context.Context, key string, page *domain.Page) error {
	val, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("failed to encode page %s: %w", key, err)
	}
	if err := c.redisClient.Set(ctx, c.keyPrefix+key, val, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache page %s: %w", key, err)
	}
	return nil
}
