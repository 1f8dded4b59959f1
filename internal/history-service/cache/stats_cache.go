package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/keyshop-casino/pkg/contracts/stats"
)

// Cache lê e grava o snapshot de stats na mesma chave usada pelo history-worker
type Cache struct{ R *redis.Client }

func New(r *redis.Client) *Cache { return &Cache{R: r} }

func (c *Cache) GetStats(ctx context.Context, userID string, dst *stats.PlayerStats) (bool, error) {
	b, err := c.R.Get(ctx, stats.CacheKey(userID)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

func (c *Cache) SetStats(ctx context.Context, s stats.PlayerStats, ttl time.Duration) error {
	b, _ := json.Marshal(s)
	return c.R.Set(ctx, stats.CacheKey(s.UserID), b, ttl).Err()
}
