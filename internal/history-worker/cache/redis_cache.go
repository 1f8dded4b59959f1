package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/keyshop-casino/pkg/contracts/stats"
)

// RedisCache guarda o snapshot de stats do jogador lido pelo history-service
// Client: cliente Redis
// TTL: tempo de expiração dos registros
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRedisCache cria uma instância de cache Redis com TTL configurável
func NewRedisCache(c *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: c, TTL: ttl}
}

// SetStats sobrescreve o snapshot com o agregado recém-persistido
func (r *RedisCache) SetStats(ctx context.Context, s stats.PlayerStats) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, stats.CacheKey(s.UserID), b, r.TTL).Err()
}
