package guard

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// releaseScript só apaga a chave se ela ainda pertence ao token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// refreshScript renova o TTL do próprio token; chave expirada é retomada pelo mesmo token
var refreshScript = redis.NewScript(`
local v = redis.call("GET", KEYS[1])
if v == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
if not v then
	redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
	return 1
end
return 0
`)

// RoundGuard garante uma rodada aberta por jogador entre réplicas do casino-service.
// Espera chave "casino:round:{userID}" => token da réplica que abriu a rodada.
type RoundGuard struct {
	Rdb *redis.Client
	TTL time.Duration
}

func NewRoundGuard(r *redis.Client, ttl time.Duration) *RoundGuard {
	return &RoundGuard{Rdb: r, TTL: ttl}
}

func key(userID string) string { return "casino:round:" + userID }

// Acquire retorna false quando outra rodada do jogador já está em andamento
func (g *RoundGuard) Acquire(ctx context.Context, userID, token string) (bool, error) {
	ok, err := g.Rdb.SetNX(ctx, key(userID), token, g.TTL).Result()
	if err != nil {
		return false, fmt.Errorf("round guard acquire: %w", err)
	}
	return ok, nil
}

// Refresh estende o guard enquanto a rodada segue ativa. Retorna false quando
// outra réplica tomou a chave depois que ela expirou.
func (g *RoundGuard) Refresh(ctx context.Context, userID, token string) (bool, error) {
	n, err := refreshScript.Run(ctx, g.Rdb, []string{key(userID)}, token, g.TTL.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("round guard refresh: %w", err)
	}
	return n == 1, nil
}

// Release libera a chave apenas se o token confere (compare-and-delete)
func (g *RoundGuard) Release(ctx context.Context, userID, token string) error {
	if err := releaseScript.Run(ctx, g.Rdb, []string{key(userID)}, token).Err(); err != nil {
		return fmt.Errorf("round guard release: %w", err)
	}
	return nil
}
