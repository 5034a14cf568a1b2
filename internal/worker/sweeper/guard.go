package sweeper

import (
	"context"
	"fmt"
	"time"
)

// DefaultGuardKey ключ Redis, под которым хранится право на проход очистки
const DefaultGuardKey = "marketplace:slot-sweeper:leader"

// alwaysGuard разрешает каждый проход (один экземпляр или Redis выключен)
type alwaysGuard struct{}

func (alwaysGuard) TryAcquire(context.Context) (bool, error) { return true, nil }

// RedisGuard пропускает только один экземпляр за интервал через SET NX с TTL.
// Ключ не удаляется после прохода: он сам истекает к следующему тику.
type RedisGuard struct {
	client   RedisSetter
	key      string
	instance string
	ttl      time.Duration
}

// NewRedisGuard создает guard. ttl берется чуть меньше интервала, чтобы
// на следующем тике ключ уже истек
func NewRedisGuard(client RedisSetter, key, instance string, interval time.Duration) *RedisGuard {
	if key == "" {
		key = DefaultGuardKey
	}

	ttl := interval * 9 / 10
	if ttl <= 0 {
		ttl = interval
	}

	return &RedisGuard{
		client:   client,
		key:      key,
		instance: instance,
		ttl:      ttl,
	}
}

// TryAcquire пытается занять ключ на текущий интервал
func (g *RedisGuard) TryAcquire(ctx context.Context) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key, g.instance, g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%w: TryAcquire - setnx %s: %w", ErrGuard, g.key, err)
	}
	return ok, nil
}
