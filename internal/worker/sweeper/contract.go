package sweeper

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockSweeper сервис, возвращающий в available слоты с истекшей блокировкой
type LockSweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// Guard решает, должен ли этот экземпляр выполнять очередной проход.
// Позволяет запускать несколько реплик без одновременной очистки.
type Guard interface {
	TryAcquire(ctx context.Context) (bool, error)
}

// RedisSetter подмножество *redis.Client, нужное RedisGuard
type RedisSetter interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
