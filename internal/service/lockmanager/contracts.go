package lockmanager

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-MarketplaceCore/internal/domain"
)

// SlotRepository интерфейс хранилища слотов
type SlotRepository interface {
	Get(ctx context.Context, key domain.SlotKey) (*domain.Slot, error)
	GetForUpdate(ctx context.Context, key domain.SlotKey) (*domain.Slot, error)
	InsertLocked(ctx context.Context, key domain.SlotKey, lease *domain.Lease) (*domain.Slot, error)
	UpdateLocked(ctx context.Context, id int64, lease *domain.Lease) error
	TryRelease(ctx context.Context, key domain.SlotKey, token string) (bool, error)
	TryConfirm(ctx context.Context, key domain.SlotKey, token string, bookingID int64, now time.Time) (bool, error)
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// MetricsRecorder учёт исходов операций с блокировками
type MetricsRecorder interface {
	RecordLockOperation(operation, outcome string)
	RecordSweep(count int64)
}

// TokenGenerator генератор токенов владельца блокировки
type TokenGenerator interface {
	NewToken() string
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

type nopMetrics struct{}

func (nopMetrics) RecordLockOperation(string, string) {}

func (nopMetrics) RecordSweep(int64) {}

// UUIDTokenGenerator выдаёт случайные UUIDv4
type UUIDTokenGenerator struct{}

// NewToken возвращает новый токен
func (g *UUIDTokenGenerator) NewToken() string {
	return uuid.NewString()
}
