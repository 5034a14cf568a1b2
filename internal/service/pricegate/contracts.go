package pricegate

import (
	"context"
	"time"

	"github.com/m04kA/SMC-MarketplaceCore/internal/domain"
	"github.com/m04kA/SMC-MarketplaceCore/internal/integrations/events"
)

// PriceRepository интерфейс репозитория цен
type PriceRepository interface {
	GetActive(ctx context.Context, vendorID, serviceID int64) (*domain.PriceRecord, error)
	Create(ctx context.Context, record *domain.PriceRecord) (*domain.PriceRecord, error)
	Expire(ctx context.Context, id int64) error
	AppendHistory(ctx context.Context, history *domain.PriceHistory) (*domain.PriceHistory, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher публикация событий об изменении цены
type EventPublisher interface {
	PublishPricePendingApproval(ctx context.Context, event events.PricePendingApproval) error
}

// MetricsRecorder учёт решений по ценам
type MetricsRecorder interface {
	RecordPriceDecision(decision string)
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

func (nopMetrics) RecordPriceDecision(string) {}
