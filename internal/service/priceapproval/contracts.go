package priceapproval

import (
	"context"

	"github.com/m04kA/SMC-MarketplaceCore/internal/domain"
)

// PriceRepository интерфейс репозитория цен
type PriceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.PriceRecord, error)
	GetActive(ctx context.Context, vendorID, serviceID int64) (*domain.PriceRecord, error)
	Expire(ctx context.Context, id int64) error
	Activate(ctx context.Context, id int64, changePercent *float64) error
	Reject(ctx context.Context, id int64) error
	AppendHistory(ctx context.Context, history *domain.PriceHistory) (*domain.PriceHistory, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// MetricsRecorder учёт решений по ценам
type MetricsRecorder interface {
	RecordPriceDecision(decision string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

type nopMetrics struct{}

func (nopMetrics) RecordPriceDecision(string) {}
