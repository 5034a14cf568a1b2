package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-MarketplaceCore/internal/domain"
	"github.com/m04kA/SMC-MarketplaceCore/internal/integrations/catalogservice"
	"github.com/m04kA/SMC-MarketplaceCore/internal/integrations/events"
	lockModels "github.com/m04kA/SMC-MarketplaceCore/internal/service/lockmanager/models"
)

// LockManager интерфейс менеджера блокировок слотов
type LockManager interface {
	Acquire(ctx context.Context, key domain.SlotKey, reason string) (*lockModels.AcquireResult, error)
	Release(ctx context.Context, key domain.SlotKey, token string) (bool, error)
	Confirm(ctx context.Context, key domain.SlotKey, bookingID int64, token string) (bool, error)
	BookedBy(ctx context.Context, key domain.SlotKey) (int64, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error
	Delete(ctx context.Context, id int64) error
	MarkNeedsReconciliation(ctx context.Context, id int64) error
}

// CatalogClient интерфейс клиента каталога услуг
type CatalogClient interface {
	GetVendorServiceWithGracefulDegradation(ctx context.Context, vendorID, serviceID int64) (*catalogservice.VendorService, error)
}

// EventPublisher публикация событий о бронированиях
type EventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, event events.BookingConfirmed) error
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
