package create_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-MarketplaceCore/internal/domain"
	"github.com/m04kA/SMC-MarketplaceCore/internal/integrations/catalogservice"
	"github.com/m04kA/SMC-MarketplaceCore/internal/integrations/events"
	"github.com/m04kA/SMC-MarketplaceCore/pkg/validation"
)

// UseCase сценарий создания бронирования: захват слота, запись брони,
// подтверждение слота. При сбое на любом шаге слот освобождается.
type UseCase struct {
	lockManager   LockManager
	bookingRepo   BookingRepository
	catalogClient CatalogClient
	publisher     EventPublisher
	validator     *validation.Validator
	timeProvider  TimeProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр usecase.
// catalogClient может быть nil: тогда проверка услуги в каталоге пропускается.
func NewUseCase(
	lockManager LockManager,
	bookingRepo BookingRepository,
	catalogClient CatalogClient,
	publisher EventPublisher,
	logger Logger,
) *UseCase {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	return &UseCase{
		lockManager:   lockManager,
		bookingRepo:   bookingRepo,
		catalogClient: catalogClient,
		publisher:     publisher,
		validator:     validation.New(),
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// Execute выполняет создание бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: user=%d, vendor=%d, date=%s",
		req.UserID, req.VendorID, req.EventDate.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := uc.validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	key := domain.NewSlotKey(req.VendorID, req.ServiceID, req.EventDate)

	// 2. Проверяем услугу в каталоге (до захвата слота)
	if err := uc.checkCatalog(ctx, req); err != nil {
		return nil, err
	}

	// 3. Захватываем слот
	lease, err := uc.lockManager.Acquire(ctx, key, domain.LockReasonBookingCreation)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to acquire slot %s: %v", key, err)
		return nil, fmt.Errorf("%w: Execute - acquire slot: %w", ErrInternal, err)
	}
	if !lease.Granted {
		uc.logger.Info("CreateBooking: slot %s denied: %s", key, lease.Reason)
		return nil, &DeniedError{Reason: lease.Reason}
	}

	// 4. Создаем бронирование в статусе pending
	booking, err := uc.bookingRepo.Create(ctx, &domain.Booking{
		UserID:        req.UserID,
		VendorID:      req.VendorID,
		ServiceID:     req.ServiceID,
		EventDate:     key.Date,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		GuestCount:    req.GuestCount,
		Notes:         req.Notes,
		Status:        domain.StatusPending,
	})
	if err != nil {
		uc.logger.Error("CreateBooking: failed to create booking for slot %s: %v", key, err)
		uc.releaseSlot(ctx, key, lease.Token)
		return nil, fmt.Errorf("%w: Execute - create booking: %w", ErrInternal, err)
	}

	// 5. Подтверждаем слот под созданное бронирование
	confirmed, err := uc.lockManager.Confirm(ctx, key, booking.ID, lease.Token)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to confirm slot %s for booking id=%d: %v", key, booking.ID, err)
		// ошибка могла прийти уже после фиксации UPDATE: бронь удаляется,
		// только если слот точно не закреплен за ней
		if !uc.recoverConfirm(ctx, key, booking.ID, lease.Token) {
			return nil, fmt.Errorf("%w: Execute - confirm slot: %w", ErrInternal, err)
		}
		confirmed = true
	}
	if !confirmed {
		// блокировка истекла и, возможно, уже перехвачена: слот не наш, освобождать нечего
		uc.logger.Warn("CreateBooking: lock on slot %s expired before confirmation, booking id=%d", key, booking.ID)
		uc.discardBooking(ctx, booking.ID)
		return nil, ErrLockLost
	}

	// 6. Переводим бронирование в confirmed. Слот уже закреплен за бронью,
	// поэтому ошибка здесь не откатывает сценарий
	booking.Status = domain.StatusConfirmed
	if err := uc.bookingRepo.UpdateStatus(ctx, booking.ID, domain.StatusConfirmed); err != nil {
		uc.logger.Error("CreateBooking: slot %s booked but booking id=%d status update failed: %v", key, booking.ID, err)
		uc.markForReconciliation(ctx, booking.ID)
	}

	// 7. Уведомляем остальные сервисы
	uc.publishConfirmed(ctx, booking)

	uc.logger.Info("CreateBooking: booking id=%d confirmed for slot %s", booking.ID, key)
	return toResponse(booking), nil
}

// checkCatalog проверяет, что услуга существует, активна и вмещает гостей.
// При недоступности каталога бронирование продолжается без проверки.
func (uc *UseCase) checkCatalog(ctx context.Context, req *Request) error {
	if uc.catalogClient == nil || req.ServiceID == nil {
		return nil
	}

	service, err := uc.catalogClient.GetVendorServiceWithGracefulDegradation(ctx, req.VendorID, *req.ServiceID)
	if err != nil {
		switch {
		case errors.Is(err, catalogservice.ErrServiceDegraded):
			uc.logger.Warn("CreateBooking: catalog unavailable, skipping service check for vendor=%d, service=%d",
				req.VendorID, *req.ServiceID)
			return nil
		case errors.Is(err, catalogservice.ErrServiceNotFound):
			uc.logger.Warn("CreateBooking: service %d of vendor %d not found", *req.ServiceID, req.VendorID)
			return fmt.Errorf("%w: vendor_id=%d, service_id=%d", ErrServiceNotFound, req.VendorID, *req.ServiceID)
		default:
			uc.logger.Error("CreateBooking: catalog check failed: %v", err)
			return fmt.Errorf("%w: checkCatalog - get vendor service: %w", ErrInternal, err)
		}
	}

	if !service.IsActive {
		uc.logger.Warn("CreateBooking: service %d of vendor %d is inactive", service.ID, req.VendorID)
		return fmt.Errorf("%w: service_id=%d is inactive", ErrServiceNotFound, service.ID)
	}

	if service.MaxGuests != nil && req.GuestCount > *service.MaxGuests {
		return fmt.Errorf("%w: %d guests, capacity %d", ErrGuestLimitExceeded, req.GuestCount, *service.MaxGuests)
	}

	return nil
}

// recoverConfirm выясняет исход Confirm, завершившегося ошибкой.
// Возвращает true, если слот закреплен за bookingID и сценарий можно продолжать.
// Иначе освобождает слот и убирает бронь; если состояние слота прочитать не
// удалось, бронь остается и помечается для сверки.
func (uc *UseCase) recoverConfirm(ctx context.Context, key domain.SlotKey, bookingID int64, token string) bool {
	bookedBy, err := uc.lockManager.BookedBy(context.WithoutCancel(ctx), key)
	if err != nil {
		uc.logger.Error("CreateBooking: cannot verify slot %s after failed confirmation of booking id=%d: %v", key, bookingID, err)
		uc.releaseSlot(ctx, key, token)
		uc.markForReconciliation(ctx, bookingID)
		return false
	}

	if bookedBy == bookingID {
		uc.logger.Warn("CreateBooking: slot %s is booked by booking id=%d despite confirmation error", key, bookingID)
		return true
	}

	uc.releaseSlot(ctx, key, token)
	uc.discardBooking(ctx, bookingID)
	return false
}

// releaseSlot освобождает слот после сбоя. Выполняется и при отмененном контексте запроса
func (uc *UseCase) releaseSlot(ctx context.Context, key domain.SlotKey, token string) {
	released, err := uc.lockManager.Release(context.WithoutCancel(ctx), key, token)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to release slot %s: %v", key, err)
		return
	}
	if !released {
		uc.logger.Warn("CreateBooking: slot %s was not released, lock is no longer held", key)
	}
}

// discardBooking удаляет незавершенное бронирование, при неудаче помечает его для сверки
func (uc *UseCase) discardBooking(ctx context.Context, bookingID int64) {
	if err := uc.bookingRepo.Delete(context.WithoutCancel(ctx), bookingID); err != nil {
		uc.logger.Error("CreateBooking: failed to delete booking id=%d: %v", bookingID, err)
		uc.markForReconciliation(ctx, bookingID)
	}
}

func (uc *UseCase) markForReconciliation(ctx context.Context, bookingID int64) {
	if err := uc.bookingRepo.MarkNeedsReconciliation(context.WithoutCancel(ctx), bookingID); err != nil {
		uc.logger.Error("CreateBooking: failed to mark booking id=%d for reconciliation: %v", bookingID, err)
	}
}

func (uc *UseCase) publishConfirmed(ctx context.Context, booking *domain.Booking) {
	event := events.BookingConfirmed{
		BookingID:  booking.ID,
		UserID:     booking.UserID,
		VendorID:   booking.VendorID,
		ServiceID:  booking.ServiceID,
		EventDate:  booking.EventDate.Format(domain.DateFormat),
		GuestCount: booking.GuestCount,
		OccurredAt: uc.timeProvider.Now().UTC(),
	}

	if err := uc.publisher.PublishBookingConfirmed(ctx, event); err != nil {
		uc.logger.Warn("CreateBooking: failed to publish confirmation for booking id=%d: %v", booking.ID, err)
	}
}

func toResponse(booking *domain.Booking) *Response {
	return &Response{
		ID:            booking.ID,
		UserID:        booking.UserID,
		VendorID:      booking.VendorID,
		ServiceID:     booking.ServiceID,
		EventDate:     booking.EventDate,
		CustomerName:  booking.CustomerName,
		CustomerEmail: booking.CustomerEmail,
		GuestCount:    booking.GuestCount,
		Notes:         booking.Notes,
		Status:        string(booking.Status),
		CreatedAt:     booking.CreatedAt,
		UpdatedAt:     booking.UpdatedAt,
	}
}
