package lockmanager

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-MarketplaceCore/internal/domain"
	slotRepo "github.com/m04kA/SMC-MarketplaceCore/internal/infra/storage/slot"
	"github.com/m04kA/SMC-MarketplaceCore/internal/service/lockmanager/models"
	"github.com/m04kA/SMC-MarketplaceCore/pkg/txmanager"
)

// Config параметры блокировок
type Config struct {
	LockTTL time.Duration
}

// Service менеджер блокировок слотов.
// Слот меняется только через Acquire, Release, Confirm и SweepExpired.
type Service struct {
	slotRepo     SlotRepository
	txManager    TransactionManager
	metrics      MetricsRecorder
	tokens       TokenGenerator
	timeProvider TimeProvider
	lockTTL      time.Duration
	logger       Logger
}

// NewService создает новый экземпляр менеджера блокировок
func NewService(
	slotRepo SlotRepository,
	txManager TransactionManager,
	metrics MetricsRecorder,
	cfg Config,
	logger Logger,
) *Service {
	if metrics == nil {
		metrics = nopMetrics{}
	}

	ttl := cfg.LockTTL
	if ttl <= 0 {
		ttl = domain.DefaultLockTTL
	}

	return &Service{
		slotRepo:     slotRepo,
		txManager:    txManager,
		metrics:      metrics,
		tokens:       &UUIDTokenGenerator{},
		timeProvider: &RealTimeProvider{},
		lockTTL:      ttl,
		logger:       logger,
	}
}

// Acquire пытается захватить слот для reason.
// Чтение и запись выполняются в одной сериализуемой транзакции; проигравший
// в гонке получает отказ, а не ошибку.
func (s *Service) Acquire(ctx context.Context, key domain.SlotKey, reason string) (*models.AcquireResult, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	key = domain.NewSlotKey(key.VendorID, key.ServiceID, key.Date)
	if reason == "" {
		reason = domain.LockReasonBookingCreation
	}

	s.logger.Info("Acquire: slot=%s, reason=%s", key, reason)

	var result *models.AcquireResult

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		now := s.timeProvider.Now()

		slot, err := s.slotRepo.GetForUpdate(txCtx, key)
		if err != nil && !errors.Is(err, slotRepo.ErrSlotNotFound) {
			return fmt.Errorf("%w: Acquire - read slot: %w", ErrInternal, err)
		}

		if denyReason := slot.DenyReason(now); denyReason != "" {
			result = &models.AcquireResult{Granted: false, Reason: denyReason}
			return nil
		}

		lease := domain.NewLease(s.tokens.NewToken(), now, s.lockTTL, reason)
		if slot == nil {
			_, err = s.slotRepo.InsertLocked(txCtx, key, lease)
		} else {
			err = s.slotRepo.UpdateLocked(txCtx, slot.ID, lease)
		}
		if err != nil {
			return fmt.Errorf("%w: Acquire - write lease: %w", ErrInternal, err)
		}

		result = &models.AcquireResult{
			Granted:   true,
			Token:     lease.Token,
			ExpiresAt: lease.ExpiresAt,
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, slotRepo.ErrSlotConflict) || errors.Is(err, txmanager.ErrSerialization) {
			s.logger.Warn("Acquire: slot=%s lost the race: %v", key, err)
			s.metrics.RecordLockOperation("acquire", models.OutcomeDenied)
			return &models.AcquireResult{Granted: false, Reason: domain.ReasonBeingProcessed}, nil
		}
		s.logger.Error("Acquire: slot=%s failed: %v", key, err)
		s.metrics.RecordLockOperation("acquire", models.OutcomeError)
		return nil, err
	}

	if !result.Granted {
		s.logger.Info("Acquire: slot=%s denied: %s", key, result.Reason)
		s.metrics.RecordLockOperation("acquire", models.OutcomeDenied)
		return result, nil
	}

	s.logger.Info("Acquire: slot=%s granted until %s", key, result.ExpiresAt.Format(time.RFC3339))
	s.metrics.RecordLockOperation("acquire", models.OutcomeGranted)
	return result, nil
}

// Release снимает блокировку, если token принадлежит её владельцу.
// false означает, что блокировки уже нет; повторять вызов не нужно.
func (s *Service) Release(ctx context.Context, key domain.SlotKey, token string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}
	key = domain.NewSlotKey(key.VendorID, key.ServiceID, key.Date)

	if token == "" {
		s.metrics.RecordLockOperation("release", models.OutcomeNotOwner)
		return false, nil
	}

	released, err := s.slotRepo.TryRelease(ctx, key, token)
	if err != nil {
		s.logger.Error("Release: slot=%s failed: %v", key, err)
		s.metrics.RecordLockOperation("release", models.OutcomeError)
		return false, fmt.Errorf("%w: Release - %w", ErrInternal, err)
	}

	if !released {
		s.logger.Warn("Release: slot=%s not held by token, nothing released", key)
		s.metrics.RecordLockOperation("release", models.OutcomeNotOwner)
		return false, nil
	}

	s.logger.Info("Release: slot=%s released", key)
	s.metrics.RecordLockOperation("release", models.OutcomeReleased)
	return true, nil
}

// Confirm переводит слот в booked, если token всё ещё владеет непросроченной блокировкой
func (s *Service) Confirm(ctx context.Context, key domain.SlotKey, bookingID int64, token string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}
	key = domain.NewSlotKey(key.VendorID, key.ServiceID, key.Date)

	if token == "" {
		s.metrics.RecordLockOperation("confirm", models.OutcomeLost)
		return false, nil
	}

	confirmed, err := s.slotRepo.TryConfirm(ctx, key, token, bookingID, s.timeProvider.Now())
	if err != nil {
		s.logger.Error("Confirm: slot=%s booking=%d failed: %v", key, bookingID, err)
		s.metrics.RecordLockOperation("confirm", models.OutcomeError)
		return false, fmt.Errorf("%w: Confirm - %w", ErrInternal, err)
	}

	if !confirmed {
		s.logger.Warn("Confirm: slot=%s booking=%d lock lost", key, bookingID)
		s.metrics.RecordLockOperation("confirm", models.OutcomeLost)
		return false, nil
	}

	s.logger.Info("Confirm: slot=%s booked by booking=%d", key, bookingID)
	s.metrics.RecordLockOperation("confirm", models.OutcomeConfirmed)
	return true, nil
}

// SweepExpired возвращает в available слоты с истекшей блокировкой
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	count, err := s.slotRepo.SweepExpired(ctx, s.timeProvider.Now())
	if err != nil {
		s.logger.Error("SweepExpired: failed: %v", err)
		return 0, fmt.Errorf("%w: SweepExpired - %w", ErrInternal, err)
	}

	if count > 0 {
		s.logger.Info("SweepExpired: reclaimed %d slots", count)
	}
	s.metrics.RecordSweep(count)
	return count, nil
}

// CheckAvailability проверяет слот без изменения состояния.
// Результат может устареть сразу после ответа; окончательно решает только Acquire.
func (s *Service) CheckAvailability(ctx context.Context, key domain.SlotKey) (*models.Availability, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	key = domain.NewSlotKey(key.VendorID, key.ServiceID, key.Date)

	slot, err := s.slotRepo.Get(ctx, key)
	if err != nil && !errors.Is(err, slotRepo.ErrSlotNotFound) {
		s.logger.Error("CheckAvailability: slot=%s failed: %v", key, err)
		return nil, fmt.Errorf("%w: CheckAvailability - %w", ErrInternal, err)
	}

	reason := slot.DenyReason(s.timeProvider.Now())
	return &models.Availability{Available: reason == "", Reason: reason}, nil
}

// BookedBy возвращает ID бронирования, за которым закреплен слот.
// Для незабронированного или отсутствующего слота возвращает 0.
func (s *Service) BookedBy(ctx context.Context, key domain.SlotKey) (int64, error) {
	if err := validateKey(key); err != nil {
		return 0, err
	}
	key = domain.NewSlotKey(key.VendorID, key.ServiceID, key.Date)

	slot, err := s.slotRepo.Get(ctx, key)
	if errors.Is(err, slotRepo.ErrSlotNotFound) {
		return 0, nil
	}
	if err != nil {
		s.logger.Error("BookedBy: slot=%s failed: %v", key, err)
		return 0, fmt.Errorf("%w: BookedBy - %w", ErrInternal, err)
	}

	if slot.Status != domain.SlotBooked || slot.BookingID == nil {
		return 0, nil
	}
	return *slot.BookingID, nil
}

func validateKey(key domain.SlotKey) error {
	if key.VendorID <= 0 {
		return fmt.Errorf("%w: vendor id must be positive", ErrInvalidInput)
	}
	if key.ServiceID != nil && *key.ServiceID <= 0 {
		return fmt.Errorf("%w: service id must be positive", ErrInvalidInput)
	}
	if key.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	return nil
}
