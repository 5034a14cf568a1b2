package priceapproval

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-MarketplaceCore/internal/domain"
	priceRepo "github.com/m04kA/SMC-MarketplaceCore/internal/infra/storage/price"
	"github.com/m04kA/SMC-MarketplaceCore/internal/service/pricegate/models"
	"github.com/m04kA/SMC-MarketplaceCore/pkg/ptr"
	"github.com/m04kA/SMC-MarketplaceCore/pkg/txmanager"
)

// Решения согласующего для метрик
const (
	DecisionApproved = "approved"
	DecisionDeclined = "declined"
)

// Service переводит цены из pending_approval в active или rejected
type Service struct {
	priceRepo PriceRepository
	txManager TransactionManager
	metrics   MetricsRecorder
	rules     domain.PriceRules
	logger    Logger
}

// NewService создает новый экземпляр сервиса согласования цен
func NewService(
	priceRepo PriceRepository,
	txManager TransactionManager,
	metrics MetricsRecorder,
	rules domain.PriceRules,
	logger Logger,
) *Service {
	if metrics == nil {
		metrics = nopMetrics{}
	}

	return &Service{
		priceRepo: priceRepo,
		txManager: txManager,
		metrics:   metrics,
		rules:     rules,
		logger:    logger,
	}
}

// Approve делает ожидающую цену действующей.
// Автор предложения не может одобрить его сам.
// Рост перепроверяется относительно цены, действующей на момент одобрения.
func (s *Service) Approve(ctx context.Context, priceID, approverID int64) (*models.PriceResponse, error) {
	s.logger.Info("Approve: price id=%d by user=%d", priceID, approverID)

	var approved *domain.PriceRecord

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		record, err := s.loadPending(txCtx, priceID)
		if err != nil {
			return err
		}

		if record.ProposedByUser(approverID) {
			return fmt.Errorf("%w: price id=%d, user=%d", ErrSelfApproval, priceID, approverID)
		}

		current, err := s.priceRepo.GetActive(txCtx, record.VendorID, record.ServiceID)
		if err != nil && !errors.Is(err, priceRepo.ErrPriceNotFound) {
			return fmt.Errorf("%w: Approve - read current price: %w", ErrInternal, err)
		}

		var changePercent *float64
		if current != nil {
			ratio := domain.ChangeRatio(current.Price, record.Price)
			if s.rules.ExceedsCeiling(ratio) {
				return fmt.Errorf("%w: %.2f%% over current price %.2f", ErrIncreaseTooLarge, domain.RoundPercent(ratio), current.Price)
			}
			changePercent = ptr.Ptr(domain.RoundPercent(ratio))

			if err := s.priceRepo.Expire(txCtx, current.ID); err != nil {
				return fmt.Errorf("%w: Approve - expire current price: %w", ErrInternal, err)
			}
		}

		if err := s.priceRepo.Activate(txCtx, record.ID, changePercent); err != nil {
			return fmt.Errorf("%w: Approve - activate price: %w", ErrInternal, err)
		}

		if current != nil && current.Price != record.Price {
			_, err := s.priceRepo.AppendHistory(txCtx, &domain.PriceHistory{
				PriceID:       record.ID,
				VendorID:      record.VendorID,
				ServiceID:     record.ServiceID,
				OldPrice:      current.Price,
				NewPrice:      record.Price,
				ChangePercent: ptr.Value(changePercent),
			})
			if err != nil {
				return fmt.Errorf("%w: Approve - append history: %w", ErrInternal, err)
			}
		}

		record.Status = domain.PriceActive
		record.IsActive = true
		record.ChangePercent = changePercent
		approved = record
		return nil
	})

	if err != nil {
		return nil, s.classify("Approve", priceID, err)
	}

	s.metrics.RecordPriceDecision(DecisionApproved)
	s.logger.Info("Approve: price id=%d is now active", priceID)
	return models.FromDomainPrice(approved), nil
}

// Reject отклоняет ожидающую цену
func (s *Service) Reject(ctx context.Context, priceID, approverID int64) (*models.PriceResponse, error) {
	s.logger.Info("Reject: price id=%d by user=%d", priceID, approverID)

	var rejected *domain.PriceRecord

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		record, err := s.loadPending(txCtx, priceID)
		if err != nil {
			return err
		}

		if err := s.priceRepo.Reject(txCtx, record.ID); err != nil {
			return fmt.Errorf("%w: Reject - update price: %w", ErrInternal, err)
		}

		record.Status = domain.PriceRejected
		record.IsActive = false
		rejected = record
		return nil
	})

	if err != nil {
		return nil, s.classify("Reject", priceID, err)
	}

	s.metrics.RecordPriceDecision(DecisionDeclined)
	s.logger.Info("Reject: price id=%d rejected", priceID)
	return models.FromDomainPrice(rejected), nil
}

func (s *Service) loadPending(ctx context.Context, priceID int64) (*domain.PriceRecord, error) {
	record, err := s.priceRepo.GetByID(ctx, priceID)
	if err != nil {
		if errors.Is(err, priceRepo.ErrPriceNotFound) {
			return nil, ErrPriceNotFound
		}
		return nil, fmt.Errorf("%w: read price: %w", ErrInternal, err)
	}

	if !record.IsPending() {
		return nil, fmt.Errorf("%w: price id=%d has status %s", ErrNotPending, priceID, record.Status)
	}

	return record, nil
}

func (s *Service) classify(op string, priceID int64, err error) error {
	switch {
	case errors.Is(err, ErrPriceNotFound), errors.Is(err, ErrNotPending), errors.Is(err, ErrIncreaseTooLarge),
		errors.Is(err, ErrSelfApproval):
		s.logger.Warn("%s: price id=%d: %v", op, priceID, err)
		return err
	case errors.Is(err, txmanager.ErrSerialization), errors.Is(err, priceRepo.ErrActiveConflict):
		s.logger.Warn("%s: price id=%d concurrent change: %v", op, priceID, err)
		return fmt.Errorf("%w: %w", ErrConcurrentChange, err)
	default:
		s.logger.Error("%s: price id=%d failed: %v", op, priceID, err)
		return err
	}
}
