package pricegate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-MarketplaceCore/internal/domain"
	priceRepo "github.com/m04kA/SMC-MarketplaceCore/internal/infra/storage/price"
	"github.com/m04kA/SMC-MarketplaceCore/internal/integrations/events"
	"github.com/m04kA/SMC-MarketplaceCore/internal/service/pricegate/models"
	"github.com/m04kA/SMC-MarketplaceCore/pkg/ptr"
	"github.com/m04kA/SMC-MarketplaceCore/pkg/txmanager"
	"github.com/m04kA/SMC-MarketplaceCore/pkg/validation"
)

// Service проверяет и сохраняет предложенные вендором цены
type Service struct {
	priceRepo    PriceRepository
	txManager    TransactionManager
	publisher    EventPublisher
	metrics      MetricsRecorder
	validator    *validation.Validator
	timeProvider TimeProvider
	rules        domain.PriceRules
	logger       Logger
}

// NewService создает новый экземпляр сервиса цен
func NewService(
	priceRepo PriceRepository,
	txManager TransactionManager,
	publisher EventPublisher,
	metrics MetricsRecorder,
	rules domain.PriceRules,
	logger Logger,
) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}

	return &Service{
		priceRepo:    priceRepo,
		txManager:    txManager,
		publisher:    publisher,
		metrics:      metrics,
		validator:    validation.New(),
		timeProvider: &RealTimeProvider{},
		rules:        rules,
		logger:       logger,
	}
}

// ProposePrice проверяет новую цену и сохраняет её как действующую
// или ожидающую одобрения.
//
// Текущая цена читается с блокировкой строки в сериализуемой транзакции,
// и замена действующей цены происходит в той же транзакции, поэтому два
// параллельных предложения не могут пройти проверку против одной и той же
// старой цены.
func (s *Service) ProposePrice(ctx context.Context, req *models.ProposePriceRequest) (*models.ProposeResult, error) {
	s.logger.Info("ProposePrice: vendor=%d, service=%d, price=%.2f, effective=%s",
		req.VendorID, req.ServiceID, req.Price, req.EffectiveDate.Format(domain.DateFormat))

	if err := s.validator.Struct(req); err != nil {
		s.logger.Warn("ProposePrice: validation failed: %v", err)
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	// цена хранится с точностью до копеек: правила проверяются по сохраняемому значению
	price := domain.RoundPrice(req.Price)
	if !(price <= domain.MaxStoredPrice) {
		s.logger.Warn("ProposePrice: price %.2f is out of range", req.Price)
		return nil, fmt.Errorf("%w: price %.2f exceeds %.2f", ErrInvalidInput, req.Price, domain.MaxStoredPrice)
	}

	effectiveDate := domain.NormalizeDate(req.EffectiveDate)
	if err := s.checkStaticRules(price, effectiveDate); err != nil {
		s.logger.Warn("ProposePrice: vendor=%d, service=%d rejected: %v", req.VendorID, req.ServiceID, err)
		s.metrics.RecordPriceDecision(models.DecisionRejected)
		return nil, err
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = s.rules.DefaultCurrency
	}

	var (
		created  *domain.PriceRecord
		previous *domain.PriceRecord
	)

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		created, previous = nil, nil

		current, err := s.priceRepo.GetActive(txCtx, req.VendorID, req.ServiceID)
		if err != nil && !errors.Is(err, priceRepo.ErrPriceNotFound) {
			return fmt.Errorf("%w: ProposePrice - read current price: %w", ErrInternal, err)
		}

		record := &domain.PriceRecord{
			VendorID:      req.VendorID,
			ServiceID:     req.ServiceID,
			Price:         price,
			Currency:      currency,
			EffectiveDate: effectiveDate,
			Status:        domain.PriceActive,
			IsActive:      true,
			ProposedBy:    req.ProposedBy,
		}

		var ratio float64
		if current != nil {
			ratio = domain.ChangeRatio(current.Price, price)
			if s.rules.ExceedsCeiling(ratio) {
				return fmt.Errorf("%w: %.2f%% over current price %.2f, limit %.2f%%",
					ErrIncreaseTooLarge, domain.RoundPercent(ratio), current.Price,
					domain.RoundPercent(s.rules.MaxIncreasePerChange))
			}

			record.ChangePercent = ptr.Ptr(domain.RoundPercent(ratio))
			if s.rules.NeedsApproval(ratio) {
				record.Status = domain.PricePendingApproval
				record.IsActive = false
				record.RequiresApproval = true
			}
		}

		// действующая цена снимается до вставки новой: частичный уникальный индекс
		// допускает только одну действующую цену на услугу
		if current != nil && record.IsActive {
			if err := s.priceRepo.Expire(txCtx, current.ID); err != nil {
				return fmt.Errorf("%w: ProposePrice - expire current price: %w", ErrInternal, err)
			}
		}

		created, err = s.priceRepo.Create(txCtx, record)
		if err != nil {
			return fmt.Errorf("%w: ProposePrice - create price: %w", ErrInternal, err)
		}

		if current != nil && record.IsActive && current.Price != record.Price {
			_, err = s.priceRepo.AppendHistory(txCtx, &domain.PriceHistory{
				PriceID:       created.ID,
				VendorID:      created.VendorID,
				ServiceID:     created.ServiceID,
				OldPrice:      current.Price,
				NewPrice:      created.Price,
				ChangePercent: domain.RoundPercent(ratio),
			})
			if err != nil {
				return fmt.Errorf("%w: ProposePrice - append history: %w", ErrInternal, err)
			}
		}

		previous = current
		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			s.logger.Warn("ProposePrice: vendor=%d, service=%d rejected: %v", req.VendorID, req.ServiceID, err)
			s.metrics.RecordPriceDecision(models.DecisionRejected)
			return nil, err
		case errors.Is(err, priceRepo.ErrPendingConflict):
			s.logger.Warn("ProposePrice: vendor=%d, service=%d already has a price awaiting approval", req.VendorID, req.ServiceID)
			return nil, fmt.Errorf("%w: %w", ErrConcurrentChange, err)
		case errors.Is(err, txmanager.ErrSerialization), errors.Is(err, priceRepo.ErrActiveConflict):
			s.logger.Warn("ProposePrice: vendor=%d, service=%d concurrent change: %v", req.VendorID, req.ServiceID, err)
			return nil, fmt.Errorf("%w: %w", ErrConcurrentChange, err)
		default:
			s.logger.Error("ProposePrice: vendor=%d, service=%d failed: %v", req.VendorID, req.ServiceID, err)
			return nil, err
		}
	}

	result := &models.ProposeResult{
		Price:    models.FromDomainPrice(created),
		Decision: models.DecisionActive,
	}
	if previous != nil {
		result.PreviousPrice = ptr.Ptr(previous.Price)
	}

	if created.IsPending() {
		result.Decision = models.DecisionPendingApproval
		s.publishPending(ctx, created, previous)
	}

	s.metrics.RecordPriceDecision(result.Decision)
	s.logger.Info("ProposePrice: price id=%d saved as %s", created.ID, result.Decision)
	return result, nil
}

// checkStaticRules проверки, не требующие чтения текущей цены
func (s *Service) checkStaticRules(price float64, effectiveDate time.Time) error {
	if price < s.rules.MinPrice {
		return fmt.Errorf("%w: %.2f < %.2f", ErrPriceBelowMinimum, price, s.rules.MinPrice)
	}

	today := domain.NormalizeDate(s.timeProvider.Now())
	if !effectiveDate.After(today) {
		return fmt.Errorf("%w: %s", ErrEffectiveDateNotFuture, effectiveDate.Format(domain.DateFormat))
	}

	latest := today.AddDate(0, 0, s.rules.MaxFutureDays)
	if effectiveDate.After(latest) {
		return fmt.Errorf("%w: %s is after %s", ErrEffectiveDateTooFar,
			effectiveDate.Format(domain.DateFormat), latest.Format(domain.DateFormat))
	}

	return nil
}

func (s *Service) publishPending(ctx context.Context, created, previous *domain.PriceRecord) {
	event := events.PricePendingApproval{
		PriceID:       created.ID,
		VendorID:      created.VendorID,
		ServiceID:     created.ServiceID,
		NewPrice:      created.Price,
		Currency:      created.Currency,
		ChangePercent: ptr.Value(created.ChangePercent),
		EffectiveDate: created.EffectiveDate.Format(domain.DateFormat),
		OccurredAt:    s.timeProvider.Now().UTC(),
	}
	if previous != nil {
		event.OldPrice = previous.Price
	}

	if err := s.publisher.PublishPricePendingApproval(ctx, event); err != nil {
		s.logger.Warn("ProposePrice: failed to publish pending approval for price id=%d: %v", created.ID, err)
	}
}
