package create_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-MarketplaceCore/internal/domain"
)

// validateRequest валидирует входные данные запроса
func (uc *UseCase) validateRequest(req *Request) error {
	if err := uc.validator.Struct(req); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	return validateDate(req.EventDate, uc.timeProvider.Now())
}

// validateDate проверяет, что дата мероприятия не в прошлом
func validateDate(eventDate time.Time, now time.Time) error {
	if isDateInPast(eventDate, now) {
		return fmt.Errorf("%w: %s is in the past", ErrInvalidDate, eventDate.Format(domain.DateFormat))
	}
	return nil
}

// isDateInPast проверяет, что дата раньше сегодняшнего дня (по UTC)
func isDateInPast(date, now time.Time) bool {
	return domain.NormalizeDate(date).Before(domain.NormalizeDate(now))
}
