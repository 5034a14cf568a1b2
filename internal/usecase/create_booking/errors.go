package create_booking

import (
	"errors"
	"fmt"
)

var (
	// ErrServiceNotFound возвращается, когда услуга вендора не найдена или неактивна
	ErrServiceNotFound = errors.New("create_booking: service not found")

	// ErrGuestLimitExceeded возвращается, когда гостей больше, чем допускает услуга
	ErrGuestLimitExceeded = errors.New("create_booking: guest count exceeds service capacity")

	// ErrInvalidDate возвращается при дате мероприятия в прошлом
	ErrInvalidDate = errors.New("create_booking: invalid event date")

	// ErrSlotNotAvailable возвращается, когда слот занят или обрабатывается другим запросом
	ErrSlotNotAvailable = errors.New("create_booking: slot is not available")

	// ErrLockLost возвращается, когда блокировка слота истекла до подтверждения
	ErrLockLost = errors.New("create_booking: slot lock was lost before confirmation")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)

// DeniedError отказ в захвате слота с причиной для пользователя
type DeniedError struct {
	Reason string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrSlotNotAvailable, e.Reason)
}

func (e *DeniedError) Unwrap() error {
	return ErrSlotNotAvailable
}
