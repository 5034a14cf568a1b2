package pricegate

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation общий предок ошибок проверки предложенной цены
	ErrValidation = errors.New("pricegate: price rejected")

	// ErrPriceBelowMinimum цена меньше минимально допустимой
	ErrPriceBelowMinimum = fmt.Errorf("%w: price is below the minimum", ErrValidation)

	// ErrEffectiveDateNotFuture дата вступления в силу не в будущем
	ErrEffectiveDateNotFuture = fmt.Errorf("%w: effective date must be in the future", ErrValidation)

	// ErrEffectiveDateTooFar дата вступления в силу слишком далеко
	ErrEffectiveDateTooFar = fmt.Errorf("%w: effective date is too far in the future", ErrValidation)

	// ErrIncreaseTooLarge рост цены больше допустимого за одно изменение
	ErrIncreaseTooLarge = fmt.Errorf("%w: price increase exceeds the allowed maximum", ErrValidation)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("pricegate: invalid input data")

	// ErrConcurrentChange параллельное изменение цены той же услуги
	ErrConcurrentChange = errors.New("pricegate: price is being changed by another request")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("pricegate: internal error")
)
