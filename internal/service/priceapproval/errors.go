package priceapproval

import "errors"

var (
	// ErrPriceNotFound возвращается, когда цена не найдена
	ErrPriceNotFound = errors.New("priceapproval: price not found")

	// ErrNotPending возвращается, когда цена не ожидает одобрения
	ErrNotPending = errors.New("priceapproval: price is not pending approval")

	// ErrSelfApproval возвращается, когда цену пытается одобрить тот, кто её предложил
	ErrSelfApproval = errors.New("priceapproval: price cannot be approved by its proposer")

	// ErrIncreaseTooLarge возвращается, когда за время ожидания действующая цена
	// изменилась и рост относительно неё превышает допустимый
	ErrIncreaseTooLarge = errors.New("priceapproval: increase over the current price exceeds the allowed maximum")

	// ErrConcurrentChange параллельное изменение цены той же услуги
	ErrConcurrentChange = errors.New("priceapproval: price is being changed by another request")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("priceapproval: internal error")
)
