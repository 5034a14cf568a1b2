package catalogservice

import "errors"

var (
	// ErrServiceNotFound возвращается, когда у вендора нет такой услуги
	ErrServiceNotFound = errors.New("vendor service not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("catalogservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("catalogservice client: invalid response")

	// ErrServiceDegraded возвращается при применении graceful degradation
	// Указывает, что каталог недоступен и услугу проверить не удалось
	ErrServiceDegraded = errors.New("catalogservice unavailable: graceful degradation applied")
)
