package lockmanager

import "errors"

var (
	// ErrInvalidInput возвращается при некорректном ключе слота
	ErrInvalidInput = errors.New("lockmanager: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("lockmanager: internal error")
)
