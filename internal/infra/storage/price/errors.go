package price

import "errors"

var (
	// ErrPriceNotFound возвращается, когда цена не найдена
	ErrPriceNotFound = errors.New("price.repository: price not found")

	// ErrActiveConflict возвращается, когда уникальный индекс не дал завести вторую действующую цену
	ErrActiveConflict = errors.New("price.repository: another active price exists")

	// ErrPendingConflict возвращается, когда у услуги уже есть цена, ожидающая одобрения
	ErrPendingConflict = errors.New("price.repository: another price is awaiting approval")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("price.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("price.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("price.repository: failed to scan row")
)
