package slot

import "errors"

var (
	// ErrSlotNotFound возвращается, когда строки слота ещё нет
	ErrSlotNotFound = errors.New("slot.repository: slot not found")

	// ErrSlotConflict возвращается, когда уникальный индекс слота отверг вставку
	ErrSlotConflict = errors.New("slot.repository: slot already exists")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("slot.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("slot.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("slot.repository: failed to scan row")
)
