package sweeper

import "errors"

var (
	// ErrGuard ошибка обращения к Redis при выборе экземпляра для очистки
	ErrGuard = errors.New("sweeper: guard unavailable")
)
