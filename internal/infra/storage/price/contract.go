package price

import "github.com/m04kA/SMC-MarketplaceCore/pkg/dbmetrics"

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor
