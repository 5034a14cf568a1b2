package check_availability

import (
	"context"

	"github.com/m04kA/SMC-MarketplaceCore/internal/domain"
	"github.com/m04kA/SMC-MarketplaceCore/internal/service/lockmanager/models"
)

type LockManager interface {
	CheckAvailability(ctx context.Context, key domain.SlotKey) (*models.Availability, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
