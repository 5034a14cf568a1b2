package price_decision

import (
	"context"

	"github.com/m04kA/SMC-MarketplaceCore/internal/service/pricegate/models"
)

type PriceApprovalService interface {
	Approve(ctx context.Context, priceID, approverID int64) (*models.PriceResponse, error)
	Reject(ctx context.Context, priceID, approverID int64) (*models.PriceResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
