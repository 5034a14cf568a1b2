package propose_price

import (
	"context"

	"github.com/m04kA/SMC-MarketplaceCore/internal/service/pricegate/models"
)

type PriceGate interface {
	ProposePrice(ctx context.Context, req *models.ProposePriceRequest) (*models.ProposeResult, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
