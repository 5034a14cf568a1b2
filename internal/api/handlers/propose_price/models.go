package propose_price

import (
	"time"

	"github.com/m04kA/SMC-MarketplaceCore/internal/domain"
	"github.com/m04kA/SMC-MarketplaceCore/internal/service/pricegate/models"
)

// ProposePriceRequest HTTP request model
type ProposePriceRequest struct {
	Price         float64 `json:"price"`
	Currency      string  `json:"currency,omitempty"`
	EffectiveDate string  `json:"effectiveDate"` // "2026-04-01"
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *ProposePriceRequest) ToServiceRequest(vendorID, serviceID, userID int64) (*models.ProposePriceRequest, error) {
	effectiveDate, err := time.Parse(domain.DateFormat, r.EffectiveDate)
	if err != nil {
		return nil, err
	}

	return &models.ProposePriceRequest{
		VendorID:      vendorID,
		ServiceID:     serviceID,
		Price:         r.Price,
		Currency:      r.Currency,
		EffectiveDate: effectiveDate,
		ProposedBy:    userID,
	}, nil
}
