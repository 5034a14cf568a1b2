package models

import (
	"time"

	"github.com/m04kA/SMC-MarketplaceCore/internal/domain"
)

// Решения по предложенной цене
const (
	DecisionActive          = "active"
	DecisionPendingApproval = "pending_approval"
	DecisionRejected        = "rejected"
)

// ProposePriceRequest предложение новой цены услуги
type ProposePriceRequest struct {
	VendorID      int64     `json:"vendorId" validate:"gt=0"`
	ServiceID     int64     `json:"serviceId" validate:"gt=0"`
	Price         float64   `json:"price"`
	Currency      string    `json:"currency,omitempty" validate:"omitempty,iso4217"`
	EffectiveDate time.Time `json:"effectiveDate" validate:"required"`
	ProposedBy    int64     `json:"-" validate:"gte=0"`
}

// PriceResponse цена услуги
type PriceResponse struct {
	ID               int64     `json:"id"`
	VendorID         int64     `json:"vendorId"`
	ServiceID        int64     `json:"serviceId"`
	Price            float64   `json:"price"`
	Currency         string    `json:"currency"`
	EffectiveDate    string    `json:"effectiveDate"`
	Status           string    `json:"status"`
	IsActive         bool      `json:"isActive"`
	RequiresApproval bool      `json:"requiresApproval"`
	ChangePercent    *float64  `json:"changePercent,omitempty"`
	ProposedBy       int64     `json:"proposedBy,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// ProposeResult результат проверки и сохранения цены
type ProposeResult struct {
	Price         *PriceResponse `json:"price"`
	Decision      string         `json:"decision"`
	PreviousPrice *float64       `json:"previousPrice,omitempty"`
}

// FromDomainPrice конвертирует domain модель в ответ
func FromDomainPrice(p *domain.PriceRecord) *PriceResponse {
	return &PriceResponse{
		ID:               p.ID,
		VendorID:         p.VendorID,
		ServiceID:        p.ServiceID,
		Price:            p.Price,
		Currency:         p.Currency,
		EffectiveDate:    p.EffectiveDate.Format(domain.DateFormat),
		Status:           string(p.Status),
		IsActive:         p.IsActive,
		RequiresApproval: p.RequiresApproval,
		ChangePercent:    p.ChangePercent,
		ProposedBy:       p.ProposedBy,
		CreatedAt:        p.CreatedAt,
	}
}
