package domain

import (
	"math"
	"time"
)

// PriceStatus represents the lifecycle state of a price record
type PriceStatus string

const (
	PriceDraft           PriceStatus = "draft"
	PricePendingApproval PriceStatus = "pending_approval"
	PriceActive          PriceStatus = "active"
	PriceExpired         PriceStatus = "expired"
	PriceRejected        PriceStatus = "rejected"
)

// Default price gate rules
const (
	DefaultMinPrice             = 1.0
	DefaultMaxFutureDays        = 90
	DefaultMaxIncreasePerChange = 0.5
	DefaultApprovalThreshold    = 0.25
	DefaultCurrency             = "PKR"
)

// MaxStoredPrice is the largest value the NUMERIC(12,2) price column holds
const MaxStoredPrice = 9999999999.99

// PriceRules are the limits a proposed price is checked against
type PriceRules struct {
	MinPrice             float64
	MaxFutureDays        int
	MaxIncreasePerChange float64
	ApprovalThreshold    float64
	DefaultCurrency      string
}

// DefaultPriceRules returns the stock marketplace limits
func DefaultPriceRules() PriceRules {
	return PriceRules{
		MinPrice:             DefaultMinPrice,
		MaxFutureDays:        DefaultMaxFutureDays,
		MaxIncreasePerChange: DefaultMaxIncreasePerChange,
		ApprovalThreshold:    DefaultApprovalThreshold,
		DefaultCurrency:      DefaultCurrency,
	}
}

// ExceedsCeiling reports whether ratio is above the per-change increase limit
func (r PriceRules) ExceedsCeiling(ratio float64) bool {
	return ratio > r.MaxIncreasePerChange
}

// NeedsApproval reports whether ratio requires human sign-off
func (r PriceRules) NeedsApproval(ratio float64) bool {
	return ratio > r.ApprovalThreshold
}

// PriceRecord is a current or historical price for a vendor service
type PriceRecord struct {
	ID               int64
	VendorID         int64
	ServiceID        int64
	Price            float64
	Currency         string
	EffectiveDate    time.Time
	Status           PriceStatus
	IsActive         bool
	RequiresApproval bool
	// ChangePercent is the delta against the price active at proposal time, in percent
	ChangePercent *float64
	// ProposedBy is the user who proposed the price, 0 when unknown
	ProposedBy int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsCurrent reports whether the record is the authoritative current price
func (p *PriceRecord) IsCurrent() bool {
	return p.Status == PriceActive && p.IsActive
}

// ProposedByUser reports whether userID is the known proposer of the price
func (p *PriceRecord) ProposedByUser(userID int64) bool {
	return p.ProposedBy != 0 && p.ProposedBy == userID
}

// IsPending reports whether the record waits for an approval decision
func (p *PriceRecord) IsPending() bool {
	return p.Status == PricePendingApproval
}

// PriceHistory captures a change of the active numeric price value
type PriceHistory struct {
	ID            int64
	PriceID       int64
	VendorID      int64
	ServiceID     int64
	OldPrice      float64
	NewPrice      float64
	ChangePercent float64
	ChangedAt     time.Time
}

// ChangeRatio returns (newPrice - current) / current as a plain ratio.
// current must be positive.
func ChangeRatio(current, newPrice float64) float64 {
	return (newPrice - current) / current
}

// RoundPercent converts a ratio to a percent rounded to 2 decimal places
func RoundPercent(ratio float64) float64 {
	return math.Round(ratio*100*100) / 100
}

// RoundPrice rounds a price to cents, the precision it is stored with
func RoundPrice(price float64) float64 {
	return math.Round(price*100) / 100
}
