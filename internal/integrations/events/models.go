package events

import "time"

// Очереди доменных событий
const (
	QueueBookingConfirmed     = "booking.confirmed"
	QueuePricePendingApproval = "price.pending_approval"
)

// BookingConfirmed событие подтверждённого бронирования
type BookingConfirmed struct {
	BookingID  int64     `json:"booking_id"`
	UserID     int64     `json:"user_id"`
	VendorID   int64     `json:"vendor_id"`
	ServiceID  *int64    `json:"service_id,omitempty"`
	EventDate  string    `json:"event_date"` // YYYY-MM-DD
	GuestCount int       `json:"guest_count"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PricePendingApproval событие цены, ожидающей одобрения
type PricePendingApproval struct {
	PriceID       int64     `json:"price_id"`
	VendorID      int64     `json:"vendor_id"`
	ServiceID     int64     `json:"service_id"`
	OldPrice      float64   `json:"old_price"`
	NewPrice      float64   `json:"new_price"`
	Currency      string    `json:"currency"`
	ChangePercent float64   `json:"change_percent"`
	EffectiveDate string    `json:"effective_date"` // YYYY-MM-DD
	OccurredAt    time.Time `json:"occurred_at"`
}
