package domain

import "time"

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

// Booking represents an event booking for a vendor service
type Booking struct {
	ID            int64
	UserID        int64
	VendorID      int64
	ServiceID     *int64 // nil = vendor-wide booking
	EventDate     time.Time
	CustomerName  string
	CustomerEmail string
	GuestCount    int
	Notes         *string
	Status        BookingStatus

	// NeedsReconciliation is set when the booking and its slot may disagree:
	// a compensating delete failed, the confirmed status was not written,
	// or the slot state could not be read after a failed confirmation
	NeedsReconciliation bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SlotKey returns the slot the booking occupies
func (b *Booking) SlotKey() SlotKey {
	return NewSlotKey(b.VendorID, b.ServiceID, b.EventDate)
}

// IsActive returns true if the booking has not been cancelled
func (b *Booking) IsActive() bool {
	return b.Status != StatusCancelled
}
