package domain

import (
	"fmt"
	"time"
)

// SlotStatus represents the state of a vendor slot
type SlotStatus string

const (
	SlotAvailable SlotStatus = "available"
	SlotTentative SlotStatus = "tentative"
	SlotBlocked   SlotStatus = "blocked"
	SlotBooked    SlotStatus = "booked"
)

// Denial reasons returned to the caller when a slot cannot be locked
const (
	ReasonAlreadyBooked   = "already booked"
	ReasonBeingProcessed  = "being processed by another request"
	ReasonBlockedByVendor = "blocked by vendor"
)

// LockReasonBookingCreation is recorded on slots locked by the booking flow
const LockReasonBookingCreation = "booking_creation"

// DefaultLockTTL spans the synchronous booking-creation critical section only
const DefaultLockTTL = 30 * time.Second

// SlotKey identifies a slot: (vendor, service, calendar day).
// A nil ServiceID means the slot is vendor-wide.
type SlotKey struct {
	VendorID  int64
	ServiceID *int64
	Date      time.Time
}

// NewSlotKey builds a key with the date normalised to a UTC calendar day
func NewSlotKey(vendorID int64, serviceID *int64, date time.Time) SlotKey {
	return SlotKey{
		VendorID:  vendorID,
		ServiceID: serviceID,
		Date:      NormalizeDate(date),
	}
}

// NormalizeDate drops the time-of-day component
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (k SlotKey) String() string {
	service := "*"
	if k.ServiceID != nil {
		service = fmt.Sprintf("%d", *k.ServiceID)
	}
	return fmt.Sprintf("%d/%s/%s", k.VendorID, service, k.Date.Format(DateFormat))
}

// Lease is the lock held on a slot by a single booking attempt.
// Ownership is proven by Token; the lease lapses at ExpiresAt.
type Lease struct {
	Token     string
	ExpiresAt time.Time
	Reason    string
}

// NewLease creates a lease that expires ttl after now
func NewLease(token string, now time.Time, ttl time.Duration, reason string) *Lease {
	return &Lease{
		Token:     token,
		ExpiresAt: now.Add(ttl),
		Reason:    reason,
	}
}

// IsHeld reports whether the lease still excludes other holders at now
func (l *Lease) IsHeld(now time.Time) bool {
	return l != nil && l.Token != "" && l.ExpiresAt.After(now)
}

// IsExpired reports whether the lease existed but has lapsed
func (l *Lease) IsExpired(now time.Time) bool {
	return l != nil && l.Token != "" && !l.ExpiresAt.After(now)
}

// OwnedBy reports whether token identifies the lease holder
func (l *Lease) OwnedBy(token string) bool {
	return l != nil && token != "" && l.Token == token
}

// Slot is the persisted state of one SlotKey
type Slot struct {
	ID        int64
	Key       SlotKey
	Status    SlotStatus
	Lease     *Lease
	BookingID *int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DenyReason returns why a new lease cannot be granted at now, or "" if it can.
// An expired lease is treated as absent even if nobody has swept it yet.
func (s *Slot) DenyReason(now time.Time) string {
	if s == nil {
		return ""
	}

	switch s.Status {
	case SlotBooked:
		return ReasonAlreadyBooked
	case SlotBlocked, SlotTentative:
		if s.Lease.IsHeld(now) {
			return ReasonBeingProcessed
		}
		// manual block by vendor staff carries no lease
		if s.Lease == nil || s.Lease.Token == "" {
			return ReasonBlockedByVendor
		}
	}

	return ""
}

// IsAvailable is a convenience for DenyReason(now) == ""
func (s *Slot) IsAvailable(now time.Time) bool {
	return s.DenyReason(now) == ""
}
